package python

import (
	"fmt"

	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

const defaultIndent = "    "

// keywords covers the reserved words, the soft keywords and the names the
// generated module itself relies on.
var keywords = naming.Keywords(
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
	"match", "case", "type", "_",
	"from_dict", "to_dict", "from_json", "to_json",
	"int", "float", "bool", "str", "dict", "list", "json", "dataclass",
)

var rules = naming.Rules{
	FieldCase:     naming.SnakeCase,
	Keywords:      keywords,
	ReservedTypes: []string{"Any", "Dict", "List", "Optional"},
}

// Backend emits dataclasses with dict and JSON conversions.
type Backend struct{}

// New creates a Python backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Language() string      { return "python" }
func (b *Backend) FileExtension() string { return ".py" }
func (b *Backend) Rules() naming.Rules   { return rules }

func (b *Backend) Render(reg *naming.Registry, opts generator.Options) (models.Artifact, error) {
	art := generator.NewArtifact(b, reg)
	if opts.SplitFiles {
		art.Warnings = append(art.Warnings, generator.SplitUnsupported("Python"))
	}
	if opts.Namespace != "" {
		art.Warnings = append(art.Warnings, models.Warning{
			Code:    models.WarnUnsupportedFeature,
			Message: "Python modules are named by their file; namespace ignored",
		})
	}

	e := &emitter{reg: reg}
	w := generator.NewWriter(generator.IndentOr(opts, defaultIndent))
	w.Comment("#", generator.HeaderLines(opts)...)
	w.Blank()
	w.Line("from __future__ import annotations")
	w.Blank()
	w.Line("import json")
	w.Line("from dataclasses import dataclass")
	w.Line("from typing import Any, List, Optional")

	for _, nt := range reg.DeclarationOrder() {
		w.Blank()
		w.Blank()
		e.class(w, nt)
	}

	if reg.RootIsArray {
		root := reg.Root.Name
		fn := naming.Convert(root, naming.SnakeCase)
		w.Blank()
		w.Blank()
		w.Block(fmt.Sprintf("def %s_list_from_json(text: str) -> List[%s]:", fn, root), "", func() {
			w.Line("return [%s.from_dict(x) for x in json.loads(text)]", root)
		})
		w.Blank()
		w.Blank()
		w.Block(fmt.Sprintf("def %s_list_to_json(items: List[%s]) -> str:", fn, root), "", func() {
			w.Line("return json.dumps([x.to_dict() for x in items])")
		})
	}

	art.Files = []models.File{{Name: generator.FileBase(reg.Root.Name) + ".py", Content: w.String()}}
	art.Warnings = append(art.Warnings, e.warnings...)
	return art, nil
}

type emitter struct {
	reg      *naming.Registry
	warnings []models.Warning
}

func (e *emitter) class(w *generator.Writer, nt *naming.NamedType) {
	wrapped := nt == e.reg.Root && e.reg.RootWrapped

	// Fields without a default have to come first.
	ordered := make([]naming.NamedField, 0, len(nt.Fields))
	for _, f := range nt.Fields {
		if !f.Optional() {
			ordered = append(ordered, f)
		}
	}
	for _, f := range nt.Fields {
		if f.Optional() {
			ordered = append(ordered, f)
		}
	}

	w.Line("@dataclass")
	w.Block(fmt.Sprintf("class %s:", nt.Name), "", func() {
		w.Line(`"""Shape found at %s."""`, nt.Node.Path)
		w.Blank()
		for _, f := range ordered {
			if u := generator.UnionIn(f.Type); u != nil {
				w.Line("# one of: %s", generator.VariantSummary(e.reg, u))
				e.warnings = append(e.warnings, generator.DegradedUnion(nt.Name, f.Key, u, "Any"))
			}
			if f.Optional() {
				w.Line("%s: %s = None", f.Ident, e.pyType(f.Type))
			} else {
				w.Line("%s: %s", f.Ident, e.pyType(f.Type))
			}
		}
		w.Blank()

		w.Line("@staticmethod")
		w.Block(fmt.Sprintf("def from_dict(obj: Any) -> %s:", nt.Name), "", func() {
			if wrapped {
				f := nt.Fields[0]
				w.Line("return %s(%s=%s)", nt.Name, f.Ident, e.decode(f.Type, "obj", 0))
				return
			}
			w.Block("if not isinstance(obj, dict):", "", func() {
				w.Line(`raise TypeError(f"%s: expected an object, got {type(obj).__name__}")`, nt.Name)
			})
			if len(ordered) == 0 {
				w.Line("return %s()", nt.Name)
				return
			}
			w.Block(fmt.Sprintf("return %s(", nt.Name), ")", func() {
				for _, f := range ordered {
					src := fmt.Sprintf("obj[%s]", quote(f.Key))
					if f.Optional() {
						src = fmt.Sprintf("obj.get(%s)", quote(f.Key))
					}
					w.Line("%s=%s,", f.Ident, e.decode(f.Type, src, 0))
				}
			})
		})
		w.Blank()

		w.Block("def to_dict(self) -> Any:", "", func() {
			if wrapped {
				f := nt.Fields[0]
				w.Line("return %s", e.encode(f.Type, "self."+f.Ident, 0))
				return
			}
			w.Line("result: dict = {}")
			for _, f := range nt.Fields {
				if f.Optional() {
					w.Block(fmt.Sprintf("if self.%s is not None:", f.Ident), "", func() {
						w.Line("result[%s] = %s", quote(f.Key), e.encode(f.Type.Elem, "self."+f.Ident, 0))
					})
					continue
				}
				w.Line("result[%s] = %s", quote(f.Key), e.encode(f.Type, "self."+f.Ident, 0))
			}
			w.Line("return result")
		})
		w.Blank()

		w.Line("@staticmethod")
		w.Block(fmt.Sprintf("def from_json(text: str) -> %s:", nt.Name), "", func() {
			w.Line("return %s.from_dict(json.loads(text))", nt.Name)
		})
		w.Blank()
		w.Block("def to_json(self) -> str:", "", func() {
			w.Line("return json.dumps(self.to_dict())")
		})
	})
}

func (e *emitter) pyType(t *models.TypeNode) string {
	switch t.Kind {
	case models.IntType:
		return "int"
	case models.DoubleType:
		return "float"
	case models.BoolType:
		return "bool"
	case models.StringType:
		return "str"
	case models.ArrayType:
		return "List[" + e.pyType(t.Elem) + "]"
	case models.OptionalType:
		return "Optional[" + e.pyType(t.Elem) + "]"
	case models.ObjectType:
		return e.reg.NameOf(t)
	}
	return "Any"
}

// decode converts the JSON value src into t. depth names comprehension
// variables so nested arrays do not shadow each other.
func (e *emitter) decode(t *models.TypeNode, src string, depth int) string {
	switch t.Kind {
	case models.IntType:
		return "int(" + src + ")"
	case models.DoubleType:
		return "float(" + src + ")"
	case models.BoolType:
		return "bool(" + src + ")"
	case models.StringType:
		return "str(" + src + ")"
	case models.ObjectType:
		return e.reg.NameOf(t) + ".from_dict(" + src + ")"
	case models.ArrayType:
		v := fmt.Sprintf("x%d", depth)
		inner := e.decode(t.Elem, v, depth+1)
		if inner == v {
			return "list(" + src + ")"
		}
		return fmt.Sprintf("[%s for %s in %s]", inner, v, src)
	case models.OptionalType:
		inner := e.decode(t.Elem, src, depth)
		if inner == src {
			return src
		}
		return fmt.Sprintf("None if %s is None else %s", src, inner)
	}
	return src
}

func (e *emitter) encode(t *models.TypeNode, src string, depth int) string {
	switch t.Kind {
	case models.ObjectType:
		return src + ".to_dict()"
	case models.ArrayType:
		v := fmt.Sprintf("x%d", depth)
		inner := e.encode(t.Elem, v, depth+1)
		if inner == v {
			return "list(" + src + ")"
		}
		return fmt.Sprintf("[%s for %s in %s]", inner, v, src)
	case models.OptionalType:
		inner := e.encode(t.Elem, src, depth)
		if inner == src {
			return src
		}
		return fmt.Sprintf("None if %s is None else %s", src, inner)
	}
	return src
}

// quote renders a Python string literal.
func quote(s string) string {
	return generator.Quote(s, generator.OctalEscape)
}

package rust

import (
	"fmt"
	"strings"

	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

const defaultIndent = "    "

var keywords = naming.Keywords(
	"as", "async", "await", "break", "const", "continue", "crate", "dyn",
	"else", "enum", "extern", "false", "fn", "for", "if", "impl", "in", "let",
	"loop", "match", "mod", "move", "mut", "pub", "ref", "return", "self",
	"Self", "static", "struct", "super", "trait", "true", "type", "unsafe",
	"use", "where", "while", "abstract", "become", "box", "do", "final",
	"macro", "override", "priv", "typeof", "unsized", "virtual", "yield", "try",
)

var rules = naming.Rules{
	FieldCase: naming.SnakeCase,
	Keywords:  keywords,
	ReservedTypes: []string{
		"String", "Vec", "Option", "Result", "Box", "Some", "None", "Ok", "Err",
		"Serialize", "Deserialize",
	},
}

const derive = "#[derive(Debug, Clone, PartialEq, Serialize, Deserialize)]"

// Backend emits serde structs, with untagged enums for unions.
type Backend struct{}

// New creates a Rust backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Language() string      { return "rust" }
func (b *Backend) FileExtension() string { return ".rs" }
func (b *Backend) Rules() naming.Rules   { return rules }

func (b *Backend) Render(reg *naming.Registry, opts generator.Options) (models.Artifact, error) {
	art := generator.NewArtifact(b, reg)
	if opts.SplitFiles {
		art.Warnings = append(art.Warnings, generator.SplitUnsupported("Rust"))
	}

	e := &emitter{reg: reg}
	w := generator.NewWriter(generator.IndentOr(opts, defaultIndent))
	w.Comment("//", generator.HeaderLines(opts)...)
	w.Blank()

	mods := generator.NamespaceParts(opts.Namespace)
	for i := range mods {
		mods[i] = modName(mods[i])
		w.Line("pub mod %s {", mods[i])
		w.Indent()
	}

	w.Line("use serde::{Deserialize, Serialize};")
	for _, nt := range reg.Types {
		w.Blank()
		e.structDecl(w, nt)
	}
	for _, u := range reg.Unions {
		w.Blank()
		e.enumDecl(w, u)
	}
	if reg.RootIsArray {
		root := reg.Root.Name
		fn := naming.Convert(root, naming.SnakeCase)
		w.Blank()
		w.Block(fmt.Sprintf("pub fn %s_list_from_json(text: &str) -> serde_json::Result<Vec<%s>> {", fn, root), "}", func() {
			w.Line("serde_json::from_str(text)")
		})
		w.Blank()
		w.Block(fmt.Sprintf("pub fn %s_list_to_json(items: &[%s]) -> serde_json::Result<String> {", fn, root), "}", func() {
			w.Line("serde_json::to_string(items)")
		})
	}

	for i := len(mods) - 1; i >= 0; i-- {
		w.Dedent()
		w.Line("} // mod %s", mods[i])
	}

	art.Files = []models.File{{Name: generator.FileBase(reg.Root.Name) + ".rs", Content: w.String()}}
	return art, nil
}

type emitter struct {
	reg *naming.Registry
}

func (e *emitter) structDecl(w *generator.Writer, nt *naming.NamedType) {
	wrapped := nt == e.reg.Root && e.reg.RootWrapped

	w.Line("/// %s is the shape found at `%s`.", nt.Name, nt.Node.Path)
	w.Line("%s", derive)
	if wrapped {
		w.Line("#[serde(transparent)]")
	}
	w.Block(fmt.Sprintf("pub struct %s {", nt.Name), "}", func() {
		for _, f := range nt.Fields {
			var attrs []string
			if !wrapped && f.Ident != f.Key {
				attrs = append(attrs, "rename = "+quote(f.Key))
			}
			if !wrapped && f.Optional() {
				attrs = append(attrs, "default", `skip_serializing_if = "Option::is_none"`)
			}
			if len(attrs) > 0 {
				w.Line("#[serde(%s)]", strings.Join(attrs, ", "))
			}
			w.Line("pub %s: %s,", f.Ident, e.rustType(f.Type))
		}
	})
	w.Blank()
	w.Block(fmt.Sprintf("impl %s {", nt.Name), "}", func() {
		w.Block("pub fn from_json(text: &str) -> serde_json::Result<Self> {", "}", func() {
			w.Line("serde_json::from_str(text)")
		})
		w.Blank()
		w.Block("pub fn to_json(&self) -> serde_json::Result<String> {", "}", func() {
			w.Line("serde_json::to_string(self)")
		})
	})
}

// enumDecl writes a union as an untagged enum. serde tries the variants in
// order, which matches the canonical variant order.
func (e *emitter) enumDecl(w *generator.Writer, u *naming.NamedUnion) {
	w.Line("/// %s holds one of: %s.", u.Name, generator.UnionSummary(u.Node))
	w.Line("%s", derive)
	w.Line("#[serde(untagged)]")
	w.Block(fmt.Sprintf("pub enum %s {", u.Name), "}", func() {
		for i, v := range u.Node.Variants {
			w.Line("%s(%s),", naming.VariantName(v, i), e.rustType(v))
		}
	})
}

func (e *emitter) rustType(t *models.TypeNode) string {
	switch t.Kind {
	case models.IntType:
		return "i64"
	case models.DoubleType:
		return "f64"
	case models.BoolType:
		return "bool"
	case models.StringType:
		return "String"
	case models.ArrayType:
		return "Vec<" + e.rustType(t.Elem) + ">"
	case models.OptionalType:
		return "Option<" + e.rustType(t.Elem) + ">"
	case models.ObjectType, models.UnionType:
		return e.reg.NameOf(t)
	}
	return "serde_json::Value"
}

func quote(s string) string {
	return generator.Quote(s, generator.RustEscape)
}

// modName keeps lower-case segments as given, so "v1" is not split into "v_1".
func modName(seg string) string {
	if seg == strings.ToLower(seg) {
		return rules.Escape(seg)
	}
	return rules.Escape(naming.Convert(seg, naming.SnakeCase))
}

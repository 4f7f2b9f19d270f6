package typescript

import (
	"fmt"
	"strings"

	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

const defaultIndent = "  "

var rules = naming.Rules{
	FieldCase: naming.CamelCase,
	ReservedTypes: []string{
		"Array", "Record", "Object", "String", "Number", "Boolean", "Symbol",
		"Date", "Map", "Set", "Promise", "Error", "TypeError", "JSON", "Math",
		"Function", "Partial", "Required", "Readonly", "Pick", "Omit",
	},
}

// Backend emits TypeScript interfaces with decode and encode functions
// that translate between JSON keys and property names.
type Backend struct{}

// New creates a TypeScript backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Language() string      { return "typescript" }
func (b *Backend) FileExtension() string { return ".ts" }
func (b *Backend) Rules() naming.Rules   { return rules }

func (b *Backend) Render(reg *naming.Registry, opts generator.Options) (models.Artifact, error) {
	art := generator.NewArtifact(b, reg)
	if opts.SplitFiles {
		art.Warnings = append(art.Warnings, generator.SplitUnsupported("TypeScript"))
	}

	e := &emitter{reg: reg}
	w := generator.NewWriter(generator.IndentOr(opts, defaultIndent))
	w.Comment("//", generator.HeaderLines(opts)...)
	w.Blank()

	body := func() {
		e.declarations(w)
		w.Blank()
		e.helpers(w)
		for _, nt := range reg.Types {
			w.Blank()
			e.decoder(w, nt)
			w.Blank()
			e.encoder(w, nt)
		}
		e.entryPoints(w)
	}

	if ns := strings.Join(generator.NamespaceParts(opts.Namespace), "."); ns != "" {
		w.Block(fmt.Sprintf("export namespace %s {", ns), "}", body)
	} else {
		body()
	}

	art.Files = []models.File{{Name: generator.FileBase(reg.Root.Name) + ".ts", Content: w.String()}}
	return art, nil
}

type emitter struct {
	reg *naming.Registry
}

func (e *emitter) declarations(w *generator.Writer) {
	for i, nt := range e.reg.Types {
		if i > 0 {
			w.Blank()
		}
		w.Line("/** %s is the shape found at %s. */", nt.Name, nt.Node.Path)
		w.Block(fmt.Sprintf("export interface %s {", nt.Name), "}", func() {
			for _, f := range nt.Fields {
				if f.Optional() {
					w.Line("%s?: %s;", f.Ident, e.tsType(f.Type))
					continue
				}
				w.Line("%s: %s;", f.Ident, e.tsType(f.Type))
			}
		})
	}
	for _, u := range e.reg.Unions {
		w.Blank()
		parts := make([]string, len(u.Node.Variants))
		for i, v := range u.Node.Variants {
			parts[i] = e.tsType(v)
		}
		w.Line("export type %s = %s;", u.Name, strings.Join(parts, " | "))
	}
}

func (e *emitter) helpers(w *generator.Writer) {
	w.Block("function isRecord(value: unknown): value is Record<string, unknown> {", "}", func() {
		w.Line(`return typeof value === "object" && value !== null && !Array.isArray(value);`)
	})
	w.Blank()
	w.Block("function asRecord(value: unknown, what: string): Record<string, unknown> {", "}", func() {
		w.Block("if (!isRecord(value)) {", "}", func() {
			w.Line("throw new TypeError(`${what}: expected an object`);")
		})
		w.Line("return value;")
	})
}

func (e *emitter) decoder(w *generator.Writer, nt *naming.NamedType) {
	w.Block(fmt.Sprintf("export function decode%s(value: unknown): %s {", nt.Name, nt.Name), "}", func() {
		if nt == e.reg.Root && e.reg.RootWrapped {
			f := nt.Fields[0]
			w.Line("return { %s: %s };", f.Ident, e.decode(f.Type, "value", 0))
			return
		}
		w.Line("const obj = asRecord(value, %s);", quote(nt.Name))
		w.Block("return {", "};", func() {
			for _, f := range nt.Fields {
				w.Line("%s: %s,", f.Ident, e.decode(f.Type, fmt.Sprintf("obj[%s]", quote(f.Key)), 0))
			}
		})
	})
}

func (e *emitter) encoder(w *generator.Writer, nt *naming.NamedType) {
	if nt == e.reg.Root && e.reg.RootWrapped {
		w.Block(fmt.Sprintf("export function encode%s(value: %s): unknown {", nt.Name, nt.Name), "}", func() {
			f := nt.Fields[0]
			w.Line("return %s;", e.encode(f.Type, "value."+f.Ident, 0))
		})
		return
	}
	w.Block(fmt.Sprintf("export function encode%s(value: %s): Record<string, unknown> {", nt.Name, nt.Name), "}", func() {
		w.Line("const out: Record<string, unknown> = {};")
		for _, f := range nt.Fields {
			src := "value." + f.Ident
			if f.Optional() {
				w.Block(fmt.Sprintf("if (%s != null) {", src), "}", func() {
					w.Line("out[%s] = %s;", quote(f.Key), e.encode(f.Type.Elem, src, 0))
				})
				continue
			}
			w.Line("out[%s] = %s;", quote(f.Key), e.encode(f.Type, src, 0))
		}
		w.Line("return out;")
	})
}

func (e *emitter) entryPoints(w *generator.Writer) {
	root := e.reg.Root.Name
	w.Blank()
	w.Block(fmt.Sprintf("export function parse%s(text: string): %s {", root, root), "}", func() {
		w.Line("return decode%s(JSON.parse(text));", root)
	})
	w.Blank()
	w.Block(fmt.Sprintf("export function stringify%s(value: %s): string {", root, root), "}", func() {
		w.Line("return JSON.stringify(encode%s(value));", root)
	})
	if !e.reg.RootIsArray {
		return
	}
	w.Blank()
	w.Block(fmt.Sprintf("export function parse%sList(text: string): %s[] {", root, root), "}", func() {
		w.Line("const items: unknown = JSON.parse(text);")
		w.Block("if (!Array.isArray(items)) {", "}", func() {
			w.Line(`throw new TypeError("%s list: expected an array");`, root)
		})
		w.Line("return items.map((item) => decode%s(item));", root)
	})
	w.Blank()
	w.Block(fmt.Sprintf("export function stringify%sList(values: %s[]): string {", root, root), "}", func() {
		w.Line("return JSON.stringify(values.map((item) => encode%s(item)));", root)
	})
}

func (e *emitter) tsType(t *models.TypeNode) string {
	switch t.Kind {
	case models.IntType, models.DoubleType:
		return "number"
	case models.BoolType:
		return "boolean"
	case models.StringType:
		return "string"
	case models.ArrayType:
		if t.Elem.Kind == models.OptionalType {
			return "Array<" + e.tsType(t.Elem) + ">"
		}
		return e.tsType(t.Elem) + "[]"
	case models.OptionalType:
		return e.tsType(t.Elem) + " | null"
	case models.ObjectType, models.UnionType:
		return e.reg.NameOf(t)
	}
	return "unknown"
}

// converts reports whether values of t hold an object somewhere, so their
// keys have to be translated.
func converts(t *models.TypeNode) bool {
	switch t.Kind {
	case models.ObjectType:
		return true
	case models.ArrayType, models.OptionalType:
		return converts(t.Elem)
	case models.UnionType:
		for _, v := range t.Variants {
			if converts(v) {
				return true
			}
		}
	}
	return false
}

func (e *emitter) decode(t *models.TypeNode, src string, depth int) string {
	if !converts(t) {
		switch t.Kind {
		case models.AnyType:
			return src
		case models.OptionalType:
			// A missing key reads as undefined.
			return fmt.Sprintf("(%s ?? null) as %s", src, e.tsType(t))
		}
		return fmt.Sprintf("%s as %s", src, e.tsType(t))
	}
	switch t.Kind {
	case models.ObjectType:
		return fmt.Sprintf("decode%s(%s)", e.reg.NameOf(t), src)
	case models.ArrayType:
		v := fmt.Sprintf("x%d", depth)
		return fmt.Sprintf("(%s as unknown[]).map((%s) => %s)", src, v, e.decode(t.Elem, v, depth+1))
	case models.OptionalType:
		return fmt.Sprintf("%s == null ? null : %s", src, e.decode(t.Elem, src, depth))
	}
	return e.union(t, src, depth, e.decode)
}

func (e *emitter) encode(t *models.TypeNode, src string, depth int) string {
	if !converts(t) {
		return src
	}
	switch t.Kind {
	case models.ObjectType:
		return fmt.Sprintf("encode%s(%s)", e.reg.NameOf(t), src)
	case models.ArrayType:
		v := fmt.Sprintf("x%d", depth)
		return fmt.Sprintf("%s.map((%s) => %s)", src, v, e.encode(t.Elem, v, depth+1))
	case models.OptionalType:
		return fmt.Sprintf("%s == null ? null : %s", src, e.encode(t.Elem, src, depth))
	}
	return e.union(t, src, depth, e.encode)
}

// union dispatches on the runtime shape of src. At most one variant is an
// object and one an array.
func (e *emitter) union(t *models.TypeNode, src string, depth int, conv func(*models.TypeNode, string, int) string) string {
	out := fmt.Sprintf("(%s as %s)", src, e.reg.NameOf(t))
	for i := len(t.Variants) - 1; i >= 0; i-- {
		v := t.Variants[i]
		if !converts(v) {
			continue
		}
		cast := fmt.Sprintf("(%s as %s)", src, e.tsType(v))
		switch v.Kind {
		case models.ObjectType:
			out = fmt.Sprintf("isRecord(%s) ? %s : %s", src, conv(v, cast, depth), out)
		case models.ArrayType:
			out = fmt.Sprintf("Array.isArray(%s) ? %s : %s", src, conv(v, cast, depth), out)
		}
	}
	return "(" + out + ")"
}

func quote(s string) string {
	return generator.Quote(s, generator.UnicodeEscape)
}

package golang

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mcncl/polytyper/internal/formatter"
	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

// DefaultPackage is used when the request names no namespace.
const DefaultPackage = "main"

var keywords = naming.Keywords(
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
)

var rules = naming.Rules{FieldCase: naming.PascalCase, Keywords: keywords}

// Backend emits Go structs with encoding/json tags.
type Backend struct {
	formatter *formatter.Formatter
}

// New creates a Go backend.
func New() *Backend {
	return &Backend{formatter: formatter.NewFormatter()}
}

func (b *Backend) Language() string      { return "go" }
func (b *Backend) FileExtension() string { return ".go" }
func (b *Backend) Rules() naming.Rules   { return rules }

// Render writes the declarations and their codec functions. Split output
// puts them into <root>_types.go and <root>_codec.go.
func (b *Backend) Render(reg *naming.Registry, opts generator.Options) (models.Artifact, error) {
	art := generator.NewArtifact(b, reg)
	if opts.Indent != "" && opts.Indent != "\t" {
		art.Warnings = append(art.Warnings, models.Warning{
			Code:    models.WarnUnsupportedFeature,
			Message: "Go output is gofmt formatted; custom indentation ignored",
		})
	}

	e := &emitter{reg: reg, pkg: packageName(opts.Namespace), header: generator.HeaderLines(opts)}

	types := e.declarations()
	codec, err := e.codec()
	if err != nil {
		return art, err
	}
	art.Warnings = append(art.Warnings, e.warnings...)

	base := generator.FileBase(reg.Root.Name)
	var files []models.File
	if opts.SplitFiles {
		files = []models.File{
			{Name: base + "_types.go", Content: e.file("", types)},
			{Name: base + "_codec.go", Content: e.file(`"encoding/json"`, codec)},
		}
	} else {
		files = []models.File{{Name: base + ".go", Content: e.file(`"encoding/json"`, types+"\n"+codec)}}
	}

	for _, f := range files {
		formatted, err := b.formatter.Format(f.Name, f.Content)
		if err != nil {
			return art, err
		}
		art.Files = append(art.Files, models.File{Name: f.Name, Content: formatted})
	}
	return art, nil
}

type emitter struct {
	reg      *naming.Registry
	pkg      string
	header   []string
	warnings []models.Warning
}

func (e *emitter) file(imp, body string) string {
	w := generator.NewWriter("\t")
	w.Comment("//", e.header...)
	w.Blank()
	w.Line("package %s", e.pkg)
	w.Blank()
	if imp != "" {
		w.Line("import %s", imp)
		w.Blank()
	}
	return w.String() + body
}

func (e *emitter) declarations() string {
	w := generator.NewWriter("\t")
	for i, nt := range e.reg.Types {
		if i > 0 {
			w.Blank()
		}
		e.structDecl(w, nt)
	}
	return w.String()
}

func (e *emitter) structDecl(w *generator.Writer, nt *naming.NamedType) {
	w.Line("// %s is the shape found at %s.", nt.Name, nt.Node.Path)
	w.Block(fmt.Sprintf("type %s struct {", nt.Name), "}", func() {
		for _, f := range nt.Fields {
			line := fmt.Sprintf("%s %s `json:\"%s\"`", f.Ident, e.goType(f.Type), e.tag(nt, f))
			if u := generator.UnionIn(f.Type); u != nil {
				line += " // one of: " + generator.VariantSummary(e.reg, u)
				e.warnings = append(e.warnings, generator.DegradedUnion(nt.Name, f.Key, u, "any"))
			}
			w.Line("%s", line)
		}
	})
}

func (e *emitter) tag(nt *naming.NamedType, f naming.NamedField) string {
	if !validTagName(f.Key) {
		e.warnings = append(e.warnings, models.Warning{
			Code:    models.WarnUnsupportedFeature,
			Path:    nt.Name + "." + f.Ident,
			Message: fmt.Sprintf("key %q cannot be expressed in a struct tag; field is not serialized", f.Key),
		})
		return "-"
	}
	name := f.Key
	if name == "-" {
		name = "-,"
	}
	if f.Optional() {
		if name == "-," {
			return "-,omitempty"
		}
		return name + ",omitempty"
	}
	return name
}

func (e *emitter) goType(t *models.TypeNode) string {
	switch t.Kind {
	case models.IntType:
		return "int64"
	case models.DoubleType:
		return "float64"
	case models.BoolType:
		return "bool"
	case models.StringType:
		return "string"
	case models.ArrayType:
		return "[]" + e.goType(t.Elem)
	case models.ObjectType:
		return e.reg.NameOf(t)
	case models.OptionalType:
		inner := e.goType(t.Elem)
		if inner == "any" {
			return inner
		}
		return "*" + inner
	}
	return "any"
}

func (e *emitter) codec() (string, error) {
	w := generator.NewWriter("\t")
	for i, nt := range e.reg.Types {
		if i > 0 {
			w.Blank()
		}
		target := "&v"
		value := "v"
		if nt == e.reg.Root && e.reg.RootWrapped {
			target = "&v." + nt.Fields[0].Ident
			value = "v." + nt.Fields[0].Ident
		}
		if err := e.pair(w, nt.Name, nt.Name, target, value); err != nil {
			return "", err
		}
	}

	if e.reg.RootIsArray {
		name := e.reg.Root.Name
		list, err := e.reg.Reserve(name + "List")
		if err != nil {
			return "", err
		}
		w.Blank()
		if err := e.pair(w, list, "[]"+name, "&v", "v"); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

// pair writes the Unmarshal and Marshal functions for one type.
func (e *emitter) pair(w *generator.Writer, name, typ, target, value string) error {
	unmarshal, err := e.reg.Reserve("Unmarshal" + name)
	if err != nil {
		return err
	}
	marshal, err := e.reg.Reserve("Marshal" + name)
	if err != nil {
		return err
	}

	w.Line("// %s decodes a %s from JSON. Unknown keys are ignored.", unmarshal, typ)
	w.Block(fmt.Sprintf("func %s(data []byte) (%s, error) {", unmarshal, typ), "}", func() {
		w.Line("var v %s", typ)
		w.Line("err := json.Unmarshal(data, %s)", target)
		w.Line("return v, err")
	})
	w.Blank()
	w.Line("// %s encodes v as JSON.", marshal)
	w.Block(fmt.Sprintf("func %s(v %s) ([]byte, error) {", marshal, typ), "}", func() {
		w.Line("return json.Marshal(%s)", value)
	})
	return nil
}

func packageName(ns string) string {
	parts := generator.NamespaceParts(ns)
	if len(parts) == 0 {
		return DefaultPackage
	}
	pkg := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(parts[len(parts)-1]))
	pkg = strings.TrimLeftFunc(pkg, unicode.IsDigit)
	if pkg == "" {
		return DefaultPackage
	}
	if keywords[pkg] {
		pkg += "pkg"
	}
	return pkg
}

// validTagName mirrors the key names encoding/json accepts in a tag.
func validTagName(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case strings.ContainsRune("!#$%&()*+-./:;<=>?@[]^_{|}~ ", c):
		case !unicode.IsLetter(c) && !unicode.IsDigit(c):
			return false
		}
	}
	return true
}

package java

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

const defaultIndent = "    "

var keywords = naming.Keywords(
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while", "true", "false", "null",
	"var", "record", "yield", "_",
)

var rules = naming.Rules{
	FieldCase: naming.CamelCase,
	Keywords:  keywords,
	ReservedTypes: []string{
		"Object", "String", "Long", "Double", "Boolean", "Integer", "Number",
		"List", "Map", "Class", "System", "Math", "Override",
		"ObjectMapper", "TypeReference", "JsonProcessingException",
		"JsonProperty", "JsonInclude", "JsonIgnoreProperties", "JsonValue", "JsonCreator",
	},
}

const (
	importCreator    = "com.fasterxml.jackson.annotation.JsonCreator"
	importIgnore     = "com.fasterxml.jackson.annotation.JsonIgnoreProperties"
	importInclude    = "com.fasterxml.jackson.annotation.JsonInclude"
	importProperty   = "com.fasterxml.jackson.annotation.JsonProperty"
	importValue      = "com.fasterxml.jackson.annotation.JsonValue"
	importProcessing = "com.fasterxml.jackson.core.JsonProcessingException"
	importTypeRef    = "com.fasterxml.jackson.core.type.TypeReference"
	importMapper     = "com.fasterxml.jackson.databind.ObjectMapper"
	importList       = "java.util.List"
)

// Backend emits Jackson-annotated Java classes: a public root class with
// every other type nested as a static member class, or one file per class
// when splitting.
type Backend struct{}

// New creates a Java backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Language() string      { return "java" }
func (b *Backend) FileExtension() string { return ".java" }
func (b *Backend) Rules() naming.Rules   { return rules }

func (b *Backend) Render(reg *naming.Registry, opts generator.Options) (models.Artifact, error) {
	art := generator.NewArtifact(b, reg)
	e := &emitter{
		reg:    reg,
		indent: generator.IndentOr(opts, defaultIndent),
		header: generator.HeaderLines(opts),
		pkg:    strings.Join(generator.NamespaceParts(opts.Namespace), "."),
	}

	if !opts.SplitFiles {
		w := generator.NewWriter(e.indent)
		body := generator.NewWriter(e.indent)
		imports := map[string]bool{}
		e.class(body, reg.Root, "public class", true, reg.Types[1:], imports)
		e.preamble(w, imports)
		art.Files = []models.File{{Name: reg.Root.Name + ".java", Content: w.String() + body.String()}}
		art.Warnings = e.warnings
		return art, nil
	}

	for _, nt := range reg.Types {
		w := generator.NewWriter(e.indent)
		body := generator.NewWriter(e.indent)
		imports := map[string]bool{}
		e.class(body, nt, "public class", true, nil, imports)
		e.preamble(w, imports)
		art.Files = append(art.Files, models.File{Name: nt.Name + ".java", Content: w.String() + body.String()})
	}
	art.Warnings = e.warnings
	return art, nil
}

type emitter struct {
	reg      *naming.Registry
	indent   string
	header   []string
	pkg      string
	warnings []models.Warning
}

func (e *emitter) preamble(w *generator.Writer, imports map[string]bool) {
	w.Comment("//", e.header...)
	w.Blank()
	if e.pkg != "" {
		w.Line("package %s;", e.pkg)
		w.Blank()
	}
	names := make([]string, 0, len(imports))
	for imp := range imports {
		names = append(names, imp)
	}
	sort.Strings(names)
	for _, imp := range names {
		w.Line("import %s;", imp)
	}
	w.Blank()
}

// class writes nt and declares nested as its static member classes. Only a
// top-level class owns the ObjectMapper.
func (e *emitter) class(w *generator.Writer, nt *naming.NamedType, decl string, topLevel bool, nested []*naming.NamedType, imports map[string]bool) {
	imports[importProcessing] = true
	wrapped := nt == e.reg.Root && e.reg.RootWrapped

	if !wrapped {
		imports[importIgnore] = true
		w.Line("@JsonIgnoreProperties(ignoreUnknown = true)")
	}
	w.Block(fmt.Sprintf("%s %s {", decl, nt.Name), "}", func() {
		if topLevel {
			imports[importMapper] = true
			w.Line("private static final ObjectMapper MAPPER = new ObjectMapper();")
			w.Blank()
		}

		if wrapped {
			e.wrappedValue(w, nt, imports)
		} else {
			for _, f := range nt.Fields {
				e.field(w, nt, f, imports)
			}
		}

		w.Block(fmt.Sprintf("public static %s fromJson(String json) throws JsonProcessingException {", nt.Name), "}", func() {
			w.Line("return MAPPER.readValue(json, %s.class);", nt.Name)
		})
		w.Blank()
		w.Block("public String toJson() throws JsonProcessingException {", "}", func() {
			w.Line("return MAPPER.writeValueAsString(this);")
		})

		if nt == e.reg.Root && e.reg.RootIsArray {
			imports[importTypeRef] = true
			imports[importList] = true
			w.Blank()
			w.Block(fmt.Sprintf("public static List<%s> fromJsonList(String json) throws JsonProcessingException {", nt.Name), "}", func() {
				w.Line("return MAPPER.readValue(json, new TypeReference<List<%s>>() {});", nt.Name)
			})
			w.Blank()
			w.Block(fmt.Sprintf("public static String toJsonList(List<%s> items) throws JsonProcessingException {", nt.Name), "}", func() {
				w.Line("return MAPPER.writeValueAsString(items);")
			})
		}

		for _, child := range nested {
			w.Blank()
			e.class(w, child, "public static class", false, nil, imports)
		}
	})
}

func (e *emitter) field(w *generator.Writer, nt *naming.NamedType, f naming.NamedField, imports map[string]bool) {
	imports[importProperty] = true
	w.Line("@JsonProperty(%s)", generator.Quote(f.Key, generator.OctalEscape))
	if f.Optional() {
		imports[importInclude] = true
		w.Line("@JsonInclude(JsonInclude.Include.NON_NULL)")
	}
	if u := generator.UnionIn(f.Type); u != nil {
		w.Line("// one of: %s", generator.VariantSummary(e.reg, u))
		e.warnings = append(e.warnings, generator.DegradedUnion(nt.Name, f.Key, u, "Object"))
	}
	w.Line("public %s %s;", e.javaType(f.Type, f.Optional(), imports), f.Ident)
	w.Blank()
}

// wrappedValue writes the single value of a root that is not an object,
// delegating (de)serialization to it.
func (e *emitter) wrappedValue(w *generator.Writer, nt *naming.NamedType, imports map[string]bool) {
	imports[importValue] = true
	imports[importCreator] = true
	f := nt.Fields[0]
	typ := e.javaType(f.Type, true, imports)
	if u := generator.UnionIn(f.Type); u != nil {
		w.Line("// one of: %s", generator.VariantSummary(e.reg, u))
		e.warnings = append(e.warnings, generator.DegradedUnion(nt.Name, f.Key, u, "Object"))
	}
	w.Line("@JsonValue")
	w.Line("public %s %s;", typ, f.Ident)
	w.Blank()
	w.Line("public %s() {}", nt.Name)
	w.Blank()
	w.Line("@JsonCreator(mode = JsonCreator.Mode.DELEGATING)")
	w.Block(fmt.Sprintf("public %s(%s %s) {", nt.Name, typ, f.Ident), "}", func() {
		w.Line("this.%s = %s;", f.Ident, f.Ident)
	})
	w.Blank()
}

// javaType maps t to a Java type. Boxed types are used where null must be
// representable.
func (e *emitter) javaType(t *models.TypeNode, boxed bool, imports map[string]bool) string {
	switch t.Kind {
	case models.OptionalType:
		return e.javaType(t.Elem, true, imports)
	case models.IntType:
		if boxed {
			return "Long"
		}
		return "long"
	case models.DoubleType:
		if boxed {
			return "Double"
		}
		return "double"
	case models.BoolType:
		if boxed {
			return "Boolean"
		}
		return "boolean"
	case models.StringType:
		return "String"
	case models.ArrayType:
		imports[importList] = true
		return "List<" + e.javaType(t.Elem, true, imports) + ">"
	case models.ObjectType:
		return e.reg.NameOf(t)
	}
	return "Object"
}

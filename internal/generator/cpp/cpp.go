package cpp

import (
	"fmt"
	"strings"

	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

const (
	defaultIndent = "    "
	jsonType      = "nlohmann::json"
	detailNS      = "polytyper_detail"
)

var keywords = naming.Keywords(
	"alignas", "alignof", "and", "and_eq", "asm", "auto", "bitand", "bitor",
	"bool", "break", "case", "catch", "char", "char8_t", "char16_t", "char32_t",
	"class", "compl", "concept", "const", "consteval", "constexpr", "constinit",
	"const_cast", "continue", "co_await", "co_return", "co_yield", "decltype",
	"default", "delete", "do", "double", "dynamic_cast", "else", "enum",
	"explicit", "export", "extern", "false", "float", "for", "friend", "goto",
	"if", "inline", "int", "long", "mutable", "namespace", "new", "noexcept",
	"not", "not_eq", "nullptr", "operator", "or", "or_eq", "private",
	"protected", "public", "register", "reinterpret_cast", "requires", "return",
	"short", "signed", "sizeof", "static", "static_assert", "static_cast",
	"struct", "switch", "template", "this", "thread_local", "throw", "true",
	"try", "typedef", "typeid", "typename", "union", "unsigned", "using",
	"virtual", "void", "volatile", "wchar_t", "while", "xor", "xor_eq",
)

var rules = naming.Rules{FieldCase: naming.SnakeCase, Keywords: keywords}

// Backend emits C++17 structs with nlohmann::json conversions.
type Backend struct{}

// New creates a C++ backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Language() string      { return "cpp" }
func (b *Backend) FileExtension() string { return ".hpp" }
func (b *Backend) Rules() naming.Rules   { return rules }

// Render writes a header with every declaration and inline conversion. Split
// output moves the conversion bodies into a matching .cpp file.
func (b *Backend) Render(reg *naming.Registry, opts generator.Options) (models.Artifact, error) {
	art := generator.NewArtifact(b, reg)
	e := &emitter{
		reg:    reg,
		indent: generator.IndentOr(opts, defaultIndent),
		header: generator.HeaderLines(opts),
		ns:     strings.Join(generator.NamespaceParts(opts.Namespace), "::"),
		split:  opts.SplitFiles,
		base:   generator.FileBase(reg.Root.Name),
	}

	art.Files = append(art.Files, models.File{Name: e.base + ".hpp", Content: e.headerFile()})
	if opts.SplitFiles {
		art.Files = append(art.Files, models.File{Name: e.base + ".cpp", Content: e.sourceFile()})
	}
	art.Warnings = e.warnings
	return art, nil
}

type emitter struct {
	reg      *naming.Registry
	indent   string
	header   []string
	ns       string
	split    bool
	base     string
	warnings []models.Warning
}

func (e *emitter) headerFile() string {
	w := generator.NewWriter(e.indent)
	guard := strings.ToUpper(e.base) + "_HPP"
	w.Comment("//", e.header...)
	w.Blank()
	w.Line("#ifndef %s", guard)
	w.Line("#define %s", guard)
	w.Blank()
	for _, inc := range []string{"<cstdint>", "<optional>", "<string>", "<vector>"} {
		w.Line("#include %s", inc)
	}
	w.Blank()
	w.Line("#include <nlohmann/json.hpp>")
	w.Blank()

	e.namespace(w, func() {
		e.helpers(w)
		for _, nt := range e.reg.DeclarationOrder() {
			e.structDecl(w, nt)
			w.Blank()
		}
		if e.split {
			for _, nt := range e.reg.DeclarationOrder() {
				w.Line("void to_json(%s& j, const %s& v);", jsonType, nt.Name)
				w.Line("void from_json(const %s& j, %s& v);", jsonType, nt.Name)
			}
			w.Blank()
			for _, sig := range e.rootSignatures() {
				w.Line("%s;", sig)
			}
			return
		}
		e.definitions(w, "inline ")
	})

	w.Blank()
	w.Line("#endif // %s", guard)
	return w.String()
}

func (e *emitter) sourceFile() string {
	w := generator.NewWriter(e.indent)
	w.Comment("//", e.header...)
	w.Blank()
	w.Line("#include %q", e.base+".hpp")
	w.Blank()
	e.namespace(w, func() { e.definitions(w, "") })
	return w.String()
}

func (e *emitter) namespace(w *generator.Writer, body func()) {
	if e.ns == "" {
		body()
		return
	}
	w.Line("namespace %s {", e.ns)
	w.Blank()
	body()
	w.Line("} // namespace %s", e.ns)
}

// helpers declares the element converters used for arrays that hold nulls,
// which nlohmann::json has no built-in mapping for.
func (e *emitter) helpers(w *generator.Writer) {
	w.Block(fmt.Sprintf("namespace %s {", detailNS), "} // namespace "+detailNS, func() {
		w.Line("template <typename T, typename F>")
		w.Block(fmt.Sprintf("std::vector<T> decode_array(const %s& j, F f) {", jsonType), "}", func() {
			w.Line("std::vector<T> out;")
			w.Line("out.reserve(j.size());")
			w.Block("for (const auto& e : j) {", "}", func() {
				w.Line("out.push_back(f(e));")
			})
			w.Line("return out;")
		})
		w.Blank()
		w.Line("template <typename T, typename F>")
		w.Block(fmt.Sprintf("%s encode_array(const std::vector<T>& v, F f) {", jsonType), "}", func() {
			w.Line("%s out = %s::array();", jsonType, jsonType)
			w.Block("for (const auto& e : v) {", "}", func() {
				w.Line("out.push_back(f(e));")
			})
			w.Line("return out;")
		})
		w.Blank()
		w.Line("template <typename T, typename F>")
		w.Block(fmt.Sprintf("std::optional<T> decode_optional(const %s& j, F f) {", jsonType), "}", func() {
			w.Block("if (j.is_null()) {", "}", func() {
				w.Line("return std::nullopt;")
			})
			w.Line("return f(j);")
		})
		w.Blank()
		w.Line("template <typename T, typename F>")
		w.Block(fmt.Sprintf("%s encode_optional(const std::optional<T>& v, F f) {", jsonType), "}", func() {
			w.Block("if (!v) {", "}", func() {
				w.Line("return nullptr;")
			})
			w.Line("return f(*v);")
		})
	})
	w.Blank()
}

func (e *emitter) structDecl(w *generator.Writer, nt *naming.NamedType) {
	w.Line("// %s is the shape found at %s.", nt.Name, nt.Node.Path)
	w.Block(fmt.Sprintf("struct %s {", nt.Name), "};", func() {
		for _, f := range nt.Fields {
			line := fmt.Sprintf("%s %s;", e.cppType(f.Type), f.Ident)
			if u := generator.UnionIn(f.Type); u != nil {
				line += " // one of: " + generator.VariantSummary(e.reg, u)
				e.warnings = append(e.warnings, generator.DegradedUnion(nt.Name, f.Key, u, jsonType))
			}
			w.Line("%s", line)
		}
	})
}

func (e *emitter) definitions(w *generator.Writer, linkage string) {
	for _, nt := range e.reg.DeclarationOrder() {
		wrapped := nt == e.reg.Root && e.reg.RootWrapped

		w.Block(fmt.Sprintf("%svoid to_json(%s& j, const %s& v) {", linkage, jsonType, nt.Name), "}", func() {
			if wrapped {
				f := nt.Fields[0]
				w.Line("j = %s;", e.encode(f.Type, "v."+f.Ident))
				return
			}
			w.Line("j = %s::object();", jsonType)
			for _, f := range nt.Fields {
				key := generator.Quote(f.Key, generator.OctalEscape)
				if f.Optional() {
					w.Block(fmt.Sprintf("if (v.%s) {", f.Ident), "}", func() {
						w.Line("j[%s] = %s;", key, e.encode(f.Type.Elem, "*v."+f.Ident))
					})
					continue
				}
				w.Line("j[%s] = %s;", key, e.encode(f.Type, "v."+f.Ident))
			}
		})
		w.Blank()

		w.Block(fmt.Sprintf("%svoid from_json(const %s& j, %s& v) {", linkage, jsonType, nt.Name), "}", func() {
			if wrapped {
				f := nt.Fields[0]
				w.Line("v.%s = %s;", f.Ident, e.decode(f.Type, "j"))
				return
			}
			for _, f := range nt.Fields {
				key := generator.Quote(f.Key, generator.OctalEscape)
				if f.Optional() {
					w.Block(fmt.Sprintf("if (auto it = j.find(%s); it != j.end() && !it->is_null()) {", key), "", func() {
						w.Line("v.%s = %s;", f.Ident, e.decode(f.Type.Elem, "(*it)"))
					})
					w.Block("} else {", "}", func() {
						w.Line("v.%s = std::nullopt;", f.Ident)
					})
					continue
				}
				w.Line("v.%s = %s;", f.Ident, e.decode(f.Type, fmt.Sprintf("j.at(%s)", key)))
			}
		})
		w.Blank()
	}

	root := e.reg.Root.Name
	sigs := e.rootSignatures()
	bodies := []string{
		fmt.Sprintf("return %s::parse(text).get<%s>();", jsonType, root),
		fmt.Sprintf("return %s(value).dump(indent);", jsonType),
	}
	if e.reg.RootIsArray {
		bodies = append(bodies,
			fmt.Sprintf("return %s::parse(text).get<std::vector<%s>>();", jsonType, root),
			fmt.Sprintf("return %s(values).dump(indent);", jsonType),
		)
	}
	for i, sig := range sigs {
		if e.split {
			sig = strings.Replace(sig, " = -1", "", 1)
		}
		w.Block(linkage+sig+" {", "}", func() {
			w.Line("%s", bodies[i])
		})
		if i < len(sigs)-1 {
			w.Blank()
		}
	}
}

// rootSignatures are the parse and dump entry points for the root type.
func (e *emitter) rootSignatures() []string {
	root := e.reg.Root.Name
	fn := naming.Convert(root, naming.SnakeCase)
	sigs := []string{
		fmt.Sprintf("%s parse_%s(const std::string& text)", root, fn),
		fmt.Sprintf("std::string dump_%s(const %s& value, int indent = -1)", fn, root),
	}
	if e.reg.RootIsArray {
		sigs = append(sigs,
			fmt.Sprintf("std::vector<%s> parse_%s_list(const std::string& text)", root, fn),
			fmt.Sprintf("std::string dump_%s_list(const std::vector<%s>& values, int indent = -1)", fn, root),
		)
	}
	return sigs
}

func (e *emitter) cppType(t *models.TypeNode) string {
	switch t.Kind {
	case models.IntType:
		return "std::int64_t"
	case models.DoubleType:
		return "double"
	case models.BoolType:
		return "bool"
	case models.StringType:
		return "std::string"
	case models.ArrayType:
		return "std::vector<" + e.cppType(t.Elem) + ">"
	case models.OptionalType:
		return "std::optional<" + e.cppType(t.Elem) + ">"
	case models.ObjectType:
		return e.reg.NameOf(t)
	}
	return jsonType
}

// direct reports whether nlohmann::json converts t without help, which is
// the case as long as no null can appear inside an array.
func direct(t *models.TypeNode) bool {
	switch t.Kind {
	case models.OptionalType:
		return false
	case models.ArrayType:
		return direct(t.Elem)
	}
	return true
}

func (e *emitter) decode(t *models.TypeNode, src string) string {
	if direct(t) {
		if t.Kind == models.UnionType || t.Kind == models.AnyType {
			return src
		}
		return fmt.Sprintf("%s.get<%s>()", src, e.cppType(t))
	}
	return fmt.Sprintf("%s(%s)", e.decoder(t), src)
}

func (e *emitter) encode(t *models.TypeNode, src string) string {
	if direct(t) {
		return fmt.Sprintf("%s(%s)", jsonType, src)
	}
	return fmt.Sprintf("%s(%s)", e.encoder(t), src)
}

// decoder returns a callable converting a json value into t.
func (e *emitter) decoder(t *models.TypeNode) string {
	var body string
	switch t.Kind {
	case models.ArrayType:
		body = fmt.Sprintf("%s::decode_array<%s>(e, %s)", detailNS, e.cppType(t.Elem), e.decoder(t.Elem))
	case models.OptionalType:
		body = fmt.Sprintf("%s::decode_optional<%s>(e, %s)", detailNS, e.cppType(t.Elem), e.decoder(t.Elem))
	default:
		body = e.decode(t, "e")
	}
	return fmt.Sprintf("[](const %s& e) { return %s; }", jsonType, body)
}

// encoder returns a callable converting t into a json value.
func (e *emitter) encoder(t *models.TypeNode) string {
	var body string
	switch t.Kind {
	case models.ArrayType:
		body = fmt.Sprintf("%s::encode_array(e, %s)", detailNS, e.encoder(t.Elem))
	case models.OptionalType:
		body = fmt.Sprintf("%s::encode_optional(e, %s)", detailNS, e.encoder(t.Elem))
	default:
		body = e.encode(t, "e")
	}
	return fmt.Sprintf("[](const %s& e) { return %s; }", e.cppType(t), body)
}

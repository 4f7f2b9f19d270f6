package generator

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
)

// DefaultHeader is written at the top of every generated file when the
// request does not provide one.
const DefaultHeader = "Code generated by polytyper. DO NOT EDIT."

// Options are the rendering options shared by all backends.
type Options struct {
	// Namespace is the package, module or namespace the output lives in.
	Namespace  string
	SplitFiles bool
	// Indent is the indentation unit. Empty selects the backend default.
	Indent     string
	FileHeader string
}

// Backend renders a named type registry into source files for one target
// language.
type Backend interface {
	// Language is the canonical target name, e.g. "go" or "rust".
	Language() string
	// FileExtension includes the leading dot.
	FileExtension() string
	// Rules describe valid identifiers for the target.
	Rules() naming.Rules
	Render(reg *naming.Registry, opts Options) (models.Artifact, error)
}

// NewArtifact starts an artifact for reg.
func NewArtifact(b Backend, reg *naming.Registry) models.Artifact {
	return models.Artifact{
		RootTypeName: reg.Root.Name,
		Language:     b.Language(),
		RootIsArray:  reg.RootIsArray,
	}
}

// FileBase is the snake_case base file name for a type name.
func FileBase(typeName string) string {
	base := strcase.ToSnake(typeName)
	if base == "" {
		return "types"
	}
	return base
}

// IndentOr returns the requested indent or def when none was requested.
func IndentOr(opts Options, def string) string {
	if opts.Indent == "" {
		return def
	}
	return opts.Indent
}

// HeaderLines splits the file header into lines, falling back to
// DefaultHeader.
func HeaderLines(opts Options) []string {
	header := opts.FileHeader
	if strings.TrimSpace(header) == "" {
		header = DefaultHeader
	}
	return strings.Split(strings.TrimRight(header, "\n"), "\n")
}

// SplitUnsupported is the warning for targets that always emit one file.
func SplitUnsupported(lang string) models.Warning {
	return models.Warning{
		Code:    models.WarnUnsupportedFeature,
		Message: fmt.Sprintf("%s output is always a single file; split files ignored", lang),
	}
}

// DegradedUnion is the warning emitted when a backend without sum types
// stores a union in an opaque value.
func DegradedUnion(typeName, field string, union *models.TypeNode, repr string) models.Warning {
	return models.Warning{
		Code:    models.WarnDegradedUnion,
		Path:    typeName + "." + field,
		Message: fmt.Sprintf("%s held as %s", UnionSummary(union), repr),
	}
}

// UnionSummary renders the variants of a union, e.g. "int64 | string".
func UnionSummary(union *models.TypeNode) string {
	return summary(union, func(*models.TypeNode) string { return "" })
}

// VariantSummary is UnionSummary with object variants given their registered
// type names, e.g. "string | Mix | array of Item".
func VariantSummary(reg *naming.Registry, union *models.TypeNode) string {
	return summary(union, reg.NameOf)
}

func summary(union *models.TypeNode, nameOf func(*models.TypeNode) string) string {
	u := union.Unwrap()
	if u.Kind != models.UnionType {
		return u.Signature()
	}
	parts := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		switch v.Kind {
		case models.ObjectType:
			parts[i] = "object"
			if name := nameOf(v); name != "" {
				parts[i] = name
			}
		case models.ArrayType:
			parts[i] = "array"
			if elem := v.Elem.Unwrap(); elem.Kind == models.ObjectType && nameOf(elem) != "" {
				parts[i] = "array of " + nameOf(elem)
			}
		default:
			parts[i] = v.Kind.String()
		}
	}
	return strings.Join(parts, " | ")
}

// UnionIn returns the union held by t without crossing into a nested
// object, or nil.
func UnionIn(t *models.TypeNode) *models.TypeNode {
	switch t.Kind {
	case models.UnionType:
		return t
	case models.OptionalType, models.ArrayType:
		return UnionIn(t.Elem)
	}
	return nil
}

// NamespaceParts splits "a.b::c/d" style namespaces into their segments.
func NamespaceParts(ns string) []string {
	return strings.FieldsFunc(ns, func(r rune) bool {
		return r == '.' || r == ':' || r == '/' || r == '\\'
	})
}

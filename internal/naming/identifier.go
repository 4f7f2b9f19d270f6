package naming

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// CaseStyle is the casing convention for generated identifiers.
type CaseStyle int

const (
	PascalCase CaseStyle = iota
	CamelCase
	SnakeCase
)

// Rules describe what a valid identifier looks like in one target language.
type Rules struct {
	FieldCase CaseStyle
	// Keywords are reserved words, matched case-sensitively after casing.
	// A clashing identifier gets KeywordSuffix appended.
	Keywords      map[string]bool
	KeywordSuffix string
	// ReservedTypes are type names the target already uses and that must
	// never be issued.
	ReservedTypes []string
}

// Keywords builds a keyword set.
func Keywords(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Convert applies a case style to a raw key.
func Convert(s string, style CaseStyle) string {
	switch style {
	case CamelCase:
		return strcase.ToLowerCamel(s)
	case SnakeCase:
		return strcase.ToSnake(s)
	default:
		return strcase.ToCamel(s)
	}
}

// TypeName turns a key into a Pascal-cased type name base. Keywords are not
// escaped here: they are reserved in the naming context, so a clash gets a
// counter suffix when the name is issued.
func (r Rules) TypeName(key string) string {
	return sanitize(key, PascalCase, "Type")
}

// FieldName turns a JSON key into a field identifier valid under r.
func (r Rules) FieldName(key string) string {
	return r.escapeKeyword(sanitize(key, r.FieldCase, "field"))
}

// Positional returns the identifier of the n-th field (1-based).
func (r Rules) Positional(n int) string {
	switch r.FieldCase {
	case PascalCase:
		return "Field" + strconv.Itoa(n)
	case SnakeCase:
		return "field_" + strconv.Itoa(n)
	default:
		return "field" + strconv.Itoa(n)
	}
}

// Escape keeps an identifier that was chosen by the user clear of keywords
// and invalid characters without changing its casing.
func (r Rules) Escape(ident string) string {
	ident = clean(ident)
	if ident == "" {
		return r.Positional(1)
	}
	if isDigit(ident[0]) {
		ident = "f" + ident
	}
	return r.escapeKeyword(ident)
}

func sanitize(key string, style CaseStyle, fallback string) string {
	// strcase capitalizes after a leading delimiter: "_id" would be "Id".
	ident := clean(Convert(strings.TrimLeft(key, "_-. "), style))
	if ident == "" {
		ident = Convert(fallback, style)
	}
	// Dropped non-ASCII runes can leave a lower-case head behind.
	if style == PascalCase && ident[0] >= 'a' && ident[0] <= 'z' {
		ident = strings.ToUpper(ident[:1]) + ident[1:]
	}
	if isDigit(ident[0]) {
		if style == PascalCase {
			ident = "F" + ident
		} else {
			ident = "f" + ident
		}
	}
	return ident
}

func (r Rules) escapeKeyword(ident string) string {
	suffix := r.KeywordSuffix
	if suffix == "" {
		suffix = "_"
	}
	for r.Keywords[ident] {
		ident += suffix
	}
	return ident
}

// clean drops everything but ASCII letters, digits and underscores, and
// collapses leading underscores.
func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	return strings.TrimLeft(b.String(), "_")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

package generator

import (
	"fmt"
	"strings"
)

// ControlEscape renders a control character inside a string literal.
type ControlEscape func(r rune) string

// OctalEscape is understood by C, C++, Java and Python. Runes past the
// octal range fall back to \uXXXX, which all four accept too.
func OctalEscape(r rune) string {
	if r > 0xff {
		return UnicodeEscape(r)
	}
	return fmt.Sprintf(`\%03o`, r)
}

// UnicodeEscape is the \uXXXX form used by JavaScript and JSON.
func UnicodeEscape(r rune) string { return fmt.Sprintf(`\u%04x`, r) }

// RustEscape is the \u{X} form.
func RustEscape(r rune) string { return fmt.Sprintf(`\u{%x}`, r) }

// Quote renders s as a double-quoted literal. Quotes, backslashes and the
// common whitespace escapes are shared by every target; other control
// characters go through esc.
func Quote(s string, esc ControlEscape) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f || r == 0x2028 || r == 0x2029 {
				b.WriteString(esc(r))
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

package generator

import (
	"fmt"
	"strings"
)

// Writer accumulates indented source lines.
type Writer struct {
	b      strings.Builder
	unit   string
	level  int
	prefix string
}

// NewWriter returns a Writer that indents with unit.
func NewWriter(unit string) *Writer {
	return &Writer{unit: unit}
}

// Line writes one formatted line at the current indentation. An empty
// format writes a blank line.
func (w *Writer) Line(format string, args ...any) {
	if format == "" {
		w.b.WriteByte('\n')
		return
	}
	w.b.WriteString(w.prefix)
	if len(args) > 0 {
		fmt.Fprintf(&w.b, format, args...)
	} else {
		w.b.WriteString(format)
	}
	w.b.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() { w.b.WriteByte('\n') }

// Comment writes each line of text behind marker.
func (w *Writer) Comment(marker string, lines ...string) {
	for _, l := range lines {
		if l == "" {
			w.Line("%s", strings.TrimRight(marker, " "))
			continue
		}
		w.Line("%s %s", marker, l)
	}
}

// Indent increases the indentation level.
func (w *Writer) Indent() {
	w.level++
	w.prefix = strings.Repeat(w.unit, w.level)
}

// Dedent decreases the indentation level.
func (w *Writer) Dedent() {
	if w.level > 0 {
		w.level--
	}
	w.prefix = strings.Repeat(w.unit, w.level)
}

// Block writes open, runs body one level deeper, then writes close.
func (w *Writer) Block(open, close string, body func()) {
	w.Line("%s", open)
	w.Indent()
	body()
	w.Dedent()
	if close != "" {
		w.Line("%s", close)
	}
}

func (w *Writer) String() string { return w.b.String() }

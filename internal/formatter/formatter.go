package formatter

import (
	"strings"

	"golang.org/x/tools/imports"

	"github.com/mcncl/polytyper/internal/errors"
)

// Formatter is responsible for formatting Go code according to standard conventions
type Formatter struct {
	opts *imports.Options
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{opts: &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	}}
}

// Format gofmts code and sorts its imports, standard library first. The
// file name is only used in error messages.
func (f *Formatter) Format(filename, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := imports.Process(filename, []byte(code), f.opts)
	if err != nil {
		return "", errors.NewFormatError("failed to format generated Go code", err)
	}
	return string(formatted), nil
}

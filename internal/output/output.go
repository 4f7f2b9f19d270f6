// Package output writes generated artifacts to disk or a stream.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/models"
)

// WriteDir writes every file of art into dir, creating dir when needed, and
// returns the written paths in artifact order.
func WriteDir(dir string, art models.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewOutputError(fmt.Sprintf("failed to create directory '%s'", dir), err)
	}
	paths := make([]string, 0, len(art.Files))
	for _, f := range art.Files {
		if f.Name != filepath.Base(f.Name) {
			return nil, errors.NewOutputError(fmt.Sprintf("refusing to write '%s' outside '%s'", f.Name, dir), errors.ErrInvalidFilePath)
		}
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return nil, errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteFile writes a single-file artifact to path. Artifacts with several
// files need WriteDir.
func WriteFile(path string, art models.Artifact) error {
	if len(art.Files) != 1 {
		return errors.NewOutputError(
			fmt.Sprintf("%d files were generated, pass a directory to write them", len(art.Files)),
			errors.ErrInvalidFilePath)
	}
	if err := os.WriteFile(path, []byte(art.Files[0].Content), 0o644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	return nil
}

// Print writes the artifact to w. Several files are separated by a banner
// line carrying the file name.
func Print(w io.Writer, art models.Artifact) error {
	var b strings.Builder
	for i, f := range art.Files {
		if len(art.Files) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "=== %s ===\n", f.Name)
		}
		b.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			b.WriteString("\n")
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.NewOutputError("failed to write generated code", err)
	}
	return nil
}

// Warnings writes one line per warning to w.
func Warnings(w io.Writer, art models.Artifact) {
	for _, warn := range art.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

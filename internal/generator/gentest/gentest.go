// Package gentest builds type registries from JSON text for backend tests.
package gentest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcncl/polytyper/internal/analyzer"
	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
	"github.com/mcncl/polytyper/internal/parser"
)

// Registry analyzes samples and resolves names under b's rules.
func Registry(t *testing.T, b generator.Backend, rootName string, samples ...string) *naming.Registry {
	t.Helper()

	values := make([]models.Value, 0, len(samples))
	for _, s := range samples {
		v, err := parser.ParseString(s)
		require.NoError(t, err)
		values = append(values, v)
	}

	res, err := analyzer.NewAnalyzer(analyzer.Options{}).Analyze(values...)
	require.NoError(t, err)

	reg, err := naming.Resolve(res.Root, naming.Options{
		RootName:    rootName,
		Rules:       b.Rules(),
		Singularize: true,
	})
	require.NoError(t, err)
	reg.RootIsArray = res.RootIsArray
	reg.RootWrapped = res.RootWrapped
	return reg
}

// Render renders samples with b and returns the artifact.
func Render(t *testing.T, b generator.Backend, opts generator.Options, samples ...string) models.Artifact {
	t.Helper()
	art, err := b.Render(Registry(t, b, "Root", samples...), opts)
	require.NoError(t, err)
	require.NotEmpty(t, art.Files)
	return art
}

// Squash collapses every run of whitespace into one space so assertions do
// not depend on alignment.
func Squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Codes lists the warning codes of art in order.
func Codes(art models.Artifact) []string {
	out := make([]string, len(art.Warnings))
	for i, w := range art.Warnings {
		out[i] = w.Code
	}
	return out
}

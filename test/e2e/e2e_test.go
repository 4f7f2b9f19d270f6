package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/polytyper/internal/engine"
	"github.com/mcncl/polytyper/internal/models"
)

const harness = `package main

import (
	"fmt"
	"os"
)

func main() {
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	v, err := Unmarshal%[1]s(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := Marshal%[1]s(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}
`

// roundTrip generates Go code for samples, compiles it with a small harness
// and pipes input through Unmarshal and Marshal. It returns the re-encoded
// JSON.
func roundTrip(t *testing.T, req models.Request, input string) string {
	t.Helper()

	art, err := engine.Generate(req)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, f := range art.Files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f.Name), []byte(f.Content), 0o644))
	}
	entry := art.RootTypeName
	if art.RootIsArray {
		entry += "List"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "harness.go"), []byte(fmt.Sprintf(harness, entry)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module roundtrip\n\ngo 1.24\n"), 0o644))
	inputFile := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(inputFile, []byte(input), 0o644))

	cmd := exec.Command("go", "run", ".", inputFile)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "round trip failed: %s\n%s", stderr.String(), art.Files[0].Content)
	return stdout.String()
}

func requireGo(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping compile test in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not found")
	}
}

func requireSameJSON(t *testing.T, want, got string) {
	t.Helper()
	var w, g interface{}
	require.NoError(t, json.Unmarshal([]byte(want), &w))
	require.NoError(t, json.Unmarshal([]byte(got), &g), got)
	if diff := cmp.Diff(w, g); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEndToEnd_RoundTrip(t *testing.T) {
	requireGo(t)

	tests := []struct {
		name  string
		req   models.Request
		input string
		want  string
	}{
		{
			name:  "scenario A",
			req:   models.Request{RootName: "CppBotConfig"},
			input: `{"id":1,"name":"CppBot","features":["json","docker","mcp"],"meta":{"owner":"lab","ready":true}}`,
		},
		{
			name:  "forward compatible",
			req:   models.Request{RootName: "CppBotConfig", Samples: []string{`{"id":1,"meta":{"owner":"lab"}}`}},
			input: `{"id":2,"meta":{"owner":"ops","added":[1,2]},"extra":{"x":null}}`,
			want:  `{"id":2,"meta":{"owner":"ops"}}`,
		},
		{
			name:  "scenario B",
			req:   models.Request{},
			input: `[{"a":1},{"a":1,"b":"x"}]`,
		},
		{
			name:  "scenario C",
			req:   models.Request{},
			input: `["x", 1]`,
		},
		{
			name: "optionals and nulls",
			req: models.Request{Samples: []string{
				`{"id":1,"note":null,"scores":[1.5,null],"child":{"k":"v"}}`,
				`{"id":2}`,
			}},
			input: `{"id":3,"note":null,"scores":[2,null],"child":{"k":"w"}}`,
			want:  `{"id":3,"scores":[2,null],"child":{"k":"w"}}`,
		},
		{
			name:  "awkward keys",
			req:   models.Request{},
			input: `{"user-id":1,"type":"x","2fa":true,"-":"dash","Ünïcode":"ok"}`,
		},
		{
			name:  "nested arrays",
			req:   models.Request{},
			input: `{"matrix":[[1,2],[3]],"groups":[{"items":[{"id":1}]},{"items":[]}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if len(req.Samples) == 0 {
				req.Samples = []string{tt.input}
			}
			got := roundTrip(t, req, tt.input)
			want := tt.want
			if want == "" {
				want = tt.input
			}
			requireSameJSON(t, want, got)
		})
	}
}

func TestEndToEnd_SplitFilesCompile(t *testing.T) {
	requireGo(t)

	input := `{"id":1,"items":[{"name":"a"}],"meta":{"tags":["x"]}}`
	got := roundTrip(t, models.Request{Samples: []string{input}, SplitFiles: true, RootName: "Order"}, input)
	requireSameJSON(t, input, got)
}

func TestEndToEnd_Samples(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "testdata", "samples", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		sample := string(data)

		t.Run(filepath.Base(path), func(t *testing.T) {
			for _, target := range engine.Targets() {
				art, err := engine.Generate(models.Request{Samples: []string{sample}, Target: target, SplitFiles: true})
				require.NoError(t, err, target)
				require.NotEmpty(t, art.Files, target)
				for _, f := range art.Files {
					require.NotEmpty(t, f.Content, "%s %s", target, f.Name)
				}
			}

			requireGo(t)
			out := roundTrip(t, models.Request{Samples: []string{sample}}, sample)
			require.True(t, json.Valid([]byte(out)), out)
		})
	}
}

func TestEndToEnd_Deterministic(t *testing.T) {
	input := `{"left":{"items":[{"x":1}]},"right":{"items":[{"y":"s"}]},"mixed":[1,"a",{"z":true}]}`
	for _, target := range engine.Targets() {
		t.Run(target, func(t *testing.T) {
			req := models.Request{Samples: []string{input}, Target: target, Namespace: "com.example.api"}
			first, err := engine.Generate(req)
			require.NoError(t, err)
			for i := 0; i < 5; i++ {
				again, err := engine.Generate(req)
				require.NoError(t, err)
				if diff := cmp.Diff(first, again); diff != "" {
					t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
				}
			}
		})
	}
}

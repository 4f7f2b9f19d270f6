package mcptool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/polytyper/internal/engine"
)

func call(t *testing.T, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = ToolName
	req.Params.Arguments = args

	res, err := New(engine.New(nil), nil).Handle(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return text.Text, res.IsError
}

func TestDefinition(t *testing.T) {
	tool := New(engine.New(nil), nil).Definition()
	assert.Equal(t, ToolName, tool.Name)
	for _, arg := range []string{
		"json_text", "json_path", "root_path", "target", "class_name", "package",
		"split_files", "field_naming", "indent", "strict", "output_dir",
	} {
		assert.Contains(t, tool.InputSchema.Properties, arg)
	}
}

func TestHandle_InlineText(t *testing.T) {
	text, isErr := call(t, map[string]any{
		"json_text":  `{"id":1,"meta":{"owner":"lab"}}`,
		"target":     "java",
		"class_name": "Bot",
		"package":    "com.example",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Generated java for Bot\n")
	assert.Contains(t, text, "package com.example;")
	assert.Contains(t, text, "@JsonIgnoreProperties(ignoreUnknown = true)")
	assert.Contains(t, text, "public static class Meta {")
}

func TestHandle_JSONPathAndRootPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":{"items":[{"payload":{"x":1}}]}}`), 0o644))

	text, isErr := call(t, map[string]any{
		"json_path":  path,
		"root_path":  "data.items[0].payload",
		"class_name": "Payload",
		"target":     "python",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "class Payload:")
	assert.Contains(t, text, "    x: int\n")
}

func TestHandle_OutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen")

	text, isErr := call(t, map[string]any{
		"json_text":   `[{"a":1},{"a":2,"b":"x"}]`,
		"target":      "cpp",
		"split_files": true,
		"output_dir":  dir,
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "(the input is a list of Root)")
	assert.Contains(t, text, "wrote "+filepath.Join(dir, "root.hpp"))
	assert.Contains(t, text, "wrote "+filepath.Join(dir, "root.cpp"))

	_, err := os.Stat(filepath.Join(dir, "root.cpp"))
	assert.NoError(t, err)
}

func TestHandle_Warnings(t *testing.T) {
	text, isErr := call(t, map[string]any{"json_text": `["x", 1]`, "target": "typescript", "split_files": true})
	require.False(t, isErr, text)
	assert.Contains(t, text, "warning: unification-conflict")
	assert.Contains(t, text, "warning: unsupported-feature")
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"no input", map[string]any{}, "either json_text or json_path is required"},
		{"both inputs", map[string]any{"json_text": "{}", "json_path": "x.json"}, "mutually exclusive"},
		{"missing file", map[string]any{"json_path": filepath.Join(os.TempDir(), "polytyper-missing.json")}, "Input error"},
		{"bad json", map[string]any{"json_text": `{"a":`}, "JSON parsing error"},
		{"bad target", map[string]any{"json_text": `{}`, "target": "cobol"}, "Unsupported"},
		{"strict", map[string]any{"json_text": `[1, "a"]`, "strict": true}, "Type conflict"},
		{"bad root path", map[string]any{"json_text": `{"a":1}`, "root_path": "b"}, "root_path not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
}

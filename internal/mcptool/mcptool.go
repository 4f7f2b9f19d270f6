// Package mcptool exposes the generator as the json_to_code tool of a Model
// Context Protocol server.
package mcptool

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mcncl/polytyper/internal/engine"
	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/logger"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/output"
	"github.com/mcncl/polytyper/internal/parser"
)

// ToolName is the name clients call.
const ToolName = "json_to_code"

// Tool handles json_to_code calls.
type Tool struct {
	engine *engine.Engine
	log    *zap.SugaredLogger
}

// New creates a Tool backed by eng.
func New(eng *engine.Engine, log *zap.SugaredLogger) *Tool {
	if log == nil {
		log = logger.Nop()
	}
	return &Tool{engine: eng, log: log}
}

// Definition describes the tool arguments.
func (t *Tool) Definition() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Generate typed source code (classes, structs, interfaces or a JSON Schema) "+
			"with JSON encode and decode routines from a sample JSON document"),
		mcp.WithString("json_text",
			mcp.Description("Sample JSON document. Either json_text or json_path is required"),
		),
		mcp.WithString("json_path",
			mcp.Description("Path to a file holding the sample JSON document"),
		),
		mcp.WithString("root_path",
			mcp.Description("Dot/bracket path of the value to type, e.g. data.items[0].payload"),
		),
		mcp.WithString("target",
			mcp.Description("Target language"),
			mcp.Enum(engine.Targets()...),
			mcp.DefaultString(engine.DefaultTarget),
		),
		mcp.WithString("class_name",
			mcp.Description("Name of the root type (default: Root)"),
		),
		mcp.WithString("package",
			mcp.Description("Package or namespace for the generated code"),
		),
		mcp.WithBoolean("split_files",
			mcp.Description("Write declarations and codec into separate files where the target supports it"),
		),
		mcp.WithString("field_naming",
			mcp.Description("preserve derives field names from the keys, positional uses field1, field2, ..."),
			mcp.Enum(string(models.PreserveKeys), string(models.Positional)),
		),
		mcp.WithString("indent",
			mcp.Description("Indentation unit, e.g. two spaces or a tab"),
		),
		mcp.WithBoolean("strict",
			mcp.Description("Fail on conflicting value types instead of emitting a union"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory to write the generated files to. When empty the code is returned inline"),
		),
	)
}

// Register adds the tool to s.
func (t *Tool) Register(s *server.MCPServer) {
	s.AddTool(t.Definition(), t.Handle)
}

// Handle runs one tool call. Generation failures come back as tool errors,
// never as protocol errors.
func (t *Tool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("json_text", "")
	path := request.GetString("json_path", "")
	switch {
	case text == "" && path == "":
		return mcp.NewToolResultError("either json_text or json_path is required"), nil
	case text != "" && path != "":
		return mcp.NewToolResultError("json_text and json_path are mutually exclusive"), nil
	case path != "":
		data, err := parser.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(errors.UserFriendlyError(err)), nil
		}
		text = string(data)
	}

	req := models.Request{
		Samples:     []string{text},
		Target:      request.GetString("target", engine.DefaultTarget),
		RootName:    request.GetString("class_name", ""),
		Namespace:   request.GetString("package", ""),
		SplitFiles:  request.GetBool("split_files", false),
		FieldNaming: models.FieldNaming(request.GetString("field_naming", "")),
		Indent:      request.GetString("indent", ""),
		Strict:      request.GetBool("strict", false),
		RootPath:    request.GetString("root_path", ""),
	}
	t.log.Debugw("tool call", logger.FieldOperation, ToolName, logger.FieldTarget, req.Target)

	art, err := t.engine.Generate(req)
	if err != nil {
		t.log.Debugw("generation failed", logger.FieldError, err)
		return mcp.NewToolResultError(errors.UserFriendlyError(err)), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generated %s for %s", art.Language, art.RootTypeName)
	if art.RootIsArray {
		b.WriteString(" (the input is a list of " + art.RootTypeName + ")")
	}
	b.WriteString("\n")
	output.Warnings(&b, art)

	if dir := request.GetString("output_dir", ""); dir != "" {
		paths, err := output.WriteDir(dir, art)
		if err != nil {
			return mcp.NewToolResultError(errors.UserFriendlyError(err)), nil
		}
		for _, p := range paths {
			fmt.Fprintf(&b, "wrote %s\n", p)
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	b.WriteString("\n")
	if err := output.Print(&b, art); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(b.String()), nil
}

// NewServer builds an MCP server with the json_to_code tool registered.
func NewServer(version string, eng *engine.Engine, log *zap.SugaredLogger) *server.MCPServer {
	s := server.NewMCPServer(
		"polytyper",
		version,
		server.WithToolCapabilities(true),
	)
	New(eng, log).Register(s)
	return s
}

// ServeStdio serves s over stdin and stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// Package engine chains the pipeline stages into one call: parse the
// samples, select the root, infer the type, name it and render it with the
// requested backend. It performs no I/O.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mcncl/polytyper/internal/analyzer"
	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/generator"
	"github.com/mcncl/polytyper/internal/generator/cpp"
	"github.com/mcncl/polytyper/internal/generator/golang"
	"github.com/mcncl/polytyper/internal/generator/java"
	"github.com/mcncl/polytyper/internal/generator/jsonschema"
	"github.com/mcncl/polytyper/internal/generator/python"
	"github.com/mcncl/polytyper/internal/generator/rust"
	"github.com/mcncl/polytyper/internal/generator/typescript"
	"github.com/mcncl/polytyper/internal/logger"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/naming"
	"github.com/mcncl/polytyper/internal/parser"
)

// DefaultTarget is used when a request names no target.
const DefaultTarget = "go"

var backends = map[string]func() generator.Backend{
	"go":         func() generator.Backend { return golang.New() },
	"java":       func() generator.Backend { return java.New() },
	"cpp":        func() generator.Backend { return cpp.New() },
	"python":     func() generator.Backend { return python.New() },
	"rust":       func() generator.Backend { return rust.New() },
	"typescript": func() generator.Backend { return typescript.New() },
	"jsonschema": func() generator.Backend { return jsonschema.New() },
}

var aliases = map[string]string{
	"golang": "go",
	"c++":    "cpp",
	"py":     "python",
	"rs":     "rust",
	"ts":     "typescript",
	"schema": "jsonschema",
}

// Targets lists the canonical target names in sorted order.
func Targets() []string {
	out := make([]string, 0, len(backends))
	for name := range backends {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns a fresh backend for target or one of its aliases.
func Lookup(target string) (generator.Backend, error) {
	name := strings.ToLower(strings.TrimSpace(target))
	if name == "" {
		name = DefaultTarget
	}
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	factory, ok := backends[name]
	if !ok {
		return nil, errors.NewUnsupportedError(
			fmt.Sprintf("unknown target %q (supported: %s)", target, strings.Join(Targets(), ", ")),
			errors.ErrUnsupportedTarget)
	}
	return factory(), nil
}

// Engine runs generation requests. The zero value is not usable; create one
// with New. An Engine holds no per-request state and may be shared between
// goroutines.
type Engine struct {
	log *zap.SugaredLogger
}

// New creates an Engine that logs stage summaries to log. A nil log
// discards them.
func New(log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{log: log}
}

// Generate runs req with a non-logging engine.
func Generate(req models.Request) (models.Artifact, error) {
	return New(nil).Generate(req)
}

// Generate turns the request samples into generated source files.
func (e *Engine) Generate(req models.Request) (models.Artifact, error) {
	start := time.Now()

	backend, err := Lookup(req.Target)
	if err != nil {
		return models.Artifact{}, err
	}
	switch req.FieldNaming {
	case "", models.PreserveKeys, models.Positional:
	default:
		return models.Artifact{}, errors.NewInputError(
			fmt.Sprintf("unknown field naming mode %q (supported: %s, %s)", req.FieldNaming, models.PreserveKeys, models.Positional),
			errors.ErrInvalidOption)
	}

	values, err := e.values(req)
	if err != nil {
		return models.Artifact{}, err
	}
	e.log.Debugw("samples parsed", logger.FieldTarget, backend.Language(), logger.FieldSamples, len(values))

	res, err := analyzer.NewAnalyzer(analyzer.Options{Strict: req.Strict, MaxDepth: req.MaxDepth}).Analyze(values...)
	if err != nil {
		return models.Artifact{}, err
	}

	singularize := true
	if req.SingularizeNames != nil {
		singularize = *req.SingularizeNames
	}
	reg, err := naming.Resolve(res.Root, naming.Options{
		RootName:      req.RootName,
		Rules:         backend.Rules(),
		FieldNaming:   req.FieldNaming,
		FieldMappings: req.FieldMappings,
		Singularize:   singularize,
	})
	if err != nil {
		return models.Artifact{}, err
	}
	reg.RootIsArray = res.RootIsArray
	reg.RootWrapped = res.RootWrapped
	e.log.Debugw("types resolved",
		logger.FieldRoot, reg.Root.Name,
		logger.FieldTypes, len(reg.Types),
		logger.FieldUnions, len(reg.Unions))

	art, err := backend.Render(reg, generator.Options{
		Namespace:  req.Namespace,
		SplitFiles: req.SplitFiles,
		Indent:     req.Indent,
		FileHeader: req.FileHeader,
	})
	if err != nil {
		return models.Artifact{}, err
	}
	art.Warnings = append(res.Warnings, art.Warnings...)

	e.log.Debugw("code rendered",
		logger.FieldTarget, art.Language,
		logger.FieldFiles, len(art.Files),
		logger.FieldWarnings, len(art.Warnings),
		logger.FieldDuration, time.Since(start).Milliseconds())
	return art, nil
}

// values parses the raw samples, joins them with the pre-parsed ones and
// applies RootPath to each.
func (e *Engine) values(req models.Request) ([]models.Value, error) {
	values := make([]models.Value, 0, len(req.Samples)+len(req.Values))
	for _, s := range req.Samples {
		v, err := parser.ParseString(s, parser.WithMaxDepth(req.MaxDepth))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	values = append(values, req.Values...)
	if len(values) == 0 {
		return nil, errors.NewInputError("no samples in request", errors.ErrNoInput)
	}

	if strings.TrimSpace(req.RootPath) == "" {
		return values, nil
	}
	for i, v := range values {
		selected, err := parser.Select(v, req.RootPath)
		if err != nil {
			return nil, err
		}
		values[i] = selected
	}
	return values, nil
}

// Package logger builds the zap loggers used by the CLI, the engine and the
// MCP server.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// JSONEnv switches New to production JSON output when set to "1" or "true".
const JSONEnv = "POLYTYPER_LOG_JSON"

// Field names shared by every log call.
const (
	FieldTarget    = "target"
	FieldRoot      = "root"
	FieldSamples   = "samples"
	FieldTypes     = "types"
	FieldUnions    = "unions"
	FieldFiles     = "files"
	FieldWarnings  = "warnings"
	FieldFile      = "file"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldOperation = "operation"
)

// Options select the logger flavor.
type Options struct {
	// Debug enables debug level output on stderr.
	Debug bool
	// JSON emits production JSON lines instead of console text.
	JSON bool
}

// Nop returns a logger that drops everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// FromEnv fills in JSON from the environment.
func FromEnv(opts Options) Options {
	switch os.Getenv(JSONEnv) {
	case "1", "true", "TRUE", "yes":
		opts.JSON = true
	}
	return opts
}

// New builds a logger. Without Debug or JSON it returns a nop logger, so the
// generated code on stdout is never interleaved with log lines.
func New(opts Options) (*zap.SugaredLogger, error) {
	if !opts.Debug && !opts.JSON {
		return Nop(), nil
	}

	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	if opts.JSON {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		l, err := config.Build()
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core).Sugar(), nil
}

package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Standard application errors
var (
	ErrEmptyInput          = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON         = errors.New("invalid JSON format")
	ErrMultipleJSON        = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrDuplicateKey        = errors.New("duplicate object key")
	ErrFileNotFound        = errors.New("file not found")
	ErrFileEmpty           = errors.New("file is empty")
	ErrNoInput             = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath     = errors.New("invalid file path")
	ErrDepthLimitExceeded  = errors.New("nesting depth limit exceeded")
	ErrUnificationConflict = errors.New("samples cannot be reconciled into one type")
	ErrUnsupportedTarget   = errors.New("unsupported target language")
	ErrNamingCollision     = errors.New("naming collision could not be resolved")
	ErrRootPathNotFound    = errors.New("root path does not match the input")
	ErrInvalidOption       = errors.New("invalid option value")
)

// Re-exported helpers so callers only need this package.
var (
	Is               = errors.Is
	As               = errors.As
	New              = errors.New
	Wrap             = errors.Wrap
	Wrapf            = errors.Wrapf
	Mark             = errors.Mark
	Newf             = errors.Newf
	AssertionFailedf = errors.AssertionFailedf
	IsAssertion      = errors.IsAssertionFailure
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput       ErrorType = "input"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeDepth       ErrorType = "depth"
	ErrorTypeUnification ErrorType = "unification"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypeNaming      ErrorType = "naming"
	ErrorTypeAnalysis    ErrorType = "analysis"
	ErrorTypeGenerate    ErrorType = "generate"
	ErrorTypeFormat      ErrorType = "format"
	ErrorTypeOutput      ErrorType = "output"
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ParseError reports malformed JSON input with its location.
// Offset is a zero-based byte offset, Line and Column are one-based.
type ParseError struct {
	Offset int64
	Line   int
	Column int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d (offset %d): %s", e.Line, e.Column, e.Offset, e.Reason)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidJSON
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParsing, Message: message, Err: err}
}

// NewDepthError reports input nested deeper than the configured limit.
func NewDepthError(path string, limit int) *AppError {
	return &AppError{
		Type:    ErrorTypeDepth,
		Message: fmt.Sprintf("nesting at %s exceeds the maximum depth of %d", path, limit),
		Err:     ErrDepthLimitExceeded,
	}
}

// NewUnificationError reports a type clash that strict mode refuses to turn into a union.
func NewUnificationError(path, detail string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnification,
		Message: fmt.Sprintf("conflicting types at %s: %s", path, detail),
		Err:     ErrUnificationConflict,
	}
}

// NewUnsupportedError creates a new error for an unknown target or option.
func NewUnsupportedError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeUnsupported, Message: message, Err: err}
}

// NewNamingError wraps an internal naming invariant failure.
func NewNamingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeNaming, Message: message, Err: err}
}

// NewAnalysisError creates a new error related to type analysis
func NewAnalysisError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeAnalysis, Message: message, Err: err}
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeGenerate, Message: message, Err: err}
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeFormat, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// NewConfigError creates a new error related to configuration files
func NewConfigError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("JSON parsing error at line %d, column %d: %s", parseErr.Line, parseErr.Column, parseErr.Reason)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeDepth:
			return fmt.Sprintf("Nesting error: %s", appErr.Message)
		case ErrorTypeUnification:
			return fmt.Sprintf("Type conflict: %s (run without --strict to emit a union instead)", appErr.Message)
		case ErrorTypeUnsupported:
			return fmt.Sprintf("Unsupported: %s", appErr.Message)
		case ErrorTypeNaming:
			return fmt.Sprintf("Internal naming error: %s", appErr.Message)
		case ErrorTypeAnalysis:
			return fmt.Sprintf("Type analysis error: %s", appErr.Message)
		case ErrorTypeGenerate:
			return fmt.Sprintf("Code generation error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Code formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Error: The input is empty. Please provide valid JSON data."
	case errors.Is(err, ErrInvalidJSON):
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	case errors.Is(err, ErrMultipleJSON):
		return "Error: Multiple JSON values found. Use --ndjson or repeat -i to pass several samples."
	case errors.Is(err, ErrFileNotFound):
		return "Error: The specified file could not be found. Please check the file path."
	case errors.Is(err, ErrFileEmpty):
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	case errors.Is(err, ErrNoInput):
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	case errors.Is(err, ErrInvalidFilePath):
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}

package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/models"
)

// DefaultMaxDepth bounds container nesting when no limit is configured.
const DefaultMaxDepth = 512

// Option configures parsing.
type Option func(*decoder)

// WithMaxDepth overrides the nesting limit. Values <= 0 keep the default.
func WithMaxDepth(n int) Option {
	return func(d *decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

type decoder struct {
	data     []byte
	dec      *jsontext.Decoder
	maxDepth int
}

func newDecoder(data []byte, opts []Option) *decoder {
	d := &decoder{data: data, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	d.dec = jsontext.NewDecoder(bytes.NewReader(data))
	return d
}

// Parse reads exactly one JSON value from reader.
func Parse(reader io.Reader, opts ...Option) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data, opts...)
}

// ParseBytes parses exactly one JSON value from data.
func ParseBytes(data []byte, opts ...Option) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	d := newDecoder(data, opts)

	root, err := d.value(1, "$")
	if err != nil {
		return models.Value{}, err
	}

	if _, err := d.dec.ReadToken(); err != io.EOF {
		if err == nil {
			return models.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
		}
		return models.Value{}, d.parseError("invalid trailing data after first JSON value", err)
	}
	return root, nil
}

// ParseAll reads a stream of whitespace or newline separated JSON values.
// Every value must be well formed.
func ParseAll(reader io.Reader, opts ...Option) ([]models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	d := newDecoder(data, opts)

	var values []models.Value
	for {
		if d.dec.PeekKind() == 0 {
			if _, err := d.dec.ReadToken(); err == io.EOF {
				return values, nil
			} else if err != nil {
				return nil, d.parseError("invalid JSON", err)
			}
		}
		v, err := d.value(1, "$")
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string, opts ...Option) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString), opts...)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, opts ...Option) (models.Value, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.Value{}, err
	}
	return ParseBytes(data, opts...)
}

// ReadFile loads a sample file, mapping the usual failures onto input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", filePath), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(fmt.Sprintf("input file '%s' is empty", filePath), errors.ErrFileEmpty)
	}
	return data, nil
}

func (d *decoder) value(depth int, path string) (models.Value, error) {
	tok, err := d.dec.ReadToken()
	if err != nil {
		return models.Value{}, d.parseError("invalid JSON", err)
	}

	switch tok.Kind() {
	case 'n':
		return models.Null(), nil
	case 't', 'f':
		return models.Bool(tok.Bool()), nil
	case '"':
		return models.String(tok.String()), nil
	case '0':
		return number(tok.String()), nil
	case '[':
		if depth > d.maxDepth {
			return models.Value{}, errors.NewDepthError(path, d.maxDepth)
		}
		elems := []models.Value{}
		for d.dec.PeekKind() != ']' {
			elem, err := d.value(depth+1, fmt.Sprintf("%s[%d]", path, len(elems)))
			if err != nil {
				return models.Value{}, err
			}
			elems = append(elems, elem)
		}
		if _, err := d.dec.ReadToken(); err != nil {
			return models.Value{}, d.parseError("invalid JSON", err)
		}
		return models.Array(elems...), nil
	case '{':
		if depth > d.maxDepth {
			return models.Value{}, errors.NewDepthError(path, d.maxDepth)
		}
		members := []models.Member{}
		for d.dec.PeekKind() != '}' {
			name, err := d.dec.ReadToken()
			if err != nil {
				return models.Value{}, d.parseError("invalid JSON", err)
			}
			key := name.String()
			v, err := d.value(depth+1, ChildPath(path, key))
			if err != nil {
				return models.Value{}, err
			}
			members = append(members, models.Member{Key: key, Value: v})
		}
		if _, err := d.dec.ReadToken(); err != nil {
			return models.Value{}, d.parseError("invalid JSON", err)
		}
		return models.Object(members...), nil
	default:
		return models.Value{}, d.parseError("invalid JSON", fmt.Errorf("unexpected token %v", tok.Kind()))
	}
}

// number classifies a literal as integral when it has no fraction or
// exponent and fits into an int64.
func number(lit string) models.Value {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return models.Value{Kind: models.NumberValue, Integral: true, Int: i, Float: float64(i), Str: lit}
		}
	}
	f, _ := strconv.ParseFloat(lit, 64)
	return models.Value{Kind: models.NumberValue, Float: f, Str: lit}
}

func (d *decoder) parseError(message string, err error) error {
	perr := &errors.ParseError{Offset: d.dec.InputOffset(), Reason: err.Error(), Err: errors.ErrInvalidJSON}

	var se *jsontext.SyntacticError
	switch {
	case errors.As(err, &se):
		perr.Offset = se.ByteOffset
		perr.Reason = se.Err.Error()
		if errors.Is(se.Err, jsontext.ErrDuplicateName) {
			perr.Err = errors.ErrDuplicateKey
			message = "duplicate object key"
		}
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		perr.Offset = int64(len(d.data))
		perr.Reason = "unexpected end of input"
	}

	perr.Line, perr.Column = position(d.data, perr.Offset)
	return errors.NewParsingError(fmt.Sprintf("%s at line %d, column %d", message, perr.Line, perr.Column), perr)
}

// position converts a byte offset into a one-based line and column.
func position(data []byte, offset int64) (line, column int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte{'\n'}) + 1
	column = int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, column
}

// ChildPath appends an object key to a JSON path.
func ChildPath(path, key string) string {
	if isPlainKey(key) {
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

func isPlainKey(key string) bool {
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

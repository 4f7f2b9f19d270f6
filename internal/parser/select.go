package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/models"
)

// Select resolves a dot/bracket path such as "data.items[0].payload"
// against v. An empty path, "$" or "." selects v itself.
func Select(v models.Value, path string) (models.Value, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return v, nil
	}

	current := v
	for _, part := range strings.Split(path, ".") {
		name, indexes, err := splitSegment(part)
		if err != nil {
			return models.Value{}, errors.NewInputError(fmt.Sprintf("invalid root path %q", path), err)
		}
		if name != "" {
			if current.Kind != models.ObjectValue {
				return models.Value{}, notFound(path)
			}
			next, ok := current.Get(name)
			if !ok {
				return models.Value{}, notFound(path)
			}
			current = next
		}
		for _, idx := range indexes {
			if current.Kind != models.ArrayValue || idx < 0 || idx >= len(current.Elems) {
				return models.Value{}, notFound(path)
			}
			current = current.Elems[idx]
		}
	}
	return current, nil
}

// splitSegment splits "items[0][1]" into "items" and [0 1].
func splitSegment(part string) (string, []int, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" {
			return "", nil, fmt.Errorf("empty path segment")
		}
		return part, nil, nil
	}

	name := part[:open]
	var indexes []int
	rest := part[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("unexpected %q in segment %q", rest[0], part)
		}
		closing := strings.IndexByte(rest, ']')
		if closing < 0 {
			return "", nil, fmt.Errorf("unterminated index in segment %q", part)
		}
		idx, err := strconv.Atoi(rest[1:closing])
		if err != nil {
			return "", nil, fmt.Errorf("index %q is not a number", rest[1:closing])
		}
		indexes = append(indexes, idx)
		rest = rest[closing+1:]
	}
	return name, indexes, nil
}

func notFound(path string) error {
	return errors.NewInputError(fmt.Sprintf("root_path not found: %s", path), errors.ErrRootPathNotFound)
}

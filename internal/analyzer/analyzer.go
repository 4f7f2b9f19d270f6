package analyzer

import (
	"fmt"
	"strings"

	"github.com/mcncl/polytyper/internal/errors"
	"github.com/mcncl/polytyper/internal/models"
	"github.com/mcncl/polytyper/internal/parser"
)

// WrappedValueKey is the field that holds a root which is not an object.
const WrappedValueKey = "value"

// Options control inference.
type Options struct {
	// Strict turns every union into an UnificationConflict error.
	Strict bool
	// MaxDepth bounds recursion. Values <= 0 use parser.DefaultMaxDepth.
	MaxDepth int
}

// Analyzer infers a type tree from sample values. It keeps no state between
// calls and is safe for concurrent use.
type Analyzer struct {
	opts Options
}

// Result is the finalized type tree of one analysis.
type Result struct {
	// Root is always an object shape.
	Root *models.TypeNode
	// RootIsArray is set when the samples were arrays of Root.
	RootIsArray bool
	// RootWrapped is set when the samples were not objects and Root holds
	// them under WrappedValueKey.
	RootWrapped bool
	Warnings    []models.Warning
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(opts Options) *Analyzer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = parser.DefaultMaxDepth
	}
	return &Analyzer{opts: opts}
}

// Analyze infers one type from all samples, unifies them, and finalizes the
// result.
func (a *Analyzer) Analyze(values ...models.Value) (Result, error) {
	if len(values) == 0 {
		return Result{}, errors.NewAnalysisError("no samples to analyze", errors.ErrNoInput)
	}

	var merged *models.TypeNode
	for _, v := range values {
		t, err := a.Infer(v, "$")
		if err != nil {
			return Result{}, err
		}
		merged = Unify(merged, t)
	}

	res := Result{}
	base := merged.Unwrap()
	switch {
	case base.Kind == models.ObjectType:
		res.Root = base
	case base.Kind == models.ArrayType && base.Elem.Kind == models.ObjectType:
		res.Root = base.Elem
		res.RootIsArray = true
	default:
		res.Root = &models.TypeNode{
			Kind:   models.ObjectType,
			Path:   "$",
			Fields: []models.Field{{Key: WrappedValueKey, Type: merged}},
		}
		res.RootWrapped = true
	}
	res.Root = Finalize(res.Root)

	conflicts := Conflicts(res.Root, "$")
	if res.RootWrapped {
		// The wrapper is synthetic, report paths against the samples.
		for i := range conflicts {
			conflicts[i].Path = "$" + strings.TrimPrefix(conflicts[i].Path, "$."+WrappedValueKey)
		}
	}
	if len(conflicts) > 0 && a.opts.Strict {
		c := conflicts[0]
		return Result{}, errors.NewUnificationError(c.Path, c.Message)
	}
	res.Warnings = conflicts
	return res, nil
}

// Infer maps a value onto its type. Object shapes record path as their
// origin; array elements use "[*]" so every element shares one path.
func (a *Analyzer) Infer(v models.Value, path string) (*models.TypeNode, error) {
	return a.infer(v, path, 1)
}

func (a *Analyzer) infer(v models.Value, path string, depth int) (*models.TypeNode, error) {
	if depth > a.opts.MaxDepth {
		return nil, errors.NewDepthError(path, a.opts.MaxDepth)
	}

	switch v.Kind {
	case models.NullValue:
		return models.OptionalOf(models.Primitive(models.AnyType)), nil
	case models.BoolValue:
		return models.Primitive(models.BoolType), nil
	case models.NumberValue:
		if v.Integral {
			return models.Primitive(models.IntType), nil
		}
		return models.Primitive(models.DoubleType), nil
	case models.StringValue:
		return models.Primitive(models.StringType), nil
	case models.ArrayValue:
		elem := models.Primitive(models.AnyType)
		for _, e := range v.Elems {
			t, err := a.infer(e, path+"[*]", depth+1)
			if err != nil {
				return nil, err
			}
			elem = Unify(elem, t)
		}
		return models.ArrayOf(elem), nil
	case models.ObjectValue:
		node := &models.TypeNode{Kind: models.ObjectType, Path: path, Fields: make([]models.Field, 0, len(v.Members))}
		for i, m := range v.Members {
			t, err := a.infer(m.Value, parser.ChildPath(path, m.Key), depth+1)
			if err != nil {
				return nil, err
			}
			node.Fields = append(node.Fields, models.Field{Key: m.Key, Type: t, Index: i})
		}
		return node, nil
	default:
		return nil, errors.NewAnalysisError(fmt.Sprintf("unknown value kind %v at %s", v.Kind, path), nil)
	}
}

// Finalize returns a copy of t in which every node is unique and unresolved
// Any types have become String.
func Finalize(t *models.TypeNode) *models.TypeNode {
	c := t.Clone()
	resolveAny(c)
	return c
}

func resolveAny(t *models.TypeNode) {
	if t == nil {
		return
	}
	if t.Kind == models.AnyType {
		t.Kind = models.StringType
		return
	}
	resolveAny(t.Elem)
	for _, f := range t.Fields {
		resolveAny(f.Type)
	}
	for _, v := range t.Variants {
		resolveAny(v)
	}
}

// Conflicts lists one unification-conflict warning per union in t, in
// depth-first order.
func Conflicts(t *models.TypeNode, path string) []models.Warning {
	var out []models.Warning
	var walk func(n *models.TypeNode, p string)
	walk = func(n *models.TypeNode, p string) {
		if n == nil {
			return
		}
		switch n.Kind {
		case models.OptionalType:
			walk(n.Elem, p)
		case models.ArrayType:
			walk(n.Elem, p+"[*]")
		case models.ObjectType:
			for _, f := range n.Fields {
				walk(f.Type, parser.ChildPath(p, f.Key))
			}
		case models.UnionType:
			kinds := make([]string, len(n.Variants))
			for i, v := range n.Variants {
				kinds[i] = familyName(v)
			}
			out = append(out, models.Warning{
				Code:    models.WarnUnificationConflict,
				Path:    p,
				Message: strings.Join(kinds, " vs ") + " kept as a union",
			})
			for _, v := range n.Variants {
				walk(v, p)
			}
		}
	}
	walk(t, path)
	return out
}

func familyName(t *models.TypeNode) string {
	switch t.Kind {
	case models.IntType, models.DoubleType:
		return "number"
	default:
		return t.Kind.String()
	}
}

package models

import "strings"

// TypeKind identifies the variant of an inferred TypeNode.
type TypeKind int

const (
	AnyType TypeKind = iota
	IntType
	DoubleType
	BoolType
	StringType
	OptionalType
	ArrayType
	ObjectType
	UnionType
)

func (k TypeKind) String() string {
	switch k {
	case AnyType:
		return "any"
	case IntType:
		return "int64"
	case DoubleType:
		return "double"
	case BoolType:
		return "bool"
	case StringType:
		return "string"
	case OptionalType:
		return "optional"
	case ArrayType:
		return "array"
	case ObjectType:
		return "object"
	case UnionType:
		return "union"
	default:
		return "unknown"
	}
}

// TypeNode is a node of the inferred type tree.
type TypeNode struct {
	Kind TypeKind

	// Elem is the inner type of Optional and Array nodes.
	Elem *TypeNode

	// Fields and Path are set on Object nodes. Path is the JSON path of the
	// position that introduced the shape.
	Fields []Field
	Path   string

	// Variants of a Union node, in canonical order.
	Variants []*TypeNode
}

// Field is one member of an object shape. Index is the position at which the
// key was first seen and drives declaration order.
type Field struct {
	Key   string
	Type  *TypeNode
	Index int
}

// Primitive returns a leaf node of the given kind.
func Primitive(k TypeKind) *TypeNode { return &TypeNode{Kind: k} }

// OptionalOf wraps t in an Optional node. Optional is never nested.
func OptionalOf(t *TypeNode) *TypeNode {
	if t.Kind == OptionalType {
		return t
	}
	return &TypeNode{Kind: OptionalType, Elem: t}
}

// ArrayOf returns an Array node of elem.
func ArrayOf(elem *TypeNode) *TypeNode { return &TypeNode{Kind: ArrayType, Elem: elem} }

// IsOptional reports whether t is an Optional node.
func (t *TypeNode) IsOptional() bool { return t != nil && t.Kind == OptionalType }

// Unwrap strips a single Optional wrapper.
func (t *TypeNode) Unwrap() *TypeNode {
	if t.IsOptional() {
		return t.Elem
	}
	return t
}

// Field returns the field stored under key.
func (t *TypeNode) Field(key string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Clone returns a deep copy of t.
func (t *TypeNode) Clone() *TypeNode {
	if t == nil {
		return nil
	}
	c := &TypeNode{Kind: t.Kind, Path: t.Path, Elem: t.Elem.Clone()}
	if t.Fields != nil {
		c.Fields = make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			c.Fields[i] = Field{Key: f.Key, Type: f.Type.Clone(), Index: f.Index}
		}
	}
	if t.Variants != nil {
		c.Variants = make([]*TypeNode, len(t.Variants))
		for i, v := range t.Variants {
			c.Variants[i] = v.Clone()
		}
	}
	return c
}

// Signature renders the structural signature of t. It ignores paths and is
// meant for comparisons only.
func (t *TypeNode) Signature() string {
	var b strings.Builder
	t.writeSignature(&b)
	return b.String()
}

func (t *TypeNode) writeSignature(b *strings.Builder) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case OptionalType:
		t.Elem.writeSignature(b)
		b.WriteByte('?')
	case ArrayType:
		b.WriteByte('[')
		t.Elem.writeSignature(b)
		b.WriteByte(']')
	case ObjectType:
		b.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Key)
			b.WriteByte(':')
			f.Type.writeSignature(b)
		}
		b.WriteByte('}')
	case UnionType:
		b.WriteByte('(')
		for i, v := range t.Variants {
			if i > 0 {
				b.WriteByte('|')
			}
			v.writeSignature(b)
		}
		b.WriteByte(')')
	default:
		b.WriteString(t.Kind.String())
	}
}

package naming

import (
	"strconv"

	"github.com/mcncl/polytyper/internal/models"
)

// DefaultRootName is the default name for the root type if not specified.
const DefaultRootName = "Root"

// Options control one resolution pass.
type Options struct {
	RootName    string
	Rules       Rules
	FieldNaming models.FieldNaming
	// FieldMappings override identifiers by JSON key.
	FieldMappings map[string]string
	// Singularize names array element types after the singular of their key.
	Singularize bool
}

// NamedType is an object shape with its issued type name.
type NamedType struct {
	Name   string
	Node   *models.TypeNode
	Fields []NamedField
}

// NamedField is an object member with its issued identifier.
type NamedField struct {
	Ident string
	Key   string
	Type  *models.TypeNode
}

// Optional reports whether the field may be absent or null.
func (f NamedField) Optional() bool { return f.Type.IsOptional() }

// NamedUnion is a union node with its issued name.
type NamedUnion struct {
	Name string
	Node *models.TypeNode
}

// Registry holds every named type of one request.
type Registry struct {
	Root        *NamedType
	RootIsArray bool
	RootWrapped bool

	// Types are in discovery order, root first.
	Types  []*NamedType
	Unions []*NamedUnion

	names  map[*models.TypeNode]string
	byNode map[*models.TypeNode]*NamedType
	ctx    *Context
}

// NameOf returns the name issued for an object or union node.
func (r *Registry) NameOf(node *models.TypeNode) string {
	return r.names[node]
}

// Lookup returns the named type for an object node.
func (r *Registry) Lookup(node *models.TypeNode) (*NamedType, bool) {
	t, ok := r.byNode[node]
	return t, ok
}

// Reserve issues one more name from the request's naming context, for
// helpers a backend declares next to the registered types.
func (r *Registry) Reserve(base string) (string, error) {
	return r.ctx.Issue(base)
}

// HasUnions reports whether any union survived inference.
func (r *Registry) HasUnions() bool { return len(r.Unions) > 0 }

// DeclarationOrder lists the types so that every type comes after the types
// it contains.
func (r *Registry) DeclarationOrder() []*NamedType {
	out := make([]*NamedType, 0, len(r.Types))
	seen := make(map[*models.TypeNode]bool, len(r.Types))
	var visit func(t *NamedType)
	visit = func(t *NamedType) {
		if seen[t.Node] {
			return
		}
		seen[t.Node] = true
		for _, f := range t.Fields {
			for _, dep := range ObjectsIn(f.Type) {
				if nt, ok := r.Lookup(dep); ok {
					visit(nt)
				}
			}
		}
		out = append(out, t)
	}
	for _, t := range r.Types {
		visit(t)
	}
	return out
}

// ObjectsIn returns the object shapes reachable from t without crossing
// another object.
func ObjectsIn(t *models.TypeNode) []*models.TypeNode {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case models.ObjectType:
		return []*models.TypeNode{t}
	case models.OptionalType, models.ArrayType:
		return ObjectsIn(t.Elem)
	case models.UnionType:
		var out []*models.TypeNode
		for _, v := range t.Variants {
			out = append(out, ObjectsIn(v)...)
		}
		return out
	}
	return nil
}

// Resolve walks root depth-first, left to right, and issues a name for every
// object shape and union together with identifiers for their fields.
// Structurally identical shapes at different paths get different names.
func Resolve(root *models.TypeNode, opts Options) (*Registry, error) {
	if opts.RootName == "" {
		opts.RootName = DefaultRootName
	}
	reserved := append([]string{}, opts.Rules.ReservedTypes...)
	for kw := range opts.Rules.Keywords {
		reserved = append(reserved, kw)
	}

	ctx := NewContext(reserved...)
	r := &resolver{
		opts: opts,
		ctx:  ctx,
		reg: &Registry{
			names:  make(map[*models.TypeNode]string),
			byNode: make(map[*models.TypeNode]*NamedType),
			ctx:    ctx,
		},
	}
	rootName := opts.Rules.Escape(opts.RootName)
	if err := r.object(root, rootName); err != nil {
		return nil, err
	}
	r.reg.Root = r.reg.Types[0]
	return r.reg, nil
}

type resolver struct {
	opts Options
	ctx  *Context
	reg  *Registry
}

func (r *resolver) object(node *models.TypeNode, base string) error {
	name, err := r.ctx.Issue(base)
	if err != nil {
		return err
	}
	nt := &NamedType{Name: name, Node: node, Fields: make([]NamedField, 0, len(node.Fields))}
	r.reg.names[node] = name
	r.reg.byNode[node] = nt
	r.reg.Types = append(r.reg.Types, nt)

	idents := NewContext()
	for i, f := range node.Fields {
		ident, err := idents.Issue(r.fieldIdent(f.Key, i+1))
		if err != nil {
			return err
		}
		nt.Fields = append(nt.Fields, NamedField{Ident: ident, Key: f.Key, Type: f.Type})
	}

	for _, f := range node.Fields {
		if err := r.walk(f.Type, f.Key); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) walk(t *models.TypeNode, key string) error {
	switch t.Kind {
	case models.OptionalType:
		return r.walk(t.Elem, key)
	case models.ArrayType:
		elemKey := key
		if r.opts.Singularize {
			elemKey = Singularize(key)
		}
		return r.walk(t.Elem, elemKey)
	case models.ObjectType:
		return r.object(t, r.opts.Rules.TypeName(key))
	case models.UnionType:
		name, err := r.ctx.Issue(r.opts.Rules.TypeName(key) + "Union")
		if err != nil {
			return err
		}
		r.reg.names[t] = name
		r.reg.Unions = append(r.reg.Unions, &NamedUnion{Name: name, Node: t})
		for _, v := range t.Variants {
			if err := r.walk(v, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) fieldIdent(key string, position int) string {
	if mapped, ok := r.opts.FieldMappings[key]; ok && mapped != "" {
		return r.opts.Rules.Escape(mapped)
	}
	if r.opts.FieldNaming == models.Positional {
		return r.opts.Rules.Positional(position)
	}
	return r.opts.Rules.FieldName(key)
}

// VariantName returns a member name for a union variant, e.g. "Int" or
// "Object".
func VariantName(t *models.TypeNode, index int) string {
	switch t.Kind {
	case models.BoolType:
		return "Bool"
	case models.IntType:
		return "Int"
	case models.DoubleType:
		return "Double"
	case models.StringType:
		return "String"
	case models.ArrayType:
		return "Array"
	case models.ObjectType:
		return "Object"
	}
	return "Variant" + strconv.Itoa(index)
}

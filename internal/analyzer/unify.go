package analyzer

import (
	"sort"

	"github.com/mcncl/polytyper/internal/models"
)

// Unify merges two types observed at the same position into one type that
// admits both. It never mutates its arguments and is symmetric, associative
// and idempotent, so the order in which samples are folded does not matter.
func Unify(a, b *models.TypeNode) *models.TypeNode {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Kind == models.AnyType:
		return b
	case b.Kind == models.AnyType:
		return a
	}

	if a.IsOptional() || b.IsOptional() {
		return models.OptionalOf(Unify(a.Unwrap(), b.Unwrap()))
	}

	if a.Kind != models.UnionType && b.Kind != models.UnionType && family(a) == family(b) {
		return unifySameFamily(a, b)
	}
	return union(a, b)
}

// Variant order of unions: bool, number, string, array, object.
const (
	familyBool = iota
	familyNumber
	familyString
	familyArray
	familyObject
)

func family(t *models.TypeNode) int {
	switch t.Kind {
	case models.BoolType:
		return familyBool
	case models.IntType, models.DoubleType:
		return familyNumber
	case models.ArrayType:
		return familyArray
	case models.ObjectType:
		return familyObject
	default:
		return familyString
	}
}

func unifySameFamily(a, b *models.TypeNode) *models.TypeNode {
	switch family(a) {
	case familyNumber:
		if a.Kind == models.DoubleType || b.Kind == models.DoubleType {
			return models.Primitive(models.DoubleType)
		}
		return models.Primitive(models.IntType)
	case familyArray:
		return models.ArrayOf(Unify(a.Elem, b.Elem))
	case familyObject:
		return mergeObjects(a, b)
	default:
		return a
	}
}

// union flattens both sides into one variant per family.
func union(a, b *models.TypeNode) *models.TypeNode {
	var byFamily [familyObject + 1]*models.TypeNode
	add := func(t *models.TypeNode) {
		f := family(t)
		if byFamily[f] == nil {
			byFamily[f] = t
			return
		}
		byFamily[f] = unifySameFamily(byFamily[f], t)
	}
	for _, side := range []*models.TypeNode{a, b} {
		if side.Kind == models.UnionType {
			for _, v := range side.Variants {
				add(v)
			}
			continue
		}
		add(side)
	}

	var variants []*models.TypeNode
	for _, v := range byFamily {
		if v != nil {
			variants = append(variants, v)
		}
	}
	if len(variants) == 1 {
		return variants[0]
	}
	return &models.TypeNode{Kind: models.UnionType, Variants: variants}
}

// mergeObjects unions the field sets. Fields seen on one side only become
// optional. Fields are ordered by the earliest index they were seen at, ties
// broken by key.
func mergeObjects(a, b *models.TypeNode) *models.TypeNode {
	out := &models.TypeNode{Kind: models.ObjectType, Path: a.Path}
	if b.Path != "" && (out.Path == "" || b.Path < out.Path) {
		out.Path = b.Path
	}

	for _, fa := range a.Fields {
		fb, ok := b.Field(fa.Key)
		if !ok {
			out.Fields = append(out.Fields, models.Field{Key: fa.Key, Type: models.OptionalOf(fa.Type), Index: fa.Index})
			continue
		}
		out.Fields = append(out.Fields, models.Field{Key: fa.Key, Type: Unify(fa.Type, fb.Type), Index: min(fa.Index, fb.Index)})
	}
	for _, fb := range b.Fields {
		if _, ok := a.Field(fb.Key); !ok {
			out.Fields = append(out.Fields, models.Field{Key: fb.Key, Type: models.OptionalOf(fb.Type), Index: fb.Index})
		}
	}

	sort.SliceStable(out.Fields, func(i, j int) bool {
		if out.Fields[i].Index != out.Fields[j].Index {
			return out.Fields[i].Index < out.Fields[j].Index
		}
		return out.Fields[i].Key < out.Fields[j].Key
	})
	return out
}

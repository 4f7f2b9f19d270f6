package analyzer

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/polytyper/internal/models"
)

var sampleInputs = []string{
	`1`,
	`2.5`,
	`"s"`,
	`true`,
	`null`,
	`[]`,
	`[1]`,
	`[1.5, "x"]`,
	`{"a": 1}`,
	`{"a": 1, "b": "x"}`,
	`{"b": null, "c": [{"d": 1}]}`,
	`{"a": "str", "c": []}`,
	`[{"a": 1}, {"a": null}]`,
	`[{"z": true}, 3]`,
}

func sampleTypes(t *testing.T) []*models.TypeNode {
	t.Helper()
	a := NewAnalyzer(Options{})
	out := make([]*models.TypeNode, len(sampleInputs))
	for i, s := range sampleInputs {
		node, err := a.Infer(mustParse(t, s), "$")
		require.NoError(t, err)
		out[i] = node
	}
	return out
}

func TestUnify_Commutative(t *testing.T) {
	types := sampleTypes(t)
	for i, a := range types {
		for j, b := range types {
			ab, ba := Unify(a, b), Unify(b, a)
			if diff := cmp.Diff(ab, ba); diff != "" {
				t.Errorf("Unify(%s, %s) not commutative (-ab +ba):\n%s", sampleInputs[i], sampleInputs[j], diff)
			}
		}
	}
}

func TestUnify_Idempotent(t *testing.T) {
	for i, a := range sampleTypes(t) {
		if diff := cmp.Diff(a, Unify(a, a)); diff != "" {
			t.Errorf("Unify(%s, %s) changed the type (-want +got):\n%s", sampleInputs[i], sampleInputs[i], diff)
		}
	}
}

func TestUnify_OrderIndependent(t *testing.T) {
	types := sampleTypes(t)
	fold := func(ts ...*models.TypeNode) *models.TypeNode {
		var out *models.TypeNode
		for _, t := range ts {
			out = Unify(out, t)
		}
		return out
	}

	for i := range types {
		for j := range types {
			for k := range types {
				a, b, c := types[i], types[j], types[k]
				want := fold(a, b, c)
				for _, perm := range [][]*models.TypeNode{{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a}} {
					if diff := cmp.Diff(want, fold(perm...)); diff != "" {
						t.Fatalf("fold of %s, %s, %s depends on order:\n%s", sampleInputs[i], sampleInputs[j], sampleInputs[k], diff)
					}
				}
				// associativity
				if diff := cmp.Diff(Unify(Unify(a, b), c), Unify(a, Unify(b, c))); diff != "" {
					t.Fatalf("Unify not associative for %s, %s, %s:\n%s", sampleInputs[i], sampleInputs[j], sampleInputs[k], diff)
				}
			}
		}
	}
}

func TestUnify_Rules(t *testing.T) {
	unknown := models.Primitive(models.AnyType)
	i64 := models.Primitive(models.IntType)
	dbl := models.Primitive(models.DoubleType)
	str := models.Primitive(models.StringType)
	bl := models.Primitive(models.BoolType)
	null := models.OptionalOf(unknown)
	obj := &models.TypeNode{Kind: models.ObjectType, Path: "$", Fields: []models.Field{{Key: "k", Type: str}}}

	tests := []struct {
		a, b *models.TypeNode
		want string
	}{
		{unknown, i64, "int64"},
		{i64, i64, "int64"},
		{i64, dbl, "double"},
		{i64, null, "int64?"},
		{null, null, "any?"},
		{models.OptionalOf(i64), dbl, "double?"},
		{str, i64, "(int64|string)"},
		{str, obj, "(string|{k:string})"},
		{bl, str, "(bool|string)"},
		{models.ArrayOf(unknown), models.ArrayOf(str), "[string]"},
		{models.ArrayOf(i64), i64, "(int64|[int64])"},
		{&models.TypeNode{Kind: models.UnionType, Variants: []*models.TypeNode{i64, str}}, dbl, "(double|string)"},
		{&models.TypeNode{Kind: models.UnionType, Variants: []*models.TypeNode{bl, str}}, null, "(bool|string)?"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s+%s", tt.a.Signature(), tt.b.Signature()), func(t *testing.T) {
			assert.Equal(t, tt.want, Unify(tt.a, tt.b).Signature())
		})
	}
}

func TestUnify_ObjectFieldOrder(t *testing.T) {
	a := NewAnalyzer(Options{})
	first, err := a.Infer(mustParse(t, `{"x": 1, "y": 2}`), "$.first")
	require.NoError(t, err)
	second, err := a.Infer(mustParse(t, `{"y": 3, "z": 4, "x": 5}`), "$.second")
	require.NoError(t, err)

	merged := Unify(first, second)
	assert.Equal(t, "{x:int64,y:int64,z:int64?}", merged.Signature())
	assert.Equal(t, "$.first", merged.Path)
	assert.Equal(t, merged.Signature(), Unify(second, first).Signature())
}

func TestUnify_DoesNotMutateInputs(t *testing.T) {
	a := NewAnalyzer(Options{})
	left, err := a.Infer(mustParse(t, `{"a": 1, "b": {"c": null}}`), "$")
	require.NoError(t, err)
	right, err := a.Infer(mustParse(t, `{"b": {"c": "x", "d": 1}}`), "$")
	require.NoError(t, err)

	leftSig, rightSig := left.Signature(), right.Signature()
	_ = Unify(left, right)
	assert.Equal(t, leftSig, left.Signature())
	assert.Equal(t, rightSig, right.Signature())
}

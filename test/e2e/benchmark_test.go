package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcncl/polytyper/internal/engine"
	"github.com/mcncl/polytyper/internal/models"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}
	return result
}

// generateWideJSON creates a JSON object with many fields at the same level
func generateWideJSON(fieldCount int) map[string]interface{} {
	result := make(map[string]interface{})
	for i := 0; i < fieldCount; i++ {
		switch i % 5 {
		case 0:
			result[fmt.Sprintf("string_field_%d", i)] = fmt.Sprintf("value_%d", i)
		case 1:
			result[fmt.Sprintf("int_field_%d", i)] = i
		case 2:
			result[fmt.Sprintf("bool_field_%d", i)] = i%2 == 0
		case 3:
			result[fmt.Sprintf("float_field_%d", i)] = float64(i) + 0.5
		case 4:
			result[fmt.Sprintf("object_field_%d", i)] = map[string]interface{}{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
		}
	}
	return result
}

// generateArray creates an array of objects whose optional keys vary between
// elements.
func generateArray(size int) []map[string]interface{} {
	array := make([]map[string]interface{}, size)
	for i := 0; i < size; i++ {
		item := map[string]interface{}{
			"id":    i,
			"name":  fmt.Sprintf("Item %d", i),
			"value": rand.Float64() * 100,
		}
		if i%2 == 0 {
			item["active"] = true
		}
		if i%3 == 0 {
			item["tags"] = []string{"a", "b"}
		}
		array[i] = item
	}
	return array
}

func benchmarkTargets(b *testing.B, data interface{}) {
	b.Helper()
	sample, err := json.Marshal(data)
	require.NoError(b, err)

	eng := engine.New(nil)
	for _, target := range engine.Targets() {
		b.Run(target, func(b *testing.B) {
			req := models.Request{Samples: []string{string(sample)}, Target: target, Namespace: "bench"}
			b.SetBytes(int64(len(sample)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := eng.Generate(req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDeepNesting benchmarks performance with deeply nested JSON structures
func BenchmarkDeepNesting(b *testing.B) {
	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},
		{"Depth5Width2", 5, 2},
		{"Depth2Width10", 2, 10},
	}
	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			benchmarkTargets(b, generateNestedJSON(depth.depth, depth.width))
		})
	}
}

// BenchmarkWideStructures benchmarks performance with wide JSON structures (many fields)
func BenchmarkWideStructures(b *testing.B) {
	for _, fieldCount := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("Fields%d", fieldCount), func(b *testing.B) {
			benchmarkTargets(b, generateWideJSON(fieldCount))
		})
	}
}

// BenchmarkArrayProcessing benchmarks unification over large arrays
func BenchmarkArrayProcessing(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("Array%d", size), func(b *testing.B) {
			benchmarkTargets(b, generateArray(size))
		})
	}
}

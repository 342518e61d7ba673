package variant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// colorSizeCatalog is the Red/Blue × S/M product: sku 1 = Red/S,
// 2 = Red/M, 3 = Blue/S, 4 = Blue/M.
func colorSizeCatalog() ([]Dimension, []SKU) {
	dims := []Dimension{
		{ID: 1, Name: "Color", Values: []Value{
			{ID: 10, Name: "Red", SKUIDs: []SKUID{1, 2}},
			{ID: 11, Name: "Blue", SKUIDs: []SKUID{3, 4}},
		}},
		{ID: 2, Name: "Size", Values: []Value{
			{ID: 20, Name: "S", SKUIDs: []SKUID{1, 3}},
			{ID: 21, Name: "M", SKUIDs: []SKUID{2, 4}},
		}},
	}
	skus := []SKU{
		{ID: 1, Price: 10, InStock: true, Media: []MediaGroup{{URLs: []string{"red-s.jpg"}}}},
		{ID: 2, Price: 10, InStock: true, Media: []MediaGroup{{URLs: []string{"red-m.jpg", "red-m-back.jpg"}}, {URLs: []string{"detail.jpg"}}}},
		{ID: 3, Price: 12, InStock: false, Media: []MediaGroup{{URLs: []string{"blue-s.jpg"}}}},
		{ID: 4, Price: 12, InStock: true},
	}
	return dims, skus
}

// sparseCatalog leaves holes in the grid: Blue only comes in S and Cotton
// only in Red.
func sparseCatalog() ([]Dimension, []SKU) {
	dims := []Dimension{
		{ID: 2, Name: "Size", Values: []Value{
			{ID: 21, Name: "M", SKUIDs: []SKUID{2, 4}},
			{ID: 20, Name: "S", SKUIDs: []SKUID{1, 3}},
			{ID: 22, Name: "XL", SKUIDs: []SKUID{5}},
		}},
		{ID: 1, Name: "Colour", Values: []Value{
			{ID: 10, Name: "Red", SKUIDs: []SKUID{1, 2, 5}},
			{ID: 11, Name: "Blue", SKUIDs: []SKUID{3}},
			{ID: 12, Name: "Green", SKUIDs: []SKUID{4}},
		}},
		{ID: 3, Name: "Material", Values: []Value{
			{ID: 30, Name: "Wool", SKUIDs: []SKUID{2, 3, 4, 5}},
			{ID: 31, Name: "Cotton", SKUIDs: []SKUID{1}},
		}},
	}
	skus := []SKU{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	return dims, skus
}

func buildIndex(t *testing.T, dims []Dimension, skus []SKU) *Index {
	t.Helper()
	x, warnings := Build(dims, skus)
	require.NotNil(t, x)
	require.Empty(t, warnings)
	return x
}

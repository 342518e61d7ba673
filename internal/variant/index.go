package variant

import (
	"fmt"
	"slices"
)

// Index is the lookup structure for one product. It is built once per
// product load and never mutated, so it may be shared between readers.
type Index struct {
	dimensions       []Dimension
	position         map[DimensionID]int
	skus             []SKU
	skusByID         map[SKUID]SKU
	valueOfSKU       map[DimensionID]map[SKUID]ValueID
	dimensionOfValue map[ValueID]DimensionID
	valueByID        map[ValueID]Value
	skusOfValue      map[ValueID]skuSet
}

// Build indexes a product's dimensions and SKUs. Malformed data is skipped
// and reported as warnings: SKU ids that are not in skus, repeated ids and
// empty dimensions. A product with no dimensions still yields a usable index.
func Build(dims []Dimension, skus []SKU) (*Index, Warnings) {
	var warnings Warnings
	x := &Index{
		position:         make(map[DimensionID]int, len(dims)),
		skusByID:         make(map[SKUID]SKU, len(skus)),
		valueOfSKU:       make(map[DimensionID]map[SKUID]ValueID, len(dims)),
		dimensionOfValue: make(map[ValueID]DimensionID),
		valueByID:        make(map[ValueID]Value),
		skusOfValue:      make(map[ValueID]skuSet),
	}

	for _, sku := range skus {
		if _, dup := x.skusByID[sku.ID]; dup {
			warnings.add(Warning{
				Kind:   WarnDuplicateSKU,
				SKUID:  sku.ID,
				Detail: fmt.Sprintf("sku %d listed more than once", sku.ID),
			})
			continue
		}
		x.skusByID[sku.ID] = sku
		x.skus = append(x.skus, sku)
	}

	seenDims := make(map[DimensionID]bool, len(dims))
	built := make([]Dimension, 0, len(dims))
	for _, dim := range dims {
		if seenDims[dim.ID] {
			warnings.add(Warning{
				Kind:        WarnDuplicateDimension,
				DimensionID: dim.ID,
				Detail:      fmt.Sprintf("dimension %d (%s) listed more than once", dim.ID, dim.Name),
			})
			continue
		}
		seenDims[dim.ID] = true
		built = append(built, x.indexDimension(dim, &warnings))
	}

	x.dimensions = orderDimensions(built)
	for i, dim := range x.dimensions {
		x.position[dim.ID] = i
	}
	return x, warnings
}

func (x *Index) indexDimension(dim Dimension, warnings *Warnings) Dimension {
	if len(dim.Values) == 0 {
		warnings.add(Warning{
			Kind:        WarnEmptyDimension,
			DimensionID: dim.ID,
			Detail:      fmt.Sprintf("dimension %d (%s) has no values", dim.ID, dim.Name),
		})
	}

	table := make(map[SKUID]ValueID)
	x.valueOfSKU[dim.ID] = table
	out := Dimension{ID: dim.ID, Name: dim.Name, Values: make([]Value, 0, len(dim.Values))}

	for _, val := range dim.Values {
		if owner, dup := x.dimensionOfValue[val.ID]; dup {
			warnings.add(Warning{
				Kind:        WarnDuplicateValue,
				DimensionID: dim.ID,
				ValueID:     val.ID,
				Detail:      fmt.Sprintf("value %d already belongs to dimension %d", val.ID, owner),
			})
			continue
		}

		set := make(skuSet, len(val.SKUIDs))
		for _, id := range val.SKUIDs {
			if _, known := x.skusByID[id]; !known {
				warnings.add(Warning{
					Kind:        WarnUnknownSKU,
					DimensionID: dim.ID,
					ValueID:     val.ID,
					SKUID:       id,
					Detail:      fmt.Sprintf("value %d (%s) references missing sku %d", val.ID, val.Name, id),
				})
				continue
			}
			if prev, taken := table[id]; taken && prev != val.ID {
				warnings.add(Warning{
					Kind:        WarnAmbiguousSKU,
					DimensionID: dim.ID,
					ValueID:     val.ID,
					SKUID:       id,
					Detail:      fmt.Sprintf("sku %d listed under values %d and %d of dimension %d", id, prev, val.ID, dim.ID),
				})
			}
			table[id] = val.ID
			set[id] = struct{}{}
		}
		if len(set) == 0 {
			warnings.add(Warning{
				Kind:        WarnValueWithoutSKU,
				DimensionID: dim.ID,
				ValueID:     val.ID,
				Detail:      fmt.Sprintf("value %d (%s) has no purchasable sku", val.ID, val.Name),
			})
		}

		stored := Value{ID: val.ID, Name: val.Name, SKUIDs: slices.Clone(val.SKUIDs)}
		x.dimensionOfValue[val.ID] = dim.ID
		x.valueByID[val.ID] = stored
		x.skusOfValue[val.ID] = set
		out.Values = append(out.Values, stored)
	}
	return out
}

// orderDimensions moves the first primary dimension to the front. The rest
// keep their input order.
func orderDimensions(dims []Dimension) []Dimension {
	primary := slices.IndexFunc(dims, Dimension.IsPrimary)
	if primary <= 0 {
		return dims
	}
	out := make([]Dimension, 0, len(dims))
	out = append(out, dims[primary])
	out = append(out, dims[:primary]...)
	out = append(out, dims[primary+1:]...)
	return out
}

// Dimensions returns the dimensions in display order.
func (x *Index) Dimensions() []Dimension {
	return slices.Clone(x.dimensions)
}

func (x *Index) DimensionCount() int {
	return len(x.dimensions)
}

// DimensionIndex returns the display position of dim.
func (x *Index) DimensionIndex(dim DimensionID) (int, bool) {
	i, ok := x.position[dim]
	return i, ok
}

// DimensionOf returns the dimension that owns value.
func (x *Index) DimensionOf(value ValueID) (DimensionID, bool) {
	d, ok := x.dimensionOfValue[value]
	return d, ok
}

func (x *Index) Value(id ValueID) (Value, bool) {
	v, ok := x.valueByID[id]
	return v, ok
}

func (x *Index) SKU(id SKUID) (SKU, bool) {
	s, ok := x.skusByID[id]
	return s, ok
}

// SKUs returns the known SKUs in input order.
func (x *Index) SKUs() []SKU {
	return slices.Clone(x.skus)
}

func (x *Index) SKUCount() int {
	return len(x.skusByID)
}

// ValueOfSKU returns the value of dim that the SKU carries.
func (x *Index) ValueOfSKU(dim DimensionID, sku SKUID) (ValueID, bool) {
	v, ok := x.valueOfSKU[dim][sku]
	return v, ok
}

package variant

import "slices"

type skuSet map[SKUID]struct{}

// intersect returns a ∩ b. A nil a stands for the universe of known SKUs.
func intersect(a, b skuSet) skuSet {
	if a == nil {
		out := make(skuSet, len(b))
		for id := range b {
			out[id] = struct{}{}
		}
		return out
	}
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(skuSet, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// ValueSet is an unordered set of value ids.
type ValueSet map[ValueID]struct{}

func (s ValueSet) Has(id ValueID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending id order.
func (s ValueSet) Sorted() []ValueID {
	out := make([]ValueID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// AvailableValueIDs returns the values of dim that stay reachable given the
// chosen values of every other dimension. The choice for dim itself is
// ignored. An unknown dimension, or an empty intersection, yields an empty set.
func (x *Index) AvailableValueIDs(dim DimensionID, sel Selection) ValueSet {
	out := ValueSet{}
	table, ok := x.valueOfSKU[dim]
	if !ok {
		return out
	}

	var candidates skuSet
	for _, v := range sel {
		owner, known := x.dimensionOfValue[v]
		if !known || owner == dim {
			continue
		}
		candidates = intersect(candidates, x.skusOfValue[v])
	}

	if candidates == nil {
		for _, v := range table {
			out[v] = struct{}{}
		}
		return out
	}
	for id := range candidates {
		if v, ok := table[id]; ok {
			out[v] = struct{}{}
		}
	}
	return out
}

// ResolvedSKU returns the single SKU compatible with every chosen value.
// A product with exactly one SKU resolves to it unconditionally. An empty,
// under-specified or over-ambiguous selection resolves to nothing.
func (x *Index) ResolvedSKU(sel Selection) (SKU, bool) {
	if len(x.skus) == 1 {
		return x.skus[0], true
	}
	if len(sel) == 0 {
		return SKU{}, false
	}

	var remaining skuSet
	for _, v := range sel {
		remaining = intersect(remaining, x.skusOfValue[v])
		if len(remaining) == 0 {
			return SKU{}, false
		}
	}
	if len(remaining) != 1 {
		return SKU{}, false
	}
	for id := range remaining {
		sku, ok := x.skusByID[id]
		return sku, ok
	}
	return SKU{}, false
}

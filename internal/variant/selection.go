package variant

import (
	"slices"
	"strings"
)

// Selection holds at most one chosen value per dimension, kept in display
// order of the dimensions.
type Selection []ValueID

func (s Selection) Contains(id ValueID) bool {
	return slices.Contains(s, id)
}

func (s Selection) Equal(o Selection) bool {
	return slices.Equal(s, o)
}

// IDs returns a copy of the chosen ids.
func (s Selection) IDs() []ValueID {
	if s == nil {
		return []ValueID{}
	}
	return slices.Clone(s)
}

// Choice is a shopper picking value at the dimension shown at DimensionIndex.
type Choice struct {
	ValueID        ValueID `json:"value_id"`
	DimensionIndex int     `json:"dimension_index"`
}

// ApplyChoice returns the selection that results from applying c to sel.
//
// Choosing on the first dimension is a hard reset: the result holds only the
// new value. Choosing on any later dimension replaces that dimension's prior
// value and keeps every other choice. A value that is unknown, or that does
// not belong to the dimension at c.DimensionIndex, leaves sel unchanged.
func ApplyChoice(x *Index, sel Selection, c Choice) Selection {
	owner, ok := x.dimensionOfValue[c.ValueID]
	if !ok {
		return sel
	}
	if c.DimensionIndex < 0 || c.DimensionIndex >= len(x.dimensions) {
		return sel
	}
	if x.dimensions[c.DimensionIndex].ID != owner {
		return sel
	}
	if c.DimensionIndex == 0 {
		return Selection{c.ValueID}
	}

	next := make(Selection, 0, len(sel)+1)
	for _, v := range sel {
		if d, known := x.dimensionOfValue[v]; known && d == owner {
			continue
		}
		next = append(next, v)
	}
	next = append(next, c.ValueID)
	return x.normalize(next)
}

// normalize orders sel by dimension position. Ids without a known dimension
// sort last.
func (x *Index) normalize(sel Selection) Selection {
	pos := func(v ValueID) int {
		if d, ok := x.dimensionOfValue[v]; ok {
			return x.position[d]
		}
		return len(x.dimensions)
	}
	slices.SortStableFunc(sel, func(a, b ValueID) int {
		return pos(a) - pos(b)
	})
	return sel
}

// DefaultSelection picks the first value, in catalog order, of the first
// dimension. It is empty when the product has no dimensions.
func (x *Index) DefaultSelection() Selection {
	if len(x.dimensions) == 0 || len(x.dimensions[0].Values) == 0 {
		return Selection{}
	}
	return Selection{x.dimensions[0].Values[0].ID}
}

// SelectionFrom rebuilds a selection from untrusted ids. Unknown ids are
// dropped and the last id given for a dimension wins.
func (x *Index) SelectionFrom(ids []ValueID) Selection {
	latest := make(map[DimensionID]ValueID, len(ids))
	for _, id := range ids {
		if d, ok := x.dimensionOfValue[id]; ok {
			latest[d] = id
		}
	}
	sel := Selection{}
	for i, dim := range x.dimensions {
		if v, ok := latest[dim.ID]; ok {
			sel = ApplyChoice(x, sel, Choice{ValueID: v, DimensionIndex: i})
		}
	}
	return sel
}

func (x *Index) chosenIn(sel Selection, dim DimensionID) (ValueID, bool) {
	for _, v := range sel {
		if d, ok := x.dimensionOfValue[v]; ok && d == dim {
			return v, true
		}
	}
	return 0, false
}

// Item is one selectable value as shown to the shopper.
type Item struct {
	ID           ValueID `json:"id"`
	DisplayValue string  `json:"display_value"`
	Selected     bool    `json:"selected"`
}

// Section lists the currently available values of one dimension.
type Section struct {
	DimensionID DimensionID `json:"dimension_id"`
	Title       string      `json:"dimension_title"`
	Primary     bool        `json:"primary"`
	Items       []Item      `json:"items"`
}

// View is the derived state for a selection.
type View struct {
	Selection           []ValueID `json:"selection"`
	Sections            []Section `json:"sections"`
	ResolvedSKU         *SKU      `json:"resolved_sku"`
	IsSelectionComplete bool      `json:"is_selection_complete"`
	ResolvedMediaURLs   []string  `json:"resolved_media_urls"`
}

// NewView derives the per-dimension sections, resolved SKU and media for sel.
// A dimension with no available values does not hold back completeness.
func NewView(x *Index, sel Selection) View {
	view := View{
		Selection:           sel.IDs(),
		Sections:            make([]Section, 0, len(x.dimensions)),
		IsSelectionComplete: true,
	}

	for _, dim := range x.dimensions {
		available := x.AvailableValueIDs(dim.ID, sel)
		values := make([]Value, 0, len(available))
		for _, v := range dim.Values {
			if available.Has(v.ID) {
				values = append(values, v)
			}
		}
		primary := dim.IsPrimary()
		if !primary {
			values = SortBy(values, func(v Value) string { return v.Name })
		}

		section := Section{
			DimensionID: dim.ID,
			Title:       dim.Name,
			Primary:     primary,
			Items:       make([]Item, 0, len(values)),
		}
		for _, v := range values {
			section.Items = append(section.Items, Item{
				ID:           v.ID,
				DisplayValue: strings.ToUpper(v.Name),
				Selected:     sel.Contains(v.ID),
			})
		}
		view.Sections = append(view.Sections, section)

		if _, chosen := x.chosenIn(sel, dim.ID); !chosen && len(section.Items) > 0 {
			view.IsSelectionComplete = false
		}
	}

	if sku, ok := x.ResolvedSKU(sel); ok {
		view.ResolvedSKU = &sku
		view.ResolvedMediaURLs = sku.PrimaryMedia()
	}
	return view
}

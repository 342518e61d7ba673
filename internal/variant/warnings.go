package variant

import "fmt"

// WarningKind classifies a data-quality problem found while indexing or
// decoding catalog data. Warnings never stop a build.
type WarningKind string

const (
	WarnUnknownSKU         WarningKind = "unknown_sku"
	WarnDuplicateSKU       WarningKind = "duplicate_sku"
	WarnEmptyDimension     WarningKind = "empty_dimension"
	WarnDuplicateDimension WarningKind = "duplicate_dimension"
	WarnDuplicateValue     WarningKind = "duplicate_value"
	WarnValueWithoutSKU    WarningKind = "value_without_sku"
	WarnAmbiguousSKU       WarningKind = "ambiguous_sku"
	WarnMalformedField     WarningKind = "malformed_field"
)

type Warning struct {
	Kind        WarningKind `json:"kind"`
	DimensionID DimensionID `json:"dimension_id,omitempty"`
	ValueID     ValueID     `json:"value_id,omitempty"`
	SKUID       SKUID       `json:"sku_id,omitempty"`
	Detail      string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}

type Warnings []Warning

// Count returns how many warnings are of kind.
func (ws Warnings) Count(kind WarningKind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// ByKind groups warning counts by kind.
func (ws Warnings) ByKind() map[WarningKind]int {
	out := make(map[WarningKind]int)
	for _, w := range ws {
		out[w.Kind]++
	}
	return out
}

func (ws *Warnings) add(w Warning) {
	*ws = append(*ws, w)
}

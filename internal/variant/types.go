// Package variant resolves purchasable SKUs from a product's independent
// purchase dimensions (color, size, ...). It builds an immutable index over
// the catalog data, narrows selectable values as choices are made and maps a
// complete selection to a single SKU. Nothing in this package performs I/O.
package variant

import "strings"

type (
	DimensionID int64
	ValueID     int64
	SKUID       int64
)

// Value is one option within a dimension, e.g. "Red". IDs are unique across
// the whole product, not just within their dimension.
type Value struct {
	ID     ValueID `json:"id"`
	Name   string  `json:"name"`
	SKUIDs []SKUID `json:"sku_ids"`
}

// Dimension is an independent axis of product configuration.
type Dimension struct {
	ID     DimensionID `json:"id"`
	Name   string      `json:"name"`
	Values []Value     `json:"values"`
}

// IsPrimary reports whether d is the color-like dimension. Primary dimensions
// are ordered first and keep their catalog value order.
func (d Dimension) IsPrimary() bool {
	name := strings.TrimSpace(d.Name)
	return strings.EqualFold(name, "color") || strings.EqualFold(name, "colour")
}

type MediaGroup struct {
	URLs []string `json:"urls"`
}

// SKU is the purchasable unit produced by one value per dimension.
type SKU struct {
	ID             SKUID        `json:"id"`
	Code           string       `json:"code,omitempty"`
	Name           string       `json:"name,omitempty"`
	Price          float64      `json:"price"`
	CompareAtPrice float64      `json:"compare_at_price,omitempty"`
	Currency       string       `json:"currency,omitempty"`
	InStock        bool         `json:"in_stock"`
	Media          []MediaGroup `json:"media,omitempty"`
}

// PrimaryMedia returns the URLs of the SKU's first media group.
func (s SKU) PrimaryMedia() []string {
	if len(s.Media) == 0 {
		return nil
	}
	return append([]string(nil), s.Media[0].URLs...)
}

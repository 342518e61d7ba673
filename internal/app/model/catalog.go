package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ikkim/shoplive-catalog/internal/variant"
)

// MediaURLResolver turns a storage key into a URL the storefront can load.
type MediaURLResolver interface {
	URLFor(key string) (string, error)
}

// ToCatalog converts a product loaded with its variant graph into engine
// input. Dimensions and values keep the order they were loaded in.
// resolver may be nil when every media row carries a URL.
func ToCatalog(product *Product, resolver MediaURLResolver) ([]variant.Dimension, []variant.SKU, error) {
	dims := make([]variant.Dimension, 0, len(product.Dimensions))
	for _, d := range product.Dimensions {
		dim := variant.Dimension{
			ID:     variant.DimensionID(d.ID),
			Name:   d.Name,
			Values: make([]variant.Value, 0, len(d.Values)),
		}
		for _, v := range d.Values {
			value := variant.Value{
				ID:     variant.ValueID(v.ID),
				Name:   v.Name,
				SKUIDs: make([]variant.SKUID, 0, len(v.SKUs)),
			}
			for _, s := range v.SKUs {
				value.SKUIDs = append(value.SKUIDs, variant.SKUID(s.ID))
			}
			dim.Values = append(dim.Values, value)
		}
		dims = append(dims, dim)
	}

	skus := make([]variant.SKU, 0, len(product.SKUs))
	for _, s := range product.SKUs {
		media, err := mediaGroups(s.Media, resolver)
		if err != nil {
			return nil, nil, fmt.Errorf("sku %d: %w", s.ID, err)
		}
		skus = append(skus, variant.SKU{
			ID:             variant.SKUID(s.ID),
			Code:           s.Code,
			Name:           s.Name,
			Price:          s.Price,
			CompareAtPrice: s.CompareAtPrice,
			Currency:       s.Currency,
			InStock:        s.InStock(),
			Media:          media,
		})
	}

	return dims, skus, nil
}

func mediaGroups(rows []SKUMedia, resolver MediaURLResolver) ([]variant.MediaGroup, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b SKUMedia) int {
		if c := cmp.Compare(a.GroupIndex, b.GroupIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	var groups []variant.MediaGroup
	current := -1
	for _, m := range sorted {
		url := m.URL
		if url == "" && m.StorageKey != "" {
			if resolver == nil {
				return nil, fmt.Errorf("media %d has no URL and no resolver", m.ID)
			}
			resolved, err := resolver.URLFor(m.StorageKey)
			if err != nil {
				return nil, err
			}
			url = resolved
		}
		if url == "" {
			continue
		}
		if len(groups) == 0 || m.GroupIndex != current {
			groups = append(groups, variant.MediaGroup{})
			current = m.GroupIndex
		}
		groups[len(groups)-1].URLs = append(groups[len(groups)-1].URLs, url)
	}
	return groups, nil
}

// FromCatalog turns decoded engine input back into rows for a new product.
// Payload ids only link values to SKUs; rows get fresh ids on create.
// A SKU without a code is named after its id and in_stock becomes a stock of
// one or zero. The first SKU wins when ids repeat, and references to ids no
// SKU carries are dropped.
func FromCatalog(dims []variant.Dimension, skus []variant.SKU) ([]VariantDimension, []SKU) {
	codes := make(map[variant.SKUID]string, len(skus))
	rows := make([]SKU, 0, len(skus))
	for _, s := range skus {
		if _, dup := codes[s.ID]; dup {
			continue
		}
		code := strings.TrimSpace(s.Code)
		if code == "" {
			code = fmt.Sprintf("SKU-%d", s.ID)
		}
		codes[s.ID] = code

		row := SKU{
			Code:           code,
			Name:           s.Name,
			Price:          s.Price,
			CompareAtPrice: s.CompareAtPrice,
			Currency:       s.Currency,
		}
		if s.InStock {
			row.StockQuantity = 1
		}
		for g, group := range s.Media {
			for p, url := range group.URLs {
				row.Media = append(row.Media, SKUMedia{GroupIndex: g, Position: p, URL: url})
			}
		}
		rows = append(rows, row)
	}

	out := make([]VariantDimension, 0, len(dims))
	for i, d := range dims {
		dim := VariantDimension{
			Name:     d.Name,
			Position: i,
			Values:   make([]VariantValue, 0, len(d.Values)),
		}
		for j, v := range d.Values {
			value := VariantValue{Name: v.Name, Position: j}
			for _, id := range v.SKUIDs {
				code, ok := codes[id]
				if !ok || slices.Contains(value.SKUCodes, code) {
					continue
				}
				value.SKUCodes = append(value.SKUCodes, code)
			}
			dim.Values = append(dim.Values, value)
		}
		out = append(out, dim)
	}
	return out, rows
}

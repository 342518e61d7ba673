package variant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodeCatalog converts a loosely typed catalog payload into dimensions and
// SKUs. Ids and prices may arrive as numbers or strings, and media as a flat
// URL list or as groups. Records that cannot be converted are skipped and
// reported as warnings. Only a payload that is not a JSON object is an error.
func DecodeCatalog(data []byte) ([]Dimension, []SKU, Warnings, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, nil, fmt.Errorf("decode catalog payload: %w", err)
	}

	var warnings Warnings
	dims := decodeDimensions(firstOf(raw, "dimensions", "variants"), &warnings)
	skus := decodeSKUs(firstOf(raw, "skus"), &warnings)
	return dims, skus, warnings, nil
}

func decodeDimensions(v any, warnings *Warnings) []Dimension {
	list, _ := v.([]any)
	dims := make([]Dimension, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			malformed(warnings, fmt.Sprintf("dimensions[%d] is not an object", i))
			continue
		}
		id, ok := asInt(obj["id"])
		if !ok {
			malformed(warnings, fmt.Sprintf("dimensions[%d].id %v is not an integer", i, obj["id"]))
			continue
		}
		dim := Dimension{ID: DimensionID(id), Name: asString(obj["name"])}

		values, _ := obj["values"].([]any)
		for j, rv := range values {
			vobj, ok := rv.(map[string]any)
			if !ok {
				malformed(warnings, fmt.Sprintf("dimensions[%d].values[%d] is not an object", i, j))
				continue
			}
			vid, ok := asInt(vobj["id"])
			if !ok {
				malformed(warnings, fmt.Sprintf("dimensions[%d].values[%d].id %v is not an integer", i, j, vobj["id"]))
				continue
			}
			val := Value{ID: ValueID(vid), Name: asString(vobj["name"])}
			ids, _ := firstOf(vobj, "sku_ids", "skuIds", "skus").([]any)
			for _, rid := range ids {
				sid, ok := asInt(rid)
				if !ok {
					malformed(warnings, fmt.Sprintf("value %d lists sku id %v that is not an integer", vid, rid))
					continue
				}
				val.SKUIDs = append(val.SKUIDs, SKUID(sid))
			}
			dim.Values = append(dim.Values, val)
		}
		dims = append(dims, dim)
	}
	return dims
}

func decodeSKUs(v any, warnings *Warnings) []SKU {
	list, _ := v.([]any)
	skus := make([]SKU, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			malformed(warnings, fmt.Sprintf("skus[%d] is not an object", i))
			continue
		}
		id, ok := asInt(obj["id"])
		if !ok {
			malformed(warnings, fmt.Sprintf("skus[%d].id %v is not an integer", i, obj["id"]))
			continue
		}
		sku := SKU{
			ID:       SKUID(id),
			Code:     asString(firstOf(obj, "code", "sku_code")),
			Name:     asString(obj["name"]),
			Currency: asString(obj["currency"]),
			InStock:  asBool(firstOf(obj, "in_stock", "inStock", "stock")),
		}
		if p := firstOf(obj, "price"); p != nil {
			if f, ok := asFloat(p); ok {
				sku.Price = f
			} else {
				malformed(warnings, fmt.Sprintf("sku %d price %v is not a number", id, p))
			}
		}
		if p := firstOf(obj, "compare_at_price", "compareAtPrice"); p != nil {
			if f, ok := asFloat(p); ok {
				sku.CompareAtPrice = f
			} else {
				malformed(warnings, fmt.Sprintf("sku %d compare_at_price %v is not a number", id, p))
			}
		}
		sku.Media = decodeMedia(firstOf(obj, "media", "media_urls", "mediaUrls"))
		skus = append(skus, sku)
	}
	return skus
}

// decodeMedia accepts ["u1","u2"], [["u1"],["u2"]] or [{"urls":[...]}].
// A flat list becomes a single group.
func decodeMedia(v any) []MediaGroup {
	list, _ := v.([]any)
	if len(list) == 0 {
		return nil
	}
	var flat []string
	var groups []MediaGroup
	for _, item := range list {
		switch t := item.(type) {
		case string:
			flat = append(flat, t)
		case []any:
			groups = append(groups, MediaGroup{URLs: stringList(t)})
		case map[string]any:
			urls, _ := t["urls"].([]any)
			groups = append(groups, MediaGroup{URLs: stringList(urls)})
		}
	}
	if len(flat) > 0 {
		groups = append([]MediaGroup{{URLs: flat}}, groups...)
	}
	return groups
}

func stringList(list []any) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstOf(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func malformed(warnings *Warnings, detail string) {
	warnings.add(Warning{Kind: WarnMalformedField, Detail: detail})
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return i, err == nil
	case float64:
		return floatToInt(t)
	}
	return 0, false
}

// floatToInt accepts whole numbers that fit in int64. 2^63 itself does not.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	case float64:
		return t, true
	}
	return 0, false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f > 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	}
	return false
}

// Package importer turns a product spreadsheet into catalog models. The sheet
// has one row per SKU:
//
//	product | sku_code | price | stock | media_urls | <dimension> ...
//
// Every column after media_urls is a dimension named by its header cell.
package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/shoplive-catalog/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const dimensionStart = 5

var fixedColumns = []string{"product", "sku_code", "price", "stock", "media_urls"}

// RowError records a skipped row. Row numbers are 1-based like the sheet.
type RowError struct {
	Row    int
	Reason string
}

type Result struct {
	Products []*model.Product
	Skipped  []RowError
}

func (r *Result) SKUCount() int {
	n := 0
	for _, p := range r.Products {
		n += len(p.SKUs)
	}
	return n
}

// ReadXLSX returns the rows of the first sheet.
func ReadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

// ParseRows groups SKU rows into products. Dimension and value order follow
// first appearance; a blank dimension cell leaves the SKU out of that
// dimension.
func ParseRows(rows [][]string) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}

	header := rows[0]
	if len(header) < dimensionStart {
		return nil, fmt.Errorf("header needs %d fixed columns, got %d", dimensionStart, len(header))
	}
	for i, want := range fixedColumns {
		if got := strings.ToLower(strings.TrimSpace(header[i])); got != want {
			return nil, fmt.Errorf("column %d must be %q, got %q", i+1, want, header[i])
		}
	}
	dimNames := make([]string, 0, len(header)-dimensionStart)
	for _, name := range header[dimensionStart:] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("dimension column %d has no name", dimensionStart+len(dimNames)+1)
		}
		dimNames = append(dimNames, name)
	}

	result := &Result{}
	builders := make(map[string]*productBuilder)

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}

		name, code := cell(row, 0), cell(row, 1)
		if name == "" || code == "" {
			result.skip(rowNum, "product and sku_code are required")
			continue
		}

		price, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, 2), ",", ""), 64)
		if err != nil || price < 0 {
			result.skip(rowNum, fmt.Sprintf("invalid price %q", cell(row, 2)))
			continue
		}

		stock := 0
		if raw := cell(row, 3); raw != "" {
			stock, err = strconv.Atoi(raw)
			if err != nil || stock < 0 {
				result.skip(rowNum, fmt.Sprintf("invalid stock %q", raw))
				continue
			}
		}

		b, ok := builders[name]
		if !ok {
			b = newProductBuilder(name, dimNames)
			builders[name] = b
			result.Products = append(result.Products, b.product)
		}

		if b.codes[code] {
			result.skip(rowNum, fmt.Sprintf("duplicate sku_code %s", code))
			continue
		}
		b.codes[code] = true

		sku := model.SKU{Code: code, Price: price, StockQuantity: stock}
		for pos, url := range splitList(cell(row, 4)) {
			sku.Media = append(sku.Media, model.SKUMedia{Position: pos, URL: url})
		}
		b.product.SKUs = append(b.product.SKUs, sku)

		for d := range dimNames {
			if value := cell(row, dimensionStart+d); value != "" {
				b.link(d, value, code)
			}
		}
	}

	for _, b := range builders {
		b.dropEmptyDimensions()
	}
	return result, nil
}

func (r *Result) skip(row int, reason string) {
	r.Skipped = append(r.Skipped, RowError{Row: row, Reason: reason})
}

type productBuilder struct {
	product *model.Product
	codes   map[string]bool
	// values[d][name] indexes product.Dimensions[d].Values
	values []map[string]int
}

func newProductBuilder(name string, dimNames []string) *productBuilder {
	b := &productBuilder{
		product: &model.Product{Name: name},
		codes:   make(map[string]bool),
		values:  make([]map[string]int, len(dimNames)),
	}
	for d, dim := range dimNames {
		b.product.Dimensions = append(b.product.Dimensions, model.VariantDimension{Name: dim, Position: d})
		b.values[d] = make(map[string]int)
	}
	return b
}

func (b *productBuilder) link(d int, value, code string) {
	dim := &b.product.Dimensions[d]
	idx, ok := b.values[d][value]
	if !ok {
		idx = len(dim.Values)
		b.values[d][value] = idx
		dim.Values = append(dim.Values, model.VariantValue{Name: value, Position: idx})
	}
	dim.Values[idx].SKUCodes = append(dim.Values[idx].SKUCodes, code)
}

// dropEmptyDimensions removes dimension columns this product never fills.
func (b *productBuilder) dropEmptyDimensions() {
	kept := b.product.Dimensions[:0]
	for _, dim := range b.product.Dimensions {
		if len(dim.Values) > 0 {
			dim.Position = len(kept)
			kept = append(kept, dim)
		}
	}
	b.product.Dimensions = kept
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// splitList splits "a.jpg | b.jpg" or "a.jpg, b.jpg".
func splitList(raw string) []string {
	sep := "|"
	if !strings.Contains(raw, sep) {
		sep = ","
	}
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

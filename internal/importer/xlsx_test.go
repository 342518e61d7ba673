package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var header = []string{"product", "sku_code", "price", "stock", "media_urls", "Color", "Size"}

func TestParseRows(t *testing.T) {
	rows := [][]string{
		header,
		{"Crew Tee", "TEE-RED-S", "19,000", "4", "https://cdn.example/red-s.jpg | https://cdn.example/red-s-back.jpg", "Red", "S"},
		{"Crew Tee", "TEE-RED-M", "19000", "", "", "Red", "M"},
		{"Crew Tee", "TEE-BLUE-S", "21000", "1", "", "Blue", "S"},
		{},
		{"Wool Scarf", "SCARF", "39000", "3", "https://cdn.example/scarf.jpg", "Gray"},
		{"Crew Tee", "TEE-RED-S", "19000", "1", "", "Red", "S"},
		{"Crew Tee", "", "19000", "1"},
		{"Crew Tee", "TEE-GREEN-S", "free", "1", "", "Green", "S"},
		{"Crew Tee", "TEE-GREEN-M", "19000", "-2", "", "Green", "M"},
	}

	result, err := ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, 4, result.SKUCount())

	tee := result.Products[0]
	assert.Equal(t, "Crew Tee", tee.Name)
	require.Len(t, tee.SKUs, 3)
	assert.Equal(t, 19000.0, tee.SKUs[0].Price)
	assert.Equal(t, 0, tee.SKUs[1].StockQuantity)
	require.Len(t, tee.SKUs[0].Media, 2)
	assert.Equal(t, 1, tee.SKUs[0].Media[1].Position)

	require.Len(t, tee.Dimensions, 2)
	color := tee.Dimensions[0]
	assert.Equal(t, "Color", color.Name)
	require.Len(t, color.Values, 2)
	assert.Equal(t, "Red", color.Values[0].Name)
	assert.Equal(t, []string{"TEE-RED-S", "TEE-RED-M"}, color.Values[0].SKUCodes)
	assert.Equal(t, 1, color.Values[1].Position)

	scarf := result.Products[1]
	require.Len(t, scarf.Dimensions, 1, "unused Size column dropped")
	assert.Equal(t, "Color", scarf.Dimensions[0].Name)

	require.Len(t, result.Skipped, 4)
	assert.Equal(t, 7, result.Skipped[0].Row)
	assert.Contains(t, result.Skipped[0].Reason, "duplicate")
	assert.Equal(t, 8, result.Skipped[1].Row)
	assert.Contains(t, result.Skipped[2].Reason, "price")
	assert.Contains(t, result.Skipped[3].Reason, "stock")
}

func TestParseRows_BadHeader(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"Empty", nil},
		{"Too few columns", [][]string{{"product", "sku_code"}}},
		{"Wrong column", [][]string{{"product", "code", "price", "stock", "media_urls"}}},
		{"Unnamed dimension", [][]string{{"product", "sku_code", "price", "stock", "media_urls", " "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRows(tt.rows)
			assert.Error(t, err)
		})
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Crew Tee", "TEE-RED-S", 19000, 4, "", "Red", "S"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	result, err := ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, 19000.0, result.Products[0].SKUs[0].Price)
	assert.Equal(t, 4, result.Products[0].SKUs[0].StockQuantity)

	_, err = ReadXLSX(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"medidesk/internal/domain"
)

func TestInventoryWorkbook(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	para, err := domain.NewProduct(domain.ProductInput{
		Name: "Paracétamol 500mg", Category: "Antalgiques", Quantity: 15, MinStock: 50,
		Unit: "boîte", Price: decimal.RequireFromString("2.5"), Supplier: "Pharma Distrib", ExpiryDate: "2027-06-30",
	}, at)
	require.NoError(t, err)
	gloves, err := domain.NewProduct(domain.ProductInput{Name: "Gants", Quantity: 0, MinStock: 10}, at)
	require.NoError(t, err)

	data, err := InventoryWorkbook([]domain.Product{para, gloves})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{InventorySheet}, f.GetSheetList())
	rows, err := f.GetRows(InventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, InventoryHeader, rows[0])
	assert.Equal(t, []string{
		"Paracétamol 500mg", "Antalgiques", "15", "50", "boîte", "2.5",
		"Pharma Distrib", "2027-06-30", "low_stock", "2026-10-18 09:30",
	}, rows[1])
	assert.Equal(t, "Gants", rows[2][0])
	assert.Equal(t, "out_of_stock", rows[2][8])

	styleID, err := f.GetCellStyle(InventorySheet, "C1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestInventoryWorkbook_Empty(t *testing.T) {
	data, err := InventoryWorkbook(nil)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(InventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, InventoryHeader, rows[0])
}

package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"medidesk/internal/domain"
)

const InventorySheet = "Inventory"

// InventoryHeader порядок колонок выгрузки склада
var InventoryHeader = []string{
	"Name", "Category", "Quantity", "Min Stock", "Unit", "Price",
	"Supplier", "Expiry", "Status", "Last Restocked",
}

var inventoryWidths = []float64{28, 18, 10, 10, 10, 10, 22, 12, 14, 20}

const restockedLayout = "2006-01-02 15:04"

// InventoryWorkbook строит xlsx с одной строкой на товар в переданном порядке
func InventoryWorkbook(products []domain.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InventorySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	header := make([]any, len(InventoryHeader))
	for i, h := range InventoryHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(InventorySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(InventoryHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(InventorySheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, w := range inventoryWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(InventorySheet, col, col, w); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		restocked := ""
		if p.LastRestocked != nil {
			restocked = p.LastRestocked.Format(restockedLayout)
		}
		row := []any{
			p.Name, p.Category, p.Quantity, p.MinStock, p.Unit,
			p.Price.InexactFloat64(), p.Supplier, p.ExpiryDate,
			string(p.Status()), restocked,
		}
		if err := f.SetSheetRow(InventorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(InventorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const ordersSheet = "Orders"

var orderHeaders = []string{"ID", "Created", "Client", "Title", "Status", "Phone", "Costume", "From", "To"}

// OrderRow is one line of the orders workbook.
type OrderRow struct {
	ID           int64
	CreatedAt    time.Time
	UserEmail    string
	Title        string
	Status       string
	Phone        string
	CostumeTitle string
	DateFrom     string
	DateTo       string
}

// OrdersWorkbook renders rows into an .xlsx document.
func OrdersWorkbook(rows []OrderRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ordersSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range orderHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ordersSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(orderHeaders), 1)
		_ = f.SetCellStyle(ordersSheet, "A1", last, headerStyle)
	}

	for r, row := range rows {
		values := []interface{}{
			row.ID,
			row.CreatedAt.UTC().Format("2006-01-02 15:04"),
			row.UserEmail,
			row.Title,
			row.Status,
			row.Phone,
			row.CostumeTitle,
			row.DateFrom,
			row.DateTo,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(ordersSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}

	_ = f.SetColWidth(ordersSheet, "A", "A", 8)
	_ = f.SetColWidth(ordersSheet, "B", "C", 22)
	_ = f.SetColWidth(ordersSheet, "D", "D", 40)
	_ = f.SetColWidth(ordersSheet, "E", "I", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

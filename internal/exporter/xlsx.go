// Package exporter builds spreadsheet exports of the portal's reports.
// Exports operate on already-filtered rows; visibility scoping happened
// before the data got here.
package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rslportal/internal/reports"
)

const ordersSheet = "Orders"

var ordersHeader = []string{
	"Order ID", "Customer", "Email", "Status", "Date", "Items", "Stations", "Amount",
}

// OrdersWorkbook builds an XLSX workbook of visible orders with their
// customer details. The caller owns the returned file and must Close it.
func OrdersWorkbook(rows []reports.OrderWithCustomer) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, title := range ordersHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(ordersSheet, cell, title); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.CustomerName,
			row.CustomerEmail,
			string(row.Status),
			row.Date.Format(time.DateOnly),
			strings.Join(row.Items, ", "),
			row.Stations,
			row.Amount,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(ordersSheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	return f, nil
}

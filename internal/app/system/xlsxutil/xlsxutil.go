// Package xlsxutil writes styled spreadsheet exports.
package xlsxutil

import (
	"fmt"
	"io"

	"github.com/condopay/condopay/internal/app/system/csvutil"
	"github.com/xuri/excelize/v2"
)

// PaymentsSheet is the sheet name of payment exports.
const PaymentsSheet = "Payments"

var paymentColumnWidths = []float64{
	28, // Tenant
	10, // Unit
	12, // Amount
	12, // Status
	14, // Date
	40, // Transaction ID
}

// WritePayments writes rows as a workbook with one styled sheet, using the
// same columns as the CSV export.
func WritePayments(w io.Writer, rows []csvutil.PaymentRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(PaymentsSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	for col, header := range csvutil.PaymentHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(PaymentsSheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(PaymentsSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, row := range rows {
		r := i + 2
		rec := row.Record()
		for col, v := range rec {
			cell, err := excelize.CoordinatesToCellName(col+1, r)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			var value any = v
			if col == 2 {
				value = row.Amount
			}
			if err := f.SetCellValue(PaymentsSheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
		amountCell, _ := excelize.CoordinatesToCellName(3, r)
		if err := f.SetCellStyle(PaymentsSheet, amountCell, amountCell, moneyStyle); err != nil {
			return fmt.Errorf("failed to set amount style: %w", err)
		}
	}

	for i, width := range paymentColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(PaymentsSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.SetPanes(PaymentsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

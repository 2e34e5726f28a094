package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/harborfood/pantry-backend/internal/pantry"
)

const reportSheet = "Distribution"

// ReportXLSX renders a distribution report as a spreadsheet with a totals
// block, a per-item section and a per-client section.
func ReportXLSX(w io.Writer, report pantry.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(reportSheet); err != nil {
		return fmt.Errorf("creating report sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	set := func(cell string, value any) {
		f.SetCellValue(reportSheet, cell, value)
	}

	set("A1", "From")
	set("B1", report.From)
	set("A2", "To")
	set("B2", report.To)
	set("A3", "Transactions")
	set("B3", report.TransactionCount)
	set("A4", "Units Distributed")
	set("B4", report.TotalUnits)
	set("A5", "Total Weight (lbs)")
	set("B5", report.TotalWeightLbs)
	set("A6", "Total Value (USD)")
	set("B6", report.TotalValueUsd)

	row := 8
	set(fmt.Sprintf("A%d", row), "Item")
	set(fmt.Sprintf("B%d", row), "Quantity")
	for _, item := range report.Items {
		row++
		set(fmt.Sprintf("A%d", row), item.Name)
		set(fmt.Sprintf("B%d", row), item.Quantity)
	}

	row += 2
	set(fmt.Sprintf("A%d", row), "Client")
	set(fmt.Sprintf("B%d", row), "Visits")
	set(fmt.Sprintf("C%d", row), "Units")
	for _, client := range report.Clients {
		row++
		set(fmt.Sprintf("A%d", row), client.Name)
		set(fmt.Sprintf("B%d", row), client.Visits)
		set(fmt.Sprintf("C%d", row), client.Units)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

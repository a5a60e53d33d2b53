package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"leadexport/pkg/contracts/domain"
)

// MIMETypeXLSX is the content type of workbook exports
const MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookSheet is the name of the single sheet in workbook exports
const WorkbookSheet = "Captures"

// BuildWorkbook writes an .xlsx workbook with the same columns as BuildCSV.
// Cells hold plain strings, no CSV escaping is applied.
func BuildWorkbook(w io.Writer, records []domain.CaptureRecord, format TimestampFormatter) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", WorkbookSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := append([]string(nil), Headers...)
	if err := f.SetSheetRow(WorkbookSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(WorkbookSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(WorkbookSheet, "A", lastCol, 22); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(record, format)
		if err := f.SetSheetRow(WorkbookSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/transcriptr/internal/transcript"
)

const sheetName = "Units"

// WriteXLSX writes the records to a single-sheet workbook.
func WriteXLSX(w io.Writer, records []transcript.UnitRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	header := transcript.Header()
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, style)
	}

	// Marks and credit points stay text, same as in the CSV.
	for r, rec := range records {
		for c, v := range rec.Values() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", r+1, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12) // unit_code
	_ = f.SetColWidth(sheetName, "B", "B", 40) // unit_name
	_ = f.SetColWidth(sheetName, "C", "E", 12) // mark, grade, credit_points
	_ = f.SetColWidth(sheetName, "F", "F", 36) // degree
	_ = f.SetColWidth(sheetName, "G", "G", 18) // semester
	_ = f.SetColWidth(sheetName, "H", "H", 8)  // year

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// ReadXLSX reads back a workbook produced by WriteXLSX.
func ReadXLSX(r io.Reader) ([]transcript.UnitRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx: missing header row")
	}

	header := transcript.Header()
	for i, h := range header {
		if i >= len(rows[0]) || rows[0][i] != h {
			return nil, fmt.Errorf("xlsx: unexpected header %v", rows[0])
		}
	}

	records := make([]transcript.UnitRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows drops trailing empty cells.
		vals := make([]string, len(header))
		copy(vals, row)
		records = append(records, transcript.UnitRecord{
			UnitCode:     vals[0],
			UnitName:     vals[1],
			Mark:         vals[2],
			Grade:        vals[3],
			CreditPoints: vals[4],
			Degree:       vals[5],
			Semester:     vals[6],
			Year:         vals[7],
		})
	}
	return records, nil
}

package console

import (
	"fmt"
	"time"

	"github.com/ettle/strcase"
	"github.com/xuri/excelize/v2"
)

const maxSheetNameLength = 31

// ExportRows writes a header row and one row per display row into an xlsx workbook.
func ExportRows(sheet string, columns []Column, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(sheet)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return nil, fmt.Errorf("console: export sheet name: %w", err)
	}
	for i, col := range columns {
		if err := setCell(f, name, i+1, 1, col.Label); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for i, col := range columns {
			value := row.Cells[col.Key]
			if i < len(row.Values) {
				value = row.Values[i]
			}
			if err := setCell(f, name, i+1, r+2, value); err != nil {
				return nil, err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("console: export write: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportSnapshot exports the rows currently held by a list.
func ExportSnapshot(snap ListSnapshot) ([]byte, error) {
	return ExportRows(snap.Title, snap.Columns, snap.Rows)
}

// ExportFileName returns "<list>-<date>.xlsx".
func ExportFileName(code string, at time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", strcase.ToKebab(code), at.Format("2006-01-02"))
}

// ExportContentType is the media type of exported workbooks.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func setCell(f *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("console: export cell: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("console: export cell %s: %w", cell, err)
	}
	return nil
}

func sheetName(title string) string {
	if title == "" {
		title = "Export"
	}
	clean := make([]rune, 0, len(title))
	for _, r := range title {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		clean = append(clean, r)
	}
	if len(clean) > maxSheetNameLength {
		clean = clean[:maxSheetNameLength]
	}
	if len(clean) == 0 {
		return "Export"
	}
	return string(clean)
}

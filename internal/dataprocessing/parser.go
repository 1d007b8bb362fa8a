package dataprocessing

import (
	"log/slog"
	"slices"

	"github.com/xuri/excelize/v2"

	apperrors "lfscli/internal/errors"
)

// SourceTable is the raw cell grid of one worksheet.
// Rows are 0-indexed and padded with empty cells to Columns.
type SourceTable struct {
	Sheet    string
	Rows     [][]string
	Columns  int
	Date1904 bool
}

// ParseWorkbook reads sheet from the workbook at filePath.
// Cells are read without number formats applied, so dates arrive as serial
// numbers and numbers keep their stored precision.
func ParseWorkbook(filePath, sheet string) (*SourceTable, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("path", filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if !slices.Contains(sheets, sheet) {
		return nil, apperrors.NewSheetNotFoundError(sheet, sheets).
			WithContext("path", filePath)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet rows", err).
			WithContext("sheet", sheet)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	columns := 0
	for _, row := range rows {
		if len(row) > columns {
			columns = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < columns {
			padded := make([]string, columns)
			copy(padded, row)
			rows[i] = padded
		}
	}

	slog.Debug("Parsed worksheet",
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)),
		slog.Int("columns", columns),
		slog.Bool("date1904", date1904))

	return &SourceTable{
		Sheet:    sheet,
		Rows:     rows,
		Columns:  columns,
		Date1904: date1904,
	}, nil
}

// FindMarkerRow returns the index of the first row whose first cell equals
// marker exactly
func (t *SourceTable) FindMarkerRow(marker string) (int, bool) {
	for i, row := range t.Rows {
		if len(row) > 0 && row[0] == marker {
			return i, true
		}
	}
	return -1, false
}

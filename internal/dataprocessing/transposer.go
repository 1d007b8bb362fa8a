package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"lfscli/internal/config"
	apperrors "lfscli/internal/errors"
	"lfscli/internal/exporter"
)

// TransposedTable holds one row per source column. Every row has one field
// per source row from the marker row down. Labels are the rendered fields of
// the first row, which come from the source's first column.
type TransposedTable struct {
	Labels []string
	Rows   [][]string
}

// Summary describes a completed transpose
type Summary struct {
	Sheet         string
	MarkerRow     int
	SourceRows    int
	Lines         int
	FieldsPerLine int
	OutputPath    string
	Bytes         int64
}

// TransposeTable swaps the axes of the table that starts at markerRow.
// The marker row passes through unchanged, the first column of every later
// row is a date and all remaining cells are numbers.
func TransposeTable(src *SourceTable, markerRow int) (*TransposedTable, error) {
	fields := len(src.Rows) - markerRow
	out := &TransposedTable{Rows: make([][]string, src.Columns)}

	for col := 0; col < src.Columns; col++ {
		line := make([]string, fields)
		for row := markerRow; row < len(src.Rows); row++ {
			raw := src.Rows[row][col]

			var value string
			var err error
			switch {
			case row == markerRow:
				value = raw
			case col == 0:
				value, err = FormatDate(raw, src.Date1904)
			default:
				value, err = FormatNumber(raw)
			}
			if err != nil {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+1)
				return nil, apperrors.NewParsingError("cannot parse cell "+cell, err).
					WithContext("sheet", src.Sheet).
					WithContext("cell", cell).
					WithContext("value", raw)
			}
			line[row-markerRow] = value
		}
		out.Rows[col] = line
	}

	if len(out.Rows) > 0 {
		out.Labels = out.Rows[0]
	}
	return out, nil
}

// Transposer turns the configured worksheet of a workbook into the
// transposed CSV output
type Transposer struct {
	sheet  string
	marker string
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// NewTransposer creates a transposer for the sheet and marker in cfg
func NewTransposer(cfg config.WorkbookConfig, writer *exporter.CSVWriter, logger *slog.Logger) *Transposer {
	if logger == nil {
		logger = slog.Default()
	}
	if writer == nil {
		writer = exporter.NewCSVWriter(logger)
	}
	return &Transposer{
		sheet:  cfg.Sheet,
		marker: cfg.Marker,
		writer: writer,
		logger: logger.With(slog.String("component", "transposer")),
	}
}

// Transpose reads workbookPath and replaces outputPath with the transposed
// table. Nothing is written unless the whole table converts.
func (t *Transposer) Transpose(ctx context.Context, workbookPath, outputPath string) (*Summary, error) {
	start := time.Now()

	src, err := ParseWorkbook(workbookPath, t.sheet)
	if err != nil {
		return nil, err
	}

	markerRow, ok := src.FindMarkerRow(t.marker)
	if !ok {
		return nil, apperrors.NewMarkerNotFoundError(t.marker, t.sheet).
			WithContext("rows_scanned", len(src.Rows))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := TransposeTable(src, markerRow)
	if err != nil {
		return nil, err
	}

	stats, err := t.writer.WriteCSV(outputPath, exporter.WriteOptions{Records: table.Rows})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to write output", err).
			WithContext("path", outputPath)
	}

	summary := &Summary{
		Sheet:         src.Sheet,
		MarkerRow:     markerRow,
		SourceRows:    len(src.Rows),
		Lines:         len(table.Rows),
		FieldsPerLine: len(src.Rows) - markerRow,
		OutputPath:    outputPath,
		Bytes:         stats.Bytes,
	}

	t.logger.InfoContext(ctx, "Transposed worksheet",
		slog.String("sheet", summary.Sheet),
		slog.Int("marker_row", markerRow+1),
		slog.Int("lines", summary.Lines),
		slog.Int("fields_per_line", summary.FieldsPerLine),
		slog.String("output", outputPath),
		slog.Duration("duration", time.Since(start)))

	return summary, nil
}

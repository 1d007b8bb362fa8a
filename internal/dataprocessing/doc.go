// Package dataprocessing reads the time series worksheet of a downloaded
// workbook and writes it transposed, one line per series.
//
// # Layout
//
// The worksheet carries free-form notes at the top, then a marker row whose
// first cell is "Series ID" (configurable). From the marker row down, the
// first column holds period dates and every other column holds one series:
//
//	Series ID   A84423043C  A84423047L
//	Jan-1978    6038.1      4412.5
//	Feb-1978    6031.5      4405.2
//
// After transposing, each source column becomes one output line. The first
// line carries the marker followed by the periods rendered as "Jan-06"; every
// other line carries the series identifier followed by its values rounded to
// one decimal place:
//
//	Series ID,Jan-78,Feb-78
//	A84423043C,6038.1,6031.5
//
// # Usage
//
//	t := dataprocessing.NewTransposer(cfg.Workbook, exporter.NewCSVWriter(logger), logger)
//	summary, err := t.Transpose(ctx, "Downloads/data.xlsx", "transposed.csv")
//
// Failures are typed: SHEET_NOT_FOUND, MARKER_NOT_FOUND, PARSING for a cell
// that does not convert, STORAGE when the output cannot be written. The
// output file is only replaced after the whole table converted.
package dataprocessing

// Package exporter writes record sets to CSV files.
//
// CSVWriter replaces the target file atomically: records are written to a
// temporary file in the same directory which is then renamed over the target.
// A failed write leaves any previous file untouched.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	stats, err := w.WriteCSV("transposed.csv", exporter.WriteOptions{Records: rows})
package exporter

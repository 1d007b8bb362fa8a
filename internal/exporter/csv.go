package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CSVWriter writes record sets to CSV files. Every write replaces the whole
// file through a temporary sibling, so readers never observe a partial file.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions carries the records of one write. Lines end in "\n" and
// fields are quoted per RFC 4180 when needed.
type WriteOptions struct {
	Records [][]string
}

// WriteStats reports what a write produced
type WriteStats struct {
	Path    string
	Records int
	Bytes   int64
}

// WriteCSV replaces filePath with the given records
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (*WriteStats, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := writeRecords(tmp, options); err != nil {
		tmp.Close()
		return nil, err
	}

	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to stat temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return nil, fmt.Errorf("failed to replace %s: %w", filePath, err)
	}

	records := len(options.Records)

	w.logger.Debug("Wrote CSV file",
		slog.String("path", filePath),
		slog.Int("record_count", records),
		slog.Int64("bytes", info.Size()))

	return &WriteStats{Path: filePath, Records: records, Bytes: info.Size()}, nil
}

func writeRecords(file *os.File, options WriteOptions) error {
	writer := csv.NewWriter(file)

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Package validation checks the files a run reads and writes before any
// work starts.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "lfscli/internal/errors"
	"lfscli/internal/infrastructure"
)

// FileValidator runs preflight checks on input workbooks and output paths
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	return &FileValidator{logger: infrastructure.WithComponent(logger, "file_validator")}
}

// ValidateWorkbook checks that path names a readable, non-empty workbook.
// Every failure is a parsing error since the workbook cannot be read.
func (v *FileValidator) ValidateWorkbook(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Workbook not accessible",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewParsingError("workbook not accessible", err).WithContext("path", path)
	}
	if info.IsDir() {
		return apperrors.NewParsingError("workbook path is a directory", nil).WithContext("path", path)
	}
	if info.Size() == 0 {
		return apperrors.NewParsingError("workbook is empty", nil).WithContext("path", path)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewParsingError("workbook is an Excel lock file", nil).WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewParsingError("workbook not readable", err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("Workbook validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputPath ensures the directory of path exists and is writable,
// and that path itself is not a directory
func (v *FileValidator) ValidateOutputPath(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewStorageError("output path is a directory", nil).WithContext("path", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("cannot create output directory", err).WithContext("directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output path validated", slog.String("file", path))
	return nil
}

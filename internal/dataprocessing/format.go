package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DateLayout renders a period as a three-letter English month and a
// two-digit year, e.g. "Jan-23"
const DateLayout = "Jan-06"

// FormatDate converts a spreadsheet date serial into DateLayout.
// An empty cell stays empty.
func FormatDate(raw string, date1904 bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	serial, err := parseCell(raw)
	if err != nil {
		return "", err
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// FormatNumber rounds a numeric cell to one decimal place.
// The value is scaled by ten, rounded half to even and scaled back, so
// 10.05 gives "10.0" and 20.15 gives "20.2".
// An empty cell stays empty.
func FormatNumber(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	v, err := parseCell(raw)
	if err != nil {
		return "", err
	}
	if scaled := v * 10; !math.IsInf(scaled, 0) {
		v = math.RoundToEven(scaled) / 10
	}
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if s == "-0.0" {
		return "0.0", nil
	}
	return s, nil
}

// parseCell parses a decimal cell value. NaN, infinities and hex floats are
// rejected even though strconv accepts them.
func parseCell(raw string) (float64, error) {
	if strings.ContainsAny(raw, "xX") {
		return 0, fmt.Errorf("not a decimal number: %q", raw)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return v, nil
}

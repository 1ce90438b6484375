// Package dates parses the loosely formatted date values found in uploaded
// spreadsheets. Cells may carry an Excel serial number or any of several
// textual layouts depending on how the sheet was authored.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is the zero date of the 1900 date system used by xlsx files,
// shifted back two days so plain day addition absorbs Excel's phantom
// 1900-02-29 for serials on or after 1900-03-01.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// layouts are tried in order for textual values; first match wins.
var layouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"2-1-2006",
	"2/1/2006",
}

// Parse resolves a raw spreadsheet cell into a calendar date. Numeric values
// are interpreted as Excel date serials; strings are matched against the
// known layouts with an ISO 8601 fallback.
func Parse(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date value")
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return FromExcelSerial(serial)
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}

	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unrecognised date value %q", raw)
}

// FromExcelSerial converts an Excel 1900-system date serial to a UTC date.
func FromExcelSerial(serial float64) (time.Time, error) {
	if serial <= 0 {
		return time.Time{}, fmt.Errorf("invalid excel date serial %v", serial)
	}

	days := int(serial)
	return excelEpoch.AddDate(0, 0, days), nil
}

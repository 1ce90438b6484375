// Package spreadsheet decodes uploaded xlsx workbooks into named-column
// row maps so the import reconciler never touches cell coordinates.
package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// HeaderRowCount is the number of header rows preceding the data rows in
// every recognised sheet. Feedback row numbers are offset by this value.
const HeaderRowCount = 1

// Row is one data row keyed by trimmed header title. Number is the 1-based
// position among data rows, matching what a user sees below the header.
type Row struct {
	Number int
	Cells  map[string]string
}

// Get returns the trimmed value of the named column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Cells[column])
}

// Workbook holds the decoded sheets of one upload.
type Workbook struct {
	sheets map[string][]Row
}

// Sheet returns the rows of the named sheet. Sheet name matching is exact.
func (w *Workbook) Sheet(name string) ([]Row, bool) {
	rows, ok := w.sheets[name]
	return rows, ok
}

// Decode parses raw xlsx bytes into a Workbook. The first row of each sheet
// is treated as the header; blank rows are dropped.
func Decode(data []byte) (*Workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	workbook := &Workbook{sheets: make(map[string][]Row)}
	for _, sheetName := range file.GetSheetList() {
		raw, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
		}
		workbook.sheets[sheetName] = buildRows(raw)
	}

	return workbook, nil
}

func buildRows(raw [][]string) []Row {
	if len(raw) == 0 {
		return nil
	}

	headers := make([]string, len(raw[0]))
	for i, header := range raw[0] {
		headers[i] = strings.TrimSpace(header)
	}

	rows := make([]Row, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		row := Row{Number: i + 1, Cells: make(map[string]string, len(headers))}
		empty := true
		for j, header := range headers {
			if header == "" {
				continue
			}
			value := ""
			if j < len(cells) {
				value = strings.TrimSpace(cells[j])
			}
			row.Cells[header] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	return rows
}

package dto

// Row statuses reported back for every processed spreadsheet row.
const (
	ImportRowAdded   = "added"
	ImportRowSkipped = "skipped"
	ImportRowError   = "error"
)

// ImportRowFeedback is the per-row outcome of one import. It exists only for
// the duration of the import response and is never persisted.
type ImportRowFeedback struct {
	RowNumber      int    `json:"row_number"`
	ExcelStudentID string `json:"excel_student_id,omitempty"`
	Name           string `json:"name,omitempty"`
	SubjectName    string `json:"subject_name,omitempty"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	SystemID       string `json:"system_id,omitempty"`
}

// ImportSheetSummary aggregates one sheet's counters and row feedback.
// skipped always equals processed minus added.
type ImportSheetSummary struct {
	Processed int                 `json:"processed"`
	Added     int                 `json:"added"`
	Skipped   int                 `json:"skipped"`
	Error     string              `json:"error,omitempty"`
	Rows      []ImportRowFeedback `json:"rows"`
}

// ImportSummaryResponse is the full response of one workbook import.
type ImportSummaryResponse struct {
	Session  string             `json:"session"`
	Students ImportSheetSummary `json:"students"`
	Marks    ImportSheetSummary `json:"marks"`
}

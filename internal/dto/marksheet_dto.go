package dto

// MarksheetSubjectRequest is one subject line of an in-memory marksheet
// preview draft, mirroring the persisted subject mark shape.
type MarksheetSubjectRequest struct {
	SubjectName            string   `json:"subject_name" validate:"required"`
	Category               string   `json:"category" validate:"required"`
	MaxMarks               float64  `json:"max_marks" validate:"gte=0"`
	TheoryPassMarks        *float64 `json:"theory_pass_marks"`
	PracticalPassMarks     *float64 `json:"practical_pass_marks"`
	TheoryMarksObtained    *float64 `json:"theory_marks_obtained"`
	PracticalMarksObtained *float64 `json:"practical_marks_obtained"`
}

// MarksheetPreviewRequest computes a marksheet from a form draft without
// touching storage.
type MarksheetPreviewRequest struct {
	Subjects          []MarksheetSubjectRequest `json:"subjects" validate:"required,min=1,dive"`
	PassingPercentage float64                   `json:"passing_percentage" validate:"gte=0,lte=100"`
}

// MarksheetSubjectResponse is one computed subject line of a marksheet.
type MarksheetSubjectResponse struct {
	SubjectName            string   `json:"subject_name"`
	Category               string   `json:"category"`
	MaxMarks               float64  `json:"max_marks"`
	TheoryMarksObtained    *float64 `json:"theory_marks_obtained"`
	PracticalMarksObtained *float64 `json:"practical_marks_obtained"`
	ObtainedTotalMarks     float64  `json:"obtained_total_marks"`
	TheoryFailed           bool     `json:"theory_failed"`
	PracticalFailed        bool     `json:"practical_failed"`
	Failed                 bool     `json:"failed"`
}

// MarksheetResponse is the display-ready marksheet. It is recomputed on
// every request; MarksheetNumber is a presentation field, not an identifier.
type MarksheetResponse struct {
	Student           *StudentResponse           `json:"student,omitempty"`
	MarksheetNumber   string                     `json:"marksheet_number,omitempty"`
	IssuePlace        string                     `json:"issue_place,omitempty"`
	Subjects          []MarksheetSubjectResponse `json:"subjects"`
	AggregateMarks    float64                    `json:"aggregate_marks"`
	TotalPossible     float64                    `json:"total_possible_marks"`
	OverallPercentage float64                    `json:"overall_percentage"`
	OverallResult     string                     `json:"overall_result"`
	TotalMarksInWords string                     `json:"total_marks_in_words"`
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubjectMark holds one subject's marks for one student. Theory and practical
// components are tracked separately because each carries its own pass
// threshold; ObtainedTotalMarks is stored redundantly for query convenience.
type SubjectMark struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	StudentID              uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_student_subject" json:"student_id"`
	SubjectName            string          `gorm:"size:255;not null" json:"subject_name"`
	SubjectKey             string          `gorm:"size:255;not null;uniqueIndex:idx_student_subject" json:"-"`
	Category               SubjectCategory `gorm:"size:16;not null" json:"category"`
	MaxMarks               float64         `gorm:"not null" json:"max_marks"`
	TheoryPassMarks        *float64        `json:"theory_pass_marks"`
	PracticalPassMarks     *float64        `json:"practical_pass_marks"`
	TheoryMarksObtained    *float64        `json:"theory_marks_obtained"`
	PracticalMarksObtained *float64        `json:"practical_marks_obtained"`
	ObtainedTotalMarks     float64         `gorm:"not null" json:"obtained_total_marks"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// SubjectKeyFor normalises a subject name into the per-student uniqueness key.
func SubjectKeyFor(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

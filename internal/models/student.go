package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Student represents one enrolled student within one academic session.
// The tuple (roll_number, academic_session, class, faculty, registration_no)
// is the identity key used for duplicate detection; a nil RegistrationNo is a
// distinct comparable value, not a wildcard.
type Student struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RollNumber      string         `gorm:"size:64;not null;uniqueIndex:idx_student_identity" json:"roll_number"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	FatherName      string         `gorm:"size:255;not null" json:"father_name"`
	MotherName      string         `gorm:"size:255;not null" json:"mother_name"`
	DateOfBirth     datatypes.Date `gorm:"not null" json:"date_of_birth"`
	Gender          Gender         `gorm:"size:16;not null" json:"gender"`
	RegistrationNo  *string        `gorm:"size:64;uniqueIndex:idx_student_identity" json:"registration_no"`
	Faculty         Faculty        `gorm:"size:16;not null;uniqueIndex:idx_student_identity" json:"faculty"`
	Class           string         `gorm:"size:32;not null;uniqueIndex:idx_student_identity" json:"class"`
	AcademicSession string         `gorm:"size:16;not null;uniqueIndex:idx_student_identity" json:"academic_session"`
	Marks           []SubjectMark  `gorm:"constraint:OnDelete:CASCADE" json:"marks,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

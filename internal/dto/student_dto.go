package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/marksheet-go-api/internal/models"
)

// SubjectMarkRequest describes one subject entry on the student form.
type SubjectMarkRequest struct {
	SubjectName            string   `json:"subject_name" validate:"required"`
	Category               string   `json:"category" validate:"required"`
	MaxMarks               float64  `json:"max_marks" validate:"gte=0"`
	TheoryPassMarks        *float64 `json:"theory_pass_marks"`
	PracticalPassMarks     *float64 `json:"practical_pass_marks"`
	TheoryMarksObtained    *float64 `json:"theory_marks_obtained"`
	PracticalMarksObtained *float64 `json:"practical_marks_obtained"`
}

// StudentRequest is the single-entry create/update payload.
type StudentRequest struct {
	RollNumber      string               `json:"roll_number" validate:"required"`
	Name            string               `json:"name" validate:"required"`
	FatherName      string               `json:"father_name" validate:"required"`
	MotherName      string               `json:"mother_name" validate:"required"`
	DateOfBirth     string               `json:"date_of_birth" validate:"required"`
	Gender          string               `json:"gender" validate:"required"`
	RegistrationNo  string               `json:"registration_no"`
	Faculty         string               `json:"faculty" validate:"required"`
	Class           string               `json:"class" validate:"required"`
	AcademicSession string               `json:"academic_session" validate:"required"`
	Marks           []SubjectMarkRequest `json:"marks" validate:"dive"`
}

// StudentListRequest filters and paginates the student list.
type StudentListRequest struct {
	Search   string
	Faculty  string
	Class    string
	Session  string
	Page     int
	PageSize int
}

// SubjectMarkResponse mirrors one persisted subject mark row.
type SubjectMarkResponse struct {
	ID                     uint     `json:"id"`
	SubjectName            string   `json:"subject_name"`
	Category               string   `json:"category"`
	MaxMarks               float64  `json:"max_marks"`
	TheoryPassMarks        *float64 `json:"theory_pass_marks"`
	PracticalPassMarks     *float64 `json:"practical_pass_marks"`
	TheoryMarksObtained    *float64 `json:"theory_marks_obtained"`
	PracticalMarksObtained *float64 `json:"practical_marks_obtained"`
	ObtainedTotalMarks     float64  `json:"obtained_total_marks"`
}

// StudentResponse is the canonical student representation returned by the API.
type StudentResponse struct {
	ID              uuid.UUID             `json:"id"`
	RollNumber      string                `json:"roll_number"`
	Name            string                `json:"name"`
	FatherName      string                `json:"father_name"`
	MotherName      string                `json:"mother_name"`
	DateOfBirth     string                `json:"date_of_birth"`
	Gender          string                `json:"gender"`
	RegistrationNo  *string               `json:"registration_no"`
	Faculty         string                `json:"faculty"`
	Class           string                `json:"class"`
	AcademicSession string                `json:"academic_session"`
	Marks           []SubjectMarkResponse `json:"marks,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// StudentListResponse wraps a student page with its total count.
type StudentListResponse struct {
	Students []StudentResponse `json:"students"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// NewSubjectMarkResponse maps a persisted mark row to its API shape.
func NewSubjectMarkResponse(mark models.SubjectMark) SubjectMarkResponse {
	return SubjectMarkResponse{
		ID:                     mark.ID,
		SubjectName:            mark.SubjectName,
		Category:               string(mark.Category),
		MaxMarks:               mark.MaxMarks,
		TheoryPassMarks:        mark.TheoryPassMarks,
		PracticalPassMarks:     mark.PracticalPassMarks,
		TheoryMarksObtained:    mark.TheoryMarksObtained,
		PracticalMarksObtained: mark.PracticalMarksObtained,
		ObtainedTotalMarks:     mark.ObtainedTotalMarks,
	}
}

// NewStudentResponse maps a persisted student to its API shape.
func NewStudentResponse(student models.Student) StudentResponse {
	marks := make([]SubjectMarkResponse, 0, len(student.Marks))
	for _, mark := range student.Marks {
		marks = append(marks, NewSubjectMarkResponse(mark))
	}

	return StudentResponse{
		ID:              student.ID,
		RollNumber:      student.RollNumber,
		Name:            student.Name,
		FatherName:      student.FatherName,
		MotherName:      student.MotherName,
		DateOfBirth:     time.Time(student.DateOfBirth).Format("2006-01-02"),
		Gender:          string(student.Gender),
		RegistrationNo:  student.RegistrationNo,
		Faculty:         string(student.Faculty),
		Class:           student.Class,
		AcademicSession: student.AcademicSession,
		Marks:           marks,
		CreatedAt:       student.CreatedAt,
		UpdatedAt:       student.UpdatedAt,
	}
}

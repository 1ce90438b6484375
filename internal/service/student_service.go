package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
	"github.com/noah-isme/marksheet-go-api/internal/models"
	"github.com/noah-isme/marksheet-go-api/internal/repository"
	"github.com/noah-isme/marksheet-go-api/pkg/dates"
)

// ErrStudentExists indicates a student with the same identity key is already
// enrolled for the session.
var ErrStudentExists = errors.New("student already exists")

// ErrStudentNotFound indicates the student could not be located.
var ErrStudentNotFound = errors.New("student not found")

// ErrInvalidStudent indicates the payload failed domain validation.
var ErrInvalidStudent = errors.New("invalid student payload")

var sessionPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// ValidateSessionLabel checks the "YYYY-YYYY" session format where the end
// year equals the start year plus one.
func ValidateSessionLabel(session string) error {
	match := sessionPattern.FindStringSubmatch(session)
	if match == nil {
		return fmt.Errorf("%w: session %q must match YYYY-YYYY", ErrInvalidStudent, session)
	}

	start, _ := strconv.Atoi(match[1])
	end, _ := strconv.Atoi(match[2])
	if end != start+1 {
		return fmt.Errorf("%w: session %q end year must be start year plus one", ErrInvalidStudent, session)
	}

	return nil
}

// StudentService covers single-entry student management.
type StudentService interface {
	Create(ctx context.Context, payload dto.StudentRequest) (dto.StudentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (dto.StudentResponse, error)
	List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Update(ctx context.Context, id uuid.UUID, payload dto.StudentRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MarksheetInvalidator drops cached marksheets when a student record changes.
type MarksheetInvalidator interface {
	InvalidateStudent(ctx context.Context, studentID uuid.UUID)
}

type studentService struct {
	students    repository.StudentRepository
	marks       repository.SubjectMarkRepository
	validator   *validator.Validate
	invalidator MarksheetInvalidator
	logger      zerolog.Logger
}

// NewStudentService constructs the student service. The invalidator is
// optional.
func NewStudentService(students repository.StudentRepository, marks repository.SubjectMarkRepository, validate *validator.Validate, invalidator MarksheetInvalidator, logger zerolog.Logger) StudentService {
	return &studentService{
		students:    students,
		marks:       marks,
		validator:   validate,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentRequest) (dto.StudentResponse, error) {
	student, err := s.buildStudent(payload)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	_, err = s.students.FindByIdentityKey(ctx, student.RollNumber, student.AcademicSession, student.Class, student.Faculty, student.RegistrationNo)
	if err == nil {
		return dto.StudentResponse{}, ErrStudentExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}

	student.ID = uuid.New()
	for i := range student.Marks {
		student.Marks[i].StudentID = student.ID
	}

	if err := s.students.Create(ctx, student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().
		Str("student_id", student.ID.String()).
		Str("roll_number", student.RollNumber).
		Msg("student created")

	return dto.NewStudentResponse(*student), nil
}

func (s *studentService) Get(ctx context.Context, id uuid.UUID) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	students, total, err := s.students.List(ctx, repository.StudentFilter{
		Search:   req.Search,
		Faculty:  req.Faculty,
		Class:    req.Class,
		Session:  req.Session,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	response := dto.StudentListResponse{
		Students: make([]dto.StudentResponse, 0, len(students)),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	for _, student := range students {
		response.Students = append(response.Students, dto.NewStudentResponse(student))
	}

	return response, nil
}

// Update replaces the student's mutable fields and its marks wholesale; the
// system identifier is preserved.
func (s *studentService) Update(ctx context.Context, id uuid.UUID, payload dto.StudentRequest) (dto.StudentResponse, error) {
	existing, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	replacement, err := s.buildStudent(payload)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	// The payload may move the student onto another record's identity tuple;
	// catch that here instead of letting the unique index surface a raw error.
	conflict, err := s.students.FindByIdentityKey(ctx, replacement.RollNumber, replacement.AcademicSession, replacement.Class, replacement.Faculty, replacement.RegistrationNo)
	if err == nil && conflict.ID != existing.ID {
		return dto.StudentResponse{}, ErrStudentExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}

	replacement.ID = existing.ID
	replacement.CreatedAt = existing.CreatedAt
	marks := replacement.Marks
	replacement.Marks = nil

	if err := s.students.Update(ctx, replacement); err != nil {
		return dto.StudentResponse{}, err
	}
	if err := s.marks.ReplaceAllForStudent(ctx, existing.ID, marks); err != nil {
		return dto.StudentResponse{}, err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateStudent(ctx, existing.ID)
	}

	updated, err := s.students.GetByID(ctx, existing.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(updated), nil
}

func (s *studentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.students.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateStudent(ctx, id)
	}

	s.logger.Info().Str("student_id", id.String()).Msg("student deleted")
	return nil
}

// buildStudent validates the payload against the same domain rules the
// import reconciler applies to spreadsheet rows.
func (s *studentService) buildStudent(payload dto.StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}
	if err := ValidateSessionLabel(payload.AcademicSession); err != nil {
		return nil, err
	}

	dob, err := dates.Parse(payload.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStudent, err)
	}
	gender, err := models.ParseGender(payload.Gender)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStudent, err)
	}
	faculty, err := models.ParseFaculty(payload.Faculty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStudent, err)
	}
	class, err := models.ParseClassLevel(payload.Class)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStudent, err)
	}

	var registrationNo *string
	if payload.RegistrationNo != "" {
		value := payload.RegistrationNo
		registrationNo = &value
	}

	marks, err := buildMarks(payload.Marks)
	if err != nil {
		return nil, err
	}

	return &models.Student{
		RollNumber:      payload.RollNumber,
		Name:            payload.Name,
		FatherName:      payload.FatherName,
		MotherName:      payload.MotherName,
		DateOfBirth:     datatypes.Date(dob),
		Gender:          gender,
		RegistrationNo:  registrationNo,
		Faculty:         faculty,
		Class:           class,
		AcademicSession: payload.AcademicSession,
		Marks:           marks,
	}, nil
}

func buildMarks(payload []dto.SubjectMarkRequest) ([]models.SubjectMark, error) {
	marks := make([]models.SubjectMark, 0, len(payload))
	seen := make(map[string]bool)

	for _, entry := range payload {
		category, err := models.ParseSubjectCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStudent, err)
		}

		key := models.SubjectKeyFor(entry.SubjectName)
		if key == "" {
			return nil, fmt.Errorf("%w: subject name must not be empty", ErrInvalidStudent)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate subject %q", ErrInvalidStudent, entry.SubjectName)
		}
		seen[key] = true

		if entry.MaxMarks < 0 || math.IsNaN(entry.MaxMarks) {
			return nil, fmt.Errorf("%w: max marks for %q must be non-negative", ErrInvalidStudent, entry.SubjectName)
		}
		if entry.TheoryPassMarks != nil && (*entry.TheoryPassMarks < 0 || *entry.TheoryPassMarks > entry.MaxMarks) {
			return nil, fmt.Errorf("%w: theory pass marks for %q outside [0, %v]", ErrInvalidStudent, entry.SubjectName, entry.MaxMarks)
		}
		if entry.PracticalPassMarks != nil && (*entry.PracticalPassMarks < 0 || *entry.PracticalPassMarks > entry.MaxMarks) {
			return nil, fmt.Errorf("%w: practical pass marks for %q outside [0, %v]", ErrInvalidStudent, entry.SubjectName, entry.MaxMarks)
		}

		obtainedTotal := 0.0
		if entry.TheoryMarksObtained != nil {
			obtainedTotal += *entry.TheoryMarksObtained
		}
		if entry.PracticalMarksObtained != nil {
			obtainedTotal += *entry.PracticalMarksObtained
		}
		if obtainedTotal > entry.MaxMarks {
			return nil, fmt.Errorf("%w: obtained marks %v for %q exceed max marks %v", ErrInvalidStudent, obtainedTotal, entry.SubjectName, entry.MaxMarks)
		}

		marks = append(marks, models.SubjectMark{
			SubjectName:            entry.SubjectName,
			SubjectKey:             key,
			Category:               category,
			MaxMarks:               entry.MaxMarks,
			TheoryPassMarks:        entry.TheoryPassMarks,
			PracticalPassMarks:     entry.PracticalPassMarks,
			TheoryMarksObtained:    entry.TheoryMarksObtained,
			PracticalMarksObtained: entry.PracticalMarksObtained,
			ObtainedTotalMarks:     obtainedTotal,
		})
	}

	return marks, nil
}

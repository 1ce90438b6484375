package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
	"github.com/noah-isme/marksheet-go-api/internal/models"
	"github.com/noah-isme/marksheet-go-api/internal/observability"
	"github.com/noah-isme/marksheet-go-api/internal/repository"
)

// MarksheetService computes display-ready marksheets from persisted records
// or in-memory drafts.
type MarksheetService interface {
	ForStudent(ctx context.Context, studentID uuid.UUID, passingPercentage float64) (dto.MarksheetResponse, error)
	Preview(ctx context.Context, payload dto.MarksheetPreviewRequest) (dto.MarksheetResponse, error)
	InvalidateStudent(ctx context.Context, studentID uuid.UUID)
}

type marksheetService struct {
	students   repository.StudentRepository
	marks      repository.SubjectMarkRepository
	validator  *validator.Validate
	cache      *redis.Client
	cacheTTL   time.Duration
	issuePlace string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewMarksheetService constructs the marksheet service. The redis client is
// optional; without it every request recomputes.
func NewMarksheetService(students repository.StudentRepository, marks repository.SubjectMarkRepository, validate *validator.Validate, cache *redis.Client, cacheTTL time.Duration, issuePlace string, logger zerolog.Logger) MarksheetService {
	return &marksheetService{
		students:   students,
		marks:      marks,
		validator:  validate,
		cache:      cache,
		cacheTTL:   cacheTTL,
		issuePlace: issuePlace,
		logger:     logger.With().Str("component", "marksheet_service").Logger(),
		now:        time.Now,
	}
}

func (s *marksheetService) ForStudent(ctx context.Context, studentID uuid.UUID, passingPercentage float64) (dto.MarksheetResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/marksheet-go-api/internal/service/marksheet")
	ctx, span := tracer.Start(ctx, "marksheet.compute")
	span.SetAttributes(attribute.String("marksheet.student_id", studentID.String()))
	defer span.End()

	cacheKey := fmt.Sprintf("marksheet:%s:%g", studentID, passingPercentage)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		span.SetAttributes(attribute.Bool("marksheet.cache_hit", true))
		return cached, nil
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MarksheetResponse{}, ErrStudentNotFound
		}
		return dto.MarksheetResponse{}, err
	}

	subjects := make([]SubjectMarksInput, 0, len(student.Marks))
	for _, mark := range student.Marks {
		subjects = append(subjects, SubjectMarksInput{
			SubjectName:            mark.SubjectName,
			Category:               mark.Category,
			MaxMarks:               mark.MaxMarks,
			TheoryPassMarks:        mark.TheoryPassMarks,
			PracticalPassMarks:     mark.PracticalPassMarks,
			TheoryMarksObtained:    mark.TheoryMarksObtained,
			PracticalMarksObtained: mark.PracticalMarksObtained,
		})
	}

	computation := ComputeMarksheet(subjects, passingPercentage, s.logger)
	observability.MarksheetComputations().Inc()

	studentResponse := dto.NewStudentResponse(student)
	response := newMarksheetResponse(computation)
	response.Student = &studentResponse
	response.MarksheetNumber = MarksheetNumber(student.Faculty, student.RollNumber, student.AcademicSession, s.now())
	response.IssuePlace = s.issuePlace

	s.toCache(ctx, cacheKey, response)
	return response, nil
}

func (s *marksheetService) Preview(ctx context.Context, payload dto.MarksheetPreviewRequest) (dto.MarksheetResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MarksheetResponse{}, err
	}

	subjects := make([]SubjectMarksInput, 0, len(payload.Subjects))
	for _, subject := range payload.Subjects {
		category, err := models.ParseSubjectCategory(subject.Category)
		if err != nil {
			return dto.MarksheetResponse{}, fmt.Errorf("%w: %v", ErrInvalidStudent, err)
		}

		subjects = append(subjects, SubjectMarksInput{
			SubjectName:            subject.SubjectName,
			Category:               category,
			MaxMarks:               subject.MaxMarks,
			TheoryPassMarks:        subject.TheoryPassMarks,
			PracticalPassMarks:     subject.PracticalPassMarks,
			TheoryMarksObtained:    subject.TheoryMarksObtained,
			PracticalMarksObtained: subject.PracticalMarksObtained,
		})
	}

	computation := ComputeMarksheet(subjects, payload.PassingPercentage, s.logger)
	observability.MarksheetComputations().Inc()

	return newMarksheetResponse(computation), nil
}

// InvalidateStudent drops every cached marksheet for the student. Called on
// student update and delete.
func (s *marksheetService) InvalidateStudent(ctx context.Context, studentID uuid.UUID) {
	if s.cache == nil {
		return
	}

	keys, err := s.cache.Keys(ctx, fmt.Sprintf("marksheet:%s:*", studentID)).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID.String()).Msg("failed to invalidate marksheet cache")
	}
}

func (s *marksheetService) fromCache(ctx context.Context, key string) (dto.MarksheetResponse, bool) {
	if s.cache == nil {
		return dto.MarksheetResponse{}, false
	}

	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return dto.MarksheetResponse{}, false
	}

	var response dto.MarksheetResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return dto.MarksheetResponse{}, false
	}

	return response, true
}

func (s *marksheetService) toCache(ctx context.Context, key string, response dto.MarksheetResponse) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache marksheet")
	}
}

func newMarksheetResponse(computation MarksheetComputation) dto.MarksheetResponse {
	subjects := make([]dto.MarksheetSubjectResponse, 0, len(computation.Subjects))
	for _, subject := range computation.Subjects {
		subjects = append(subjects, dto.MarksheetSubjectResponse{
			SubjectName:            subject.SubjectName,
			Category:               string(subject.Category),
			MaxMarks:               subject.MaxMarks,
			TheoryMarksObtained:    subject.TheoryMarksObtained,
			PracticalMarksObtained: subject.PracticalMarksObtained,
			ObtainedTotalMarks:     subject.ObtainedTotal,
			TheoryFailed:           subject.TheoryFailed,
			PracticalFailed:        subject.PracticalFailed,
			Failed:                 subject.Failed,
		})
	}

	return dto.MarksheetResponse{
		Subjects:          subjects,
		AggregateMarks:    computation.AggregateMarks,
		TotalPossible:     computation.TotalPossible,
		OverallPercentage: computation.OverallPercentage,
		OverallResult:     computation.OverallResult,
		TotalMarksInWords: computation.TotalMarksInWords,
	}
}

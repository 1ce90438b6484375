package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
	"github.com/noah-isme/marksheet-go-api/internal/models"
	"github.com/noah-isme/marksheet-go-api/internal/observability"
	"github.com/noah-isme/marksheet-go-api/internal/repository"
	"github.com/noah-isme/marksheet-go-api/internal/spreadsheet"
	"github.com/noah-isme/marksheet-go-api/pkg/dates"
)

// ErrWorkbookUnreadable indicates the uploaded bytes could not be parsed as
// an xlsx workbook.
var ErrWorkbookUnreadable = errors.New("workbook unreadable")

// Sheet names recognised in an uploaded workbook. Matching is exact.
const (
	SheetStudentDetails = "Student Details"
	SheetStudentMarks   = "Student Marks Details"
)

// Column titles of the two recognised sheets.
const (
	colStudentID         = "Student ID"
	colStudentName       = "Student Name"
	colFatherName        = "Father Name"
	colMotherName        = "Mother Name"
	colDateOfBirth       = "Date of Birth"
	colGender            = "Gender"
	colFaculty           = "Faculty"
	colClass             = "Class"
	colRegistrationNo    = "Registration No"
	colSubjectName       = "Subject Name"
	colSubjectCategory   = "Subject Category"
	colMaxMarks          = "Max Marks"
	colTheoryPass        = "Theory Pass Marks"
	colPracticalPass     = "Practical Pass Marks"
	colTheoryObtained    = "Theory Marks Obtained"
	colPracticalObtained = "Practical Marks Obtained"
)

// ImportService reconciles uploaded workbooks against persisted records.
type ImportService interface {
	Import(ctx context.Context, fileData []byte, session string) (dto.ImportSummaryResponse, error)
}

type importService struct {
	students repository.StudentRepository
	marks    repository.SubjectMarkRepository
	logger   zerolog.Logger
}

// NewImportService constructs the import reconciler.
func NewImportService(students repository.StudentRepository, marks repository.SubjectMarkRepository, logger zerolog.Logger) ImportService {
	return &importService{
		students: students,
		marks:    marks,
		logger:   logger.With().Str("component", "import_service").Logger(),
	}
}

// Import decodes the workbook and reconciles both sheets in order: students
// first, then marks, which resolve their Student ID column through the ID
// map the student pass built. Data-quality problems never fail the request;
// they become row-level feedback. Only an unreadable workbook is an error.
func (s *importService) Import(ctx context.Context, fileData []byte, session string) (dto.ImportSummaryResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/marksheet-go-api/internal/service/import")
	ctx, span := tracer.Start(ctx, "import.workbook")
	span.SetAttributes(attribute.String("import.session", session))
	defer span.End()

	workbook, err := spreadsheet.Decode(fileData)
	if err != nil {
		observability.ImportBatches().WithLabelValues("unreadable").Inc()
		s.logger.Warn().Err(err).Msg("uploaded workbook could not be decoded")
		return dto.ImportSummaryResponse{}, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}

	response := dto.ImportSummaryResponse{Session: session}

	// The ID map carries raw excel student IDs to system identifiers so the
	// marks sheet can reference students imported (or matched) in this call.
	idMap := make(map[string]uuid.UUID)

	response.Students = s.reconcileStudents(ctx, workbook, session, idMap)
	response.Marks = s.reconcileMarks(ctx, workbook, idMap)

	span.SetAttributes(
		attribute.Int("import.students_added", response.Students.Added),
		attribute.Int("import.marks_added", response.Marks.Added),
	)
	observability.ImportBatches().WithLabelValues("processed").Inc()

	return response, nil
}

type stagedStudent struct {
	record   *models.Student
	feedback int
}

func (s *importService) reconcileStudents(ctx context.Context, workbook *spreadsheet.Workbook, session string, idMap map[string]uuid.UUID) dto.ImportSheetSummary {
	summary := dto.ImportSheetSummary{Rows: []dto.ImportRowFeedback{}}

	rows, ok := workbook.Sheet(SheetStudentDetails)
	if !ok {
		summary.Error = fmt.Sprintf("sheet %q not found in workbook", SheetStudentDetails)
		return summary
	}

	summary.Processed = len(rows)
	var staged []stagedStudent

	for _, row := range rows {
		feedback := dto.ImportRowFeedback{
			RowNumber:      row.Number + spreadsheet.HeaderRowCount,
			ExcelStudentID: row.Get(colStudentID),
			Name:           row.Get(colStudentName),
		}

		record, skipReason := s.buildStudent(ctx, row, session, idMap)
		if skipReason != "" {
			feedback.Status = dto.ImportRowSkipped
			feedback.Message = skipReason
			summary.Rows = append(summary.Rows, feedback)
			observability.ImportRows().WithLabelValues("students", dto.ImportRowSkipped).Inc()
			continue
		}

		idMap[feedback.ExcelStudentID] = record.ID
		feedback.Status = dto.ImportRowAdded
		feedback.Message = "prepared for insert"
		feedback.SystemID = record.ID.String()
		summary.Rows = append(summary.Rows, feedback)
		staged = append(staged, stagedStudent{record: record, feedback: len(summary.Rows) - 1})
	}

	records := make([]*models.Student, len(staged))
	for i, st := range staged {
		records[i] = st.record
	}

	report, err := s.students.BulkInsert(ctx, records)
	s.applyBulkReport(&summary, staged, report, err, "students")
	return summary
}

// buildStudent validates one student row. A non-empty skip reason means the
// row produces no insert; side effects on the ID map happen only for the
// "already exists" case, so marks referencing that excel ID still resolve.
func (s *importService) buildStudent(ctx context.Context, row spreadsheet.Row, session string, idMap map[string]uuid.UUID) (*models.Student, string) {
	required := []string{
		colStudentID, colStudentName, colFatherName, colMotherName,
		colDateOfBirth, colGender, colFaculty, colClass,
	}
	var missing []string
	for _, column := range required {
		if row.Get(column) == "" {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))
	}

	excelID := row.Get(colStudentID)

	dob, err := dates.Parse(row.Get(colDateOfBirth))
	if err != nil {
		return nil, fmt.Sprintf("invalid date of birth %q", row.Get(colDateOfBirth))
	}

	gender, err := models.ParseGender(row.Get(colGender))
	if err != nil {
		return nil, err.Error()
	}
	faculty, err := models.ParseFaculty(row.Get(colFaculty))
	if err != nil {
		return nil, err.Error()
	}
	class, err := models.ParseClassLevel(row.Get(colClass))
	if err != nil {
		return nil, err.Error()
	}

	var registrationNo *string
	if value := row.Get(colRegistrationNo); value != "" {
		registrationNo = &value
	}

	existing, err := s.students.FindByIdentityKey(ctx, excelID, session, class, faculty, registrationNo)
	if err == nil {
		idMap[excelID] = existing.ID
		return nil, "student already exists for this session"
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Sprintf("storage lookup failed: %v", err)
	}

	if _, seen := idMap[excelID]; seen {
		return nil, fmt.Sprintf("duplicate Student ID %q within file", excelID)
	}

	return &models.Student{
		ID:              uuid.New(),
		RollNumber:      excelID,
		Name:            row.Get(colStudentName),
		FatherName:      row.Get(colFatherName),
		MotherName:      row.Get(colMotherName),
		DateOfBirth:     datatypes.Date(dob),
		Gender:          gender,
		RegistrationNo:  registrationNo,
		Faculty:         faculty,
		Class:           class,
		AcademicSession: session,
	}, ""
}

type stagedMark struct {
	record   *models.SubjectMark
	feedback int
}

func (s *importService) reconcileMarks(ctx context.Context, workbook *spreadsheet.Workbook, idMap map[string]uuid.UUID) dto.ImportSheetSummary {
	summary := dto.ImportSheetSummary{Rows: []dto.ImportRowFeedback{}}

	rows, ok := workbook.Sheet(SheetStudentMarks)
	if !ok {
		summary.Error = fmt.Sprintf("sheet %q not found in workbook", SheetStudentMarks)
		return summary
	}

	summary.Processed = len(rows)
	var staged []stagedMark
	seen := make(map[string]bool)

	for _, row := range rows {
		feedback := dto.ImportRowFeedback{
			RowNumber:      row.Number + spreadsheet.HeaderRowCount,
			ExcelStudentID: row.Get(colStudentID),
			SubjectName:    row.Get(colSubjectName),
		}

		record, skipReason := buildSubjectMark(row, idMap, seen)
		if skipReason != "" {
			feedback.Status = dto.ImportRowSkipped
			feedback.Message = skipReason
			summary.Rows = append(summary.Rows, feedback)
			observability.ImportRows().WithLabelValues("marks", dto.ImportRowSkipped).Inc()
			continue
		}

		feedback.Status = dto.ImportRowAdded
		feedback.Message = "prepared for insert"
		summary.Rows = append(summary.Rows, feedback)
		staged = append(staged, stagedMark{record: record, feedback: len(summary.Rows) - 1})
	}

	records := make([]*models.SubjectMark, len(staged))
	for i, st := range staged {
		records[i] = st.record
	}

	report, err := s.marks.BulkInsert(ctx, records)
	s.applyMarkBulkReport(&summary, staged, report, err)
	return summary
}

func buildSubjectMark(row spreadsheet.Row, idMap map[string]uuid.UUID, seen map[string]bool) (*models.SubjectMark, string) {
	var missing []string
	for _, column := range []string{colStudentID, colSubjectName, colSubjectCategory} {
		if row.Get(column) == "" {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))
	}

	studentID, ok := idMap[row.Get(colStudentID)]
	if !ok {
		return nil, fmt.Sprintf("student %q not found in this batch", row.Get(colStudentID))
	}

	category, err := models.ParseSubjectCategory(row.Get(colSubjectCategory))
	if err != nil {
		return nil, err.Error()
	}

	subjectKey := models.SubjectKeyFor(row.Get(colSubjectName))
	dedupeKey := studentID.String() + "|" + subjectKey
	if seen[dedupeKey] {
		return nil, fmt.Sprintf("duplicate subject %q for student %q within file", row.Get(colSubjectName), row.Get(colStudentID))
	}

	maxMarks := parseNumber(row.Get(colMaxMarks))
	theoryPass := parseNumber(row.Get(colTheoryPass))
	practicalPass := parseNumber(row.Get(colPracticalPass))
	theoryObtained := parseNumber(row.Get(colTheoryObtained))
	practicalObtained := parseNumber(row.Get(colPracticalObtained))

	if math.IsNaN(maxMarks) || maxMarks < 0 {
		return nil, fmt.Sprintf("max marks %q must be a non-negative number", row.Get(colMaxMarks))
	}
	if !math.IsNaN(theoryPass) && (theoryPass < 0 || theoryPass > maxMarks) {
		return nil, fmt.Sprintf("theory pass marks %v outside [0, %v]", theoryPass, maxMarks)
	}
	if !math.IsNaN(practicalPass) && (practicalPass < 0 || practicalPass > maxMarks) {
		return nil, fmt.Sprintf("practical pass marks %v outside [0, %v]", practicalPass, maxMarks)
	}

	obtainedTotal := orZero(theoryObtained) + orZero(practicalObtained)
	if obtainedTotal > maxMarks {
		return nil, fmt.Sprintf("obtained marks %v exceed max marks %v", obtainedTotal, maxMarks)
	}

	seen[dedupeKey] = true

	return &models.SubjectMark{
		StudentID:              studentID,
		SubjectName:            row.Get(colSubjectName),
		SubjectKey:             subjectKey,
		Category:               category,
		MaxMarks:               maxMarks,
		TheoryPassMarks:        numberOrNil(theoryPass),
		PracticalPassMarks:     numberOrNil(practicalPass),
		TheoryMarksObtained:    numberOrNil(theoryObtained),
		PracticalMarksObtained: numberOrNil(practicalObtained),
		ObtainedTotalMarks:     obtainedTotal,
	}, ""
}

// applyBulkReport rewrites the staged "prepared" feedback entries with the
// final insert outcome. A batch-level storage error becomes the sheet's
// summary error; rows the batch never reached are marked as errors.
func (s *importService) applyBulkReport(summary *dto.ImportSheetSummary, staged []stagedStudent, report repository.BulkReport, err error, sheet string) {
	for i, st := range staged {
		entry := &summary.Rows[st.feedback]
		switch report.Outcomes[i] {
		case repository.BulkInserted:
			entry.Status = dto.ImportRowAdded
			entry.Message = "added"
			summary.Added++
			observability.ImportRows().WithLabelValues(sheet, dto.ImportRowAdded).Inc()
		case repository.BulkDuplicate:
			entry.Status = dto.ImportRowSkipped
			entry.Message = "already exists in storage"
			entry.SystemID = ""
			observability.ImportRows().WithLabelValues(sheet, dto.ImportRowSkipped).Inc()
		default:
			entry.Status = dto.ImportRowError
			entry.Message = "not inserted: batch aborted"
			entry.SystemID = ""
			observability.ImportRows().WithLabelValues(sheet, dto.ImportRowError).Inc()
		}
	}

	if err != nil {
		summary.Error = fmt.Sprintf("bulk insert failed: %v", err)
		s.logger.Error().Err(err).Str("sheet", sheet).Msg("bulk insert failed")
	}

	summary.Skipped = summary.Processed - summary.Added
}

func (s *importService) applyMarkBulkReport(summary *dto.ImportSheetSummary, staged []stagedMark, report repository.BulkReport, err error) {
	converted := make([]stagedStudent, len(staged))
	for i, st := range staged {
		converted[i] = stagedStudent{feedback: st.feedback}
	}
	s.applyBulkReport(summary, converted, report, err, "marks")
}

// parseNumber is deliberately permissive: anything that is not a number
// becomes NaN, which later reads as "absent".
func parseNumber(raw string) float64 {
	if raw == "" {
		return math.NaN()
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

func orZero(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return value
}

func numberOrNil(value float64) *float64 {
	if math.IsNaN(value) {
		return nil
	}
	return &value
}

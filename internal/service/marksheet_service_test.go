package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/marksheet-go-api/internal/dto"
	"github.com/noah-isme/marksheet-go-api/internal/models"
)

func newCacheClient(t *testing.T) *redis.Client {
	t.Helper()
	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func seededStudent() models.Student {
	return models.Student{
		ID:              uuid.New(),
		RollNumber:      "10245",
		Name:            "Asha Rai",
		FatherName:      "Hari Rai",
		MotherName:      "Gita Rai",
		DateOfBirth:     datatypes.Date(time.Date(2003, time.July, 15, 0, 0, 0, 0, time.UTC)),
		Gender:          models.GenderFemale,
		Faculty:         models.FacultyScience,
		Class:           "12th",
		AcademicSession: "2023-2024",
		Marks: []models.SubjectMark{{
			SubjectName:         "Physics",
			SubjectKey:          "physics",
			Category:            models.CategoryCompulsory,
			MaxMarks:            100,
			TheoryMarksObtained: ptr(60),
			ObtainedTotalMarks:  60,
		}},
	}
}

func newTestMarksheetService(students *fakeStudentRepo, cache *redis.Client) MarksheetService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewMarksheetService(students, &fakeMarkRepo{}, validate, cache, time.Minute, "Kathmandu", testLogger())
}

func TestMarksheetForStudent(t *testing.T) {
	student := seededStudent()
	students := &fakeStudentRepo{students: []models.Student{student}}
	svc := newTestMarksheetService(students, nil)

	resp, err := svc.ForStudent(context.Background(), student.ID, 33)
	require.NoError(t, err)

	require.NotNil(t, resp.Student)
	require.Equal(t, student.ID, resp.Student.ID)
	require.Equal(t, "Kathmandu", resp.IssuePlace)
	require.Regexp(t, `^SC`, resp.MarksheetNumber)
	require.Equal(t, 60.0, resp.AggregateMarks)
	require.Equal(t, ResultPass, resp.OverallResult)
	require.Equal(t, "Sixty", resp.TotalMarksInWords)
}

func TestMarksheetForStudentNotFound(t *testing.T) {
	svc := newTestMarksheetService(&fakeStudentRepo{}, nil)

	_, err := svc.ForStudent(context.Background(), uuid.New(), 33)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestMarksheetForStudentServesFromCache(t *testing.T) {
	student := seededStudent()
	students := &fakeStudentRepo{students: []models.Student{student}}
	svc := newTestMarksheetService(students, newCacheClient(t))

	first, err := svc.ForStudent(context.Background(), student.ID, 33)
	require.NoError(t, err)

	// Remove the student; the cached marksheet must still be served.
	students.students = nil

	second, err := svc.ForStudent(context.Background(), student.ID, 33)
	require.NoError(t, err)
	require.Equal(t, first.AggregateMarks, second.AggregateMarks)
	require.Equal(t, first.MarksheetNumber, second.MarksheetNumber)
}

func TestMarksheetCacheKeyIncludesPercentage(t *testing.T) {
	student := seededStudent()
	students := &fakeStudentRepo{students: []models.Student{student}}
	svc := newTestMarksheetService(students, newCacheClient(t))

	pass, err := svc.ForStudent(context.Background(), student.ID, 33)
	require.NoError(t, err)
	require.Equal(t, ResultPass, pass.OverallResult)

	fail, err := svc.ForStudent(context.Background(), student.ID, 75)
	require.NoError(t, err)
	require.Equal(t, ResultFail, fail.OverallResult)
}

func TestMarksheetInvalidateStudent(t *testing.T) {
	student := seededStudent()
	students := &fakeStudentRepo{students: []models.Student{student}}
	svc := newTestMarksheetService(students, newCacheClient(t))

	_, err := svc.ForStudent(context.Background(), student.ID, 33)
	require.NoError(t, err)

	students.students[0].Marks[0].TheoryMarksObtained = ptr(90)
	students.students[0].Marks[0].ObtainedTotalMarks = 90

	svc.InvalidateStudent(context.Background(), student.ID)

	resp, err := svc.ForStudent(context.Background(), student.ID, 33)
	require.NoError(t, err)
	require.Equal(t, 90.0, resp.AggregateMarks)
}

func TestMarksheetPreview(t *testing.T) {
	svc := newTestMarksheetService(&fakeStudentRepo{}, nil)

	resp, err := svc.Preview(context.Background(), dto.MarksheetPreviewRequest{
		Subjects: []dto.MarksheetSubjectRequest{{
			SubjectName:         "Maths",
			Category:            "Compulsory",
			MaxMarks:            100,
			TheoryMarksObtained: ptr(70),
		}},
		PassingPercentage: 33,
	})
	require.NoError(t, err)

	require.Nil(t, resp.Student)
	require.Empty(t, resp.MarksheetNumber)
	require.Equal(t, 70.0, resp.AggregateMarks)
	require.Equal(t, ResultPass, resp.OverallResult)
}

func TestMarksheetPreviewRejectsBadPayloads(t *testing.T) {
	svc := newTestMarksheetService(&fakeStudentRepo{}, nil)

	_, err := svc.Preview(context.Background(), dto.MarksheetPreviewRequest{PassingPercentage: 33})
	require.Error(t, err)

	_, err = svc.Preview(context.Background(), dto.MarksheetPreviewRequest{
		Subjects: []dto.MarksheetSubjectRequest{{
			SubjectName: "Maths",
			Category:    "Optional",
			MaxMarks:    100,
		}},
		PassingPercentage: 33,
	})
	require.ErrorIs(t, err, ErrInvalidStudent)
}

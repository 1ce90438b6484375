package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/marksheet-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.SubjectMark{}))
	return db
}

func testStudent(roll string, registrationNo *string) *models.Student {
	return &models.Student{
		ID:              uuid.New(),
		RollNumber:      roll,
		Name:            "Asha Rai",
		FatherName:      "Hari Rai",
		MotherName:      "Gita Rai",
		DateOfBirth:     datatypes.Date(time.Date(2003, time.July, 15, 0, 0, 0, 0, time.UTC)),
		Gender:          models.GenderFemale,
		RegistrationNo:  registrationNo,
		Faculty:         models.FacultyScience,
		Class:           "12th",
		AcademicSession: "2023-2024",
	}
}

func strPtr(s string) *string { return &s }

func TestStudentRepositoryFindByIdentityKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	plain := testStudent("10245", nil)
	registered := testStudent("10246", strPtr("R-1"))
	require.NoError(t, repo.Create(ctx, plain))
	require.NoError(t, repo.Create(ctx, registered))

	found, err := repo.FindByIdentityKey(ctx, "10245", "2023-2024", "12th", models.FacultyScience, nil)
	require.NoError(t, err)
	require.Equal(t, plain.ID, found.ID)

	found, err = repo.FindByIdentityKey(ctx, "10246", "2023-2024", "12th", models.FacultyScience, strPtr("R-1"))
	require.NoError(t, err)
	require.Equal(t, registered.ID, found.ID)

	// A nil registration number never matches a registered record.
	_, err = repo.FindByIdentityKey(ctx, "10246", "2023-2024", "12th", models.FacultyScience, nil)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByIdentityKey(ctx, "10245", "2024-2025", "12th", models.FacultyScience, nil)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStudentRepositoryBulkInsertSkipsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	// Registered records carry the full identity tuple, so a repeat insert
	// hits the unique index. Records without a registration number rely on
	// the FindByIdentityKey pre-check instead, since unique indexes treat
	// NULLs as distinct.
	first := testStudent("10245", strPtr("R-1"))
	require.NoError(t, repo.Create(ctx, first))

	duplicate := testStudent("10245", strPtr("R-1"))
	fresh := testStudent("10246", strPtr("R-2"))

	report, err := repo.BulkInsert(ctx, []*models.Student{duplicate, fresh})
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted)
	require.Equal(t, BulkDuplicate, report.Outcomes[0])
	require.Equal(t, BulkInserted, report.Outcomes[1])

	var count int64
	require.NoError(t, db.Model(&models.Student{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestStudentRepositoryGetByIDPreloadsMarks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	student := testStudent("10245", nil)
	student.Marks = []models.SubjectMark{{
		SubjectName:        "Physics",
		SubjectKey:         "physics",
		Category:           models.CategoryCompulsory,
		MaxMarks:           100,
		ObtainedTotalMarks: 60,
	}}
	require.NoError(t, repo.Create(ctx, student))

	found, err := repo.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, found.Marks, 1)
	require.Equal(t, "Physics", found.Marks[0].SubjectName)
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	science := testStudent("10245", nil)
	arts := testStudent("20001", nil)
	arts.Name = "Bikram Thapa"
	arts.Faculty = models.FacultyArts
	require.NoError(t, repo.Create(ctx, science))
	require.NoError(t, repo.Create(ctx, arts))

	students, total, err := repo.List(ctx, StudentFilter{Search: "asha", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, science.ID, students[0].ID)

	students, total, err = repo.List(ctx, StudentFilter{Faculty: "ARTS", PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, arts.ID, students[0].ID)

	students, total, err = repo.List(ctx, StudentFilter{PageSize: 1, Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, students, 1)
	require.Equal(t, "20001", students[0].RollNumber)
}

func TestStudentRepositoryDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	student := testStudent("10245", nil)
	student.Marks = []models.SubjectMark{{
		SubjectName: "Physics",
		SubjectKey:  "physics",
		Category:    models.CategoryCompulsory,
		MaxMarks:    100,
	}}
	require.NoError(t, repo.Create(ctx, student))

	require.NoError(t, repo.DeleteCascade(ctx, student.ID))

	var marks int64
	require.NoError(t, db.Model(&models.SubjectMark{}).Count(&marks).Error)
	require.Equal(t, int64(0), marks)

	require.ErrorIs(t, repo.DeleteCascade(ctx, student.ID), gorm.ErrRecordNotFound)
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/marksheet-go-api/internal/models"
)

// SubjectMarkRepository provides access to per-subject mark records.
type SubjectMarkRepository interface {
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.SubjectMark, error)
	BulkInsert(ctx context.Context, marks []*models.SubjectMark) (BulkReport, error)
	// ReplaceAllForStudent atomically deletes the student's marks and inserts
	// the replacement set.
	ReplaceAllForStudent(ctx context.Context, studentID uuid.UUID, marks []models.SubjectMark) error
}

type subjectMarkRepository struct {
	db *gorm.DB
}

// NewSubjectMarkRepository constructs a subject mark repository.
func NewSubjectMarkRepository(db *gorm.DB) SubjectMarkRepository {
	return &subjectMarkRepository{db: db}
}

func (r *subjectMarkRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.SubjectMark, error) {
	var marks []models.SubjectMark
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&marks).Error; err != nil {
		return nil, err
	}

	return marks, nil
}

// BulkInsert mirrors the student bulk-insert semantics: conflicts skip the
// record, other errors abort the batch with a partial report.
func (r *subjectMarkRepository) BulkInsert(ctx context.Context, marks []*models.SubjectMark) (BulkReport, error) {
	report := BulkReport{Outcomes: make([]BulkOutcome, len(marks))}

	for i, mark := range marks {
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(mark)
		if result.Error != nil {
			return report, result.Error
		}
		if result.RowsAffected == 0 {
			report.Outcomes[i] = BulkDuplicate
			continue
		}
		report.Outcomes[i] = BulkInserted
		report.Inserted++
	}

	return report, nil
}

func (r *subjectMarkRepository) ReplaceAllForStudent(ctx context.Context, studentID uuid.UUID, marks []models.SubjectMark) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).Delete(&models.SubjectMark{}).Error; err != nil {
			return err
		}

		for i := range marks {
			marks[i].ID = 0
			marks[i].StudentID = studentID
			if err := tx.Create(&marks[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

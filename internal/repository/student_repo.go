package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/marksheet-go-api/internal/models"
)

// StudentFilter narrows and paginates student listings.
type StudentFilter struct {
	Search   string
	Faculty  string
	Class    string
	Session  string
	Page     int
	PageSize int
}

// StudentRepository provides access to student records.
type StudentRepository interface {
	// FindByIdentityKey resolves a student by the duplicate-detection tuple.
	// A nil registrationNo matches only records without a registration number.
	FindByIdentityKey(ctx context.Context, rollNumber, session, class string, faculty models.Faculty, registrationNo *string) (models.Student, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	Create(ctx context.Context, student *models.Student) error
	BulkInsert(ctx context.Context, students []*models.Student) (BulkReport, error)
	Update(ctx context.Context, student *models.Student) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByIdentityKey(ctx context.Context, rollNumber, session, class string, faculty models.Faculty, registrationNo *string) (models.Student, error) {
	query := r.db.WithContext(ctx).
		Where("roll_number = ?", rollNumber).
		Where("academic_session = ?", session).
		Where("class = ?", class).
		Where("faculty = ?", faculty)

	if registrationNo == nil {
		query = query.Where("registration_no IS NULL")
	} else {
		query = query.Where("registration_no = ?", *registrationNo)
	}

	var student models.Student
	if err := query.First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("Marks").First(&student, "id = ?", id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(roll_number) LIKE ?", like, like)
	}
	if filter.Faculty != "" {
		query = query.Where("faculty = ?", filter.Faculty)
	}
	if filter.Class != "" {
		query = query.Where("class = ?", filter.Class)
	}
	if filter.Session != "" {
		query = query.Where("academic_session = ?", filter.Session)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("roll_number ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// BulkInsert writes each record individually so a unique-constraint conflict
// skips that record without aborting its siblings. Any other storage error
// stops the batch and is returned alongside the partial report.
func (r *studentRepository) BulkInsert(ctx context.Context, students []*models.Student) (BulkReport, error) {
	report := BulkReport{Outcomes: make([]BulkOutcome, len(students))}

	for i, student := range students {
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(student)
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

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// DeleteCascade removes the student and all owned marks as one atomic unit.
func (r *studentRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.SubjectMark{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Student{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

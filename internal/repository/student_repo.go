package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	Page      int
	PageSize  int
	ProgramID string
	YearLevel int
	Status    string
}

// StudentRepository provides access to student records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (models.Student, error)
	GetByUserID(ctx context.Context, userID string) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Student, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (models.Student, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID string) (models.Student, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *studentRepository) first(ctx context.Context, clause string, arg string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Program").
		Where(clause, arg).
		First(&student).Error
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.ProgramID != "" {
		query = query.Where("program_id = ?", filter.ProgramID)
	}
	if filter.YearLevel > 0 {
		query = query.Where("year_level = ?", filter.YearLevel)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var students []models.Student
	if err := query.Preload("User").Preload("Program").Order("student_number ASC").Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Student, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Student{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *studentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Student{}, id)
}

func (r *studentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countGrouped(ctx, r.db.Model(&models.Student{}), "status")
}

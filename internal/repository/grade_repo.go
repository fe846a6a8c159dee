package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// GradeFilter narrows grade listings.
type GradeFilter struct {
	Page        int
	PageSize    int
	StudentID   string
	SubjectID   string
	Status      string
	ProfessorID string
}

// GradeRepository persists grades.
type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	GetByID(ctx context.Context, id string) (models.Grade, error)
	List(ctx context.Context, filter GradeFilter) ([]models.Grade, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Grade, error)
	Delete(ctx context.Context, id string) error
	HasPassed(ctx context.Context, studentID, subjectID string) (bool, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs the grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepository) GetByID(ctx context.Context, id string) (models.Grade, error) {
	var grade models.Grade
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Section").
		Where("id = ?", id).
		First(&grade).Error
	if err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

func (r *gradeRepository) List(ctx context.Context, filter GradeFilter) ([]models.Grade, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Grade{})

	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProfessorID != "" {
		query = query.Where("section_id IN (?)",
			r.db.Model(&models.Section{}).Select("id").Where("professor_id = ?", filter.ProfessorID))
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var grades []models.Grade
	if err := query.Preload("Subject").Order("student_id ASC, subject_id ASC").Find(&grades).Error; err != nil {
		return nil, 0, err
	}
	return grades, total, nil
}

func (r *gradeRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Grade, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Grade{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Grade{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *gradeRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Grade{}, id)
}

// HasPassed reports whether the student holds at least one passing grade for the subject.
func (r *gradeRepository) HasPassed(ctx context.Context, studentID, subjectID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Grade{}).
		Where("student_id = ? AND subject_id = ? AND status = ?", studentID, subjectID, models.GradeStatusPassed).
		Count(&count).Error
	return count > 0, err
}

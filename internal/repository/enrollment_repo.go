package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	Page        int
	PageSize    int
	StudentID   string
	Term        string
	Status      string
	ProfessorID string
}

// EnrollmentRepository persists enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Exists(ctx context.Context, studentID, sectionID, term string) (bool, error)
	GetByID(ctx context.Context, id string) (models.Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Enrollment, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, term string) (map[string]int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs the enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Create inserts the enrollment. A clash on (student, section, term) surfaces as gorm.ErrDuplicatedKey
// when the connection runs with TranslateError.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) Exists(ctx context.Context, studentID, sectionID, term string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("student_id = ? AND section_id = ? AND term = ?", studentID, sectionID, term).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student.User").
		Preload("Section.Subject").
		Where("id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})

	if filter.StudentID != "" {
		query = query.Where("enrollments.student_id = ?", filter.StudentID)
	}
	if filter.Term != "" {
		query = query.Where("enrollments.term = ?", filter.Term)
	}
	if filter.Status != "" {
		query = query.Where("enrollments.status = ?", filter.Status)
	}
	if filter.ProfessorID != "" {
		query = query.Where("enrollments.section_id IN (?)",
			r.db.Model(&models.Section{}).Select("id").Where("professor_id = ?", filter.ProfessorID))
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var enrollments []models.Enrollment
	err = query.
		Preload("Student.User").
		Preload("Section.Subject").
		Order("enrollments.timestamp DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Enrollment, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Enrollment{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *enrollmentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Enrollment{}, id)
}

func (r *enrollmentRepository) CountByStatus(ctx context.Context, term string) (map[string]int64, error) {
	query := r.db.Model(&models.Enrollment{})
	if term != "" {
		query = query.Where("term = ?", term)
	}
	return countGrouped(ctx, query, "status")
}

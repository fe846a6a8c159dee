package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	Page         int
	PageSize     int
	CurriculumID string
	Code         string
}

// SubjectRepository persists subjects and their prerequisite lists.
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id string) (models.Subject, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error)
	List(ctx context.Context, filter SubjectFilter) ([]models.Subject, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Subject, error)
	Delete(ctx context.Context, id string) error
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository constructs the subject repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).Preload("Curriculum.Program").Where("id = ?", id).First(&subject).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error) {
	result := make(map[string]models.Subject, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&subjects).Error; err != nil {
		return nil, err
	}
	for _, subject := range subjects {
		result[subject.ID] = subject
	}
	return result, nil
}

func (r *subjectRepository) List(ctx context.Context, filter SubjectFilter) ([]models.Subject, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Subject{})

	if filter.CurriculumID != "" {
		query = query.Where("curriculum_id = ?", filter.CurriculumID)
	}
	if filter.Code != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(filter.Code)+"%")
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var subjects []models.Subject
	if err := query.Preload("Curriculum.Program").Order("code ASC").Find(&subjects).Error; err != nil {
		return nil, 0, err
	}
	return subjects, total, nil
}

func (r *subjectRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Subject, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Subject{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Subject{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *subjectRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Subject{}, id)
}

// SectionFilter narrows section listings.
type SectionFilter struct {
	Page        int
	PageSize    int
	Term        string
	ProfessorID string
	SubjectID   string
}

// SectionRepository persists section offerings.
type SectionRepository interface {
	Create(ctx context.Context, section *models.Section) error
	GetByID(ctx context.Context, id string) (models.Section, error)
	List(ctx context.Context, filter SectionFilter) ([]models.Section, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Section, error)
	Delete(ctx context.Context, id string) error
	CountEnrolled(ctx context.Context, sectionIDs []string) (map[string]int64, error)
}

type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository constructs the section repository.
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) Create(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepository) GetByID(ctx context.Context, id string) (models.Section, error) {
	var section models.Section
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Professor").
		Where("id = ?", id).
		First(&section).Error
	if err != nil {
		return models.Section{}, err
	}
	return section, nil
}

func (r *sectionRepository) List(ctx context.Context, filter SectionFilter) ([]models.Section, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Section{})

	if filter.Term != "" {
		query = query.Where("term = ?", filter.Term)
	}
	if filter.ProfessorID != "" {
		query = query.Where("professor_id = ?", filter.ProfessorID)
	}
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var sections []models.Section
	if err := query.Preload("Subject").Preload("Professor").Order("term DESC, name ASC").Find(&sections).Error; err != nil {
		return nil, 0, err
	}
	return sections, total, nil
}

func (r *sectionRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Section, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Section{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Section{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *sectionRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Section{}, id)
}

func (r *sectionRepository) CountEnrolled(ctx context.Context, sectionIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(sectionIDs))
	if len(sectionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SectionID string
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("section_id, COUNT(*) AS total").
		Where("section_id IN ?", sectionIDs).
		Where("status = ?", models.EnrollmentStatusEnrolled).
		Group("section_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SectionID] = row.Total
	}
	return counts, nil
}

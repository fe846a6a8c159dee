package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// ProgramFilter narrows program listings.
type ProgramFilter struct {
	Page       int
	PageSize   int
	Department string
	Sector     string
}

// ProgramRepository persists academic programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id string) (models.Program, error)
	List(ctx context.Context, filter ProgramFilter) ([]models.Program, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Program, error)
	Delete(ctx context.Context, id string) error
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository constructs the program repository.
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) Create(ctx context.Context, program *models.Program) error {
	return r.db.WithContext(ctx).Create(program).Error
}

func (r *programRepository) GetByID(ctx context.Context, id string) (models.Program, error) {
	var program models.Program
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&program).Error; err != nil {
		return models.Program{}, err
	}
	return program, nil
}

func (r *programRepository) List(ctx context.Context, filter ProgramFilter) ([]models.Program, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Program{})

	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var programs []models.Program
	if err := query.Order("code ASC").Find(&programs).Error; err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}

func (r *programRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Program, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Program{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Program{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *programRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Program{}, id)
}

// CurriculumFilter narrows curriculum listings.
type CurriculumFilter struct {
	Page      int
	PageSize  int
	ProgramID string
	YearLevel int
}

// CurriculumRepository persists curricula.
type CurriculumRepository interface {
	Create(ctx context.Context, curriculum *models.Curriculum) error
	GetByID(ctx context.Context, id string) (models.Curriculum, error)
	List(ctx context.Context, filter CurriculumFilter) ([]models.Curriculum, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Curriculum, error)
	Delete(ctx context.Context, id string) error
}

type curriculumRepository struct {
	db *gorm.DB
}

// NewCurriculumRepository constructs the curriculum repository.
func NewCurriculumRepository(db *gorm.DB) CurriculumRepository {
	return &curriculumRepository{db: db}
}

func (r *curriculumRepository) Create(ctx context.Context, curriculum *models.Curriculum) error {
	return r.db.WithContext(ctx).Create(curriculum).Error
}

func (r *curriculumRepository) GetByID(ctx context.Context, id string) (models.Curriculum, error) {
	var curriculum models.Curriculum
	err := r.db.WithContext(ctx).
		Preload("Program").
		Preload("Subjects", func(db *gorm.DB) *gorm.DB { return db.Order("code ASC") }).
		Where("id = ?", id).
		First(&curriculum).Error
	if err != nil {
		return models.Curriculum{}, err
	}
	return curriculum, nil
}

func (r *curriculumRepository) List(ctx context.Context, filter CurriculumFilter) ([]models.Curriculum, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Curriculum{})

	if filter.ProgramID != "" {
		query = query.Where("program_id = ?", filter.ProgramID)
	}
	if filter.YearLevel > 0 {
		query = query.Where("year_level = ?", filter.YearLevel)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var curricula []models.Curriculum
	err = query.
		Preload("Program").
		Preload("Subjects", func(db *gorm.DB) *gorm.DB { return db.Order("code ASC") }).
		Order("year_level ASC, semester ASC").
		Find(&curricula).Error
	if err != nil {
		return nil, 0, err
	}
	return curricula, total, nil
}

func (r *curriculumRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Curriculum, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Curriculum{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Curriculum{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *curriculumRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Curriculum{}, id)
}

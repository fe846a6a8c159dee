package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	Page      int
	PageSize  int
	ProgramID string
	Status    string
}

// ApplicationRepository persists admission applications.
type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id string) (models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Application, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository constructs the application repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (models.Application, error) {
	var application models.Application
	if err := r.db.WithContext(ctx).Preload("Program").Where("id = ?", id).First(&application).Error; err != nil {
		return models.Application{}, err
	}
	return application, nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{})

	if filter.ProgramID != "" {
		query = query.Where("program_id = ?", filter.ProgramID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var applications []models.Application
	if err := query.Preload("Program").Order("timestamp DESC").Find(&applications).Error; err != nil {
		return nil, 0, err
	}
	return applications, total, nil
}

func (r *applicationRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Application, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Application{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *applicationRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Application{}, id)
}

func (r *applicationRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

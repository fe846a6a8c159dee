package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Page      int
	PageSize  int
	StudentID string
	DocType   string
}

// DocumentRepository persists metadata about uploaded documents.
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id string) (models.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Document, error)
	Delete(ctx context.Context, id string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository constructs a repository for document records.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error; err != nil {
		return models.Document{}, err
	}
	return document, nil
}

func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{})

	if filter.StudentID != "" {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.DocType != "" {
		query = query.Where("doc_type = ?", filter.DocType)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var documents []models.Document
	if err := query.Order("timestamp DESC").Find(&documents).Error; err != nil {
		return nil, 0, err
	}
	return documents, total, nil
}

func (r *documentRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Document, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.Document{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.Document{}, id)
}

package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// AuditLogFilter narrows audit log queries.
type AuditLogFilter struct {
	Page     int
	PageSize int
	Entity   string
	Action   string
	UserID   string
}

// AuditLogRepository persists the change audit trail.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error)
	GetByID(ctx context.Context, id string) (models.AuditLog, error)
	Delete(ctx context.Context, id string) error
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.Entity != "" {
		query = query.Where("LOWER(entity) LIKE ?", "%"+strings.ToLower(filter.Entity)+"%")
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	if err := query.Preload("User").Order("timestamp DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *auditLogRepository) GetByID(ctx context.Context, id string) (models.AuditLog, error) {
	var entry models.AuditLog
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&entry).Error; err != nil {
		return models.AuditLog{}, err
	}
	return entry, nil
}

func (r *auditLogRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, &models.AuditLog{}, id)
}

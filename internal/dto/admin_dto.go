package dto

import (
	"math"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta computes page counts for a list response.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	if page <= 0 {
		page = 1
	}
	meta := PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return meta
}

// ListResponse wraps a paginated listing.
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// AuditLogListRequest defines filters for browsing audit logs.
type AuditLogListRequest struct {
	Page     int
	PageSize int
	Entity   string
	Action   string
	UserID   string
}

// AuditLogResponse serializes an audit record.
type AuditLogResponse struct {
	ID        string                 `json:"log_id"`
	Entity    string                 `json:"entity"`
	Action    string                 `json:"action"`
	UserID    *string                `json:"user"`
	Username  string                 `json:"username,omitempty"`
	Details   map[string]interface{} `json:"details"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewAuditLogResponse converts a model into an audit DTO.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	response := AuditLogResponse{
		ID:        entry.ID,
		Entity:    entry.Entity,
		Action:    entry.Action,
		UserID:    entry.UserID,
		Details:   metadataFromJSON(entry.Details),
		Timestamp: entry.CreatedAt,
	}
	if entry.User != nil {
		response.Username = entry.User.Username
	}
	return response
}

// DashboardSummaryRequest scopes the registrar dashboard.
type DashboardSummaryRequest struct {
	Term string
}

// DashboardSummaryResponse aggregates registrar metrics.
type DashboardSummaryResponse struct {
	Term                string           `json:"term,omitempty"`
	TotalStudents       int64            `json:"total_students"`
	StudentsByStatus    map[string]int64 `json:"students_by_status"`
	EnrollmentsByStatus map[string]int64 `json:"enrollments_by_status"`
	PendingApplications int64            `json:"pending_applications"`
	GeneratedAt         time.Time        `json:"generated_at"`
	CacheHit            bool             `json:"cache_hit"`
}

func metadataFromJSON(data datatypes.JSONMap) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	return map[string]interface{}(data)
}

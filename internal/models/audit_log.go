package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions.
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// AuditLog captures one successful mutating API call. Entries are never updated.
type AuditLog struct {
	ID        string            `gorm:"type:varchar(36);primaryKey" json:"log_id"`
	Entity    string            `gorm:"size:50;not null;index" json:"entity"`
	Action    string            `gorm:"size:20;not null;index" json:"action"`
	UserID    *string           `gorm:"type:varchar(36);index" json:"user"`
	User      *User             `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Details   datatypes.JSONMap `json:"details"`
	CreatedAt time.Time         `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`
}

// BeforeCreate assigns a UUID primary key.
func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// IsAuditAction reports whether action is one of the recorded audit actions.
func IsAuditAction(action string) bool {
	switch action {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete:
		return true
	default:
		return false
	}
}

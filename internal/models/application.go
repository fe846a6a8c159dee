package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Application statuses.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// Application is an admission request for a program.
type Application struct {
	ID                   string                      `gorm:"type:varchar(36);primaryKey" json:"application_id"`
	ApplicantName        string                      `gorm:"size:100;not null" json:"applicant_name"`
	Email                string                      `gorm:"size:255;not null" json:"email"`
	ProgramID            string                      `gorm:"type:varchar(36);not null;index" json:"program"`
	Program              Program                     `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	UploadedRequirements datatypes.JSONSlice[string] `json:"uploaded_requirements"`
	Status               string                      `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt            time.Time                   `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

// BeforeCreate assigns a UUID primary key.
func (a *Application) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

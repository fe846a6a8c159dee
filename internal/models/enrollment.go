package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses.
const (
	EnrollmentStatusPending  = "pending"
	EnrollmentStatusEnrolled = "enrolled"
	EnrollmentStatusDropped  = "dropped"
)

// Enrollment registers a student in a section for one term.
// (student_id, section_id, term) is unique at the storage layer.
type Enrollment struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"enrollment_id"`
	StudentID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_slot" json:"student"`
	Student   Student   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SectionID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_slot" json:"section"`
	Section   Section   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Term      string    `gorm:"size:20;not null;uniqueIndex:idx_enrollment_slot" json:"term"`
	Status    string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

// BeforeCreate assigns a UUID primary key.
func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Grade statuses.
const (
	GradeStatusPassed     = "passed"
	GradeStatusFailed     = "failed"
	GradeStatusIncomplete = "inc"
)

// Grade is a student's outcome for a subject taken in a section.
type Grade struct {
	ID          string            `gorm:"type:varchar(36);primaryKey" json:"grade_id"`
	StudentID   string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_grade_slot" json:"student"`
	Student     Student           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SubjectID   string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_grade_slot" json:"subject"`
	Subject     Subject           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SectionID   string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_grade_slot" json:"section"`
	Section     Section           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Value       *float64          `gorm:"column:grade" json:"grade"`
	Status      string            `gorm:"size:20;not null;index" json:"status"`
	EncodedByID *string           `gorm:"type:varchar(36)" json:"encoded_by"`
	EncodedBy   *User             `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Signatories datatypes.JSONMap `json:"signatories"`
}

// BeforeCreate assigns a UUID primary key.
func (g *Grade) BeforeCreate(*gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

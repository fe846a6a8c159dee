package models

import "gorm.io/gorm"

// Student lifecycle statuses.
const (
	StudentStatusEnrolled       = "enrolled"
	StudentStatusGraduated      = "graduated"
	StudentStatusDropped        = "dropped"
	StudentStatusLeaveOfAbsence = "loa"
)

// Student is the academic profile attached to a student account.
type Student struct {
	ID            string  `gorm:"type:varchar(36);primaryKey" json:"student_id"`
	UserID        string  `gorm:"type:varchar(36);uniqueIndex;not null" json:"user"`
	User          User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	StudentNumber string  `gorm:"size:20;uniqueIndex;not null" json:"student_number"`
	Status        string  `gorm:"size:20;not null;default:enrolled;index" json:"status"`
	ProgramID     string  `gorm:"type:varchar(36);not null;index" json:"program"`
	Program       Program `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	YearLevel     int     `gorm:"not null" json:"year_level"`
}

// BeforeCreate assigns a UUID primary key.
func (s *Student) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

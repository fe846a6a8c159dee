package models

import "gorm.io/gorm"

// Semester values accepted by a curriculum.
const (
	SemesterFirst  = "1st"
	SemesterSecond = "2nd"
	SemesterSummer = "Summer"
)

// Program is a degree or certificate offering.
type Program struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"program_id"`
	Code       string `gorm:"size:10;uniqueIndex;not null" json:"program_code"`
	Name       string `gorm:"size:100;not null" json:"program_name"`
	Department string `gorm:"size:100;index" json:"department"`
	Sector     string `gorm:"size:100;index" json:"sector"`
}

// BeforeCreate assigns a UUID primary key.
func (p *Program) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Curriculum groups the subjects of one program year and semester.
type Curriculum struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"curriculum_id"`
	ProgramID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_curriculum_slot" json:"program"`
	Program   Program   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	YearLevel int       `gorm:"not null;uniqueIndex:idx_curriculum_slot" json:"year_level"`
	Semester  string    `gorm:"size:10;not null;uniqueIndex:idx_curriculum_slot" json:"semester"`
	Subjects  []Subject `json:"-"`
}

// BeforeCreate assigns a UUID primary key.
func (c *Curriculum) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

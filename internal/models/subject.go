package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Subject is a course within a curriculum.
type Subject struct {
	ID            string                      `gorm:"type:varchar(36);primaryKey" json:"subject_id"`
	Code          string                      `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Title         string                      `gorm:"size:200;not null" json:"title"`
	Units         int                         `gorm:"not null" json:"units"`
	Prerequisites datatypes.JSONSlice[string] `json:"prerequisites"`
	SyllabusURL   string                      `gorm:"size:512" json:"syllabus_pdf"`
	CurriculumID  string                      `gorm:"type:varchar(36);not null;index" json:"curriculum"`
	Curriculum    Curriculum                  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Summary       string                      `gorm:"type:text" json:"summary"`
}

// BeforeCreate assigns a UUID primary key.
func (s *Subject) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// PrerequisiteIDs returns the declared prerequisite subject ids in order.
func (s Subject) PrerequisiteIDs() []string {
	if len(s.Prerequisites) == 0 {
		return nil
	}
	return append([]string(nil), s.Prerequisites...)
}

// Section is one scheduled offering of a subject in a term.
type Section struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"section_id"`
	Name        string  `gorm:"size:50;not null" json:"section_name"`
	SubjectID   string  `gorm:"type:varchar(36);not null;index" json:"subject"`
	Subject     Subject `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Term        string  `gorm:"size:20;not null;index" json:"term"`
	Schedule    string  `gorm:"size:100" json:"schedule"`
	Room        string  `gorm:"size:50" json:"room"`
	ProfessorID *string `gorm:"type:varchar(36);index" json:"professor"`
	Professor   *User   `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// BeforeCreate assigns a UUID primary key.
func (s *Section) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

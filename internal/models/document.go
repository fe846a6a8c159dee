package models

import (
	"time"

	"gorm.io/gorm"
)

// Document types.
const (
	DocTypeTranscript   = "tor"
	DocTypeRegistration = "cor"
	DocTypeDiploma      = "diploma"
	DocTypeClearance    = "clearance"
	DocTypeID           = "id"
	DocTypeOthers       = "others"
)

// Document is an uploaded file kept on a student's record.
type Document struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"document_id"`
	StudentID    *string   `gorm:"type:varchar(36);index" json:"student"`
	Student      *Student  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DocType      string    `gorm:"size:20;not null" json:"doc_type"`
	FileURL      string    `gorm:"size:512;not null" json:"file_path"`
	FileName     string    `gorm:"size:255" json:"file_name"`
	MimeType     string    `gorm:"size:128" json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Checksum     string    `gorm:"size:128;index" json:"checksum"`
	UploadedByID *string   `gorm:"type:varchar(36)" json:"uploaded_by"`
	UploadedBy   *User     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt    time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
}

// BeforeCreate assigns a UUID primary key.
func (d *Document) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

package dto

import (
	"time"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// DocumentUploadRequest carries the form fields of a document upload.
type DocumentUploadRequest struct {
	StudentID *string `form:"student" validate:"omitempty,uuid"`
	DocType   string  `form:"doc_type" validate:"required,oneof=tor cor diploma clearance id others"`
}

// DocumentUpdateRequest patches document metadata.
type DocumentUpdateRequest struct {
	StudentID *string `json:"student" validate:"omitempty,uuid"`
	DocType   *string `json:"doc_type" validate:"omitempty,oneof=tor cor diploma clearance id others"`
}

// DocumentListRequest defines filters for listing documents.
type DocumentListRequest struct {
	Page      int
	PageSize  int
	StudentID string
	DocType   string
}

// DocumentResponse serializes a stored document.
type DocumentResponse struct {
	ID         string    `json:"document_id"`
	StudentID  *string   `json:"student"`
	DocType    string    `json:"doc_type"`
	FileURL    string    `json:"file_path"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Checksum   string    `json:"checksum"`
	UploadedBy *string   `json:"uploaded_by"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDocumentResponse converts a document model into a DTO.
func NewDocumentResponse(document models.Document) DocumentResponse {
	return DocumentResponse{
		ID:         document.ID,
		StudentID:  document.StudentID,
		DocType:    document.DocType,
		FileURL:    document.FileURL,
		FileName:   document.FileName,
		MimeType:   document.MimeType,
		SizeBytes:  document.SizeBytes,
		Checksum:   document.Checksum,
		UploadedBy: document.UploadedByID,
		Timestamp:  document.CreatedAt,
	}
}

package dto

import "github.com/noah-isme/rci-portal-api/internal/models"

// GradeRequest records a grade for a student in a section.
type GradeRequest struct {
	StudentID   string                 `json:"student" validate:"required,uuid"`
	SubjectID   string                 `json:"subject" validate:"omitempty,uuid"`
	SectionID   string                 `json:"section" validate:"required,uuid"`
	Grade       *float64               `json:"grade" validate:"omitempty,gte=1,lte=5"`
	Status      string                 `json:"status" validate:"required,oneof=passed failed inc"`
	Signatories map[string]interface{} `json:"signatories"`
}

// GradeUpdateRequest patches a grade.
type GradeUpdateRequest struct {
	Grade       *float64               `json:"grade" validate:"omitempty,gte=1,lte=5"`
	Status      *string                `json:"status" validate:"omitempty,oneof=passed failed inc"`
	Signatories map[string]interface{} `json:"signatories"`
}

// GradeListRequest defines filters for listing grades.
type GradeListRequest struct {
	Page        int
	PageSize    int
	StudentID   string
	SubjectID   string
	Status      string
	ProfessorID string
}

// GradeResponse serializes a grade.
type GradeResponse struct {
	ID           string                 `json:"grade_id"`
	StudentID    string                 `json:"student"`
	SubjectID    string                 `json:"subject"`
	SubjectCode  string                 `json:"subject_code,omitempty"`
	SubjectTitle string                 `json:"subject_title,omitempty"`
	SectionID    string                 `json:"section"`
	Grade        *float64               `json:"grade"`
	Status       string                 `json:"status"`
	EncodedByID  *string                `json:"encoded_by"`
	Signatories  map[string]interface{} `json:"signatories"`
}

// NewGradeResponse converts a grade model into a DTO.
func NewGradeResponse(grade models.Grade) GradeResponse {
	return GradeResponse{
		ID:           grade.ID,
		StudentID:    grade.StudentID,
		SubjectID:    grade.SubjectID,
		SubjectCode:  grade.Subject.Code,
		SubjectTitle: grade.Subject.Title,
		SectionID:    grade.SectionID,
		Grade:        grade.Value,
		Status:       grade.Status,
		EncodedByID:  grade.EncodedByID,
		Signatories:  metadataFromJSON(grade.Signatories),
	}
}

package dto

import (
	"time"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// ApplicationRequest submits an admission application.
type ApplicationRequest struct {
	ApplicantName        string   `json:"applicant_name" validate:"required,max=100"`
	Email                string   `json:"email" validate:"required,email"`
	ProgramID            string   `json:"program" validate:"required,uuid"`
	UploadedRequirements []string `json:"uploaded_requirements" validate:"omitempty,dive,required"`
}

// ApplicationUpdateRequest patches an application.
type ApplicationUpdateRequest struct {
	ApplicantName        *string   `json:"applicant_name" validate:"omitempty,max=100"`
	Email                *string   `json:"email" validate:"omitempty,email"`
	UploadedRequirements *[]string `json:"uploaded_requirements" validate:"omitempty,dive,required"`
	Status               *string   `json:"status" validate:"omitempty,oneof=pending accepted rejected"`
}

// ApplicationListRequest defines filters for listing applications.
type ApplicationListRequest struct {
	Page      int
	PageSize  int
	ProgramID string
	Status    string
}

// ApplicationResponse serializes an application.
type ApplicationResponse struct {
	ID                   string    `json:"application_id"`
	ApplicantName        string    `json:"applicant_name"`
	Email                string    `json:"email"`
	ProgramID            string    `json:"program"`
	ProgramCode          string    `json:"program_code,omitempty"`
	UploadedRequirements []string  `json:"uploaded_requirements"`
	Status               string    `json:"status"`
	Timestamp            time.Time `json:"timestamp"`
}

// NewApplicationResponse converts an application model into a DTO.
func NewApplicationResponse(application models.Application) ApplicationResponse {
	requirements := []string(application.UploadedRequirements)
	if requirements == nil {
		requirements = []string{}
	}
	return ApplicationResponse{
		ID:                   application.ID,
		ApplicantName:        application.ApplicantName,
		Email:                application.Email,
		ProgramID:            application.ProgramID,
		ProgramCode:          application.Program.Code,
		UploadedRequirements: requirements,
		Status:               application.Status,
		Timestamp:            application.CreatedAt,
	}
}

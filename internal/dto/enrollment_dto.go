package dto

import (
	"time"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// EnrollmentRequest asks to enroll a student in a section for a term.
type EnrollmentRequest struct {
	StudentID string `json:"student" validate:"required,uuid"`
	SectionID string `json:"section" validate:"required,uuid"`
	Term      string `json:"term" validate:"required,max=20"`
	Status    string `json:"status" validate:"omitempty,oneof=pending enrolled dropped"`
}

// EnrollmentUpdateRequest changes the status of an enrollment.
type EnrollmentUpdateRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending enrolled dropped"`
}

// EnrollmentListRequest defines filters for listing enrollments.
type EnrollmentListRequest struct {
	Page        int
	PageSize    int
	StudentID   string
	Term        string
	Status      string
	ProfessorID string
}

// EnrollmentResponse serializes an enrollment.
type EnrollmentResponse struct {
	ID            string    `json:"enrollment_id"`
	StudentID     string    `json:"student"`
	StudentNumber string    `json:"student_number,omitempty"`
	StudentName   string    `json:"student_name,omitempty"`
	SectionID     string    `json:"section"`
	SectionName   string    `json:"section_name,omitempty"`
	SubjectCode   string    `json:"subject_code,omitempty"`
	Term          string    `json:"term"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEnrollmentResponse converts an enrollment model into a DTO.
func NewEnrollmentResponse(enrollment models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:            enrollment.ID,
		StudentID:     enrollment.StudentID,
		StudentNumber: enrollment.Student.StudentNumber,
		StudentName:   enrollment.Student.User.FullName(),
		SectionID:     enrollment.SectionID,
		SectionName:   enrollment.Section.Name,
		SubjectCode:   enrollment.Section.Subject.Code,
		Term:          enrollment.Term,
		Status:        enrollment.Status,
		Timestamp:     enrollment.CreatedAt,
	}
}

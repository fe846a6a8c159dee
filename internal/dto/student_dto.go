package dto

import "github.com/noah-isme/rci-portal-api/internal/models"

// StudentCreateRequest creates a student profile for an existing student account.
type StudentCreateRequest struct {
	UserID        string `json:"user" validate:"required,uuid"`
	StudentNumber string `json:"student_number" validate:"required,max=20"`
	Status        string `json:"status" validate:"omitempty,oneof=enrolled graduated dropped loa"`
	ProgramID     string `json:"program" validate:"required,uuid"`
	YearLevel     int    `json:"year_level" validate:"required,min=1,max=4"`
}

// StudentUpdateRequest patches a student profile.
type StudentUpdateRequest struct {
	StudentNumber *string `json:"student_number" validate:"omitempty,max=20"`
	Status        *string `json:"status" validate:"omitempty,oneof=enrolled graduated dropped loa"`
	ProgramID     *string `json:"program" validate:"omitempty,uuid"`
	YearLevel     *int    `json:"year_level" validate:"omitempty,min=1,max=4"`
}

// StudentListRequest defines filters for listing students.
type StudentListRequest struct {
	Page      int
	PageSize  int
	ProgramID string
	YearLevel int
	Status    string
}

// StudentResponse serializes a student profile.
type StudentResponse struct {
	ID            string        `json:"student_id"`
	UserID        string        `json:"user"`
	UserInfo      *UserResponse `json:"user_info,omitempty"`
	StudentNumber string        `json:"student_number"`
	Status        string        `json:"status"`
	ProgramID     string        `json:"program"`
	ProgramCode   string        `json:"program_code"`
	ProgramName   string        `json:"program_name"`
	YearLevel     int           `json:"year_level"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	response := StudentResponse{
		ID:            student.ID,
		UserID:        student.UserID,
		StudentNumber: student.StudentNumber,
		Status:        student.Status,
		ProgramID:     student.ProgramID,
		ProgramCode:   student.Program.Code,
		ProgramName:   student.Program.Name,
		YearLevel:     student.YearLevel,
	}
	if student.User.ID != "" {
		info := NewUserResponse(student.User)
		response.UserInfo = &info
	}
	return response
}

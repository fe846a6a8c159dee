package dto

import "github.com/noah-isme/rci-portal-api/internal/models"

// ProgramRequest creates or replaces a program.
type ProgramRequest struct {
	Code       string `json:"program_code" validate:"required,max=10"`
	Name       string `json:"program_name" validate:"required,max=100"`
	Department string `json:"department" validate:"required,max=100"`
	Sector     string `json:"sector" validate:"required,max=100"`
}

// ProgramUpdateRequest patches a program.
type ProgramUpdateRequest struct {
	Code       *string `json:"program_code" validate:"omitempty,max=10"`
	Name       *string `json:"program_name" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Sector     *string `json:"sector" validate:"omitempty,max=100"`
}

// ProgramResponse serializes a program.
type ProgramResponse struct {
	ID         string `json:"program_id"`
	Code       string `json:"program_code"`
	Name       string `json:"program_name"`
	Department string `json:"department"`
	Sector     string `json:"sector"`
}

// NewProgramResponse converts a program model into a DTO.
func NewProgramResponse(program models.Program) ProgramResponse {
	return ProgramResponse{
		ID:         program.ID,
		Code:       program.Code,
		Name:       program.Name,
		Department: program.Department,
		Sector:     program.Sector,
	}
}

// CurriculumRequest creates a curriculum.
type CurriculumRequest struct {
	ProgramID string `json:"program" validate:"required,uuid"`
	YearLevel int    `json:"year_level" validate:"required,min=1,max=4"`
	Semester  string `json:"semester" validate:"required,oneof=1st 2nd Summer"`
}

// CurriculumUpdateRequest patches a curriculum.
type CurriculumUpdateRequest struct {
	YearLevel *int    `json:"year_level" validate:"omitempty,min=1,max=4"`
	Semester  *string `json:"semester" validate:"omitempty,oneof=1st 2nd Summer"`
}

// CurriculumResponse serializes a curriculum with its subjects.
type CurriculumResponse struct {
	ID          string            `json:"curriculum_id"`
	ProgramID   string            `json:"program"`
	ProgramCode string            `json:"program_code"`
	ProgramName string            `json:"program_name"`
	YearLevel   int               `json:"year_level"`
	Semester    string            `json:"semester"`
	Subjects    []SubjectResponse `json:"subjects"`
}

// NewCurriculumResponse converts a curriculum model into a DTO.
func NewCurriculumResponse(curriculum models.Curriculum) CurriculumResponse {
	subjects := make([]SubjectResponse, 0, len(curriculum.Subjects))
	for _, subject := range curriculum.Subjects {
		subject.Curriculum = curriculum
		subjects = append(subjects, NewSubjectResponse(subject))
	}
	return CurriculumResponse{
		ID:          curriculum.ID,
		ProgramID:   curriculum.ProgramID,
		ProgramCode: curriculum.Program.Code,
		ProgramName: curriculum.Program.Name,
		YearLevel:   curriculum.YearLevel,
		Semester:    curriculum.Semester,
		Subjects:    subjects,
	}
}

// SubjectRequest creates a subject.
type SubjectRequest struct {
	Code          string   `json:"code" validate:"required,max=10"`
	Title         string   `json:"title" validate:"required,max=200"`
	Units         int      `json:"units" validate:"required,min=1"`
	Prerequisites []string `json:"prerequisites" validate:"omitempty,dive,uuid"`
	SyllabusURL   string   `json:"syllabus_pdf" validate:"omitempty,url"`
	CurriculumID  string   `json:"curriculum" validate:"required,uuid"`
	Summary       string   `json:"summary"`
}

// SubjectUpdateRequest patches a subject.
type SubjectUpdateRequest struct {
	Code          *string   `json:"code" validate:"omitempty,max=10"`
	Title         *string   `json:"title" validate:"omitempty,max=200"`
	Units         *int      `json:"units" validate:"omitempty,min=1"`
	Prerequisites *[]string `json:"prerequisites" validate:"omitempty,dive,uuid"`
	SyllabusURL   *string   `json:"syllabus_pdf" validate:"omitempty,url"`
	Summary       *string   `json:"summary"`
}

// CurriculumInfo summarises the curriculum a subject belongs to.
type CurriculumInfo struct {
	Program   string `json:"program"`
	YearLevel int    `json:"year_level"`
	Semester  string `json:"semester"`
}

// SubjectResponse serializes a subject.
type SubjectResponse struct {
	ID             string          `json:"subject_id"`
	Code           string          `json:"code"`
	Title          string          `json:"title"`
	Units          int             `json:"units"`
	Prerequisites  []string        `json:"prerequisites"`
	SyllabusURL    string          `json:"syllabus_pdf"`
	CurriculumID   string          `json:"curriculum"`
	CurriculumInfo *CurriculumInfo `json:"curriculum_info,omitempty"`
	Summary        string          `json:"summary"`
}

// NewSubjectResponse converts a subject model into a DTO.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	prerequisites := subject.PrerequisiteIDs()
	if prerequisites == nil {
		prerequisites = []string{}
	}
	response := SubjectResponse{
		ID:            subject.ID,
		Code:          subject.Code,
		Title:         subject.Title,
		Units:         subject.Units,
		Prerequisites: prerequisites,
		SyllabusURL:   subject.SyllabusURL,
		CurriculumID:  subject.CurriculumID,
		Summary:       subject.Summary,
	}
	if subject.Curriculum.ID != "" {
		response.CurriculumInfo = &CurriculumInfo{
			Program:   subject.Curriculum.Program.Code,
			YearLevel: subject.Curriculum.YearLevel,
			Semester:  subject.Curriculum.Semester,
		}
	}
	return response
}

// SectionRequest creates a section.
type SectionRequest struct {
	Name        string  `json:"section_name" validate:"required,max=50"`
	SubjectID   string  `json:"subject" validate:"required,uuid"`
	Term        string  `json:"term" validate:"required,max=20"`
	Schedule    string  `json:"schedule" validate:"omitempty,max=100"`
	Room        string  `json:"room" validate:"omitempty,max=50"`
	ProfessorID *string `json:"professor" validate:"omitempty,uuid"`
}

// SectionUpdateRequest patches a section.
type SectionUpdateRequest struct {
	Name        *string `json:"section_name" validate:"omitempty,max=50"`
	Term        *string `json:"term" validate:"omitempty,max=20"`
	Schedule    *string `json:"schedule" validate:"omitempty,max=100"`
	Room        *string `json:"room" validate:"omitempty,max=50"`
	ProfessorID *string `json:"professor" validate:"omitempty,uuid"`
}

// SectionResponse serializes a section.
type SectionResponse struct {
	ID            string  `json:"section_id"`
	Name          string  `json:"section_name"`
	SubjectID     string  `json:"subject"`
	SubjectCode   string  `json:"subject_code"`
	SubjectTitle  string  `json:"subject_title"`
	Term          string  `json:"term"`
	Schedule      string  `json:"schedule"`
	Room          string  `json:"room"`
	ProfessorID   *string `json:"professor"`
	ProfessorName string  `json:"professor_name"`
	EnrolledCount int64   `json:"enrolled_count"`
}

// NewSectionResponse converts a section model into a DTO.
func NewSectionResponse(section models.Section, enrolled int64) SectionResponse {
	response := SectionResponse{
		ID:            section.ID,
		Name:          section.Name,
		SubjectID:     section.SubjectID,
		SubjectCode:   section.Subject.Code,
		SubjectTitle:  section.Subject.Title,
		Term:          section.Term,
		Schedule:      section.Schedule,
		Room:          section.Room,
		ProfessorID:   section.ProfessorID,
		EnrolledCount: enrolled,
	}
	if section.Professor != nil {
		response.ProfessorName = section.Professor.FullName()
	}
	return response
}

// AcademicListRequest carries the filters shared by academic listings.
type AcademicListRequest struct {
	Page         int
	PageSize     int
	Department   string
	Sector       string
	ProgramID    string
	YearLevel    int
	CurriculumID string
	Code         string
	SubjectID    string
	Term         string
	ProfessorID  string
}

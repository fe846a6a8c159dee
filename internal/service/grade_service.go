package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// GradeService records and manages grades.
type GradeService interface {
	List(ctx context.Context, actor Actor, req dto.GradeListRequest) (dto.ListResponse[dto.GradeResponse], error)
	Get(ctx context.Context, actor Actor, id string) (dto.GradeResponse, error)
	Submit(ctx context.Context, actor Actor, payload dto.GradeRequest) (dto.GradeResponse, error)
	Update(ctx context.Context, actor Actor, id string, payload dto.GradeUpdateRequest) (dto.GradeResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type gradeService struct {
	grades    repository.GradeRepository
	sections  repository.SectionRepository
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(grades repository.GradeRepository, sections repository.SectionRepository, students repository.StudentRepository, validator *validator.Validate, logger zerolog.Logger) GradeService {
	return &gradeService{
		grades:    grades,
		sections:  sections,
		students:  students,
		validator: validator,
		logger:    logger.With().Str("component", "grade_service").Logger(),
	}
}

// checkGradeStatus enforces that incomplete grades carry no value and final grades do.
func checkGradeStatus(value *float64, status string) error {
	hasValue := value != nil && *value != 0
	if hasValue && status == models.GradeStatusIncomplete {
		return fmt.Errorf("%w: cannot set status to INC when grade is provided", ErrInvalidGrade)
	}
	if !hasValue && (status == models.GradeStatusPassed || status == models.GradeStatusFailed) {
		return fmt.Errorf("%w: grade is required for passed/failed status", ErrInvalidGrade)
	}
	return nil
}

func (s *gradeService) List(ctx context.Context, actor Actor, req dto.GradeListRequest) (dto.ListResponse[dto.GradeResponse], error) {
	filter := repository.GradeFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		StudentID: strings.TrimSpace(req.StudentID),
		SubjectID: strings.TrimSpace(req.SubjectID),
		Status:    strings.ToLower(strings.TrimSpace(req.Status)),
	}
	if actor.Is(models.RoleProfessor) {
		filter.ProfessorID = actor.ID
	}

	grades, total, err := s.grades.List(ctx, filter)
	if err != nil {
		return dto.ListResponse[dto.GradeResponse]{}, err
	}

	items := make([]dto.GradeResponse, 0, len(grades))
	for _, grade := range grades {
		items = append(items, dto.NewGradeResponse(grade))
	}
	return dto.ListResponse[dto.GradeResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *gradeService) Get(ctx context.Context, actor Actor, id string) (dto.GradeResponse, error) {
	grade, err := s.grades.GetByID(ctx, id)
	if err != nil {
		return dto.GradeResponse{}, translateNotFound(err, ErrGradeNotFound)
	}
	if !canGrade(actor, grade.Section) {
		return dto.GradeResponse{}, ErrGradeNotFound
	}
	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) Submit(ctx context.Context, actor Actor, payload dto.GradeRequest) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}
	status := strings.ToLower(payload.Status)
	if err := checkGradeStatus(payload.Grade, status); err != nil {
		return dto.GradeResponse{}, err
	}

	section, err := s.sections.GetByID(ctx, payload.SectionID)
	if err != nil {
		return dto.GradeResponse{}, translateNotFound(err, ErrSectionNotFound)
	}
	if !canGrade(actor, section) {
		return dto.GradeResponse{}, ErrForbidden
	}
	if payload.SubjectID != "" && payload.SubjectID != section.SubjectID {
		return dto.GradeResponse{}, fmt.Errorf("%w: subject does not match the section", ErrInvalidGrade)
	}
	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		return dto.GradeResponse{}, translateNotFound(err, ErrStudentNotFound)
	}

	grade := models.Grade{
		StudentID:   payload.StudentID,
		SubjectID:   section.SubjectID,
		SectionID:   section.ID,
		Value:       payload.Grade,
		Status:      status,
		Signatories: datatypes.JSONMap(payload.Signatories),
	}
	if actor.ID != "" {
		encoder := actor.ID
		grade.EncodedByID = &encoder
	}
	if err := s.grades.Create(ctx, &grade); err != nil {
		return dto.GradeResponse{}, translateNotFound(err, ErrGradeNotFound)
	}

	s.logger.Info().
		Str("grade_id", grade.ID).
		Str("student_id", grade.StudentID).
		Str("section_id", grade.SectionID).
		Str("status", grade.Status).
		Msg("grade submitted")

	grade.Subject = section.Subject
	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) Update(ctx context.Context, actor Actor, id string, payload dto.GradeUpdateRequest) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	current, err := s.grades.GetByID(ctx, id)
	if err != nil {
		return dto.GradeResponse{}, translateNotFound(err, ErrGradeNotFound)
	}
	if !canGrade(actor, current.Section) {
		return dto.GradeResponse{}, ErrForbidden
	}

	value := current.Value
	status := current.Status
	updates := make(map[string]interface{})
	if payload.Grade != nil {
		value = payload.Grade
		updates["grade"] = *payload.Grade
	}
	if payload.Status != nil {
		status = strings.ToLower(*payload.Status)
		updates["status"] = status
		if status == models.GradeStatusIncomplete && payload.Grade == nil {
			value = nil
			updates["grade"] = nil
		}
	}
	if payload.Signatories != nil {
		updates["signatories"] = datatypes.JSONMap(payload.Signatories)
	}
	if err := checkGradeStatus(value, status); err != nil {
		return dto.GradeResponse{}, err
	}
	if len(updates) > 0 && actor.ID != "" {
		updates["encoded_by_id"] = actor.ID
	}

	grade, err := s.grades.Update(ctx, id, updates)
	if err != nil {
		return dto.GradeResponse{}, translateNotFound(err, ErrGradeNotFound)
	}
	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) Delete(ctx context.Context, actor Actor, id string) error {
	current, err := s.grades.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrGradeNotFound)
	}
	if !canGrade(actor, current.Section) {
		return ErrForbidden
	}
	if err := s.grades.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrGradeNotFound)
	}
	return nil
}

// canGrade limits professors to the sections they teach.
func canGrade(actor Actor, section models.Section) bool {
	if !actor.Is(models.RoleProfessor) {
		return true
	}
	return section.ProfessorID != nil && *section.ProfessorID == actor.ID
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// StudentService orchestrates student profile management.
type StudentService interface {
	List(ctx context.Context, req dto.StudentListRequest) (dto.ListResponse[dto.StudentResponse], error)
	Get(ctx context.Context, id string) (dto.StudentResponse, error)
	GetByUser(ctx context.Context, userID string) (dto.StudentResponse, error)
	Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, id string, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id string) error
}

type studentService struct {
	students  repository.StudentRepository
	users     repository.UserRepository
	programs  repository.ProgramRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, users repository.UserRepository, programs repository.ProgramRepository, validator *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		users:     users,
		programs:  programs,
		validator: validator,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) (dto.ListResponse[dto.StudentResponse], error) {
	students, total, err := s.students.List(ctx, repository.StudentFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		ProgramID: strings.TrimSpace(req.ProgramID),
		YearLevel: req.YearLevel,
		Status:    strings.ToLower(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		return dto.ListResponse[dto.StudentResponse]{}, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}
	return dto.ListResponse[dto.StudentResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *studentService) Get(ctx context.Context, id string) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) GetByUser(ctx context.Context, userID string) (dto.StudentResponse, error) {
	student, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	user, err := s.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	if !user.HasRole(models.RoleStudent) {
		return dto.StudentResponse{}, ErrNotStudentAccount
	}
	if _, err := s.students.GetByUserID(ctx, user.ID); err == nil {
		return dto.StudentResponse{}, ErrStudentProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}
	if _, err := s.programs.GetByID(ctx, payload.ProgramID); err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrProgramNotFound)
	}

	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if status == "" {
		status = models.StudentStatusEnrolled
	}
	student := models.Student{
		UserID:        user.ID,
		StudentNumber: strings.TrimSpace(payload.StudentNumber),
		Status:        status,
		ProgramID:     payload.ProgramID,
		YearLevel:     payload.YearLevel,
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}

	s.logger.Info().Str("student_id", student.ID).Str("user_id", user.ID).Msg("student profile created")
	return s.Get(ctx, student.ID)
}

func (s *studentService) Update(ctx context.Context, id string, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}
	if _, err := s.students.GetByID(ctx, id); err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}

	updates := make(map[string]interface{})
	if payload.StudentNumber != nil {
		updates["student_number"] = strings.TrimSpace(*payload.StudentNumber)
	}
	if payload.Status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*payload.Status))
	}
	if payload.ProgramID != nil {
		if _, err := s.programs.GetByID(ctx, *payload.ProgramID); err != nil {
			return dto.StudentResponse{}, translateNotFound(err, ErrProgramNotFound)
		}
		updates["program_id"] = *payload.ProgramID
	}
	if payload.YearLevel != nil {
		updates["year_level"] = *payload.YearLevel
	}

	student, err := s.students.Update(ctx, id, updates)
	if err != nil {
		return dto.StudentResponse{}, translateNotFound(err, ErrStudentNotFound)
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrStudentNotFound)
	}
	return nil
}

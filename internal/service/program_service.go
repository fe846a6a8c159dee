package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// ProgramService manages programs and their curricula.
type ProgramService interface {
	ListPrograms(ctx context.Context, req dto.AcademicListRequest) (dto.ListResponse[dto.ProgramResponse], error)
	GetProgram(ctx context.Context, id string) (dto.ProgramResponse, error)
	CreateProgram(ctx context.Context, payload dto.ProgramRequest) (dto.ProgramResponse, error)
	UpdateProgram(ctx context.Context, id string, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error)
	DeleteProgram(ctx context.Context, id string) error

	ListCurricula(ctx context.Context, req dto.AcademicListRequest) (dto.ListResponse[dto.CurriculumResponse], error)
	GetCurriculum(ctx context.Context, id string) (dto.CurriculumResponse, error)
	CreateCurriculum(ctx context.Context, payload dto.CurriculumRequest) (dto.CurriculumResponse, error)
	UpdateCurriculum(ctx context.Context, id string, payload dto.CurriculumUpdateRequest) (dto.CurriculumResponse, error)
	DeleteCurriculum(ctx context.Context, id string) error
}

type programService struct {
	programs  repository.ProgramRepository
	curricula repository.CurriculumRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProgramService constructs the program service.
func NewProgramService(programs repository.ProgramRepository, curricula repository.CurriculumRepository, validator *validator.Validate, logger zerolog.Logger) ProgramService {
	return &programService{
		programs:  programs,
		curricula: curricula,
		validator: validator,
		logger:    logger.With().Str("component", "program_service").Logger(),
	}
}

func (s *programService) ListPrograms(ctx context.Context, req dto.AcademicListRequest) (dto.ListResponse[dto.ProgramResponse], error) {
	programs, total, err := s.programs.List(ctx, repository.ProgramFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Department: strings.TrimSpace(req.Department),
		Sector:     strings.TrimSpace(req.Sector),
	})
	if err != nil {
		return dto.ListResponse[dto.ProgramResponse]{}, err
	}

	items := make([]dto.ProgramResponse, 0, len(programs))
	for _, program := range programs {
		items = append(items, dto.NewProgramResponse(program))
	}
	return dto.ListResponse[dto.ProgramResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *programService) GetProgram(ctx context.Context, id string) (dto.ProgramResponse, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return dto.ProgramResponse{}, translateNotFound(err, ErrProgramNotFound)
	}
	return dto.NewProgramResponse(program), nil
}

func (s *programService) CreateProgram(ctx context.Context, payload dto.ProgramRequest) (dto.ProgramResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	program := models.Program{
		Code:       strings.ToUpper(strings.TrimSpace(payload.Code)),
		Name:       sanitizeText(payload.Name),
		Department: sanitizeText(payload.Department),
		Sector:     sanitizeText(payload.Sector),
	}
	if err := s.programs.Create(ctx, &program); err != nil {
		return dto.ProgramResponse{}, translateNotFound(err, ErrProgramNotFound)
	}
	return dto.NewProgramResponse(program), nil
}

func (s *programService) UpdateProgram(ctx context.Context, id string, payload dto.ProgramUpdateRequest) (dto.ProgramResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgramResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.Code != nil {
		updates["code"] = strings.ToUpper(strings.TrimSpace(*payload.Code))
	}
	if payload.Name != nil {
		updates["name"] = sanitizeText(*payload.Name)
	}
	if payload.Department != nil {
		updates["department"] = sanitizeText(*payload.Department)
	}
	if payload.Sector != nil {
		updates["sector"] = sanitizeText(*payload.Sector)
	}

	if _, err := s.programs.GetByID(ctx, id); err != nil {
		return dto.ProgramResponse{}, translateNotFound(err, ErrProgramNotFound)
	}
	program, err := s.programs.Update(ctx, id, updates)
	if err != nil {
		return dto.ProgramResponse{}, translateNotFound(err, ErrProgramNotFound)
	}
	return dto.NewProgramResponse(program), nil
}

func (s *programService) DeleteProgram(ctx context.Context, id string) error {
	if err := s.programs.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrProgramNotFound)
	}
	return nil
}

func (s *programService) ListCurricula(ctx context.Context, req dto.AcademicListRequest) (dto.ListResponse[dto.CurriculumResponse], error) {
	curricula, total, err := s.curricula.List(ctx, repository.CurriculumFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		ProgramID: strings.TrimSpace(req.ProgramID),
		YearLevel: req.YearLevel,
	})
	if err != nil {
		return dto.ListResponse[dto.CurriculumResponse]{}, err
	}

	items := make([]dto.CurriculumResponse, 0, len(curricula))
	for _, curriculum := range curricula {
		items = append(items, dto.NewCurriculumResponse(curriculum))
	}
	return dto.ListResponse[dto.CurriculumResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *programService) GetCurriculum(ctx context.Context, id string) (dto.CurriculumResponse, error) {
	curriculum, err := s.curricula.GetByID(ctx, id)
	if err != nil {
		return dto.CurriculumResponse{}, translateNotFound(err, ErrCurriculumNotFound)
	}
	return dto.NewCurriculumResponse(curriculum), nil
}

func (s *programService) CreateCurriculum(ctx context.Context, payload dto.CurriculumRequest) (dto.CurriculumResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CurriculumResponse{}, err
	}
	if _, err := s.programs.GetByID(ctx, payload.ProgramID); err != nil {
		return dto.CurriculumResponse{}, translateNotFound(err, ErrProgramNotFound)
	}

	curriculum := models.Curriculum{
		ProgramID: payload.ProgramID,
		YearLevel: payload.YearLevel,
		Semester:  payload.Semester,
	}
	if err := s.curricula.Create(ctx, &curriculum); err != nil {
		return dto.CurriculumResponse{}, translateNotFound(err, ErrCurriculumNotFound)
	}
	return s.GetCurriculum(ctx, curriculum.ID)
}

func (s *programService) UpdateCurriculum(ctx context.Context, id string, payload dto.CurriculumUpdateRequest) (dto.CurriculumResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CurriculumResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.YearLevel != nil {
		updates["year_level"] = *payload.YearLevel
	}
	if payload.Semester != nil {
		updates["semester"] = *payload.Semester
	}

	if _, err := s.curricula.GetByID(ctx, id); err != nil {
		return dto.CurriculumResponse{}, translateNotFound(err, ErrCurriculumNotFound)
	}
	curriculum, err := s.curricula.Update(ctx, id, updates)
	if err != nil {
		return dto.CurriculumResponse{}, translateNotFound(err, ErrCurriculumNotFound)
	}
	return dto.NewCurriculumResponse(curriculum), nil
}

func (s *programService) DeleteCurriculum(ctx context.Context, id string) error {
	if err := s.curricula.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrCurriculumNotFound)
	}
	return nil
}

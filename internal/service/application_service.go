package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// ApplicationService manages admission applications.
type ApplicationService interface {
	List(ctx context.Context, req dto.ApplicationListRequest) (dto.ListResponse[dto.ApplicationResponse], error)
	Get(ctx context.Context, id string) (dto.ApplicationResponse, error)
	Create(ctx context.Context, payload dto.ApplicationRequest) (dto.ApplicationResponse, error)
	Update(ctx context.Context, id string, payload dto.ApplicationUpdateRequest) (dto.ApplicationResponse, error)
	Delete(ctx context.Context, id string) error
}

type applicationService struct {
	applications repository.ApplicationRepository
	programs     repository.ProgramRepository
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewApplicationService constructs the application service.
func NewApplicationService(applications repository.ApplicationRepository, programs repository.ProgramRepository, validator *validator.Validate, logger zerolog.Logger) ApplicationService {
	return &applicationService{
		applications: applications,
		programs:     programs,
		validator:    validator,
		logger:       logger.With().Str("component", "application_service").Logger(),
	}
}

func (s *applicationService) List(ctx context.Context, req dto.ApplicationListRequest) (dto.ListResponse[dto.ApplicationResponse], error) {
	applications, total, err := s.applications.List(ctx, repository.ApplicationFilter{
		Page:      req.Page,
		PageSize:  req.PageSize,
		ProgramID: strings.TrimSpace(req.ProgramID),
		Status:    strings.ToLower(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		return dto.ListResponse[dto.ApplicationResponse]{}, err
	}

	items := make([]dto.ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		items = append(items, dto.NewApplicationResponse(application))
	}
	return dto.ListResponse[dto.ApplicationResponse]{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *applicationService) Get(ctx context.Context, id string) (dto.ApplicationResponse, error) {
	application, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, translateNotFound(err, ErrApplicationNotFound)
	}
	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) Create(ctx context.Context, payload dto.ApplicationRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}
	if _, err := s.programs.GetByID(ctx, payload.ProgramID); err != nil {
		return dto.ApplicationResponse{}, translateNotFound(err, ErrProgramNotFound)
	}

	application := models.Application{
		ApplicantName:        sanitizeText(payload.ApplicantName),
		Email:                strings.ToLower(strings.TrimSpace(payload.Email)),
		ProgramID:            payload.ProgramID,
		UploadedRequirements: requirementList(payload.UploadedRequirements),
		Status:               models.ApplicationStatusPending,
	}
	if err := s.applications.Create(ctx, &application); err != nil {
		return dto.ApplicationResponse{}, err
	}

	s.logger.Info().
		Str("application_id", application.ID).
		Str("email", maskEmailAddress(application.Email)).
		Msg("application received")
	return s.Get(ctx, application.ID)
}

func (s *applicationService) Update(ctx context.Context, id string, payload dto.ApplicationUpdateRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApplicationResponse{}, err
	}
	if _, err := s.applications.GetByID(ctx, id); err != nil {
		return dto.ApplicationResponse{}, translateNotFound(err, ErrApplicationNotFound)
	}

	updates := make(map[string]interface{})
	if payload.ApplicantName != nil {
		updates["applicant_name"] = sanitizeText(*payload.ApplicantName)
	}
	if payload.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.UploadedRequirements != nil {
		updates["uploaded_requirements"] = requirementList(*payload.UploadedRequirements)
	}
	if payload.Status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*payload.Status))
	}

	application, err := s.applications.Update(ctx, id, updates)
	if err != nil {
		return dto.ApplicationResponse{}, translateNotFound(err, ErrApplicationNotFound)
	}
	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) Delete(ctx context.Context, id string) error {
	if err := s.applications.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrApplicationNotFound)
	}
	return nil
}

func requirementList(items []string) datatypes.JSONSlice[string] {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if value := sanitizeText(item); value != "" {
			cleaned = append(cleaned, value)
		}
	}
	return datatypes.JSONSlice[string](cleaned)
}

package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// UserService exposes account administration.
type UserService interface {
	List(ctx context.Context, req dto.UserListRequest) (dto.ListResponse[dto.UserResponse], error)
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, id string, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	SetActive(ctx context.Context, id string, active bool) (dto.UserResponse, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user administration service.
func NewUserService(repo repository.UserRepository, validator *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.ListResponse[dto.UserResponse], error) {
	users, total, err := s.repo.List(ctx, repository.UserFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Role:     normalizeRole(req.Role),
		IsActive: req.IsActive,
	})
	if err != nil {
		return dto.ListResponse[dto.UserResponse]{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return dto.ListResponse[dto.UserResponse]{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *userService) Get(ctx context.Context, id string) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}
	user, err := createUser(ctx, s.repo, payload)
	if err != nil {
		return dto.UserResponse{}, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user created")
	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id string, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	updates := make(map[string]interface{})
	if payload.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.Role != nil {
		updates["role"] = normalizeRole(*payload.Role)
	}
	if payload.FirstName != nil {
		updates["first_name"] = sanitizeText(*payload.FirstName)
	}
	if payload.LastName != nil {
		updates["last_name"] = sanitizeText(*payload.LastName)
	}
	if payload.IsActive != nil {
		updates["is_active"] = *payload.IsActive
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	user, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) SetActive(ctx context.Context, id string, active bool) (dto.UserResponse, error) {
	return s.Update(ctx, id, dto.UserUpdateRequest{IsActive: &active})
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrUserNotFound)
	}
	return nil
}

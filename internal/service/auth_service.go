package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenConfig configures token signing.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// AuthService implements account registration, login and token lifecycle.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenPair, error)
	Logout(ctx context.Context, payload dto.LogoutRequest) error
	Me(ctx context.Context, userID string) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, payload dto.ChangePasswordRequest) error
}

type authService struct {
	users     repository.UserRepository
	cache     *redis.Client
	tokens    TokenConfig
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAuthService constructs the auth service. cache may be nil, in which case
// logout cannot revoke refresh tokens.
func NewAuthService(users repository.UserRepository, cache *redis.Client, tokens TokenConfig, validator *validator.Validate, logger zerolog.Logger) AuthService {
	if tokens.AccessTTL <= 0 {
		tokens.AccessTTL = time.Hour
	}
	if tokens.RefreshTTL <= 0 {
		tokens.RefreshTTL = 7 * 24 * time.Hour
	}
	if tokens.Issuer == "" {
		tokens.Issuer = "rci-portal-api"
	}
	return &authService{
		users:     users,
		cache:     cache,
		tokens:    tokens,
		validator: validator,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/rci-portal-api/internal/service/auth"),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	ctx, span := s.tracer.Start(ctx, "auth.register")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "invalid payload")
		return dto.AuthResponse{}, err
	}

	user, err := createUser(ctx, s.users, dto.UserCreateRequest{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		Role:      payload.Role,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return dto.AuthResponse{}, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		span.RecordError(err)
		return dto.AuthResponse{}, err
	}

	span.SetAttributes(attribute.String("auth.user_id", user.ID), attribute.String("auth.role", user.Role))
	return dto.AuthResponse{User: dto.NewUserResponse(user), Tokens: pair}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(payload.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "unknown user")
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		span.RecordError(err)
		return dto.AuthResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		span.SetStatus(codes.Error, "bad password")
		return dto.AuthResponse{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		span.SetStatus(codes.Error, "disabled")
		return dto.AuthResponse{}, ErrAccountDisabled
	}

	pair, err := s.issuePair(user)
	if err != nil {
		span.RecordError(err)
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return dto.AuthResponse{User: dto.NewUserResponse(user), Tokens: pair}, nil
}

func (s *authService) Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.TokenPair, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenPair{}, err
	}

	claims, err := s.parseRefresh(payload.Refresh)
	if err != nil {
		return dto.TokenPair{}, err
	}

	revoked, err := s.isRevoked(ctx, claims)
	if err != nil {
		return dto.TokenPair{}, err
	}
	if revoked {
		return dto.TokenPair{}, ErrInvalidToken
	}

	subject, _ := claims.GetSubject()
	user, err := s.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenPair{}, ErrInvalidToken
		}
		return dto.TokenPair{}, err
	}
	if !user.IsActive {
		return dto.TokenPair{}, ErrAccountDisabled
	}

	access, err := s.sign(user, TokenTypeAccess, s.tokens.AccessTTL, s.tokens.AccessSecret)
	if err != nil {
		return dto.TokenPair{}, err
	}
	return dto.TokenPair{Access: access}, nil
}

func (s *authService) Logout(ctx context.Context, payload dto.LogoutRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	claims, err := s.parseRefresh(payload.RefreshToken)
	if err != nil {
		return err
	}

	if s.cache == nil {
		s.logger.Warn().Msg("token cache unavailable, refresh token not revoked")
		return nil
	}

	jti, _ := claims["jti"].(string)
	ttl := s.tokens.RefreshTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = exp.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err()
}

func (s *authService) Me(ctx context.Context, userID string) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, payload dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return translateNotFound(err, ErrUserNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.OldPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, user.ID, map[string]interface{}{"password_hash": string(hash)})
	return err
}

func (s *authService) issuePair(user models.User) (dto.TokenPair, error) {
	access, err := s.sign(user, TokenTypeAccess, s.tokens.AccessTTL, s.tokens.AccessSecret)
	if err != nil {
		return dto.TokenPair{}, err
	}
	refresh, err := s.sign(user, TokenTypeRefresh, s.tokens.RefreshTTL, s.tokens.RefreshSecret)
	if err != nil {
		return dto.TokenPair{}, err
	}
	return dto.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *authService) sign(user models.User, tokenType string, ttl time.Duration, secret string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"role":       user.Role,
		"username":   user.Username,
		"full_name":  user.FullName(),
		"token_type": tokenType,
		"jti":        uuid.NewString(),
		"iss":        s.tokens.Issuer,
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *authService) parseRefresh(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.tokens.RefreshSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) isRevoked(ctx context.Context, claims jwt.MapClaims) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	jti, _ := claims["jti"].(string)
	exists, err := s.cache.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to check token denylist")
		return false, err
	}
	return exists > 0, nil
}

// createUser hashes the password and stores a new account, rejecting taken usernames or emails.
func createUser(ctx context.Context, users repository.UserRepository, payload dto.UserCreateRequest) (models.User, error) {
	username := strings.TrimSpace(payload.Username)
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	exists, err := users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	role := normalizeRole(payload.Role)
	if role == "" {
		role = models.RoleStudent
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    sanitizeText(payload.FirstName),
		LastName:     sanitizeText(payload.LastName),
		Role:         role,
		IsActive:     true,
	}
	if err := users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	return user, nil
}

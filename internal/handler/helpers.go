package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/middleware"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errInvalidIdentifier = errors.New("invalid identifier")

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryBool(c *fiber.Ctx, key string) (*bool, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parsePagination reads page and page_size, applying defaults and the upper bound.
func parsePagination(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, errors.New("invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, errors.New("invalid page size")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, nil
}

func parseIDParam(c *fiber.Ctx, name string) (string, error) {
	value := strings.TrimSpace(c.Params(name))
	if _, err := uuid.Parse(value); err != nil {
		return "", errInvalidIdentifier
	}
	return value, nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	identity, _ := middleware.IdentityFromContext(c)
	return service.Actor{ID: identity.UserID, Role: identity.Role}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

var notFoundErrors = []error{
	service.ErrUserNotFound,
	service.ErrProgramNotFound,
	service.ErrCurriculumNotFound,
	service.ErrSubjectNotFound,
	service.ErrSectionNotFound,
	service.ErrStudentNotFound,
	service.ErrEnrollmentNotFound,
	service.ErrGradeNotFound,
	service.ErrApplicationNotFound,
	service.ErrDocumentNotFound,
	service.ErrAuditLogNotFound,
}

var conflictErrors = []error{
	service.ErrDuplicateRecord,
	service.ErrUserExists,
	service.ErrStudentProfileExists,
}

var badRequestErrors = []error{
	service.ErrWrongPassword,
	service.ErrInvalidGrade,
	service.ErrNotStudentAccount,
	service.ErrNotProfessor,
	service.ErrUnknownPrerequisite,
	service.ErrUploadMissing,
	service.ErrUploadTypeNotAllowed,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged and reported with fallback.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var rejection *service.EnrollmentValidationError
	switch {
	case errors.As(err, &rejection):
		return utils.Fail(c, fiber.StatusBadRequest, rejection.Message, fiber.Map{"reason": rejection.Reason})
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	case matchesAny(err, notFoundErrors):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case matchesAny(err, conflictErrors):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case matchesAny(err, badRequestErrors):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrInvalidToken):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func errInvalidFilter(name string) error {
	return errors.New("invalid " + name + " filter")
}

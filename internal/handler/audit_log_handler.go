package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// AuditLogHandler exposes the recorded audit trail.
type AuditLogHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditLogHandler constructs the handler.
func NewAuditLogHandler(service service.AuditService, logger zerolog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_log_handler").Logger(),
	}
}

// Register attaches audit log routes to the router group.
func (h *AuditLogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.delete)
}

func (h *AuditLogHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.UserContext(), dto.AuditLogListRequest{
		Page:     page,
		PageSize: pageSize,
		Entity:   c.Query("entity"),
		Action:   c.Query("action"),
		UserID:   c.Query("user"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list audit logs")
	}

	return utils.SendSuccess(c, "audit logs retrieved", response)
}

func (h *AuditLogHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch audit log")
	}

	return utils.SendSuccess(c, "audit log retrieved", entry)
}

func (h *AuditLogHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete audit log")
	}

	return utils.SendSuccess(c, "audit log deleted", fiber.Map{"id": id})
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// ApplicationHandler exposes admission applications.
type ApplicationHandler struct {
	service service.ApplicationService
	logger  zerolog.Logger
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(service service.ApplicationService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: service,
		logger:  logger.With().Str("component", "application_handler").Logger(),
	}
}

// Register attaches application routes to the router group.
func (h *ApplicationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ApplicationHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.UserContext(), dto.ApplicationListRequest{
		Page:      page,
		PageSize:  pageSize,
		ProgramID: c.Query("program"),
		Status:    c.Query("status"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list applications")
	}

	return utils.SendSuccess(c, "applications retrieved", response)
}

func (h *ApplicationHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	application, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch application")
	}

	return utils.SendSuccess(c, "application retrieved", application)
}

func (h *ApplicationHandler) create(c *fiber.Ctx) error {
	var payload dto.ApplicationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	application, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create application")
	}

	return utils.SendCreated(c, "application created", application)
}

func (h *ApplicationHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApplicationUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.Get(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch application")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	application, err := h.service.Update(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update application")
	}

	return utils.SendSuccess(c, "application updated", application)
}

func (h *ApplicationHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete application")
	}

	return utils.SendSuccess(c, "application deleted", fiber.Map{"id": id})
}

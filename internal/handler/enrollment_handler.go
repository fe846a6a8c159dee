package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches enrollment routes. manage guards status changes and removal.
func (h *EnrollmentHandler) Register(router fiber.Router, enroll, manage fiber.Handler) {
	router.Get("", h.list)
	router.Post("", enroll, h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", manage, h.update)
	router.Put("/:id", manage, h.update)
	router.Delete("/:id", manage, h.delete)
}

func (h *EnrollmentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.UserContext(), actorFromContext(c), dto.EnrollmentListRequest{
		Page:      page,
		PageSize:  pageSize,
		StudentID: c.Query("student"),
		Term:      c.Query("term"),
		Status:    c.Query("status"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list enrollments")
	}

	return utils.SendSuccess(c, "enrollments retrieved", response)
}

func (h *EnrollmentHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch enrollment")
	}

	return utils.SendSuccess(c, "enrollment retrieved", enrollment)
}

func (h *EnrollmentHandler) create(c *fiber.Ctx) error {
	var payload dto.EnrollmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	enrollment, err := h.service.Enroll(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create enrollment")
	}

	return utils.SendCreated(c, "enrollment created", enrollment)
}

func (h *EnrollmentHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EnrollmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.Get(ctx, actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch enrollment")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	enrollment, err := h.service.Update(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update enrollment")
	}

	return utils.SendSuccess(c, "enrollment updated", enrollment)
}

func (h *EnrollmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete enrollment")
	}

	return utils.SendSuccess(c, "enrollment deleted", fiber.Map{"id": id})
}

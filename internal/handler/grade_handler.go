package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// GradeHandler exposes grade encoding.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches grade routes to the router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.submit)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *GradeHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.UserContext(), actorFromContext(c), dto.GradeListRequest{
		Page:      page,
		PageSize:  pageSize,
		StudentID: c.Query("student"),
		SubjectID: c.Query("subject"),
		Status:    c.Query("status"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list grades")
	}

	return utils.SendSuccess(c, "grades retrieved", response)
}

func (h *GradeHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grade, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch grade")
	}

	return utils.SendSuccess(c, "grade retrieved", grade)
}

func (h *GradeHandler) submit(c *fiber.Ctx) error {
	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	grade, err := h.service.Submit(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit grade")
	}

	return utils.SendCreated(c, "grade submitted", grade)
}

func (h *GradeHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	actor := actorFromContext(c)
	current, err := h.service.Get(ctx, actor, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch grade")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	grade, err := h.service.Update(ctx, actor, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update grade")
	}

	return utils.SendSuccess(c, "grade updated", grade)
}

func (h *GradeHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete grade")
	}

	return utils.SendSuccess(c, "grade deleted", fiber.Map{"id": id})
}

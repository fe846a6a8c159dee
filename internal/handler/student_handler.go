package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// StudentHandler exposes student profiles.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// RegisterSelf attaches the caller's own profile route.
func (h *StudentHandler) RegisterSelf(router fiber.Router) {
	router.Get("/me", h.me)
}

// Register attaches the administrative student routes.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

// bindOwner exposes the student's account holder to the auditor.
func bindOwner(c *fiber.Ctx, student dto.StudentResponse) {
	if student.UserInfo == nil {
		return
	}
	audit.FromContext(c.UserContext()).Bind(audit.Owned{FullName: student.UserInfo.FullName})
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	yearLevel, err := parseQueryInt(c, "year_level")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, errInvalidFilter("year_level").Error())
	}

	response, err := h.service.List(c.UserContext(), dto.StudentListRequest{
		Page:      page,
		PageSize:  pageSize,
		ProgramID: c.Query("program"),
		YearLevel: yearLevel,
		Status:    c.Query("status"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", response)
}

func (h *StudentHandler) me(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	student, err := h.service.GetByUser(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch student profile")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	student, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create student")
	}
	bindOwner(c, student)

	return utils.SendCreated(c, "student created", student)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.Get(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch student")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	student, err := h.service.Update(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update student")
	}
	bindOwner(c, student)

	return utils.SendSuccess(c, "student updated", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// ProgramHandler exposes programs and their curricula.
type ProgramHandler struct {
	service service.ProgramService
	logger  zerolog.Logger
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(service service.ProgramService, logger zerolog.Logger) *ProgramHandler {
	return &ProgramHandler{
		service: service,
		logger:  logger.With().Str("component", "program_handler").Logger(),
	}
}

// RegisterPrograms attaches program routes to the router group.
func (h *ProgramHandler) RegisterPrograms(router fiber.Router) {
	router.Get("", h.listPrograms)
	router.Post("", h.createProgram)
	router.Get("/:id", h.getProgram)
	router.Patch("/:id", h.updateProgram)
	router.Put("/:id", h.updateProgram)
	router.Delete("/:id", h.deleteProgram)
}

// RegisterCurricula attaches curriculum routes to the router group.
func (h *ProgramHandler) RegisterCurricula(router fiber.Router) {
	router.Get("", h.listCurricula)
	router.Post("", h.createCurriculum)
	router.Get("/:id", h.getCurriculum)
	router.Patch("/:id", h.updateCurriculum)
	router.Put("/:id", h.updateCurriculum)
	router.Delete("/:id", h.deleteCurriculum)
}

// academicListRequest reads the filters shared by the academic listings.
func academicListRequest(c *fiber.Ctx) (dto.AcademicListRequest, error) {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return dto.AcademicListRequest{}, err
	}
	yearLevel, err := parseQueryInt(c, "year_level")
	if err != nil {
		return dto.AcademicListRequest{}, errInvalidFilter("year_level")
	}
	return dto.AcademicListRequest{
		Page:         page,
		PageSize:     pageSize,
		Department:   c.Query("department"),
		Sector:       c.Query("sector"),
		ProgramID:    c.Query("program"),
		YearLevel:    yearLevel,
		CurriculumID: c.Query("curriculum"),
		Code:         c.Query("code"),
		Term:         c.Query("term"),
		ProfessorID:  c.Query("professor"),
	}, nil
}

func (h *ProgramHandler) listPrograms(c *fiber.Ctx) error {
	req, err := academicListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ListPrograms(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list programs")
	}

	return utils.SendSuccess(c, "programs retrieved", response)
}

func (h *ProgramHandler) getProgram(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	program, err := h.service.GetProgram(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch program")
	}

	return utils.SendSuccess(c, "program retrieved", program)
}

func (h *ProgramHandler) createProgram(c *fiber.Ctx) error {
	var payload dto.ProgramRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	program, err := h.service.CreateProgram(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create program")
	}

	return utils.SendCreated(c, "program created", program)
}

func (h *ProgramHandler) updateProgram(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ProgramUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.GetProgram(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch program")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	program, err := h.service.UpdateProgram(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update program")
	}

	return utils.SendSuccess(c, "program updated", program)
}

func (h *ProgramHandler) deleteProgram(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteProgram(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete program")
	}

	return utils.SendSuccess(c, "program deleted", fiber.Map{"id": id})
}

func (h *ProgramHandler) listCurricula(c *fiber.Ctx) error {
	req, err := academicListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ListCurricula(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list curricula")
	}

	return utils.SendSuccess(c, "curricula retrieved", response)
}

func (h *ProgramHandler) getCurriculum(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	curriculum, err := h.service.GetCurriculum(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch curriculum")
	}

	return utils.SendSuccess(c, "curriculum retrieved", curriculum)
}

func (h *ProgramHandler) createCurriculum(c *fiber.Ctx) error {
	var payload dto.CurriculumRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	curriculum, err := h.service.CreateCurriculum(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create curriculum")
	}

	return utils.SendCreated(c, "curriculum created", curriculum)
}

func (h *ProgramHandler) updateCurriculum(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CurriculumUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.GetCurriculum(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch curriculum")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	curriculum, err := h.service.UpdateCurriculum(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update curriculum")
	}

	return utils.SendSuccess(c, "curriculum updated", curriculum)
}

func (h *ProgramHandler) deleteCurriculum(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteCurriculum(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete curriculum")
	}

	return utils.SendSuccess(c, "curriculum deleted", fiber.Map{"id": id})
}

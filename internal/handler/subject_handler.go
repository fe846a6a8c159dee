package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// SubjectHandler exposes subjects and their sections.
type SubjectHandler struct {
	service service.SubjectService
	logger  zerolog.Logger
}

// NewSubjectHandler constructs the handler.
func NewSubjectHandler(service service.SubjectService, logger zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		service: service,
		logger:  logger.With().Str("component", "subject_handler").Logger(),
	}
}

// RegisterSubjects attaches subject routes to the router group.
func (h *SubjectHandler) RegisterSubjects(router fiber.Router) {
	router.Get("", h.listSubjects)
	router.Post("", h.createSubject)
	router.Get("/:id", h.getSubject)
	router.Patch("/:id", h.updateSubject)
	router.Put("/:id", h.updateSubject)
	router.Delete("/:id", h.deleteSubject)
}

// RegisterSections attaches section routes to the router group.
func (h *SubjectHandler) RegisterSections(router fiber.Router) {
	router.Get("", h.listSections)
	router.Post("", h.createSection)
	router.Get("/:id", h.getSection)
	router.Patch("/:id", h.updateSection)
	router.Put("/:id", h.updateSection)
	router.Delete("/:id", h.deleteSection)
}

func (h *SubjectHandler) listSubjects(c *fiber.Ctx) error {
	req, err := academicListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ListSubjects(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list subjects")
	}

	return utils.SendSuccess(c, "subjects retrieved", response)
}

func (h *SubjectHandler) getSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	subject, err := h.service.GetSubject(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch subject")
	}

	return utils.SendSuccess(c, "subject retrieved", subject)
}

func (h *SubjectHandler) createSubject(c *fiber.Ctx) error {
	var payload dto.SubjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	subject, err := h.service.CreateSubject(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create subject")
	}

	return utils.SendCreated(c, "subject created", subject)
}

func (h *SubjectHandler) updateSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubjectUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.GetSubject(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch subject")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	subject, err := h.service.UpdateSubject(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update subject")
	}

	return utils.SendSuccess(c, "subject updated", subject)
}

func (h *SubjectHandler) deleteSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteSubject(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete subject")
	}

	return utils.SendSuccess(c, "subject deleted", fiber.Map{"id": id})
}

func (h *SubjectHandler) listSections(c *fiber.Ctx) error {
	req, err := academicListRequest(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	req.SubjectID = c.Query("subject")

	response, err := h.service.ListSections(c.UserContext(), actorFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list sections")
	}

	return utils.SendSuccess(c, "sections retrieved", response)
}

func (h *SubjectHandler) getSection(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	section, err := h.service.GetSection(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch section")
	}

	return utils.SendSuccess(c, "section retrieved", section)
}

func (h *SubjectHandler) createSection(c *fiber.Ctx) error {
	var payload dto.SectionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	section, err := h.service.CreateSection(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create section")
	}

	return utils.SendCreated(c, "section created", section)
}

func (h *SubjectHandler) updateSection(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SectionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.GetSection(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch section")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	section, err := h.service.UpdateSection(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update section")
	}

	return utils.SendSuccess(c, "section updated", section)
}

func (h *SubjectHandler) deleteSection(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteSection(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete section")
	}

	return utils.SendSuccess(c, "section deleted", fiber.Map{"id": id})
}

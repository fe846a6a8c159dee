package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// DocumentHandler exposes student document storage.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches document routes to the router group.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.upload)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.List(c.UserContext(), dto.DocumentListRequest{
		Page:      page,
		PageSize:  pageSize,
		StudentID: c.Query("student"),
		DocType:   c.Query("doc_type"),
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list documents")
	}

	return utils.SendSuccess(c, "documents retrieved", response)
}

func (h *DocumentHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	document, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch document")
	}

	return utils.SendSuccess(c, "document retrieved", document)
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	var form dto.DocumentUploadRequest
	if err := c.BodyParser(&form); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	var file *multipart.FileHeader
	if header, err := c.FormFile("file"); err == nil {
		file = header
	}

	document, err := h.service.Upload(c.UserContext(), actorFromContext(c), form, file)
	if err != nil {
		return respondError(c, h.logger, err, "upload failed")
	}

	return utils.SendCreated(c, "document uploaded", document)
}

func (h *DocumentHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DocumentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.Get(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch document")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	document, err := h.service.Update(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update document")
	}

	return utils.SendSuccess(c, "document updated", document)
}

func (h *DocumentHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete document")
	}

	return utils.SendSuccess(c, "document deleted", fiber.Map{"id": id})
}

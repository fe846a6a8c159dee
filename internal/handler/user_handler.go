package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// UserHandler exposes account administration.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches user routes to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/activate", h.activate)
	router.Post("/:id/deactivate", h.deactivate)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	active, err := parseQueryBool(c, "is_active")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid is_active filter")
	}

	response, err := h.service.List(c.UserContext(), dto.UserListRequest{
		Page:     page,
		PageSize: pageSize,
		Role:     c.Query("role"),
		IsActive: active,
	})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", response)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch user")
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create user")
	}

	return utils.SendCreated(c, "user created", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := c.UserContext()
	current, err := h.service.Get(ctx, id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to fetch user")
	}
	audit.FromContext(ctx).SnapshotBefore(current)

	user, err := h.service.Update(ctx, id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update user")
	}

	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *UserHandler) deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *UserHandler) setActive(c *fiber.Ctx, active bool) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.service.SetActive(c.UserContext(), id, active)
	if err != nil {
		return respondError(c, h.logger, err, "failed to change account status")
	}

	message := "user deactivated"
	if active {
		message = "user activated"
	}
	return utils.SendSuccess(c, message, user)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete user")
	}

	return utils.SendSuccess(c, "user deleted", fiber.Map{"id": id})
}

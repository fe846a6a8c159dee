package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// AuthHandler exposes account and token endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches auth routes. protect guards the routes that need a caller
// and loginGuard throttles the credential endpoints.
func (h *AuthHandler) Register(router fiber.Router, protect, loginGuard fiber.Handler) {
	router.Post("/register", loginGuard, h.register)
	router.Post("/login", loginGuard, h.login)
	router.Post("/token/refresh", h.refresh)
	router.Post("/logout", protect, h.logout)
	router.Get("/me", protect, h.me)
	router.Post("/change-password", protect, h.changePassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register account")
	}

	return utils.SendCreated(c, "account registered", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to login")
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var payload dto.RefreshRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	tokens, err := h.service.Refresh(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to refresh token")
	}

	return utils.SendSuccess(c, "token refreshed", tokens)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	var payload dto.LogoutRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Logout(c.UserContext(), payload); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid refresh token")
		}
		return respondError(c, h.logger, err, "failed to logout")
	}

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	user, err := h.service.Me(c.UserContext(), actor.ID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", user)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := actorFromContext(c)
	if err := h.service.ChangePassword(c.UserContext(), actor.ID, payload); err != nil {
		return respondError(c, h.logger, err, "failed to change password")
	}

	return utils.SendSuccess(c, "password changed", nil)
}

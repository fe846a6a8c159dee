package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/utils"
)

// DashboardHandler exposes registrar dashboard figures.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches dashboard routes to the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
}

func (h *DashboardHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), dto.DashboardSummaryRequest{Term: c.Query("term")})
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}

	c.Set("X-Cache-Hit", boolHeader(summary.CacheHit))
	return utils.SendSuccess(c, "dashboard summary", summary)
}

func boolHeader(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

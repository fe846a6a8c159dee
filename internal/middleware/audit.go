package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/observability"
)

// AuditConfig configures the Audit middleware.
type AuditConfig struct {
	Recorder      audit.Recorder
	Logger        zerolog.Logger
	ExcludedPaths []string
	// OnOutcome, when set, observes the result of every tracked call.
	OnOutcome func(audit.Outcome)
}

// Audit records one audit entry for every successful mutating call made by an
// authenticated caller. It must wrap the authentication middleware so the
// caller identity is known once the handler returns. Recording runs after
// the response is produced and never changes it.
func Audit(cfg AuditConfig) fiber.Handler {
	excluded := cfg.ExcludedPaths
	if excluded == nil {
		excluded = audit.DefaultExcludedPaths
	}
	logger := cfg.Logger.With().Str("component", "audit_middleware").Logger()

	report := func(outcome audit.Outcome) {
		if cfg.OnOutcome != nil {
			cfg.OnOutcome(outcome)
		}
	}

	return func(c *fiber.Ctx) error {
		method := c.Method()
		path := c.Path()
		if !audit.IsTrackedMethod(method) || audit.IsExcludedPath(path, excluded) {
			return c.Next()
		}

		capture := audit.NewCapture(c.Body())
		c.SetUserContext(audit.WithCapture(c.UserContext(), capture))

		if err := c.Next(); err != nil {
			report(audit.Skipped(audit.SkipHandlerError))
			return err
		}

		identity, ok := IdentityFromContext(c)
		if !ok {
			report(audit.Skipped(audit.SkipUnauthenticated))
			return nil
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			report(audit.Skipped(audit.SkipStatus))
			return nil
		}

		action, _ := audit.ActionForMethod(method)
		actorID := identity.UserID
		entry := audit.Entry{
			Entity:        audit.EntityFromPath(path),
			Action:        action,
			ActorID:       &actorID,
			CorrelationID: GetCorrelationID(c),
			Details: audit.BuildDetails(audit.Call{
				Method:       method,
				Path:         path,
				Role:         identity.Role,
				ResponseBody: c.Response().Body(),
			}, capture),
		}

		outcome := audit.Persist(c.UserContext(), cfg.Recorder, entry)
		observability.AuditEvents().WithLabelValues(entry.Action, string(outcome.Status)).Inc()
		if outcome.Status == audit.OutcomeFailed {
			requestLogger(logger, c).Error().
				Err(outcome.Err).
				Str("entity", entry.Entity).
				Str("action", entry.Action).
				Str("path", path).
				Msg("could not record audit entry")
		}
		report(outcome)

		return nil
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if correlation := GetCorrelationID(c); correlation != "" {
		logger = base.With().Str("correlation_id", correlation).Logger()
	}
	return &logger
}

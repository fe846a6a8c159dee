package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/config"
	"github.com/noah-isme/rci-portal-api/internal/handler"
	"github.com/noah-isme/rci-portal-api/internal/middleware"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	ProgramHandler     *handler.ProgramHandler
	SubjectHandler     *handler.SubjectHandler
	StudentHandler     *handler.StudentHandler
	EnrollmentHandler  *handler.EnrollmentHandler
	GradeHandler       *handler.GradeHandler
	ApplicationHandler *handler.ApplicationHandler
	DocumentHandler    *handler.DocumentHandler
	AuditLogHandler    *handler.AuditLogHandler
	DashboardHandler   *handler.DashboardHandler
	JWTMiddleware      fiber.Handler
	AuditRecorder      audit.Recorder
	Database           handler.Pinger
	Logger             zerolog.Logger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// The auditor wraps every /api route so it sees the caller resolved by
	// the JWT middleware further down the chain.
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	}, middleware.Audit(middleware.AuditConfig{
		Recorder: deps.AuditRecorder,
		Logger:   deps.Logger,
	}))
	api.Get("/health", handler.HealthCheck(cfg, deps.Database))

	jwt := deps.JWTMiddleware
	if jwt == nil {
		jwt = middleware.RequireAuth()
	}
	staff := models.StaffRoles

	if deps.AuthHandler != nil {
		loginGuard := middleware.RateLimit("auth", cfg.LoginRateLimit, time.Minute)
		deps.AuthHandler.Register(api.Group("/auth"), jwt, loginGuard)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwt, middleware.RequireRole(models.RoleAdmin)))
	}

	if deps.ProgramHandler != nil {
		deps.ProgramHandler.RegisterPrograms(api.Group("/programs", jwt, middleware.ReadOnlyOr(staff...)))
		deps.ProgramHandler.RegisterCurricula(api.Group("/curricula", jwt, middleware.ReadOnlyOr(models.RoleAdmin, models.RoleHead)))
	}

	if deps.SubjectHandler != nil {
		deps.SubjectHandler.RegisterSubjects(api.Group("/subjects", jwt, middleware.ReadOnlyOr(staff...)))
		deps.SubjectHandler.RegisterSections(api.Group("/sections", jwt, middleware.ReadOnlyOr(staff...)))
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwt)
		deps.StudentHandler.RegisterSelf(students)
		deps.StudentHandler.Register(students.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleRegistrar)))
	}

	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(
			api.Group("/enrollments", jwt),
			middleware.RequireRole(models.RoleAdmin, models.RoleRegistrar, models.RoleStudent),
			middleware.RequireRole(models.RoleAdmin, models.RoleRegistrar),
		)
	}

	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(api.Group("/grades", jwt, middleware.RequireRole(models.RoleAdmin, models.RoleRegistrar, models.RoleProfessor)))
	}

	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.Register(api.Group("/applications", jwt, middleware.RequireRole(models.RoleAdmin, models.RoleAdmissions)))
	}

	if deps.DocumentHandler != nil {
		deps.DocumentHandler.Register(api.Group("/documents", jwt, middleware.RequireRole(models.RoleAdmin, models.RoleRegistrar)))
	}

	if deps.AuditLogHandler != nil {
		deps.AuditLogHandler.Register(api.Group("/audit-logs", jwt, middleware.RequireRole(models.RoleAdmin)))
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwt, middleware.RequireRole(models.RoleAdmin, models.RoleRegistrar, models.RoleHead)))
	}
}

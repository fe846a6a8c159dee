package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/rci-portal-api/internal/config"
	"github.com/noah-isme/rci-portal-api/internal/database"
	"github.com/noah-isme/rci-portal-api/internal/handler"
	"github.com/noah-isme/rci-portal-api/internal/middleware"
	"github.com/noah-isme/rci-portal-api/internal/repository"
	"github.com/noah-isme/rci-portal-api/internal/router"
	"github.com/noah-isme/rci-portal-api/internal/service"
	cloud "github.com/noah-isme/rci-portal-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "rci-portal-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database pool")
	}
	defer sqlDB.Close()

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled: dashboard cache and token revocation are off")
	}

	var publisher service.EventPublisher
	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
		publisher = natsConn
	}

	storage, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cloudinary client")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewProgramRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, publisher, cfg.AuditSubject, logger)
	authService := service.NewAuthService(userRepo, redisClient, service.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        cfg.AppName,
	}, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	programService := service.NewProgramService(programRepo, curriculumRepo, validate, logger)
	subjectService := service.NewSubjectService(subjectRepo, sectionRepo, curriculumRepo, userRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, userRepo, programRepo, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, sectionRepo, subjectRepo, gradeRepo, studentRepo, validate, logger)
	gradeService := service.NewGradeService(gradeRepo, sectionRepo, studentRepo, validate, logger)
	applicationService := service.NewApplicationService(applicationRepo, programRepo, validate, logger)
	documentService := service.NewDocumentService(storage, documentRepo, studentRepo, cfg.UploadMaxMB, validate, logger)
	dashboardService := service.NewDashboardService(studentRepo, enrollmentRepo, applicationRepo, redisClient, cfg.DashboardCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		AccessLog:      cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, logger),
		UserHandler:        handler.NewUserHandler(userService, logger),
		ProgramHandler:     handler.NewProgramHandler(programService, logger),
		SubjectHandler:     handler.NewSubjectHandler(subjectService, logger),
		StudentHandler:     handler.NewStudentHandler(studentService, logger),
		EnrollmentHandler:  handler.NewEnrollmentHandler(enrollmentService, logger),
		GradeHandler:       handler.NewGradeHandler(gradeService, logger),
		ApplicationHandler: handler.NewApplicationHandler(applicationService, logger),
		DocumentHandler:    handler.NewDocumentHandler(documentService, logger),
		AuditLogHandler:    handler.NewAuditLogHandler(auditService, logger),
		DashboardHandler:   handler.NewDashboardHandler(dashboardService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
		AuditRecorder:      auditService,
		Database:           sqlDB,
		Logger:             logger,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

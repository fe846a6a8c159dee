package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/config"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/handler"
	"github.com/noah-isme/rci-portal-api/internal/middleware"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
	"github.com/noah-isme/rci-portal-api/internal/router"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

const testJWTSecret = "handler-test-secret"

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memoryStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	url := "https://res.cloudinary.com/rci/image/upload/v1/rci/documents/" + name
	s.objects[url] = data
	return url, nil
}

func (s *memoryStorage) Delete(_ context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, fileURL)
	return nil
}

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	auth    service.AuthService
	storage *memoryStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cache := redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	storage := &memoryStorage{}

	users := repository.NewUserRepository(db)
	programs := repository.NewProgramRepository(db)
	curricula := repository.NewCurriculumRepository(db)
	subjects := repository.NewSubjectRepository(db)
	sections := repository.NewSectionRepository(db)
	students := repository.NewStudentRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	grades := repository.NewGradeRepository(db)
	applications := repository.NewApplicationRepository(db)
	documents := repository.NewDocumentRepository(db)

	auditService := service.NewAuditService(repository.NewAuditLogRepository(db), nil, "", logger)
	authService := service.NewAuthService(users, cache, service.TokenConfig{
		AccessSecret:  testJWTSecret,
		RefreshSecret: testJWTSecret + "-refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "rci-test",
	}, validate, logger)

	cfg := config.Config{AppName: "RCI Portal API", AppEnv: "test", LoginRateLimit: 1000}
	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, logger),
		UserHandler:        handler.NewUserHandler(service.NewUserService(users, validate, logger), logger),
		ProgramHandler:     handler.NewProgramHandler(service.NewProgramService(programs, curricula, validate, logger), logger),
		SubjectHandler:     handler.NewSubjectHandler(service.NewSubjectService(subjects, sections, curricula, users, validate, logger), logger),
		StudentHandler:     handler.NewStudentHandler(service.NewStudentService(students, users, programs, validate, logger), logger),
		EnrollmentHandler:  handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollments, sections, subjects, grades, students, validate, logger), logger),
		GradeHandler:       handler.NewGradeHandler(service.NewGradeService(grades, sections, students, validate, logger), logger),
		ApplicationHandler: handler.NewApplicationHandler(service.NewApplicationService(applications, programs, validate, logger), logger),
		DocumentHandler:    handler.NewDocumentHandler(service.NewDocumentService(storage, documents, students, 1, validate, logger), logger),
		AuditLogHandler:    handler.NewAuditLogHandler(auditService, logger),
		DashboardHandler:   handler.NewDashboardHandler(service.NewDashboardService(students, enrollments, applications, cache, time.Minute, logger), logger),
		JWTMiddleware:      middleware.JWTProtected(testJWTSecret),
		AuditRecorder:      auditService,
		Logger:             logger,
	})

	return &testEnv{app: app, db: db, auth: authService, storage: storage}
}

// login returns an access token for user.
func (e *testEnv) login(t *testing.T, user *models.User) string {
	t.Helper()
	response, err := e.auth.Login(context.Background(), dto.LoginRequest{Username: user.Username, Password: testutil.DefaultPassword})
	require.NoError(t, err)
	return response.Tokens.Access
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) auditLogs(t *testing.T) []models.AuditLog {
	t.Helper()
	var logs []models.AuditLog
	require.NoError(t, e.db.Order("timestamp ASC").Find(&logs).Error)

	// JSONMap scans numbers as json.Number; decode again so they compare as float64
	// like the details built in memory.
	for i := range logs {
		raw, err := json.Marshal(logs[i].Details)
		require.NoError(t, err)
		var details map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &details))
		logs[i].Details = details
	}
	return logs
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Details map[string]interface{} `json:"details"`
}

func decode(t *testing.T, resp *http.Response, target interface{}) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if target != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, target))
	}
	return env
}

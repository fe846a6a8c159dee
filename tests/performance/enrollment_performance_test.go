package performance_test

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rci-portal-api/internal/handler"
	"github.com/noah-isme/rci-portal-api/internal/middleware"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
	"github.com/noah-isme/rci-portal-api/internal/service"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

func p95(durations []time.Duration) time.Duration {
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	return durations[index]
}

// Every request walks a five-subject prerequisite chain, passes, and is then
// audited through the real audit service.
func TestEnrollmentWithAuditP95LatencyBelow250ms(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zerolog.Nop()

	program := testutil.CreateProgram(t, db)
	curriculum := testutil.CreateCurriculum(t, db, program)
	registrar := testutil.CreateUser(t, db, models.RoleRegistrar)

	var prerequisites []string
	var passedSections []*models.Section
	for i := 0; i < 5; i++ {
		subject := testutil.CreateSubject(t, db, curriculum, fmt.Sprintf("PRE%d", i))
		prerequisites = append(prerequisites, subject.ID)
		passedSections = append(passedSections, testutil.CreateSection(t, db, subject, "2023-2", nil))
	}
	target := testutil.CreateSubject(t, db, curriculum, "CAP400", prerequisites...)

	runs := 40
	sections := make([]*models.Section, 0, runs)
	for i := 0; i < runs; i++ {
		sections = append(sections, testutil.CreateSection(t, db, target, "2024-1", nil))
	}
	student := testutil.CreateStudent(t, db, program)
	for _, section := range passedSections {
		testutil.CreateGrade(t, db, student, section, models.GradeStatusPassed)
	}

	enrollments := service.NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		repository.NewSectionRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewGradeRepository(db),
		repository.NewStudentRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		logger,
	)
	auditService := service.NewAuditService(repository.NewAuditLogRepository(db), nil, "", logger)

	app := fiber.New()
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, registrar.ID)
		c.Locals(middleware.LocalUserRole, models.RoleRegistrar)
		return c.Next()
	}, middleware.Audit(middleware.AuditConfig{Recorder: auditService, Logger: logger}))
	pass := func(c *fiber.Ctx) error { return c.Next() }
	handler.NewEnrollmentHandler(enrollments, logger).Register(api.Group("/enrollments"), pass, pass)

	durations := make([]time.Duration, 0, runs)
	for _, section := range sections {
		body := fmt.Sprintf(`{"student":%q,"section":%q,"term":"2024-1"}`, student.ID, section.ID)
		req := httptest.NewRequest(http.MethodPost, "/api/enrollments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	var audited int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&audited).Error)
	require.EqualValues(t, runs, audited)

	require.LessOrEqual(t, p95(durations), 250*time.Millisecond)
}

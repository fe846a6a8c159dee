package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

func TestEnrollmentValidationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	registrar := testutil.CreateUser(t, env.db, models.RoleRegistrar)
	program := testutil.CreateProgram(t, env.db)
	curriculum := testutil.CreateCurriculum(t, env.db, program)
	intro := testutil.CreateSubject(t, env.db, curriculum, "CS100")
	advanced := testutil.CreateSubject(t, env.db, curriculum, "CS200", intro.ID)
	introSection := testutil.CreateSection(t, env.db, intro, "2023-2", nil)
	section := testutil.CreateSection(t, env.db, advanced, "2024-1", nil)
	student := testutil.CreateStudent(t, env.db, program)
	token := env.login(t, registrar)

	payload := map[string]string{"student": student.ID, "section": section.ID, "term": "2024-1"}

	resp := env.do(t, http.MethodPost, "/api/enrollments", token, payload)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp, nil)
	require.False(t, body.Success)
	require.Equal(t, "Prerequisite not met: CS100 - Subject CS100", body.Message)
	require.Equal(t, "prerequisite", body.Details["reason"])

	testutil.CreateGrade(t, env.db, student, introSection, models.GradeStatusPassed)

	resp = env.do(t, http.MethodPost, "/api/enrollments", token, payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created dto.EnrollmentResponse
	decode(t, resp, &created)
	require.Equal(t, models.EnrollmentStatusPending, created.Status)

	resp = env.do(t, http.MethodPost, "/api/enrollments", token, payload)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body = decode(t, resp, nil)
	require.Equal(t, "Student is already enrolled in this section for this term", body.Message)

	logs := env.auditLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, "Enrollment", logs[0].Entity)

	resp = env.do(t, http.MethodPatch, "/api/enrollments/"+created.ID, token, map[string]string{"status": models.EnrollmentStatusEnrolled})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	logs = env.auditLogs(t)
	require.Len(t, logs, 2)
	changes, ok := logs[1].Details["changes"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, map[string]interface{}{"before": "pending", "after": "enrolled"}, changes["status"])
}

func TestStudentEnrollmentScope(t *testing.T) {
	env := newTestEnv(t)
	program := testutil.CreateProgram(t, env.db)
	curriculum := testutil.CreateCurriculum(t, env.db, program)
	subject := testutil.CreateSubject(t, env.db, curriculum, "GE101")
	section := testutil.CreateSection(t, env.db, subject, "2024-1", nil)
	own := testutil.CreateStudent(t, env.db, program)
	other := testutil.CreateStudent(t, env.db, program)
	token := env.login(t, &own.User)

	resp := env.do(t, http.MethodPost, "/api/enrollments", token, map[string]string{"student": other.ID, "section": section.ID, "term": "2024-1"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/enrollments", token, map[string]string{"student": own.ID, "section": section.ID, "term": "2024-1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created dto.EnrollmentResponse
	decode(t, resp, &created)
	resp = env.do(t, http.MethodDelete, "/api/enrollments/"+created.ID, token, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/enrollments", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page dto.ListResponse[dto.EnrollmentResponse]
	decode(t, resp, &page)
	require.Len(t, page.Items, 1)
	require.Equal(t, own.ID, page.Items[0].StudentID)

	resp = env.do(t, http.MethodGet, "/api/students/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var profile dto.StudentResponse
	decode(t, resp, &profile)
	require.Equal(t, own.ID, profile.ID)

	resp = env.do(t, http.MethodGet, "/api/students", token, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

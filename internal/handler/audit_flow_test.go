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

func TestStudentUpdateRecordsChanges(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin)
	program := testutil.CreateProgram(t, env.db)
	student := testutil.CreateStudent(t, env.db, program)
	token := env.login(t, admin)

	resp := env.do(t, http.MethodPatch, "/api/students/"+student.ID, token, map[string]interface{}{"year_level": 2})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated dto.StudentResponse
	decode(t, resp, &updated)
	require.Equal(t, 2, updated.YearLevel)

	logs := env.auditLogs(t)
	require.Len(t, logs, 1)
	entry := logs[0]
	require.Equal(t, "Student", entry.Entity)
	require.Equal(t, models.AuditActionUpdate, entry.Action)
	require.NotNil(t, entry.UserID)
	require.Equal(t, admin.ID, *entry.UserID)

	details := map[string]interface{}(entry.Details)
	require.Equal(t, "PATCH", details["method"])
	require.Equal(t, "/api/students/"+student.ID, details["path"])
	require.Equal(t, models.RoleAdmin, details["user_role"])
	require.Equal(t, map[string]interface{}{"year_level": float64(2)}, details["request_data"])

	changes, ok := details["changes"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, map[string]interface{}{
		"year_level": map[string]interface{}{"before": float64(1), "after": float64(2)},
	}, changes)
}

func TestStudentCreateRecordsOwnerName(t *testing.T) {
	env := newTestEnv(t)
	registrar := testutil.CreateUser(t, env.db, models.RoleRegistrar)
	account := testutil.CreateUser(t, env.db, models.RoleStudent)
	program := testutil.CreateProgram(t, env.db)
	token := env.login(t, registrar)

	resp := env.do(t, http.MethodPost, "/api/students", token, map[string]interface{}{
		"user":           account.ID,
		"student_number": "2024-90001",
		"program":        program.ID,
		"year_level":     1,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	logs := env.auditLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, models.AuditActionCreate, logs[0].Action)

	created, ok := logs[0].Details["created"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "2024-90001", created["student_number"])
	require.Equal(t, account.FullName(), created["full_name"])
}

func TestDeleteRecordsDeletedID(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin)
	program := testutil.CreateProgram(t, env.db)
	token := env.login(t, admin)

	resp := env.do(t, http.MethodDelete, "/api/programs/"+program.ID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	logs := env.auditLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, "Program", logs[0].Entity)
	require.Equal(t, models.AuditActionDelete, logs[0].Action)
	require.Equal(t, program.ID, logs[0].Details["deleted_id"])
}

func TestFailedAndAnonymousCallsAreNotAudited(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin)
	student := testutil.CreateUser(t, env.db, models.RoleStudent)

	resp := env.do(t, http.MethodPost, "/api/programs", "", map[string]string{"program_code": "BSIT"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/programs", env.login(t, admin), map[string]string{"program_code": "BSIT"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/programs", env.login(t, student), map[string]string{
		"program_code": "BSIT", "program_name": "IT", "department": "ICTD", "sector": "IT",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/programs", env.login(t, student), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Empty(t, env.auditLogs(t))
}

func TestAuthFlowAuditsLogoutOnly(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":         "juan",
		"email":            "juan@rci.test",
		"password":         "secret-pass",
		"password_confirm": "secret-pass",
		"first_name":       "Juan",
		"last_name":        "Dela Cruz",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "juan", "password": "wrong-pass"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "juan", "password": "secret-pass"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var auth dto.AuthResponse
	decode(t, resp, &auth)
	require.NotEmpty(t, auth.Tokens.Access)
	require.Equal(t, "Juan Dela Cruz", auth.User.FullName)

	resp = env.do(t, http.MethodPost, "/api/auth/token/refresh", "", map[string]string{"refresh": auth.Tokens.Refresh})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/auth/me", auth.Tokens.Access, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Empty(t, env.auditLogs(t))

	resp = env.do(t, http.MethodPost, "/api/auth/logout", auth.Tokens.Access, map[string]string{"refresh_token": auth.Tokens.Refresh})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	logs := env.auditLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, "Auth", logs[0].Entity)
	require.Equal(t, models.AuditActionCreate, logs[0].Action)
	require.Equal(t, map[string]interface{}{"refresh_token": "***"}, logs[0].Details["request_data"])

	resp = env.do(t, http.MethodPost, "/api/auth/token/refresh", "", map[string]string{"refresh": auth.Tokens.Refresh})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/logout", auth.Tokens.Access, map[string]string{"refresh_token": "garbage"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuditLogEndpoints(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.CreateUser(t, env.db, models.RoleAdmin)
	registrar := testutil.CreateUser(t, env.db, models.RoleRegistrar)
	program := testutil.CreateProgram(t, env.db)
	adminToken := env.login(t, admin)

	resp := env.do(t, http.MethodPatch, "/api/programs/"+program.ID, adminToken, map[string]string{"sector": "Engineering"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/audit-logs", env.login(t, registrar), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/audit-logs?entity=prog&action=update", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page dto.ListResponse[dto.AuditLogResponse]
	decode(t, resp, &page)
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(1), page.Pagination.TotalItems)
	logID := page.Items[0].ID
	require.Equal(t, admin.Username, page.Items[0].Username)

	resp = env.do(t, http.MethodGet, "/api/audit-logs/"+logID, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/audit-logs/"+logID, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/audit-logs/"+logID, adminToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	logs := env.auditLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, "Audit-log", logs[0].Entity)
	require.Equal(t, models.AuditActionDelete, logs[0].Action)
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rci-portal-api/internal/config"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/handler"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func multipartUpload(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestDocumentUpload(t *testing.T) {
	env := newTestEnv(t)
	registrar := testutil.CreateUser(t, env.db, models.RoleRegistrar)
	program := testutil.CreateProgram(t, env.db)
	student := testutil.CreateStudent(t, env.db, program)
	token := env.login(t, registrar)

	body, contentType := multipartUpload(t, map[string]string{"student": student.ID, "doc_type": "tor"}, "transcript.png", pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var document dto.DocumentResponse
	decode(t, resp, &document)
	require.Equal(t, "tor", document.DocType)
	require.Equal(t, "image/png", document.MimeType)
	require.NotNil(t, document.StudentID)
	require.Equal(t, student.ID, *document.StudentID)
	require.Len(t, env.storage.objects, 1)

	logs := env.auditLogs(t)
	require.Len(t, logs, 1)
	require.Equal(t, "Document", logs[0].Entity)
	require.Equal(t, map[string]interface{}{}, logs[0].Details["request_data"])

	body, contentType = multipartUpload(t, map[string]string{"doc_type": "tor"}, "", nil)
	req = httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, contentType = multipartUpload(t, map[string]string{"doc_type": "tor"}, "script.sh", []byte("#!/bin/sh\necho hi\n"))
	req = httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/documents/"+document.ID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Empty(t, env.storage.objects)
}

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t)
	head := testutil.CreateUser(t, env.db, models.RoleHead)
	program := testutil.CreateProgram(t, env.db)
	testutil.CreateStudent(t, env.db, program)
	token := env.login(t, head)

	resp := env.do(t, http.MethodGet, "/api/dashboard/summary?term=2024-1", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "false", resp.Header.Get("X-Cache-Hit"))
	var summary dto.DashboardSummaryResponse
	decode(t, resp, &summary)
	require.Equal(t, int64(1), summary.TotalStudents)

	resp = env.do(t, http.MethodGet, "/api/dashboard/summary?term=2024-1", token, nil)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))

	professor := testutil.CreateUser(t, env.db, models.RoleProfessor)
	resp = env.do(t, http.MethodGet, "/api/dashboard/summary", env.login(t, professor), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSectionsAreScopedForProfessors(t *testing.T) {
	env := newTestEnv(t)
	program := testutil.CreateProgram(t, env.db)
	curriculum := testutil.CreateCurriculum(t, env.db, program)
	subject := testutil.CreateSubject(t, env.db, curriculum, "IT210")
	professor := testutil.CreateUser(t, env.db, models.RoleProfessor)
	other := testutil.CreateUser(t, env.db, models.RoleProfessor)
	mine := testutil.CreateSection(t, env.db, subject, "2024-1", professor)
	testutil.CreateSection(t, env.db, subject, "2024-1", other)

	resp := env.do(t, http.MethodGet, "/api/sections", env.login(t, professor), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page dto.ListResponse[dto.SectionResponse]
	decode(t, resp, &page)
	require.Len(t, page.Items, 1)
	require.Equal(t, mine.ID, page.Items[0].ID)
	require.Equal(t, "IT210", page.Items[0].SubjectCode)

	resp = env.do(t, http.MethodGet, "/api/sections/not-a-uuid", env.login(t, professor), nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health handler.HealthResponse
	decode(t, resp, &health)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "RCI Portal API", health.Service)
	require.Equal(t, "RCI Portal API", resp.Header.Get("X-Application"))
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsDegradedDatabase(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "RCI Portal API"}, failingPinger{}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Details handler.HealthResponse `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Success)
	require.Equal(t, "degraded", body.Details.Status)
	require.Equal(t, "unreachable", body.Details.Database)
}

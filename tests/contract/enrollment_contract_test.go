package contract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/handler"
	"github.com/noah-isme/rci-portal-api/internal/service"
)

type stubEnrollmentService struct {
	service.EnrollmentService
	err error
}

func (s stubEnrollmentService) Enroll(_ context.Context, _ service.Actor, payload dto.EnrollmentRequest) (dto.EnrollmentResponse, error) {
	if s.err != nil {
		return dto.EnrollmentResponse{}, s.err
	}
	return dto.EnrollmentResponse{
		ID:          "0d9cf3c4-5d0a-4c4e-9b0b-7c5f0c1f2a11",
		StudentID:   payload.StudentID,
		SectionID:   payload.SectionID,
		SubjectCode: "IS101",
		Term:        payload.Term,
		Status:      "pending",
		Timestamp:   time.Now().UTC(),
	}, nil
}

func TestEnrollmentCreateContract(t *testing.T) {
	schema := loadSchema(t, "enrollment.schema.json")

	cases := map[string]struct {
		err    error
		status int
	}{
		"created":      {status: http.StatusCreated},
		"prerequisite": {err: &service.EnrollmentValidationError{Reason: service.RejectPrerequisite, Message: "Prerequisite not met: CS100 - Intro to Computing"}, status: http.StatusBadRequest},
		"duplicate":    {err: &service.EnrollmentValidationError{Reason: service.RejectDuplicate, Message: service.DuplicateEnrollmentMessage}, status: http.StatusBadRequest},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New()
			pass := func(c *fiber.Ctx) error { return c.Next() }
			handler.NewEnrollmentHandler(stubEnrollmentService{err: tc.err}, zerolog.Nop()).Register(app.Group("/api/enrollments"), pass, pass)

			body := `{"student":"7a0f3c1e-1111-4a4a-8a8a-000000000001","section":"7a0f3c1e-2222-4a4a-8a8a-000000000002","term":"2024-1"}`
			req := httptest.NewRequest(http.MethodPost, "/api/enrollments", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			validateBody(t, schema, resp)
		})
	}
}

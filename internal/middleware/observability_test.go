package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestObservabilityLogsAPICalls(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(Observability(zerolog.New(&buf)))
	app.Use(withIdentity("u-7", "registrar"))
	app.Get("/api/students/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/students/42", nil)
	req.Header.Set(HeaderCorrelationID, "corr-1")
	_, err := app.Test(req)
	require.NoError(t, err)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "/api/students/:id", entry["route"])
	require.Equal(t, float64(fiber.StatusNotFound), entry["status"])
	require.Equal(t, "corr-1", entry["correlation_id"])
	require.Equal(t, "u-7", entry["user_id"])
}

func TestLatencyBucket(t *testing.T) {
	require.Equal(t, "<=25ms", latencyBucket(10*time.Millisecond))
	require.Equal(t, "<=250ms", latencyBucket(200*time.Millisecond))
	require.Equal(t, ">500ms", latencyBucket(time.Second))
}

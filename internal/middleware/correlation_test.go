package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetCorrelationID(c))
	})

	cases := []struct {
		name    string
		headers map[string]string
		expect  string
	}{
		{name: "correlation header", headers: map[string]string{HeaderCorrelationID: "abc-123"}, expect: "abc-123"},
		{name: "request id fallback", headers: map[string]string{HeaderRequestID: "req-9"}, expect: "req-9"},
		{name: "correlation wins", headers: map[string]string{HeaderCorrelationID: "corr", HeaderRequestID: "req"}, expect: "corr"},
		{name: "oversized replaced", headers: map[string]string{HeaderCorrelationID: strings.Repeat("x", 200)}},
		{name: "whitespace inside replaced", headers: map[string]string{HeaderCorrelationID: "a b"}},
		{name: "none"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for key, value := range tc.headers {
				req.Header.Set(key, value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			echoed := resp.Header.Get(HeaderCorrelationID)
			if tc.expect != "" {
				require.Equal(t, tc.expect, echoed)
				return
			}
			_, err = uuid.Parse(echoed)
			require.NoError(t, err)
		})
	}
}

package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/onlyfriends-app/backend/internal/handlers"
)

func TestHealthCheckMemoryStore(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handlers.NewHealthHandler("1.0.0", nil, false).Check)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, "healthy", body["status"])

	services, ok := body["services"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, services["database"])
	require.Equal(t, false, services["twilio"])
}

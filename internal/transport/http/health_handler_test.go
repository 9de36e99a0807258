package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftline/internal/config"
	"liftline/internal/services"
)

func newTestHealthHandler(t *testing.T) *HealthHandler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Default()

	analysisService, err := services.NewAnalysisServiceWithLogger(cfg, logger, nil)
	require.NoError(t, err)

	healthService := services.NewHealthService("v1.0.0-test", cfg, analysisService, logger)
	return NewHealthHandler(healthService, logger)
}

func TestHealthHandler_Endpoints(t *testing.T) {
	handler := newTestHealthHandler(t)

	tests := []struct {
		name           string
		endpoint       string
		handlerFunc    http.HandlerFunc
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:           "health check endpoint",
			endpoint:       "/api/v1/analysis/health",
			handlerFunc:    handler.HealthCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				err := json.Unmarshal(body, &response)
				assert.NoError(t, err)
				assert.Equal(t, "ok", response["status"])
				assert.Contains(t, response, "timestamp")
				assert.Equal(t, "v1.0.0-test", response["version"])
			},
		},
		{
			name:           "readiness check endpoint",
			endpoint:       "/api/v1/analysis/health/ready",
			handlerFunc:    handler.ReadinessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				err := json.Unmarshal(body, &response)
				assert.NoError(t, err)
				assert.Equal(t, "ready", response["status"])
				assert.Contains(t, response, "services")
			},
		},
		{
			name:           "liveness check endpoint",
			endpoint:       "/api/v1/analysis/health/live",
			handlerFunc:    handler.LivenessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				err := json.Unmarshal(body, &response)
				assert.NoError(t, err)
				assert.Equal(t, "alive", response["status"])
				assert.Contains(t, response, "runtime")
			},
		},
		{
			name:           "version endpoint",
			endpoint:       "/api/v1/version",
			handlerFunc:    handler.Version,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				err := json.Unmarshal(body, &response)
				assert.NoError(t, err)
				assert.Equal(t, "v1.0.0-test", response["version"])
				assert.Contains(t, response, "go_version")
				assert.Contains(t, response, "os")
				assert.Contains(t, response, "arch")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.endpoint, nil)
			rec := httptest.NewRecorder()

			tt.handlerFunc(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, "Expected status %d but got %d", tt.expectedStatus, rec.Code)

			if tt.checkResponse != nil {
				tt.checkResponse(t, rec.Body.Bytes())
			}
		})
	}
}

func TestHealthHandler_Uptime(t *testing.T) {
	handler := newTestHealthHandler(t)

	// Wait a bit to ensure uptime > 0
	time.Sleep(100 * time.Millisecond)

	t.Run("uptime is greater than zero", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/analysis/health/live", nil)
		rec := httptest.NewRecorder()

		handler.LivenessCheck(rec, req)

		var response map[string]interface{}
		err := json.Unmarshal(rec.Body.Bytes(), &response)
		assert.NoError(t, err)

		runtime, ok := response["runtime"].(map[string]interface{})
		assert.True(t, ok, "runtime should be a map")

		uptime, ok := runtime["uptime"].(float64)
		assert.True(t, ok, "uptime should be a float64")
		assert.Greater(t, uptime, 0.0, "uptime should be greater than 0")
	})

	t.Run("version endpoint includes uptime", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/version", nil)
		rec := httptest.NewRecorder()

		handler.Version(rec, req)

		var response map[string]interface{}
		err := json.Unmarshal(rec.Body.Bytes(), &response)
		assert.NoError(t, err)

		uptime, ok := response["uptime"].(float64)
		assert.True(t, ok, "uptime should be a float64")
		assert.Greater(t, uptime, 0.0, "uptime should be greater than 0")
	})
}

package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"liftline/internal/config"
	"liftline/internal/infrastructure"
)

func newTestHealthService(t *testing.T) *HealthService {
	t.Helper()

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analysis, err := NewAnalysisServiceWithLogger(cfg, logger, nil)
	require.NoError(t, err)

	return NewHealthService("1.2.0", cfg, analysis, logger)
}

func TestHealthServiceHealthCheck(t *testing.T) {
	hs := newTestHealthService(t)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.0", status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Minute)
}

func TestHealthServiceReadinessCheck(t *testing.T) {
	t.Run("all services ready", func(t *testing.T) {
		hs := newTestHealthService(t)

		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "ready", status.Status)

		analysis, ok := status.Services["analysis"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "ready", analysis.Status)

		ruleHealth, ok := status.Services["rules"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "ready", ruleHealth.Status)
	})

	t.Run("missing analysis service", func(t *testing.T) {
		cfg := config.Default()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		hs := NewHealthService("1.2.0", cfg, nil, logger)

		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)
	})

	t.Run("rule file removed after startup", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("delay_threshold_minutes: 5\n"), 0o644))

		cfg := config.Default()
		cfg.Analysis.RulesFile = path
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		analysis, err := NewAnalysisServiceWithLogger(cfg, logger, nil)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))

		hs := NewHealthService("1.2.0", cfg, analysis, logger)
		status := hs.ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)
	})
}

func TestHealthServiceLivenessCheck(t *testing.T) {
	t.Run("without collector", func(t *testing.T) {
		hs := newTestHealthService(t)

		status := hs.LivenessCheck(context.Background())
		assert.Equal(t, "alive", status.Status)
		assert.NotNil(t, status.Runtime)
		assert.Contains(t, status.Runtime, "go_version")
		assert.Contains(t, status.Runtime, "goroutines")
	})

	t.Run("with collector", func(t *testing.T) {
		hs := newTestHealthService(t)

		mp := sdkmetric.NewMeterProvider()
		t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

		collector, err := infrastructure.NewRuntimeMetricsCollector(mp.Meter("liftline-test"), time.Minute)
		require.NoError(t, err)
		hs.SetRuntimeCollector(collector)

		status := hs.LivenessCheck(context.Background())
		assert.Equal(t, "alive", status.Status)
		assert.Contains(t, status.Runtime, "go_version")
		assert.Contains(t, status.Runtime, "goroutines")
		assert.Contains(t, status.Runtime, "memory_usage_mb")
		assert.Contains(t, status.Runtime, "uptime_seconds")
	})
}

func TestHealthServiceVersion(t *testing.T) {
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hs := NewHealthServiceWithBuildInfo("1.2.0", "2026-01-15T10:00:00Z", "abc123", cfg, nil, logger)

	info := hs.Version()
	assert.Equal(t, "1.2.0", info["version"])
	assert.Equal(t, "2026-01-15T10:00:00Z", info["build_time"])
	assert.Equal(t, "abc123", info["build_id"])
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "uptime")
}

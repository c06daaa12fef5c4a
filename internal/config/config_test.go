package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "gmbot", cfg.QueueExchange)
	require.Equal(t, "gmbot.jobs", cfg.QueueName)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, 5*time.Minute, cfg.JobTimeout)
	require.False(t, cfg.DebugRoutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("QUEUE_WORKERS", "8")
	t.Setenv("JOB_TIMEOUT", "90s")
	t.Setenv("DEBUG_ROUTES", "true")
	t.Setenv("DEBUG_TOKEN", "secret")

	cfg := Load()

	require.Equal(t, "9999", cfg.Port)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, 90*time.Second, cfg.JobTimeout)
	require.True(t, cfg.DebugRoutes)
	require.Equal(t, "secret", cfg.DebugToken)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("QUEUE_WORKERS", "many")
	t.Setenv("JOB_TIMEOUT", "soon")

	cfg := Load()

	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, 5*time.Minute, cfg.JobTimeout)
}

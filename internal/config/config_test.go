package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 10, cfg.Generation.Concurrency)
	require.True(t, cfg.Generation.FillQuota)
	require.InDelta(t, 0.92, cfg.Scoring.NoBrainerThreshold, 1e-9)
	require.Empty(t, cfg.Redis.Addr)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: "9000"
scoring:
  no_brainer_threshold: 0.84
generation:
  minimum_postings: 8
  lane_timeout: 3s
  skip_invalid_lanes: true
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("GENERATION_CONCURRENCY", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "7000", cfg.Server.Port)
	require.InDelta(t, 0.84, cfg.Scoring.NoBrainerThreshold, 1e-9)
	// Keys absent from the file keep their defaults.
	require.InDelta(t, 0.40, cfg.Scoring.RateWeight, 1e-9)
	require.Equal(t, 8, cfg.Generation.MinimumPostings)
	require.Equal(t, 3*time.Second, cfg.Generation.LaneTimeout)
	require.True(t, cfg.Generation.SkipInvalidLanes)
	require.Equal(t, 4, cfg.Generation.Concurrency)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 10*time.Minute, cfg.Redis.RateTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_RATE_TTL", "soon")
	_, err := Load("")
	require.ErrorContains(t, err, "REDIS_RATE_TTL")

	t.Setenv("REDIS_RATE_TTL", "")
	t.Setenv("REDIS_DB", "one")
	_, err = Load("")
	require.ErrorContains(t, err, "REDIS_DB")

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "read")
}

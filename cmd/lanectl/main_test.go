package main

import (
	"bytes"
	"encoding/json"
	"lane-posting-service/internal/services/generation"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const demoSeed = "../../data/seeds/lanes.json"

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")

	offlineSeed, lanesFile, failFast = "", "", false
	outDir, reportPath, noFillQuota = "", "", false
	genOverrides = generation.Options{}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateOffline(t *testing.T) {
	out, err := execute(t, "validate", "--offline", demoSeed)
	require.NoError(t, err)
	require.Contains(t, out, `"valid": true`)
	require.Contains(t, out, `"valid_count": 3`)
}

func TestValidateReportsInvalidLanes(t *testing.T) {
	lanes := filepath.Join(t.TempDir(), "lanes.json")
	body := `{"lanes": [{"id": "L-9", "origin_city": "Chicago", "origin_state": "IL",
		"dest_city": "Atlanta", "dest_state": "GA", "equipment": "V", "weight_lbs": 90000,
		"length_ft": 53, "pickup_earliest": "2026-03-02"}]}`
	require.NoError(t, os.WriteFile(lanes, []byte(body), 0o600))

	out, err := execute(t, "validate", "--offline", demoSeed, "--lanes", lanes)
	require.ErrorContains(t, err, "1 of 1 lane(s) invalid")
	require.Contains(t, out, `"weight_lbs"`)
}

func TestGenerateOfflineWritesChunks(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "result.json")

	_, err := execute(t, "generate", "--offline", demoSeed, "--out", dir, "--report", report)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "postings-*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(body), "\r\n"), "\r\n")
	// Header plus twelve rows for each of the three lanes.
	require.Len(t, lines, 1+3*12)
	require.True(t, strings.HasPrefix(lines[0], "Pickup Earliest*,"))

	raw, err := os.ReadFile(report)
	require.NoError(t, err)
	var res generation.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	require.True(t, res.Success)
	require.Empty(t, res.CSV)
	require.Len(t, res.Lanes, 3)
	for _, l := range res.Lanes {
		require.Regexp(t, `^RR\d{5}$`, l.ReferenceID)
	}
}

func TestGenerateOfflineToStdout(t *testing.T) {
	out, err := execute(t, "generate", "--offline", demoSeed, "--no-fill-quota", "--dry-run")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Pickup Earliest*,"))
	require.Contains(t, out, "Chicago")
}

func TestDatabaseCommandsNeedURL(t *testing.T) {
	_, err := execute(t, "schema")
	require.ErrorContains(t, err, "DATABASE_URL is required")
}

package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, zerolog.Nop())
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

const smallSuite = `time_grid: {start: -1, end: 10, samples: 200}
runner: {workers: 2, timeout: 30s}
`

func TestUsage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "usage:")

	code, _, _ = runCLI(t, "frobnicate")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "check", "--no-such-flag")
	assert.Equal(t, exitUsage, code)
}

func TestCheckPasses(t *testing.T) {
	report := filepath.Join(t.TempDir(), "out", "summary.json")
	code, stdout, stderr := runCLI(t, "check", "--config", writeConfig(t, smallSuite), "--report", report)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "PASS keplerian_basic")
	assert.Contains(t, stdout, "14 passed, 0 failed")

	raw, err := os.ReadFile(report)
	require.NoError(t, err)
	var decoded struct {
		Passed    int `json:"passed"`
		ExitCode  int `json:"exit_code"`
		Scenarios []struct {
			Scenario string `json:"scenario"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 14, decoded.Passed)
	assert.Equal(t, 0, decoded.ExitCode)
	assert.Len(t, decoded.Scenarios, 14)
}

func TestSweepRunsGridOnly(t *testing.T) {
	cfg := writeConfig(t, smallSuite+"sweep: {orders: [0, 1], radii: [0.2]}\n")
	code, stdout, _ := runCLI(t, "sweep", "--config", cfg, "--workers", "1")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "2 passed, 0 failed")
	assert.NotContains(t, stdout, "keplerian_basic")
}

func TestCheckFailureExitCode(t *testing.T) {
	cfg := writeConfig(t, `system:
  central: {mass: 1, radius: 1}
  orbit: {time_transit: [0], period: [0.01], impact_param: [0.5], radius: [0.1]}
time_grid: {start: 0, end: 1, samples: 10}
sweep: {orders: [1], radii: [0.1]}
`)
	code, stdout, _ := runCLI(t, "check", "--config", cfg)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stdout, "FAIL keplerian_basic: INVALID_INPUT")
	assert.Contains(t, stdout, "0 passed, 3 failed")
}

func TestBadConfigIsUsageError(t *testing.T) {
	code, _, stderr := runCLI(t, "check", "--config", writeConfig(t, "sweep: {orders: [7]}\n"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "config:")

	code, _, _ = runCLI(t, "check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitUsage, code)
}

func TestCurveWritesCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results", "curve.csv")
	code, stdout, stderr := runCLI(t, "curve", "--config", writeConfig(t, smallSuite), "--out", out)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Wrote 200 samples x 2 bodies")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs, 201)
	assert.Equal(t, []string{"time", "body_0", "body_1"}, recs[0])

	// The deeper transit (body_1) ranks first.
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[2], "1    body_1"), lines[2])
}

func TestCurveUnknownModel(t *testing.T) {
	code, _, stderr := runCLI(t, "curve", "--model", "cubic", "--out", filepath.Join(t.TempDir(), "c.csv"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "model:")
}

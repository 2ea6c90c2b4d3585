package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"transit-lc/internal/harness"
)

func TestWriteCurveCSV(t *testing.T) {
	times := []float64{0, 0.5, 1}
	curve := mat.NewDense(2, 3, []float64{
		0, -0.0123456789012345, 0,
		-1, 0, -0.25,
	})
	path := filepath.Join(t.TempDir(), "curve.csv")
	require.NoError(t, WriteCurveCSV(path, times, curve, []string{"b"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, recs, 4)
	assert.Equal(t, []string{"time", "b", "body_1"}, recs[0])
	assert.Equal(t, []string{"0.5", "-0.0123456789012345", "0"}, recs[2])

	v, err := strconv.ParseFloat(recs[2][1], 64)
	require.NoError(t, err)
	assert.Equal(t, curve.At(0, 1), v)
}

func TestEncodeCurveCSVShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeCurveCSV(&buf, []float64{0, 1}, mat.NewDense(1, 3, nil), nil)
	assert.Error(t, err)
}

func TestSummaryJSON(t *testing.T) {
	run := &harness.Summary{Results: []harness.Result{
		{Scenario: "ok", Duration: 2 * time.Millisecond},
		{Scenario: "bad", Params: map[string]any{"order": 1}, Err: &harness.Error{
			Kind:     harness.KindInstability,
			Scenario: "bad",
			Mismatches: []harness.Mismatch{
				{Row: 0, Index: 4, Actual: 1, Expected: 0, Deviation: 1, Allowed: 1e-10},
				{Row: 1, Index: 7, Actual: math.NaN(), Expected: 0, Deviation: math.NaN(), Allowed: 1e-10},
			},
		}},
	}}
	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewSummary("run-1", started, harness.DefaultTolerance, run)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.ExitCode)

	var buf bytes.Buffer
	require.NoError(t, EncodeSummaryJSON(&buf, s))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	scenarios := decoded["scenarios"].([]any)
	require.Len(t, scenarios, 2)

	bad := scenarios[1].(map[string]any)
	assert.Equal(t, "NUMERICAL_INSTABILITY", bad["kind"])
	assert.Equal(t, float64(2), bad["mismatches"])
	assert.Equal(t, float64(4), bad["first_mismatch"].(map[string]any)["index"])
	worst := bad["worst_mismatch"].(map[string]any)
	assert.Equal(t, float64(7), worst["index"])
	assert.Equal(t, "NaN", worst["deviation"])

	ok := scenarios[0].(map[string]any)
	assert.Equal(t, true, ok["passed"])
	assert.Equal(t, 2.0, ok["duration_ms"])
	assert.NotContains(t, ok, "kind")
}

func TestWriteSummaryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	s := NewSummary("id", time.Now(), harness.Exact, &harness.Summary{})
	require.NoError(t, WriteSummaryJSON(path, s))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"run_id": "id"`)
}

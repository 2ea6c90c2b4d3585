package report

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"transit-lc/internal/harness"
)

// ScenarioRecord is the serialized outcome of one scenario.
type ScenarioRecord struct {
	Scenario   string          `json:"scenario"`
	Params     map[string]any  `json:"params,omitempty"`
	Passed     bool            `json:"passed"`
	Kind       harness.Kind    `json:"kind,omitempty"`
	Message    string          `json:"message,omitempty"`
	Mismatches int             `json:"mismatches,omitempty"`
	First      *MismatchRecord `json:"first_mismatch,omitempty"`
	Worst      *MismatchRecord `json:"worst_mismatch,omitempty"`
	DurationMS float64         `json:"duration_ms"`
}

// MismatchRecord is harness.Mismatch with JSON-safe floats.
type MismatchRecord struct {
	Row       int   `json:"row"`
	Index     int   `json:"index"`
	Actual    Float `json:"actual"`
	Expected  Float `json:"expected"`
	Deviation Float `json:"deviation"`
	Allowed   Float `json:"allowed"`
}

func mismatchRecord(m harness.Mismatch) *MismatchRecord {
	return &MismatchRecord{
		Row:       m.Row,
		Index:     m.Index,
		Actual:    Float(m.Actual),
		Expected:  Float(m.Expected),
		Deviation: Float(m.Deviation),
		Allowed:   Float(m.Allowed),
	}
}

// Float encodes NaN and infinities as strings ("NaN", "+Inf", "-Inf").
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	x := float64(f)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return []byte(strconv.Quote(strconv.FormatFloat(x, 'g', -1, 64))), nil
	}
	return []byte(strconv.FormatFloat(x, 'g', -1, 64)), nil
}

// Summary is the JSON report for a whole run.
type Summary struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Tolerance harness.Tolerance `json:"tolerance"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	ExitCode  int               `json:"exit_code"`
	Scenarios []ScenarioRecord  `json:"scenarios"`
}

func Record(r harness.Result) ScenarioRecord {
	rec := ScenarioRecord{
		Scenario:   r.Scenario,
		Params:     r.Params,
		Passed:     r.Passed(),
		DurationMS: float64(r.Duration) / float64(time.Millisecond),
	}
	if r.Err == nil {
		return rec
	}
	rec.Kind = r.Err.Kind
	rec.Message = r.Err.Error()
	rec.Mismatches = len(r.Err.Mismatches)
	if rec.Mismatches > 0 {
		rec.First = mismatchRecord(r.Err.Mismatches[0])
	}
	if worst, ok := r.Err.Worst(); ok {
		rec.Worst = mismatchRecord(worst)
	}
	return rec
}

func NewSummary(runID string, startedAt time.Time, tol harness.Tolerance, s *harness.Summary) Summary {
	passed, failed := s.Counts()
	out := Summary{
		RunID:     runID,
		StartedAt: startedAt.UTC(),
		Tolerance: tol,
		Passed:    passed,
		Failed:    failed,
		ExitCode:  s.ExitCode(),
		Scenarios: make([]ScenarioRecord, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		out.Scenarios = append(out.Scenarios, Record(r))
	}
	return out
}

func WriteSummaryJSON(path string, s Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeSummaryJSON(f, s)
}

func EncodeSummaryJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-lc/internal/model"
)

func TestRunner_CollectsAllFailures(t *testing.T) {
	var calls atomic.Int32
	scenarios := []Scenario{
		{Name: "pass", Check: func(context.Context) error { calls.Add(1); return nil }},
		{Name: "diverge", Params: map[string]any{"radius": 0.1}, Check: func(context.Context) error {
			calls.Add(1)
			return &Error{Kind: KindDivergence, Message: "rows differ", Mismatches: []Mismatch{{Index: 3, Deviation: 1}}}
		}},
		{Name: "invalid", Check: func(context.Context) error {
			calls.Add(1)
			return fmt.Errorf("build orbit: %w", model.ErrInvalidInput)
		}},
		{Name: "panics", Check: func(context.Context) error { calls.Add(1); panic("kaboom") }},
		{Name: "also pass", Check: func(context.Context) error { calls.Add(1); return nil }},
	}

	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			calls.Store(0)
			r := NewRunner(Options{Workers: workers}, zerolog.Nop())
			summary := r.Run(context.Background(), scenarios)

			assert.Equal(t, int32(len(scenarios)), calls.Load())
			require.Len(t, summary.Results, len(scenarios))
			for i, res := range summary.Results {
				assert.Equal(t, scenarios[i].Name, res.Scenario)
			}
			passed, failed := summary.Counts()
			assert.Equal(t, 2, passed)
			assert.Equal(t, 3, failed)
			assert.False(t, summary.Passed())
			assert.Equal(t, 1, summary.ExitCode())

			failures := summary.Failures()
			require.Len(t, failures, 3)
			assert.Equal(t, KindDivergence, failures[0].Err.Kind)
			assert.Equal(t, "diverge", failures[0].Err.Scenario)
			assert.Equal(t, 0.1, failures[0].Err.Params["radius"])
			assert.Equal(t, KindInvalidInput, failures[1].Err.Kind)
			assert.True(t, errors.Is(failures[1].Err, model.ErrInvalidInput))
			assert.Equal(t, KindInternal, failures[2].Err.Kind)
			assert.Contains(t, failures[2].Err.Message, "kaboom")
		})
	}
}

func TestRunner_AllPass(t *testing.T) {
	r := NewRunner(Options{}, zerolog.Nop())
	summary := r.Run(context.Background(), []Scenario{
		{Name: "a", Check: func(context.Context) error { return nil }},
	})
	assert.True(t, summary.Passed())
	assert.Equal(t, 0, summary.ExitCode())
	assert.Empty(t, summary.Failures())
}

func TestRunner_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r := NewRunner(Options{Timeout: 20 * time.Millisecond}, zerolog.Nop())
	summary := r.Run(context.Background(), []Scenario{
		{Name: "stuck", Check: func(context.Context) error { <-release; return nil }},
		{Name: "quick", Check: func(context.Context) error { return nil }},
	})

	require.Len(t, summary.Results, 2)
	require.NotNil(t, summary.Results[0].Err)
	assert.Equal(t, KindTimeout, summary.Results[0].Err.Kind)
	assert.True(t, errors.Is(summary.Results[0].Err, context.DeadlineExceeded))
	assert.True(t, summary.Results[1].Passed())
}

func TestRunner_ParentCancelIsNotTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		<-started
		cancel()
	}()

	summary := NewRunner(Options{}, zerolog.Nop()).Run(ctx, []Scenario{
		{Name: "abandoned", Check: func(context.Context) error {
			close(started)
			<-release
			return nil
		}},
	})

	require.Len(t, summary.Failures(), 1)
	got := summary.Failures()[0].Err
	assert.Equal(t, KindCanceled, got.Kind)
	assert.NotContains(t, got.Error(), "exceeded")
	assert.True(t, errors.Is(got, context.Canceled))
	assert.Equal(t, 1, summary.ExitCode())
}

func TestRunner_ParentDeadlineWithoutBudget(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	summary := NewRunner(Options{}, zerolog.Nop()).Run(ctx, []Scenario{
		{Name: "slow", Check: func(context.Context) error { <-release; return nil }},
	})

	require.Len(t, summary.Failures(), 1)
	got := summary.Failures()[0].Err
	assert.Equal(t, KindTimeout, got.Kind)
	assert.NotContains(t, got.Error(), "exceeded 0s")
}

func TestRunner_CheckReturningDeadlineIsTimeout(t *testing.T) {
	summary := NewRunner(Options{}, zerolog.Nop()).Run(context.Background(), []Scenario{
		{Name: "own_deadline", Check: func(context.Context) error {
			return fmt.Errorf("solve: %w", context.DeadlineExceeded)
		}},
	})
	require.Len(t, summary.Failures(), 1)
	assert.Equal(t, KindTimeout, summary.Failures()[0].Err.Kind)
}

func scenarioCount(t *testing.T, family, result, kind string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "transit_lc_harness_scenarios_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["scenario"] == family && labels["result"] == result && labels["kind"] == kind {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRunner_RecordsScenarioMetrics(t *testing.T) {
	beforePass := scenarioCount(t, "runner_metrics", "pass", "NONE")
	beforeFail := scenarioCount(t, "runner_metrics", "fail", string(KindInstability))

	NewRunner(Options{Workers: 2}, zerolog.Nop()).Run(context.Background(), []Scenario{
		{Name: "runner_metrics/order=0", Check: func(context.Context) error { return nil }},
		{Name: "runner_metrics/order=1", Check: func(context.Context) error { return nil }},
		{Name: "runner_metrics/order=2", Check: func(context.Context) error { return model.ErrNumerical }},
	})

	assert.Equal(t, beforePass+2, scenarioCount(t, "runner_metrics", "pass", "NONE"))
	assert.Equal(t, beforeFail+1, scenarioCount(t, "runner_metrics", "fail", string(KindInstability)))
}

func TestRunner_MissingCheck(t *testing.T) {
	summary := NewRunner(Options{}, zerolog.Nop()).Run(context.Background(), []Scenario{{Name: "empty"}})
	require.Len(t, summary.Failures(), 1)
	assert.Equal(t, KindInvalidInput, summary.Failures()[0].Err.Kind)
}

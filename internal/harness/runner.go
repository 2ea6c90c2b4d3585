package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"transit-lc/internal/observability"
)

// Scenario is one named, independent pass/fail predicate.
type Scenario struct {
	Name   string
	Params map[string]any
	Check  func(ctx context.Context) error
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario string
	Params   map[string]any
	Err      *Error
	Duration time.Duration
}

func (r Result) Passed() bool { return r.Err == nil }

// Summary aggregates every scenario result in input order.
type Summary struct {
	Results []Result
}

func (s *Summary) Passed() bool {
	for _, r := range s.Results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Passed() {
			out = append(out, r)
		}
	}
	return out
}

// Counts returns passed and failed totals.
func (s *Summary) Counts() (passed, failed int) {
	for _, r := range s.Results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// ExitCode is 0 when every scenario passed and 1 otherwise.
func (s *Summary) ExitCode() int {
	if s.Passed() {
		return 0
	}
	return 1
}

type Options struct {
	// Workers bounds how many scenarios run at once. <= 1 runs sequentially.
	Workers int
	// Timeout is the wall-clock budget per scenario. 0 disables it.
	Timeout time.Duration
}

// Runner executes scenarios with collect-all semantics: a failing scenario
// never stops the others, and nothing is retried.
type Runner struct {
	opts   Options
	logger zerolog.Logger
}

func NewRunner(opts Options, logger zerolog.Logger) *Runner {
	return &Runner{opts: opts, logger: logger}
}

func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *Summary {
	results := make([]Result, len(scenarios))

	workers := r.opts.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range scenarios {
		i := i
		g.Go(func() error {
			results[i] = r.runOne(ctx, scenarios[i])
			return nil
		})
	}
	_ = g.Wait()

	return &Summary{Results: results}
}

func (r *Runner) runOne(ctx context.Context, sc Scenario) Result {
	start := time.Now()
	res := Result{Scenario: sc.Name, Params: sc.Params}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- &Error{Kind: KindInternal, Message: fmt.Sprintf("panic: %v", p)}
			}
		}()
		if sc.Check == nil {
			done <- invalidInput("scenario has no check")
			return
		}
		done <- sc.Check(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		// The check goroutine is abandoned; it finishes into the buffered channel.
		err = r.contextError(ctx.Err())
	}

	res.Duration = time.Since(start)
	if err != nil {
		res.Err = asError(err, sc.Name, sc.Params)
		observability.RecordScenario(sc.Name, string(res.Err.Kind), res.Duration)
		evt := r.logger.Warn().
			Str("scenario", sc.Name).
			Str("kind", string(res.Err.Kind)).
			Dur("duration", res.Duration).
			Interface("params", sc.Params)
		if worst, ok := res.Err.Worst(); ok {
			evt = evt.Int("mismatches", len(res.Err.Mismatches)).
				Int("worst_row", worst.Row).
				Int("worst_index", worst.Index).
				Float64("worst_deviation", worst.Deviation)
		}
		evt.Msg(res.Err.Error())
		return res
	}
	observability.RecordScenario(sc.Name, "", res.Duration)
	r.logger.Debug().Str("scenario", sc.Name).Dur("duration", res.Duration).Msg("scenario passed")
	return res
}

// contextError separates the per-scenario budget running out from the
// caller abandoning the run.
func (r *Runner) contextError(cause error) *Error {
	if errors.Is(cause, context.DeadlineExceeded) {
		msg := "deadline exceeded"
		if r.opts.Timeout > 0 {
			msg = fmt.Sprintf("exceeded %s", r.opts.Timeout)
		}
		return &Error{Kind: KindTimeout, Message: msg, Cause: cause}
	}
	return &Error{Kind: KindCanceled, Message: "run canceled", Cause: cause}
}

// Pair is one point of a two-axis parameter grid.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Cross enumerates the cross product of two parameter axes, first-axis major.
func Cross[A, B any](as []A, bs []B) []Pair[A, B] {
	out := make([]Pair[A, B], 0, len(as)*len(bs))
	for _, a := range as {
		for _, b := range bs {
			out = append(out, Pair[A, B]{First: a, Second: b})
		}
	}
	return out
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"transit-lc/internal/model"
)

// Kind classifies why a scenario failed.
type Kind string

const (
	KindInvalidInput Kind = "INVALID_INPUT"
	KindDivergence   Kind = "FUNCTIONAL_DIVERGENCE"
	KindInstability  Kind = "NUMERICAL_INSTABILITY"
	KindTimeout      Kind = "TIMEOUT"
	KindCanceled     Kind = "CANCELED"
	KindInternal     Kind = "INTERNAL"
)

// Mismatch is one element that failed the closeness test.
type Mismatch struct {
	Row       int     `json:"row"`
	Index     int     `json:"index"`
	Actual    float64 `json:"actual"`
	Expected  float64 `json:"expected"`
	Deviation float64 `json:"deviation"`
	Allowed   float64 `json:"allowed"`
}

// Excess is how far past the allowed deviation the element landed.
func (m Mismatch) Excess() float64 {
	if math.IsNaN(m.Deviation) || math.IsInf(m.Deviation, 0) {
		return math.Inf(1)
	}
	return m.Deviation - m.Allowed
}

// Error is the structured failure of a comparison or scenario.
type Error struct {
	Kind       Kind
	Scenario   string
	Params     map[string]any
	Message    string
	Mismatches []Mismatch
	Cause      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Scenario != "" {
		b.WriteString(e.Scenario)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Mismatches) > 0 {
		first := e.Mismatches[0]
		worst, _ := e.Worst()
		fmt.Fprintf(&b, " (%d mismatches; first row=%d index=%d |%g-%g|=%g; worst row=%d index=%d deviation=%g allowed=%g)",
			len(e.Mismatches),
			first.Row, first.Index, first.Actual, first.Expected, first.Deviation,
			worst.Row, worst.Index, worst.Deviation, worst.Allowed)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Worst returns the mismatch with the largest excess over its allowance.
func (e *Error) Worst() (Mismatch, bool) {
	if len(e.Mismatches) == 0 {
		return Mismatch{}, false
	}
	worst := e.Mismatches[0]
	for _, m := range e.Mismatches[1:] {
		if m.Excess() > worst.Excess() {
			worst = m
		}
	}
	return worst, true
}

// KindOf reports the failure kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var hErr *Error
	if errors.As(err, &hErr) {
		return hErr.Kind
	}
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, model.ErrNumerical):
		return KindInstability
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}

// asError normalizes any error into *Error tagged with the scenario.
func asError(err error, scenario string, params map[string]any) *Error {
	var hErr *Error
	if errors.As(err, &hErr) {
		out := *hErr
		// Keep any context the check wrapped around the typed error.
		if full, inner := err.Error(), hErr.Error(); full != inner {
			if prefix := strings.TrimSuffix(full, inner); prefix != full && prefix != "" {
				out.Message = strings.TrimSuffix(prefix, ": ") + ": " + out.Message
			}
		}
		if out.Scenario == "" {
			out.Scenario = scenario
		}
		if out.Params == nil {
			out.Params = params
		}
		return &out
	}
	return &Error{
		Kind:     KindOf(err),
		Scenario: scenario,
		Params:   params,
		Cause:    err,
	}
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

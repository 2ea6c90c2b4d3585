package harness

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Tolerance is an allclose pair: |a - b| <= ATol + RTol*|b|.
type Tolerance struct {
	RTol float64 `json:"rtol" yaml:"rtol" toml:"rtol"`
	ATol float64 `json:"atol" yaml:"atol" toml:"atol"`
}

// DefaultTolerance bounds the disagreement between the closed-form and
// quadrature flux kernels.
var DefaultTolerance = Tolerance{RTol: 1e-7, ATol: 1e-10}

// Exact requires bit-identical outputs.
var Exact = Tolerance{}

func (t Tolerance) Validate() error {
	if t.RTol < 0 || t.ATol < 0 || math.IsNaN(t.RTol) || math.IsNaN(t.ATol) ||
		math.IsInf(t.RTol, 0) || math.IsInf(t.ATol, 0) {
		return invalidInput("tolerance must be finite and non-negative, got rtol=%g atol=%g", t.RTol, t.ATol)
	}
	return nil
}

// Allowed is the permitted deviation from expected.
func (t Tolerance) Allowed(expected float64) float64 {
	return t.ATol + t.RTol*math.Abs(expected)
}

// Comparison accumulates element-wise results. Every failing element is
// kept, not just the first.
type Comparison struct {
	Checked    int
	Mismatches []Mismatch
	NonFinite  []Mismatch
}

func (c *Comparison) OK() bool {
	return len(c.Mismatches) == 0 && len(c.NonFinite) == 0
}

// Err converts the comparison into a typed failure, or nil when it passed.
// Non-finite values take precedence over precision mismatches.
func (c *Comparison) Err(what string) error {
	switch {
	case len(c.NonFinite) > 0:
		return &Error{
			Kind:       KindInstability,
			Message:    fmt.Sprintf("%s: %d non-finite values", what, len(c.NonFinite)),
			Mismatches: c.NonFinite,
		}
	case len(c.Mismatches) > 0:
		return &Error{
			Kind:       KindDivergence,
			Message:    fmt.Sprintf("%s: %d of %d elements outside tolerance", what, len(c.Mismatches), c.Checked),
			Mismatches: c.Mismatches,
		}
	}
	return nil
}

func (c *Comparison) add(row int, actual, expected []float64, tol Tolerance) {
	for i := range expected {
		a, b := actual[i], expected[i]
		c.Checked++
		m := Mismatch{
			Row:       row,
			Index:     i,
			Actual:    a,
			Expected:  b,
			Deviation: math.Abs(a - b),
			Allowed:   tol.Allowed(b),
		}
		if !finite(a) || !finite(b) {
			c.NonFinite = append(c.NonFinite, m)
			continue
		}
		if m.Deviation > m.Allowed {
			c.Mismatches = append(c.Mismatches, m)
		}
	}
}

// AllClose compares two sequences element-wise.
func AllClose(actual, expected []float64, tol Tolerance) (*Comparison, error) {
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	if len(actual) != len(expected) {
		return nil, invalidInput("length mismatch: actual has %d elements, expected %d", len(actual), len(expected))
	}
	c := &Comparison{}
	c.add(0, actual, expected, tol)
	return c, nil
}

// CompareBatchedVsIndividual checks that each per-body curve (a 1xT matrix)
// equals the matching row of the batched NxT curve.
func CompareBatchedVsIndividual(batched mat.Matrix, perBody []mat.Matrix, tol Tolerance) error {
	if err := tol.Validate(); err != nil {
		return err
	}
	if batched == nil {
		return invalidInput("batched curve is nil")
	}
	rows, cols := batched.Dims()
	if len(perBody) != rows {
		return invalidInput("batched curve has %d bodies, got %d individual curves", rows, len(perBody))
	}
	c := &Comparison{}
	for n, single := range perBody {
		if single == nil {
			return invalidInput("individual curve %d is nil", n)
		}
		r, k := single.Dims()
		if r != 1 || k != cols {
			return invalidInput("individual curve %d is %dx%d, want 1x%d", n, r, k, cols)
		}
		c.add(n, mat.Row(nil, 0, single), mat.Row(nil, n, batched), tol)
	}
	return c.Err("batched vs individual")
}

// CompareModelVariants checks two curves from different code paths element
// by element over every row.
func CompareModelVariants(reference, alternate mat.Matrix, tol Tolerance) error {
	if err := tol.Validate(); err != nil {
		return err
	}
	if reference == nil || alternate == nil {
		return invalidInput("model variant curve is nil")
	}
	rr, rc := reference.Dims()
	ar, ac := alternate.Dims()
	if rr != ar || rc != ac {
		return invalidInput("shape mismatch: reference %dx%d, alternate %dx%d", rr, rc, ar, ac)
	}
	c := &Comparison{}
	for n := 0; n < rr; n++ {
		c.add(n, mat.Row(nil, n, alternate), mat.Row(nil, n, reference), tol)
	}
	return c.Err("model variants")
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

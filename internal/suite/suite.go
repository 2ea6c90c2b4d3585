// Package suite builds the standard consistency scenarios for a transit system.
package suite

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"transit-lc/internal/harness"
	"transit-lc/internal/lightcurve"
	"transit-lc/internal/model"
)

// System is everything a scenario needs to build its orbits and curves.
type System struct {
	Central model.Central
	Orbit   model.OrbitParams
	Times   []float64
	// LimbDarkening holds up to two quadratic-law coefficients.
	LimbDarkening []float64
}

// DefaultSystem is the two-planet reference configuration.
func DefaultSystem() System {
	return System{
		Central: model.Central{Mass: 0.98, Radius: 0.93},
		Orbit: model.OrbitParams{
			TimeTransit: []float64{0.0, 0.5},
			Period:      []float64{1, 4.5},
			ImpactParam: []float64{0.5, 0.2},
			Radius:      []float64{0.1, 0.3},
		},
		Times:         TimeGrid(-1.0, 10.0, 1000),
		LimbDarkening: []float64{0.1, 0.3},
	}
}

// TimeGrid returns n evenly spaced samples over [start, end].
func TimeGrid(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}

func (s System) Validate() error {
	if err := s.Central.Validate(); err != nil {
		return err
	}
	if err := s.Orbit.Validate(); err != nil {
		return err
	}
	if len(s.Times) == 0 {
		return fmt.Errorf("%w: time grid is empty", model.ErrInvalidInput)
	}
	if _, err := lightcurve.ParseCoefficients(s.LimbDarkening); err != nil {
		return err
	}
	return nil
}

// Clone deep-copies the slices so scenarios never share mutable state.
func (s System) Clone() System {
	out := s
	out.Orbit = model.OrbitParams{
		TimeTransit:  cloneFloats(s.Orbit.TimeTransit),
		Period:       cloneFloats(s.Orbit.Period),
		ImpactParam:  cloneFloats(s.Orbit.ImpactParam),
		Radius:       cloneFloats(s.Orbit.Radius),
		Eccentricity: cloneFloats(s.Orbit.Eccentricity),
		Omega:        cloneFloats(s.Orbit.Omega),
	}
	out.Times = cloneFloats(s.Times)
	out.LimbDarkening = cloneFloats(s.LimbDarkening)
	return out
}

// PaddedLimbDarkening returns both quadratic coefficients, zero where unset.
func (s System) PaddedLimbDarkening() []float64 {
	return lightcurve.Truncate(s.LimbDarkening, lightcurve.MaxOrder)
}

// Grid is the limb-darkening order by radius sweep.
type Grid struct {
	Orders []int
	Radii  []float64
}

// DefaultGrid spans no overlap through full occultation of the central body.
func DefaultGrid() Grid {
	return Grid{
		Orders: []int{0, 1, 2},
		Radii:  []float64{0.01, 0.1, 1.0, 1.5},
	}
}

// Case is one point of the sweep.
type Case struct {
	Order  int
	Radius float64
}

// Cases enumerates the grid, radius-major.
func (g Grid) Cases() []Case {
	pairs := harness.Cross(g.Radii, g.Orders)
	out := make([]Case, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Case{Order: p.Second, Radius: p.First})
	}
	return out
}

func (g Grid) Validate() error {
	for _, o := range g.Orders {
		if o < 0 || o > lightcurve.MaxOrder {
			return fmt.Errorf("%w: sweep order %d outside [0, %d]", model.ErrInvalidInput, o, lightcurve.MaxOrder)
		}
	}
	for _, r := range g.Radii {
		if r < 0 {
			return fmt.Errorf("%w: sweep radius %g must be >= 0", model.ErrInvalidInput, r)
		}
	}
	return nil
}

// Build returns the full suite: the batched/individual check, one
// consistency scenario per grid case, and the idempotence check.
func Build(sys System, grid Grid, tol harness.Tolerance) []harness.Scenario {
	out := []harness.Scenario{KeplerianBasic(sys, tol)}
	out = append(out, Sweep(sys, grid, tol)...)
	out = append(out, Idempotence(sys))
	return out
}

// Sweep returns only the grid scenarios.
func Sweep(sys System, grid Grid, tol harness.Tolerance) []harness.Scenario {
	cases := grid.Cases()
	out := make([]harness.Scenario, 0, len(cases))
	for _, c := range cases {
		out = append(out, QuadLimbDarkConsistency(sys, c, tol))
	}
	return out
}

// KeplerianBasic checks that each body's curve from its own single-body
// orbit equals its row of the batched curve.
func KeplerianBasic(sys System, tol harness.Tolerance) harness.Scenario {
	sys = sys.Clone()
	return harness.Scenario{
		Name: "keplerian_basic",
		Params: map[string]any{
			"bodies":         sys.Orbit.Len(),
			"limb_darkening": sys.LimbDarkening,
			"samples":        len(sys.Times),
		},
		Check: func(ctx context.Context) error {
			if err := sys.Validate(); err != nil {
				return err
			}
			u := sys.PaddedLimbDarkening()
			lcModel := lightcurve.NewQuad(u[0], u[1])

			batchOrbit, err := model.NewOrbit(sys.Central, sys.Orbit)
			if err != nil {
				return fmt.Errorf("batched orbit: %w", err)
			}
			batched, err := lcModel.LightCurve(batchOrbit, sys.Times)
			if err != nil {
				return fmt.Errorf("batched light curve: %w", err)
			}

			perBody := make([]mat.Matrix, 0, sys.Orbit.Len())
			for n := 0; n < sys.Orbit.Len(); n++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				single, err := model.NewBody(sys.Central, sys.Orbit.Body(n))
				if err != nil {
					return fmt.Errorf("body %d orbit: %w", n, err)
				}
				lc, err := lcModel.LightCurve(single, sys.Times)
				if err != nil {
					return fmt.Errorf("body %d light curve: %w", n, err)
				}
				perBody = append(perBody, lc)
			}
			return harness.CompareBatchedVsIndividual(batched, perBody, tol)
		},
	}
}

// Variants builds the models checked against the closed-form quadratic
// reference for one sweep case. coeffs holds exactly order values.
type Variants func(order int, coeffs []float64) ([]lightcurve.Model, error)

// StandardVariants is the numerically integrated law built from a variadic
// list and from a fixed array, plus the uniform model at order 0.
func StandardVariants(order int, coeffs []float64) ([]lightcurve.Model, error) {
	variadic, err := lightcurve.NewLimbDark(coeffs...)
	if err != nil {
		return nil, err
	}
	parsed, err := lightcurve.ParseCoefficients(coeffs)
	if err != nil {
		return nil, err
	}
	array, err := lightcurve.NewLimbDarkArray(parsed)
	if err != nil {
		return nil, err
	}
	out := []lightcurve.Model{variadic, array}
	if order == 0 {
		out = append(out, lightcurve.NewUniform())
	}
	return out, nil
}

// QuadLimbDarkConsistency replaces the first body's radius with c.Radius and
// checks that the analytic quadratic model with unused coefficients zeroed
// matches the standard variants.
func QuadLimbDarkConsistency(sys System, c Case, tol harness.Tolerance) harness.Scenario {
	return VariantConsistency(sys, c, tol, StandardVariants)
}

// VariantConsistency is QuadLimbDarkConsistency against an arbitrary set of
// variants.
func VariantConsistency(sys System, c Case, tol harness.Tolerance, variants Variants) harness.Scenario {
	sys = sys.Clone()
	return harness.Scenario{
		Name: fmt.Sprintf("quad_limb_dark_consistency/order=%d/radius=%g", c.Order, c.Radius),
		Params: map[string]any{
			"order":  c.Order,
			"radius": c.Radius,
		},
		Check: func(ctx context.Context) error {
			if c.Order < 0 || c.Order > lightcurve.MaxOrder {
				return fmt.Errorf("%w: limb-darkening order %d outside [0, %d]", model.ErrInvalidInput, c.Order, lightcurve.MaxOrder)
			}
			if len(sys.Orbit.Radius) == 0 {
				return fmt.Errorf("%w: system has no bodies", model.ErrInvalidInput)
			}
			sys := sys.Clone()
			sys.Orbit.Radius[0] = c.Radius
			if err := sys.Validate(); err != nil {
				return err
			}

			orbit, err := model.NewOrbit(sys.Central, sys.Orbit)
			if err != nil {
				return fmt.Errorf("orbit: %w", err)
			}

			// Coefficients beyond the order are zero for the general model.
			ld := lightcurve.Truncate(lightcurve.Truncate(sys.LimbDarkening, c.Order), lightcurve.MaxOrder)
			reference, err := lightcurve.NewQuad(ld[0], ld[1]).LightCurve(orbit, sys.Times)
			if err != nil {
				return fmt.Errorf("quad light curve: %w", err)
			}

			models, err := variants(c.Order, ld[:c.Order])
			if err != nil {
				return err
			}
			for i, v := range models {
				if err := ctx.Err(); err != nil {
					return err
				}
				alt, err := v.LightCurve(orbit, sys.Times)
				if err != nil {
					return fmt.Errorf("%s light curve: %w", v.Name(), err)
				}
				if err := harness.CompareModelVariants(reference, alt, tol); err != nil {
					return fmt.Errorf("variant %d (%s): %w", i, v.Name(), err)
				}
			}
			return nil
		},
	}
}

// Idempotence evaluates the batched curve twice and requires identical output.
func Idempotence(sys System) harness.Scenario {
	sys = sys.Clone()
	return harness.Scenario{
		Name:   "idempotence",
		Params: map[string]any{"bodies": sys.Orbit.Len()},
		Check: func(ctx context.Context) error {
			if err := sys.Validate(); err != nil {
				return err
			}
			u := sys.PaddedLimbDarkening()
			var runs [2]*mat.Dense
			for i := range runs {
				if err := ctx.Err(); err != nil {
					return err
				}
				orbit, err := model.NewOrbit(sys.Central, sys.Orbit)
				if err != nil {
					return err
				}
				runs[i], err = lightcurve.NewQuad(u[0], u[1]).LightCurve(orbit, sys.Times)
				if err != nil {
					return err
				}
			}
			return harness.CompareModelVariants(runs[0], runs[1], harness.Exact)
		},
	}
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

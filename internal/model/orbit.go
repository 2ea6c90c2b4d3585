package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GravitationalConstant in R_sun^3 / M_sun / day^2.
const GravitationalConstant = 2942.2062175044

var (
	// ErrInvalidInput marks parameter errors that abort a computation up front.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNumerical marks non-finite or non-convergent results from the numerics.
	ErrNumerical = errors.New("numerical instability")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Central is the body every orbit in a system is bound to.
// Units:
// - Mass: M_sun
// - Radius: R_sun
type Central struct {
	Mass   float64
	Radius float64
}

func NewCentral(mass, radius float64) (Central, error) {
	c := Central{Mass: mass, Radius: radius}
	if err := c.Validate(); err != nil {
		return Central{}, err
	}
	return c, nil
}

func (c Central) Validate() error {
	if !(c.Mass > 0) || math.IsInf(c.Mass, 0) {
		return invalidf("central mass must be finite and > 0")
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return invalidf("central radius must be finite and > 0")
	}
	return nil
}

// BodyParams describes one orbiting body.
// Units:
// - TimeTransit, Period: days
// - ImpactParam: central radii
// - Radius: R_sun (same unit as Central.Radius)
// - Omega: radians
type BodyParams struct {
	TimeTransit  float64
	Period       float64
	ImpactParam  float64
	Radius       float64
	Eccentricity float64
	Omega        float64
}

func (b BodyParams) Validate() error {
	for name, v := range map[string]float64{
		"time_transit": b.TimeTransit,
		"period":       b.Period,
		"impact_param": b.ImpactParam,
		"radius":       b.Radius,
		"eccentricity": b.Eccentricity,
		"omega":        b.Omega,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidf("%s must be finite", name)
		}
	}
	if b.Period <= 0 {
		return invalidf("period must be > 0")
	}
	if b.Radius < 0 {
		return invalidf("radius must be >= 0")
	}
	if b.Eccentricity < 0 || b.Eccentricity >= 1 {
		return invalidf("eccentricity must be in [0, 1)")
	}
	return nil
}

// OrbitParams holds per-body parameter arrays for a batch of bodies.
// The required arrays must share one length; Eccentricity and Omega are
// optional and, when set, must match that length too.
type OrbitParams struct {
	TimeTransit  []float64
	Period       []float64
	ImpactParam  []float64
	Radius       []float64
	Eccentricity []float64
	Omega        []float64
}

// Len is the number of bodies, or 0 if the arrays are empty.
func (p OrbitParams) Len() int { return len(p.TimeTransit) }

func (p OrbitParams) Validate() error {
	n := len(p.TimeTransit)
	if n == 0 {
		return invalidf("at least one body is required")
	}
	required := map[string][]float64{
		"period":       p.Period,
		"impact_param": p.ImpactParam,
		"radius":       p.Radius,
	}
	for name, arr := range required {
		if len(arr) != n {
			return invalidf("%s has %d entries, time_transit has %d", name, len(arr), n)
		}
	}
	if len(p.Eccentricity) != 0 && len(p.Eccentricity) != n {
		return invalidf("eccentricity has %d entries, time_transit has %d", len(p.Eccentricity), n)
	}
	if len(p.Omega) != 0 && len(p.Omega) != n {
		return invalidf("omega has %d entries, time_transit has %d", len(p.Omega), n)
	}
	for i := 0; i < n; i++ {
		if err := p.Body(i).Validate(); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}
	return nil
}

// Body returns the scalar parameters of body n. Callers must validate first.
func (p OrbitParams) Body(n int) BodyParams {
	b := BodyParams{
		TimeTransit: p.TimeTransit[n],
		Period:      p.Period[n],
		ImpactParam: p.ImpactParam[n],
		Radius:      p.Radius[n],
	}
	if len(p.Eccentricity) > n {
		b.Eccentricity = p.Eccentricity[n]
	}
	if len(p.Omega) > n {
		b.Omega = p.Omega[n]
	}
	return b
}

// keplerBody caches the derived orbital elements of one body.
type keplerBody struct {
	params BodyParams

	semiMajor   float64 // central radii
	cosInc      float64
	sinInc      float64
	meanMotion  float64 // rad/day
	tPeriastron float64
	sinOmega    float64
	cosOmega    float64
}

// Orbit is an immutable batch of Keplerian orbits around one Central.
// A single-body orbit is an Orbit with Len() == 1.
type Orbit struct {
	Central Central
	bodies  []keplerBody
}

// NewOrbit constructs a batched orbit from per-body arrays.
func NewOrbit(central Central, p OrbitParams) (*Orbit, error) {
	if err := central.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o := &Orbit{Central: central, bodies: make([]keplerBody, 0, p.Len())}
	for i := 0; i < p.Len(); i++ {
		kb, err := deriveBody(central, p.Body(i))
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		o.bodies = append(o.bodies, kb)
	}
	return o, nil
}

// NewBody constructs a single-body orbit from scalar parameters.
func NewBody(central Central, b BodyParams) (*Orbit, error) {
	if err := central.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	kb, err := deriveBody(central, b)
	if err != nil {
		return nil, err
	}
	return &Orbit{Central: central, bodies: []keplerBody{kb}}, nil
}

func (o *Orbit) Len() int { return len(o.bodies) }

// Body returns the single-body orbit for index n.
func (o *Orbit) Body(n int) (*Orbit, error) {
	if n < 0 || n >= len(o.bodies) {
		return nil, invalidf("body index %d out of range [0, %d)", n, len(o.bodies))
	}
	return &Orbit{Central: o.Central, bodies: []keplerBody{o.bodies[n]}}, nil
}

// Params returns the parameters body n was constructed from.
func (o *Orbit) Params(n int) BodyParams { return o.bodies[n].params }

// RadiusRatio is body n's radius in units of the central radius.
func (o *Orbit) RadiusRatio(n int) float64 {
	return o.bodies[n].params.Radius / o.Central.Radius
}

// SemiMajorAxis of body n in central radii.
func (o *Orbit) SemiMajorAxis(n int) float64 { return o.bodies[n].semiMajor }

// Position returns body n's position relative to the central body at time t,
// in central radii. Z > 0 points toward the observer.
func (o *Orbit) Position(n int, t float64) (x, y, z float64, err error) {
	kb := &o.bodies[n]
	e := kb.params.Eccentricity

	mean := kb.meanMotion * (t - kb.tPeriastron)
	var f, r float64
	if e == 0 {
		f = mean
		r = kb.semiMajor
	} else {
		ecc, err := SolveKepler(mean, e)
		if err != nil {
			return 0, 0, 0, err
		}
		f = trueAnomaly(ecc, e)
		r = kb.semiMajor * (1 - e*math.Cos(ecc))
	}

	sinF, cosF := math.Sincos(f)
	// sin/cos of (omega + f)
	swf := kb.sinOmega*cosF + kb.cosOmega*sinF
	cwf := kb.cosOmega*cosF - kb.sinOmega*sinF

	x = -r * cwf
	y = -r * swf * kb.cosInc
	z = r * swf * kb.sinInc
	return x, y, z, nil
}

// Separation returns the sky-projected separation (central radii) of every
// body at every time: one row per body, one column per time. Bodies behind
// the central body get +Inf.
func (o *Orbit) Separation(t []float64) (*mat.Dense, error) {
	if len(t) == 0 {
		return nil, invalidf("time grid is empty")
	}
	out := mat.NewDense(o.Len(), len(t), nil)
	for n := range o.bodies {
		row := out.RawRowView(n)
		for i, ti := range t {
			x, y, z, err := o.Position(n, ti)
			if err != nil {
				return nil, fmt.Errorf("body %d t=%g: %w", n, ti, err)
			}
			if z <= 0 {
				row[i] = math.Inf(1)
				continue
			}
			row[i] = math.Hypot(x, y)
		}
	}
	return out, nil
}

func deriveBody(c Central, b BodyParams) (keplerBody, error) {
	kb := keplerBody{params: b}

	aSun := math.Cbrt(GravitationalConstant * c.Mass * b.Period * b.Period / (4 * math.Pi * math.Pi))
	kb.semiMajor = aSun / c.Radius
	kb.meanMotion = 2 * math.Pi / b.Period
	kb.sinOmega, kb.cosOmega = math.Sincos(b.Omega)

	e := b.Eccentricity
	if e == 0 {
		kb.cosInc = b.ImpactParam / kb.semiMajor
	} else {
		kb.cosInc = b.ImpactParam * (1 + e*kb.sinOmega) / (kb.semiMajor * (1 - e*e))
	}
	if math.Abs(kb.cosInc) > 1 {
		return keplerBody{}, invalidf("impact parameter %g is unreachable for semi-major axis %g", b.ImpactParam, kb.semiMajor)
	}
	kb.sinInc = math.Sqrt(1 - kb.cosInc*kb.cosInc)

	// Mid-transit is where omega + f = pi/2.
	f0 := math.Pi/2 - b.Omega
	ecc0 := 2 * math.Atan2(math.Sqrt(1-e)*math.Sin(f0/2), math.Sqrt(1+e)*math.Cos(f0/2))
	m0 := ecc0 - e*math.Sin(ecc0)
	kb.tPeriastron = b.TimeTransit - m0/kb.meanMotion
	return kb, nil
}

func trueAnomaly(ecc, e float64) float64 {
	return 2 * math.Atan2(math.Sqrt(1+e)*math.Sin(ecc/2), math.Sqrt(1-e)*math.Cos(ecc/2))
}

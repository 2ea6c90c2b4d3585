package lightcurve

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"transit-lc/internal/model"
)

// Model evaluates relative flux (flux - 1) for every body of an orbit.
// The returned matrix has one row per body and one column per time.
type Model interface {
	Name() string
	Coefficients() Coefficients
	LightCurve(orbit *model.Orbit, t []float64) (*mat.Dense, error)
}

const (
	NameQuad     = "quad"
	NameLimbDark = "limbdark"
	NameUniform  = "uniform"
)

// Quad is the analytic quadratic limb-darkening model, evaluated from the
// closed-form occultation integrals. It always evaluates both terms of the
// law; a zero coefficient contributes nothing.
type Quad struct {
	U1, U2 float64
}

func NewQuad(u1, u2 float64) *Quad { return &Quad{U1: u1, U2: u2} }

func (m *Quad) Name() string { return NameQuad }

func (m *Quad) Coefficients() Coefficients {
	return Coefficients{Values: [MaxOrder]float64{m.U1, m.U2}, Order: MaxOrder}
}

func (m *Quad) LightCurve(orbit *model.Orbit, t []float64) (*mat.Dense, error) {
	c := m.Coefficients()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	u := c.Padded()
	if norm := quadNormalization(u); !(norm > 0) {
		return nil, fmt.Errorf("%w: coefficients %v give non-positive total flux", model.ErrNumerical, u)
	}
	return evaluate(orbit, t, func(b, p float64) float64 {
		return quadDeltaFlux(u, b, p)
	})
}

// LimbDark is the limb-darkening law truncated to however many coefficients
// it was given (0, 1 or 2). It integrates the intensity profile numerically
// over the covered part of the disk.
type LimbDark struct {
	coeffs Coefficients
}

// NewLimbDark builds the model from a variadic coefficient list.
func NewLimbDark(u ...float64) (*LimbDark, error) {
	c, err := ParseCoefficients(u)
	if err != nil {
		return nil, err
	}
	return &LimbDark{coeffs: c}, nil
}

// NewLimbDarkArray builds the model from a fixed-size coefficient array.
func NewLimbDarkArray(c Coefficients) (*LimbDark, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &LimbDark{coeffs: c}, nil
}

func (m *LimbDark) Name() string { return NameLimbDark }

func (m *LimbDark) Coefficients() Coefficients { return m.coeffs }

func (m *LimbDark) LightCurve(orbit *model.Orbit, t []float64) (*mat.Dense, error) {
	profile := limbProfile(m.coeffs.Slice())
	total := diskIntegral(profile)
	if !(total > 0) {
		return nil, fmt.Errorf("%w: coefficients %v give non-positive total flux", model.ErrNumerical, m.coeffs.Slice())
	}
	return evaluate(orbit, t, func(b, p float64) float64 {
		return radialDeltaFlux(profile, total, b, p)
	})
}

// Uniform is the specialized zero-order model: a disk of constant brightness,
// computed from the closed-form overlap area alone.
type Uniform struct{}

func NewUniform() *Uniform { return &Uniform{} }

func (m *Uniform) Name() string { return NameUniform }

func (m *Uniform) Coefficients() Coefficients { return Coefficients{} }

func (m *Uniform) LightCurve(orbit *model.Orbit, t []float64) (*mat.Dense, error) {
	return evaluate(orbit, t, uniformDeltaFlux)
}

// ForOrder selects the model variant for a limb-darkening order, using the
// first order entries of u.
func ForOrder(order int, u []float64) (Model, error) {
	if order < 0 || order > MaxOrder {
		return nil, fmt.Errorf("%w: limb-darkening order %d outside [0, %d]", model.ErrInvalidInput, order, MaxOrder)
	}
	if order == 0 {
		return NewUniform(), nil
	}
	if len(u) < order {
		return nil, fmt.Errorf("%w: order %d needs %d coefficients, got %d", model.ErrInvalidInput, order, order, len(u))
	}
	return NewLimbDark(u[:order]...)
}

// New builds a model by name. An empty name picks the variant by the number
// of coefficients.
func New(name string, u []float64) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return ForOrder(len(u), u)
	case NameQuad:
		c, err := ParseCoefficients(u)
		if err != nil {
			return nil, err
		}
		p := c.Padded()
		return NewQuad(p[0], p[1]), nil
	case NameLimbDark:
		return NewLimbDark(u...)
	case NameUniform:
		if len(u) != 0 {
			return nil, fmt.Errorf("%w: uniform model takes no coefficients, got %d", model.ErrInvalidInput, len(u))
		}
		return NewUniform(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported light curve model %q", model.ErrInvalidInput, name)
	}
}

func evaluate(orbit *model.Orbit, t []float64, flux func(b, p float64) float64) (*mat.Dense, error) {
	if orbit == nil {
		return nil, fmt.Errorf("%w: orbit is nil", model.ErrInvalidInput)
	}
	sep, err := orbit.Separation(t)
	if err != nil {
		return nil, err
	}
	rows, cols := sep.Dims()
	out := mat.NewDense(rows, cols, nil)
	for n := 0; n < rows; n++ {
		p := orbit.RadiusRatio(n)
		src := sep.RawRowView(n)
		dst := out.RawRowView(n)
		for i, b := range src {
			v := flux(math.Abs(b), p)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: body %d t=%g produced %v", model.ErrNumerical, n, t[i], v)
			}
			dst[i] = v
		}
	}
	return out, nil
}

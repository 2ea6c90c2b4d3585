package lightcurve

import (
	"fmt"
	"math"

	"transit-lc/internal/model"
)

// MaxOrder is the highest supported limb-darkening order (quadratic law).
const MaxOrder = 2

// Coefficients is a fixed-size coefficient array. Only the first Order
// entries are significant; the rest must be zero.
type Coefficients struct {
	Values [MaxOrder]float64
	Order  int
}

// ParseCoefficients builds Coefficients from an ordered list of 0..MaxOrder values.
func ParseCoefficients(u []float64) (Coefficients, error) {
	if len(u) > MaxOrder {
		return Coefficients{}, fmt.Errorf("%w: got %d limb-darkening coefficients, at most %d supported", model.ErrInvalidInput, len(u), MaxOrder)
	}
	var c Coefficients
	c.Order = copy(c.Values[:], u)
	if err := c.Validate(); err != nil {
		return Coefficients{}, err
	}
	return c, nil
}

func (c Coefficients) Validate() error {
	if c.Order < 0 || c.Order > MaxOrder {
		return fmt.Errorf("%w: limb-darkening order %d outside [0, %d]", model.ErrInvalidInput, c.Order, MaxOrder)
	}
	for i, v := range c.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: limb-darkening coefficient %d is not finite", model.ErrInvalidInput, i)
		}
		if i >= c.Order && v != 0 {
			return fmt.Errorf("%w: coefficient %d set beyond order %d", model.ErrInvalidInput, i, c.Order)
		}
	}
	return nil
}

// Slice returns the significant coefficients as a new slice.
func (c Coefficients) Slice() []float64 {
	out := make([]float64, c.Order)
	copy(out, c.Values[:c.Order])
	return out
}

// Padded returns the full quadratic-law pair, zero beyond Order.
func (c Coefficients) Padded() [MaxOrder]float64 {
	var u [MaxOrder]float64
	copy(u[:], c.Values[:c.Order])
	return u
}

// Truncate keeps the first order entries of u and zero-pads to that order.
func Truncate(u []float64, order int) []float64 {
	out := make([]float64, order)
	copy(out, u)
	return out
}

package model

import (
	"fmt"
	"math"
)

const (
	keplerTolerance = 1e-12
	keplerMaxIter   = 50
)

// SolveKepler returns the eccentric anomaly E satisfying M = E - e*sin(E)
// for mean anomaly M and eccentricity e in [0, 1).
func SolveKepler(mean, e float64) (float64, error) {
	if e < 0 || e >= 1 {
		return 0, invalidf("eccentricity %g outside [0, 1)", e)
	}
	// Reduce to [-pi, pi] and restore the winding afterwards.
	turns := math.Round(mean / (2 * math.Pi))
	m := mean - turns*2*math.Pi

	ecc := m
	if e > 0.8 {
		ecc = math.Copysign(math.Pi, m)
	}
	for i := 0; i < keplerMaxIter; i++ {
		sinE, cosE := math.Sincos(ecc)
		step := (ecc - e*sinE - m) / (1 - e*cosE)
		ecc -= step
		if math.Abs(step) <= keplerTolerance {
			break
		}
	}
	if math.IsNaN(ecc) || math.IsInf(ecc, 0) {
		return 0, fmt.Errorf("%w: kepler solve diverged for M=%g e=%g", ErrNumerical, mean, e)
	}
	return ecc + turns*2*math.Pi, nil
}

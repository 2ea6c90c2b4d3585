package lightcurve

import "math"

const (
	celTolerance = 1e-8 // squared by the final step
	celMaxSteps  = 64
)

// cel is Bulirsch's general complete elliptic integral
//
//	∫₀^{π/2} (a cos²φ + b sin²φ) / ((cos²φ + p sin²φ) √(cos²φ + kc² sin²φ)) dφ
//
// for complementary modulus kc != 0 and p > 0, by Bartky's transformation.
func cel(kc, p, a, b float64) float64 {
	if kc == 0 || !(p > 0) {
		return math.NaN()
	}
	qc := math.Abs(kc)
	e := qc
	em := 1.0
	p = math.Sqrt(p)
	b /= p
	for i := 0; i < celMaxSteps; i++ {
		f := a
		a += b / p
		g := e / p
		b += f * g
		b += b
		p += g
		g = em
		em += qc
		if !(math.Abs(g-qc) > g*celTolerance) {
			break
		}
		qc = 2 * math.Sqrt(e)
		e = qc * em
	}
	return math.Pi / 2 * (b + a*em) / (em * (em + p))
}

// completeKEPi returns the complete elliptic integrals K, E and Π(n) for
// complementary modulus kc, with Π(n) = ∫ dφ / ((1 + n sin²φ) √(1 - k² sin²φ)).
// pi1 is 1+n.
func completeKEPi(kc, pi1 float64) (k, e, pi float64) {
	return cel(kc, 1, 1, 1), cel(kc, 1, 1, kc*kc), cel(kc, pi1, 1, 1)
}

package lightcurve

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/integrate/quad"

	"transit-lc/internal/model"
)

// quadratureNodes is the Gauss-Legendre order used for every radial piece.
const quadratureNodes = 64

// gradeSlack is how close a singular point may sit to an interval end and
// still count as that end.
const gradeSlack = 1e-14

var (
	nodesOnce   sync.Once
	nodeTheta   []float64
	nodeWeights []float64
)

func legendreNodes() ([]float64, []float64) {
	nodesOnce.Do(func() {
		nodeTheta = make([]float64, quadratureNodes)
		nodeWeights = make([]float64, quadratureNodes)
		quad.Legendre{}.FixedLocations(nodeTheta, nodeWeights, 0, math.Pi)
	})
	return nodeTheta, nodeWeights
}

// integrate evaluates the integral of f over [lo, hi] after substituting
// rho = lo + (hi-lo)(1-cos theta)/2, which turns square-root behaviour at
// either end into a smooth integrand.
func integrate(f func(rho float64) float64, lo, hi float64) float64 {
	theta, weights := legendreNodes()
	half := (hi - lo) / 2
	sum := 0.0
	for i, th := range theta {
		sinT, cosT := math.Sincos(th)
		rho := lo + half*(1-cosT)
		sum += weights[i] * f(rho) * half * sinT
	}
	return sum
}

// integrateGraded splits [lo, hi] geometrically toward the nearest singular
// point lying just outside either end, so each piece stays at least its own
// width away from it.
func integrateGraded(f func(rho float64) float64, lo, hi float64, singular []float64) float64 {
	width := hi - lo
	if !(width > 0) {
		return 0
	}
	below, above := math.Inf(1), math.Inf(1)
	for _, s := range singular {
		switch {
		case s < lo-gradeSlack:
			below = math.Min(below, lo-s)
		case s > hi+gradeSlack:
			above = math.Min(above, s-hi)
		}
	}
	cuts := []float64{lo, hi}
	for d := below; d < width/2; d *= 2 {
		cuts = append(cuts, lo+d)
	}
	for d := above; d < width/2; d *= 2 {
		cuts = append(cuts, hi-d)
	}
	slices.Sort(cuts)

	total := 0.0
	for i := 1; i < len(cuts); i++ {
		if cuts[i] > cuts[i-1] {
			total += integrate(f, cuts[i-1], cuts[i])
		}
	}
	return total
}

// lensArea is the area of the central unit disk covered by a disk of radius
// p at separation b.
func lensArea(b, p float64) float64 {
	switch model.OverlapFor(b, p) {
	case model.OverlapNone:
		return 0
	case model.OverlapTotal:
		return math.Pi
	case model.OverlapInside:
		return math.Pi * p * p
	}
	chord := math.Sqrt(kite(b, p))
	k0 := math.Atan2(chord, p*p+b*b-1)
	k1 := math.Atan2(chord, 1-p*p+b*b)
	return p*p*k0 + k1 - 0.5*chord
}

// contactGap is b+p-1, exact when the disks are close to internal tangency.
func contactGap(b, p float64) float64 {
	if b > p {
		return (b - 1) + p
	}
	return (p - 1) + b
}

// kite is 4b² - (1+b²-p²)², sixteen times the squared area of the triangle
// with sides 1, b and p. Each factor vanishes at one contact and is formed
// so that it stays accurate there.
func kite(b, p float64) float64 {
	return math.Max(0, (1+b+p)*contactGap(b, p)*(p-(b-1))*(b-(p-1)))
}

// uniformDeltaFlux is the closed-form flux change of an unlimb-darkened disk.
func uniformDeltaFlux(b, p float64) float64 {
	switch model.OverlapFor(b, p) {
	case model.OverlapNone:
		return 0
	case model.OverlapTotal:
		return -1
	}
	return -lensArea(b, p) / math.Pi
}

// occultedIntegral integrates the radial profile g over the covered part of
// the unit disk. At radius rho the covered arc spans 2*alpha(rho) radians.
func occultedIntegral(g func(rho float64) float64, b, p float64) float64 {
	// alpha has square-root ends at |b-p| and b+p, mu at the limb, and the
	// arc formula a pole at the centre.
	singular := []float64{0, math.Abs(b - p), b + p, 1}
	total := 0.0
	if p > b {
		// Rings with rho < p-b lie entirely under the occulter.
		total += integrateGraded(func(rho float64) float64 {
			return g(rho) * 2 * math.Pi * rho
		}, 0, math.Min(p-b, 1), singular)
	}
	lo := math.Abs(b - p)
	hi := math.Min(b+p, 1)
	if hi > lo && b > 0 {
		total += integrateGraded(func(rho float64) float64 {
			return g(rho) * 2 * rho * arcAngle(rho, b, p)
		}, lo, hi, singular)
	}
	return total
}

// diskIntegral is the unocculted flux of the radial profile g.
func diskIntegral(g func(rho float64) float64) float64 {
	return integrate(func(rho float64) float64 {
		return g(rho) * 2 * math.Pi * rho
	}, 0, 1)
}

func arcAngle(rho, b, p float64) float64 {
	if rho <= 0 {
		return 0
	}
	return math.Acos(clampUnit((rho*rho + b*b - p*p) / (2 * b * rho)))
}

func mu(rho float64) float64 { return math.Sqrt(math.Max(0, 1-rho*rho)) }

// limbProfile is the polynomial limb-darkening law
// I(mu) = 1 - sum_k u[k-1] (1-mu)^k as a function of projected radius.
func limbProfile(u []float64) func(rho float64) float64 {
	u = append([]float64(nil), u...)
	return func(rho float64) float64 {
		d := 1 - mu(rho)
		term, intensity := 1.0, 1.0
		for _, c := range u {
			term *= d
			intensity -= c * term
		}
		return intensity
	}
}

// radialDeltaFlux is the flux change for profile g with unocculted flux
// total, integrated numerically over the covered region.
func radialDeltaFlux(g func(rho float64) float64, total, b, p float64) float64 {
	switch model.OverlapFor(b, p) {
	case model.OverlapNone:
		return 0
	case model.OverlapTotal:
		return -1
	}
	return -occultedIntegral(g, b, p) / total
}

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

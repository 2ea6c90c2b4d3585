package lightcurve

import (
	"math"

	"transit-lc/internal/model"
)

// contactOffset is the relative step taken off a removable singularity of
// the elliptic forms: the body's limb crossing the centre (b == p) or
// internal tangency (b+p == 1).
const contactOffset = 1e-12

// occultation holds the occulted integrals of the quadratic law's basis
// terms, each divided by π: the area (1), the linear term (mu) and the
// second moment (r²). Mandel & Agol (2002) call them λe, λd+⅔Θ(p-z) and ηd.
type occultation struct {
	area, linear, moment float64
}

func occult(b, p float64) occultation {
	switch model.OverlapFor(b, p) {
	case model.OverlapNone:
		return occultation{}
	case model.OverlapTotal:
		return occultation{area: 1, linear: 2.0 / 3, moment: 0.5}
	case model.OverlapInside:
		return occultInside(b, p)
	default:
		return occultPartial(b, p)
	}
}

func occultInside(b, p float64) occultation {
	if b == p {
		return occult(b*(1-contactOffset), p)
	}
	lo2, hi2 := (b-p)*(b-p), (b+p)*(b+p)
	kc := math.Sqrt(math.Max(0, -contactGap(b, p)*(1+b+p)/((p-(b-1))*(b-(p-1)))))
	if kc == 0 {
		return occult(b*(1-contactOffset), p)
	}
	k, e, pi := completeKEPi(kc, hi2/lo2)
	q := p*p - b*b
	linear := 2 / (9 * math.Pi * math.Sqrt(1-lo2)) *
		((1-5*b*b+p*p+q*q)*k + (1-lo2)*(b*b+7*p*p-4)*e - 3*(p+b)/(p-b)*pi)
	if p > b {
		linear += 2.0 / 3
	}
	return occultation{
		area:   p * p,
		linear: linear,
		moment: p * p / 2 * (p*p + 2*b*b),
	}
}

func occultPartial(b, p float64) occultation {
	if b == p {
		return occult(b*(1-contactOffset), p)
	}
	lo2, hi2 := (b-p)*(b-p), (b+p)*(b+p)
	kc := math.Sqrt(math.Max(0, contactGap(b, p)*(1+b+p)/(4*b*p)))
	if kc == 0 {
		return occult(b*(1+contactOffset), p)
	}
	chord := math.Sqrt(kite(b, p))
	k0 := math.Atan2(chord, p*p+b*b-1)
	k1 := math.Atan2(chord, 1-p*p+b*b)

	k, e, pi := completeKEPi(kc, 1/lo2)
	q := p*p - b*b
	linear := 1 / (9 * math.Pi * math.Sqrt(p*b)) *
		(((1-hi2)*(2*hi2+lo2-3)-3*q*(hi2-2))*k + 4*p*b*(b*b+7*p*p-4)*e - 3*(p+b)/(p-b)*pi)
	if p > b {
		linear += 2.0 / 3
	}
	return occultation{
		area:   (p*p*k0 + k1 - 0.5*chord) / math.Pi,
		linear: linear,
		moment: (k1 + p*p*(p*p+2*b*b)*k0 - (1+5*p*p+b*b)/4*chord) / (2 * math.Pi),
	}
}

// quadNormalization is the unocculted flux of the quadratic law over π.
func quadNormalization(u [2]float64) float64 {
	return 1 - u[0]/3 - u[1]/6
}

// quadDeltaFlux is the closed-form relative flux change (flux - 1) under the
// quadratic law with coefficients u. All three basis terms are evaluated
// whatever the coefficients.
func quadDeltaFlux(u [2]float64, b, p float64) float64 {
	switch model.OverlapFor(b, p) {
	case model.OverlapNone:
		return 0
	case model.OverlapTotal:
		return -1
	}
	o := occult(b, p)
	c := u[0] + 2*u[1]
	return -((1-c)*o.area + c*o.linear + u[1]*o.moment) / quadNormalization(u)
}

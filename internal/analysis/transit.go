package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"transit-lc/internal/model"
)

// TransitSummary is a per-body summary of one light-curve row.
// Flux values are relative (0 out of transit, -1 fully occulted).
type TransitSummary struct {
	Body int    `json:"body"`
	Name string `json:"name,omitempty"`

	Samples   int `json:"samples"`
	InTransit int `json:"in_transit"`

	// Depth is the deepest flux deficit, as a positive fraction.
	Depth         float64 `json:"depth"`
	TimeOfMinimum float64 `json:"time_of_minimum"`
	MeanFlux      float64 `json:"mean_flux"`
	P05Flux       float64 `json:"p05_flux"`

	// Duration sums the sample spacing over occulting samples (days).
	Duration float64 `json:"duration"`

	Overlaps map[model.Overlap]int `json:"overlaps"`
}

// Summarize computes one TransitSummary per orbit body. curve must have the
// shape returned by a lightcurve.Model for the same orbit and times.
func Summarize(orbit *model.Orbit, times []float64, curve mat.Matrix) ([]TransitSummary, error) {
	rows, cols := curve.Dims()
	if rows != orbit.Len() || cols != len(times) {
		return nil, fmt.Errorf("%w: curve is %dx%d, want %dx%d", model.ErrInvalidInput, rows, cols, orbit.Len(), len(times))
	}
	sep, err := orbit.Separation(times)
	if err != nil {
		return nil, err
	}

	out := make([]TransitSummary, 0, rows)
	for n := 0; n < rows; n++ {
		row := mat.Row(nil, n, curve)
		p := orbit.RadiusRatio(n)

		s := TransitSummary{
			Body:     n,
			Samples:  cols,
			Overlaps: map[model.Overlap]int{},
		}
		minIdx := floats.MinIdx(row)
		s.Depth = -row[minIdx]
		s.TimeOfMinimum = times[minIdx]
		s.MeanFlux = floats.Sum(row) / float64(cols)

		sorted := append([]float64(nil), row...)
		sort.Float64s(sorted)
		s.P05Flux = percentileSorted(sorted, 0.05)

		for i := 0; i < cols; i++ {
			ov := model.OverlapFor(math.Abs(sep.At(n, i)), p)
			s.Overlaps[ov]++
			if ov.Occulting() {
				s.InTransit++
				s.Duration += spacing(times, i)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// spacing is the step following sample i, or the preceding one at the end.
func spacing(times []float64, i int) float64 {
	switch {
	case len(times) < 2:
		return 0
	case i+1 < len(times):
		return times[i+1] - times[i]
	default:
		return times[i] - times[i-1]
	}
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

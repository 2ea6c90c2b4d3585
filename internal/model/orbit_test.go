package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBodyParams() OrbitParams {
	return OrbitParams{
		TimeTransit: []float64{0.0, 0.5},
		Period:      []float64{1, 4.5},
		ImpactParam: []float64{0.5, 0.2},
		Radius:      []float64{0.1, 0.3},
	}
}

func TestNewCentral(t *testing.T) {
	tests := []struct {
		name    string
		mass    float64
		radius  float64
		wantErr bool
	}{
		{name: "valid", mass: 0.98, radius: 0.93},
		{name: "zero mass", mass: 0, radius: 1, wantErr: true},
		{name: "negative radius", mass: 1, radius: -1, wantErr: true},
		{name: "nan mass", mass: math.NaN(), radius: 1, wantErr: true},
		{name: "infinite radius", mass: 1, radius: math.Inf(1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCentral(tt.mass, tt.radius)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mass, c.Mass)
			assert.Equal(t, tt.radius, c.Radius)
		})
	}
}

func TestOrbitParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*OrbitParams)
		wantErr bool
	}{
		{name: "valid", modify: func(*OrbitParams) {}},
		{name: "empty", modify: func(p *OrbitParams) { *p = OrbitParams{} }, wantErr: true},
		{name: "short period", modify: func(p *OrbitParams) { p.Period = p.Period[:1] }, wantErr: true},
		{name: "long radius", modify: func(p *OrbitParams) { p.Radius = append(p.Radius, 0.2) }, wantErr: true},
		{name: "mismatched eccentricity", modify: func(p *OrbitParams) { p.Eccentricity = []float64{0.1} }, wantErr: true},
		{name: "matched eccentricity", modify: func(p *OrbitParams) { p.Eccentricity = []float64{0.1, 0.2} }},
		{name: "negative period", modify: func(p *OrbitParams) { p.Period[1] = -1 }, wantErr: true},
		{name: "negative radius", modify: func(p *OrbitParams) { p.Radius[0] = -0.1 }, wantErr: true},
		{name: "eccentricity one", modify: func(p *OrbitParams) { p.Eccentricity = []float64{0, 1} }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := twoBodyParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOrbit_SeparationAtTransit(t *testing.T) {
	central, err := NewCentral(0.98, 0.93)
	require.NoError(t, err)
	p := twoBodyParams()
	orbit, err := NewOrbit(central, p)
	require.NoError(t, err)
	require.Equal(t, 2, orbit.Len())

	for n := 0; n < orbit.Len(); n++ {
		t0 := p.TimeTransit[n]
		period := p.Period[n]
		sep, err := orbit.Separation([]float64{t0, t0 + period, t0 + period/2})
		require.NoError(t, err)
		row := sep.RawRowView(n)
		assert.InDelta(t, p.ImpactParam[n], row[0], 1e-9, "body %d at transit", n)
		assert.InDelta(t, row[0], row[1], 1e-9, "body %d one period later", n)
		assert.True(t, math.IsInf(row[2], 1), "body %d should be behind at half phase", n)
	}
}

func TestOrbit_BodyMatchesBatch(t *testing.T) {
	central := Central{Mass: 0.98, Radius: 0.93}
	p := twoBodyParams()
	orbit, err := NewOrbit(central, p)
	require.NoError(t, err)

	times := []float64{-1, -0.25, 0, 0.1, 0.5, 2.2, 7.9}
	batched, err := orbit.Separation(times)
	require.NoError(t, err)

	for n := 0; n < orbit.Len(); n++ {
		viaIndex, err := orbit.Body(n)
		require.NoError(t, err)
		viaScalars, err := NewBody(central, p.Body(n))
		require.NoError(t, err)

		a, err := viaIndex.Separation(times)
		require.NoError(t, err)
		b, err := viaScalars.Separation(times)
		require.NoError(t, err)

		assert.Equal(t, batched.RawRowView(n), a.RawRowView(0))
		assert.Equal(t, batched.RawRowView(n), b.RawRowView(0))
		assert.Equal(t, orbit.RadiusRatio(n), viaScalars.RadiusRatio(0))
	}

	_, err = orbit.Body(2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrbit_EccentricTransit(t *testing.T) {
	central := Central{Mass: 1, Radius: 1}
	body := BodyParams{
		TimeTransit:  3.2,
		Period:       12,
		ImpactParam:  0.4,
		Radius:       0.05,
		Eccentricity: 0.3,
		Omega:        0.7,
	}
	orbit, err := NewBody(central, body)
	require.NoError(t, err)

	sep, err := orbit.Separation([]float64{body.TimeTransit})
	require.NoError(t, err)
	assert.InDelta(t, body.ImpactParam, sep.At(0, 0), 1e-8)

	_, _, z, err := orbit.Position(0, body.TimeTransit)
	require.NoError(t, err)
	assert.Greater(t, z, 0.0)
}

func TestNewOrbit_UnreachableImpactParam(t *testing.T) {
	p := twoBodyParams()
	p.ImpactParam[0] = 50
	_, err := NewOrbit(Central{Mass: 0.98, Radius: 0.93}, p)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrbit_EmptyTimes(t *testing.T) {
	orbit, err := NewOrbit(Central{Mass: 1, Radius: 1}, twoBodyParams())
	require.NoError(t, err)
	_, err = orbit.Separation(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSolveKepler(t *testing.T) {
	for _, e := range []float64{0, 0.1, 0.5, 0.85, 0.99} {
		for _, m := range []float64{-7, -3, -0.5, 0, 0.01, 1, 3.1, 9.4} {
			ecc, err := SolveKepler(m, e)
			require.NoError(t, err)
			assert.InDelta(t, m, ecc-e*math.Sin(ecc), 1e-10, "M=%g e=%g", m, e)
		}
	}

	_, err := SolveKepler(1, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOverlapFor(t *testing.T) {
	tests := []struct {
		b, p float64
		want Overlap
	}{
		{b: 2, p: 0.1, want: OverlapNone},
		{b: math.Inf(1), p: 0.1, want: OverlapNone},
		{b: 0.5, p: 0, want: OverlapNone},
		{b: 0.5, p: 0.1, want: OverlapInside},
		{b: 0.95, p: 0.1, want: OverlapPartial},
		{b: 0.2, p: 1.5, want: OverlapTotal},
		{b: 0.6, p: 1.5, want: OverlapPartial},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OverlapFor(tt.b, tt.p), "b=%g p=%g", tt.b, tt.p)
	}
	assert.False(t, OverlapNone.Occulting())
	assert.True(t, OverlapTotal.Occulting())
}

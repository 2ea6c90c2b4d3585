package main

import (
	"flag"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"transit-lc/internal/config"
	"transit-lc/internal/lightcurve"
	"transit-lc/internal/model"
	"transit-lc/internal/report"
	"transit-lc/internal/suite"
)

// Demo:
// - Build the default two-planet system (or one from --config)
// - Evaluate every model variant across the first body's transit
// - Print flux side by side to show how the variants line up
func main() {
	cfgPath := flag.String("config", "", "Path to suite config (optional)")
	body := flag.Int("body", 0, "Body index to follow")
	n := flag.Int("n", 15, "Number of samples across the transit window")
	window := flag.Float64("window", 0.1, "Half-width of the window around mid-transit (days)")
	outCSV := flag.String("out", "", "Optional path to write the window curve CSV")
	flag.Parse()

	sys := suite.DefaultSystem()
	names := []string{"body_0", "body_1"}
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		sys = cfg.SuiteSystem()
		names = cfg.System.BodyNames()
	}

	central, err := model.NewCentral(sys.Central.Mass, sys.Central.Radius)
	if err != nil {
		panic(err)
	}
	if *body < 0 || *body >= sys.Orbit.Len() {
		panic(fmt.Errorf("body %d out of range [0, %d)", *body, sys.Orbit.Len()))
	}
	params := sys.Orbit.Body(*body)
	orbit, err := model.NewBody(central, params)
	if err != nil {
		panic(err)
	}

	t0 := params.TimeTransit
	times := suite.TimeGrid(t0-*window, t0+*window, *n)
	sep, err := orbit.Separation(times)
	if err != nil {
		panic(err)
	}

	u := sys.PaddedLimbDarkening()
	variants := []lightcurve.Model{lightcurve.NewQuad(u[0], u[1])}
	ld, err := lightcurve.NewLimbDark(sys.LimbDarkening...)
	if err != nil {
		panic(err)
	}
	variants = append(variants, ld, lightcurve.NewUniform())

	curves := make([]*mat.Dense, len(variants))
	for i, v := range variants {
		curves[i], err = v.LightCurve(orbit, times)
		if err != nil {
			panic(err)
		}
	}

	p := orbit.RadiusRatio(0)
	fmt.Printf("Body %s: a/R=%.3f  p=%.4f  b=%.3f  period=%.3fd\n", names[*body], orbit.SemiMajorAxis(0), p, params.ImpactParam, params.Period)
	fmt.Printf("Limb darkening=%v\n\n", sys.LimbDarkening)
	fmt.Printf("%9s %7s %-8s %12s %12s %12s\n", "t", "sep", "overlap", variants[0].Name(), variants[1].Name(), variants[2].Name())
	for i, t := range times {
		b := math.Abs(sep.At(0, i))
		fmt.Printf("%9.4f %7.3f %-8s %12.7f %12.7f %12.7f\n",
			t, b, model.OverlapFor(b, p), curves[0].At(0, i), curves[1].At(0, i), curves[2].At(0, i))
	}

	quadRow := mat.Row(nil, 0, curves[0])
	ldRow := mat.Row(nil, 0, curves[1])
	fmt.Printf("\nmax |quad - limbdark| = %g\n", floats.Distance(quadRow, ldRow, math.Inf(1)))

	if *outCSV != "" {
		if err := report.WriteCurveCSV(*outCSV, times, curves[0], []string{names[*body]}); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}
}

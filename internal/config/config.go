package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transit-lc/internal/harness"
	"transit-lc/internal/model"
	"transit-lc/internal/suite"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk suite configuration (YAML, or TOML/JSON by extension).
type Config struct {
	// Optional: load the system from a separate file (e.g. examples/systems/*.yaml).
	// If both SystemFile and System are provided, System overrides SystemFile.
	SystemFile string             `yaml:"system_file" toml:"system_file" json:"system_file,omitempty"`
	System     SystemConfig       `yaml:"system" toml:"system" json:"system"`
	TimeGrid   TimeGridConfig     `yaml:"time_grid" toml:"time_grid" json:"time_grid"`
	Tolerance  *harness.Tolerance `yaml:"tolerance" toml:"tolerance" json:"tolerance,omitempty"`
	Sweep      SweepConfig        `yaml:"sweep" toml:"sweep" json:"sweep"`
	Runner     RunnerConfig       `yaml:"runner" toml:"runner" json:"runner"`
}

type SystemConfig struct {
	Name          string        `yaml:"name" toml:"name" json:"name,omitempty"`
	Central       CentralConfig `yaml:"central" toml:"central" json:"central"`
	Orbit         OrbitConfig   `yaml:"orbit" toml:"orbit" json:"orbit"`
	LimbDarkening []float64     `yaml:"limb_darkening" toml:"limb_darkening" json:"limb_darkening"`
}

type CentralConfig struct {
	Mass   float64 `yaml:"mass" toml:"mass" json:"mass"`
	Radius float64 `yaml:"radius" toml:"radius" json:"radius"`
}

// OrbitConfig mirrors model.OrbitParams: one array per parameter, indexed by body.
type OrbitConfig struct {
	Names        []string  `yaml:"names" toml:"names" json:"names,omitempty"`
	TimeTransit  []float64 `yaml:"time_transit" toml:"time_transit" json:"time_transit"`
	Period       []float64 `yaml:"period" toml:"period" json:"period"`
	ImpactParam  []float64 `yaml:"impact_param" toml:"impact_param" json:"impact_param"`
	Radius       []float64 `yaml:"radius" toml:"radius" json:"radius"`
	Eccentricity []float64 `yaml:"eccentricity" toml:"eccentricity" json:"eccentricity,omitempty"`
	Omega        []float64 `yaml:"omega" toml:"omega" json:"omega,omitempty"`
}

type TimeGridConfig struct {
	Start   float64 `yaml:"start" toml:"start" json:"start"`
	End     float64 `yaml:"end" toml:"end" json:"end"`
	Samples int     `yaml:"samples" toml:"samples" json:"samples"`
}

type SweepConfig struct {
	Orders []int     `yaml:"orders" toml:"orders" json:"orders,omitempty"`
	Radii  []float64 `yaml:"radii" toml:"radii" json:"radii,omitempty"`
}

type RunnerConfig struct {
	Workers int    `yaml:"workers" toml:"workers" json:"workers,omitempty"`
	Timeout string `yaml:"timeout" toml:"timeout" json:"timeout,omitempty"` // Go duration, e.g. "30s"
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not default or validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := decode(path, raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// If system_file is set, load it and merge in any explicit overrides from c.System.
	if c.SystemFile != "" {
		systemPath := c.SystemFile
		if !filepath.IsAbs(systemPath) {
			// Prefer paths relative to the config file, falling back to cwd.
			cand := filepath.Join(filepath.Dir(path), systemPath)
			if _, err := os.Stat(cand); err == nil {
				systemPath = cand
			}
		}
		loaded, err := LoadSystemFile(systemPath)
		if err != nil {
			return nil, err
		}
		c.System = MergeSystem(loaded, c.System)
	}
	return &c, nil
}

// ApplyDefaults fills anything left unset with the reference scenario values.
func (c *Config) ApplyDefaults() {
	def := suite.DefaultSystem()
	if c.System.Central == (CentralConfig{}) && len(c.System.Orbit.TimeTransit) == 0 {
		c.System = SystemFromSuite(def)
		c.System.Name = "default"
	}
	if c.TimeGrid.Samples == 0 {
		c.TimeGrid = TimeGridConfig{Start: -1.0, End: 10.0, Samples: 1000}
	}
	if c.Tolerance == nil {
		tol := harness.DefaultTolerance
		c.Tolerance = &tol
	}
	grid := suite.DefaultGrid()
	if len(c.Sweep.Orders) == 0 {
		c.Sweep.Orders = grid.Orders
	}
	if len(c.Sweep.Radii) == 0 {
		c.Sweep.Radii = grid.Radii
	}
	if c.Runner.Workers == 0 {
		c.Runner.Workers = 1
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.TimeGrid.Samples < 1 {
		return errors.New("time_grid.samples must be >= 1")
	}
	if c.TimeGrid.Samples > 1 && !(c.TimeGrid.End > c.TimeGrid.Start) {
		return errors.New("time_grid.end must be > time_grid.start")
	}
	if c.Tolerance != nil {
		if err := c.Tolerance.Validate(); err != nil {
			return fmt.Errorf("tolerance invalid: %w", err)
		}
	}
	if err := c.Grid().Validate(); err != nil {
		return fmt.Errorf("sweep invalid: %w", err)
	}
	if c.Runner.Workers < 0 {
		return errors.New("runner.workers must be >= 0")
	}
	if _, err := c.RunnerOptions(); err != nil {
		return err
	}
	if err := c.System.Validate(); err != nil {
		return fmt.Errorf("system config invalid: %w", err)
	}
	// Validate the physics by building the system the scenarios will use.
	if err := c.SuiteSystem().Validate(); err != nil {
		return fmt.Errorf("system config invalid: %w", err)
	}
	return nil
}

// SuiteSystem converts the config into the scenario input.
func (c *Config) SuiteSystem() suite.System {
	sys := c.System.ToSuite()
	sys.Times = suite.TimeGrid(c.TimeGrid.Start, c.TimeGrid.End, c.TimeGrid.Samples)
	return sys
}

func (c *Config) Grid() suite.Grid {
	return suite.Grid{Orders: c.Sweep.Orders, Radii: c.Sweep.Radii}
}

// Tol returns the configured tolerance or the default.
func (c *Config) Tol() harness.Tolerance {
	if c.Tolerance == nil {
		return harness.DefaultTolerance
	}
	return *c.Tolerance
}

func (c *Config) RunnerOptions() (harness.Options, error) {
	opts := harness.Options{Workers: c.Runner.Workers}
	if strings.TrimSpace(c.Runner.Timeout) != "" {
		d, err := time.ParseDuration(c.Runner.Timeout)
		if err != nil {
			return harness.Options{}, fmt.Errorf("runner.timeout: %w", err)
		}
		if d < 0 {
			return harness.Options{}, errors.New("runner.timeout must be >= 0")
		}
		opts.Timeout = d
	}
	return opts, nil
}

// Validate checks shape only; physical validity is checked by the model.
func (s SystemConfig) Validate() error {
	if n := len(s.Orbit.Names); n != 0 && n != len(s.Orbit.TimeTransit) {
		return fmt.Errorf("orbit.names has %d entries, time_transit has %d", n, len(s.Orbit.TimeTransit))
	}
	return nil
}

func (s SystemConfig) ToSuite() suite.System {
	return suite.System{
		Central: model.Central{Mass: s.Central.Mass, Radius: s.Central.Radius},
		Orbit: model.OrbitParams{
			TimeTransit:  s.Orbit.TimeTransit,
			Period:       s.Orbit.Period,
			ImpactParam:  s.Orbit.ImpactParam,
			Radius:       s.Orbit.Radius,
			Eccentricity: s.Orbit.Eccentricity,
			Omega:        s.Orbit.Omega,
		},
		LimbDarkening: s.LimbDarkening,
	}
}

// BodyNames returns a display name per body, falling back to "body_<n>".
func (s SystemConfig) BodyNames() []string {
	out := make([]string, len(s.Orbit.TimeTransit))
	for i := range out {
		if i < len(s.Orbit.Names) && strings.TrimSpace(s.Orbit.Names[i]) != "" {
			out[i] = s.Orbit.Names[i]
			continue
		}
		out[i] = fmt.Sprintf("body_%d", i)
	}
	return out
}

func SystemFromSuite(sys suite.System) SystemConfig {
	return SystemConfig{
		Central: CentralConfig{Mass: sys.Central.Mass, Radius: sys.Central.Radius},
		Orbit: OrbitConfig{
			TimeTransit:  sys.Orbit.TimeTransit,
			Period:       sys.Orbit.Period,
			ImpactParam:  sys.Orbit.ImpactParam,
			Radius:       sys.Orbit.Radius,
			Eccentricity: sys.Orbit.Eccentricity,
			Omega:        sys.Orbit.Omega,
		},
		LimbDarkening: sys.LimbDarkening,
	}
}

type systemFileWrapper struct {
	System SystemConfig `yaml:"system" toml:"system" json:"system"`
}

// LoadSystemFile reads a standalone system file with a top-level "system" key.
func LoadSystemFile(path string) (SystemConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SystemConfig{}, err
	}
	var w systemFileWrapper
	if err := decode(path, raw, &w); err != nil {
		return SystemConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.System, nil
}

// MergeSystem overlays non-zero fields from override onto base.
// This is used when loading a system file and then applying overrides.
func MergeSystem(base, override SystemConfig) SystemConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Central.Mass != 0 {
		out.Central.Mass = override.Central.Mass
	}
	if override.Central.Radius != 0 {
		out.Central.Radius = override.Central.Radius
	}
	o := override.Orbit
	if len(o.Names) != 0 {
		out.Orbit.Names = o.Names
	}
	if len(o.TimeTransit) != 0 {
		out.Orbit.TimeTransit = o.TimeTransit
	}
	if len(o.Period) != 0 {
		out.Orbit.Period = o.Period
	}
	if len(o.ImpactParam) != 0 {
		out.Orbit.ImpactParam = o.ImpactParam
	}
	if len(o.Radius) != 0 {
		out.Orbit.Radius = o.Radius
	}
	if len(o.Eccentricity) != 0 {
		out.Orbit.Eccentricity = o.Eccentricity
	}
	if len(o.Omega) != 0 {
		out.Orbit.Omega = o.Omega
	}
	// Note: an explicit empty list cannot be told apart from "unset" here.
	if len(override.LimbDarkening) != 0 {
		out.LimbDarkening = override.LimbDarkening
	}
	return out
}

func decode(path string, raw []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(raw), v)
		return err
	case ".json":
		return json.Unmarshal(raw, v)
	default:
		return yaml.Unmarshal(raw, v)
	}
}

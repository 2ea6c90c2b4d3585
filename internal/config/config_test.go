package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-lc/internal/harness"
	"transit-lc/internal/suite"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	p := writeFile(t, t.TempDir(), "suite.yaml", "runner:\n  timeout: 5s\n")
	c, err := Load(p)
	require.NoError(t, err)

	def := suite.DefaultSystem()
	sys := c.SuiteSystem()
	assert.Equal(t, def.Central, sys.Central)
	assert.Equal(t, def.Orbit.Period, sys.Orbit.Period)
	assert.Len(t, sys.Times, 1000)
	assert.Equal(t, harness.DefaultTolerance, c.Tol())
	assert.Equal(t, suite.DefaultGrid(), c.Grid())

	opts, err := c.RunnerOptions()
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Workers)
	assert.Equal(t, 5*time.Second, opts.Timeout)
}

func TestLoadSystemFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "system.yaml", `system:
  name: two_planet
  central: {mass: 0.98, radius: 0.93}
  orbit:
    names: [b, c]
    time_transit: [0.0, 0.5]
    period: [1.0, 4.5]
    impact_param: [0.5, 0.2]
    radius: [0.1, 0.3]
  limb_darkening: [0.1, 0.3]
`)
	p := writeFile(t, dir, "suite.yaml", `system_file: system.yaml
system:
  orbit:
    radius: [0.05, 0.2]
time_grid: {start: 0, end: 2, samples: 50}
tolerance: {rtol: 1.0e-6, atol: 0}
sweep:
  orders: [1]
  radii: [0.1]
runner:
  workers: 3
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "two_planet", c.System.Name)
	assert.Equal(t, []float64{0.05, 0.2}, c.System.Orbit.Radius)
	assert.Equal(t, []float64{1.0, 4.5}, c.System.Orbit.Period)
	assert.Equal(t, []string{"b", "c"}, c.System.BodyNames())
	assert.Equal(t, harness.Tolerance{RTol: 1e-6}, c.Tol())
	assert.Equal(t, []int{1}, c.Sweep.Orders)
	assert.Len(t, c.SuiteSystem().Times, 50)
	assert.Equal(t, 3, c.Runner.Workers)
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "suite.toml", `
[system.central]
mass = 1.0
radius = 1.0

[system.orbit]
time_transit = [0.0]
period = [3.0]
impact_param = [0.1]
radius = [0.1]

[time_grid]
start = -0.5
end = 0.5
samples = 11
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.System.Central.Mass)
	assert.Equal(t, []float64{3.0}, c.System.Orbit.Period)
	assert.Nil(t, c.System.LimbDarkening)
	assert.Equal(t, []string{"body_0"}, c.System.BodyNames())
	assert.Len(t, c.SuiteSystem().Times, 11)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad timeout":  "runner: {timeout: soon}\n",
		"bad order":    "sweep: {orders: [5]}\n",
		"bad grid":     "time_grid: {start: 1, end: 0, samples: 10}\n",
		"bad tol":      "tolerance: {rtol: -1, atol: 0}\n",
		"bad physics":  "system:\n  central: {mass: -1, radius: 1}\n  orbit: {time_transit: [0], period: [1], impact_param: [0], radius: [0.1]}\n",
		"names length": "system:\n  central: {mass: 1, radius: 1}\n  orbit: {names: [a, b], time_transit: [0], period: [1], impact_param: [0], radius: [0.1]}\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "suite.yaml", body)
			_, err := Load(p)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMergeSystem(t *testing.T) {
	base := SystemFromSuite(suite.DefaultSystem())
	out := MergeSystem(base, SystemConfig{Central: CentralConfig{Radius: 1.2}, LimbDarkening: []float64{0.4}})
	assert.Equal(t, 0.98, out.Central.Mass)
	assert.Equal(t, 1.2, out.Central.Radius)
	assert.Equal(t, []float64{0.4}, out.LimbDarkening)
	assert.Equal(t, base.Orbit, out.Orbit)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("LC_CACHE_TTL", "30s")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("API_ENV", "Production")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.Production())
	assert.Equal(t, "examples/systems", cfg.SystemDir)
}

func TestLoadServerBadDuration(t *testing.T) {
	t.Setenv("LC_CACHE_TTL", "forever")
	_, err := LoadServer()
	assert.Error(t, err)
}

func TestExampleConfigsLoad(t *testing.T) {
	for _, name := range []string{"suite.yaml", "suite.toml"} {
		t.Run(name, func(t *testing.T) {
			c, err := Load(filepath.Join("..", "..", "examples", name))
			require.NoError(t, err)
			assert.NotEmpty(t, c.System.Name)
			assert.NoError(t, c.SuiteSystem().Validate())
		})
	}
}

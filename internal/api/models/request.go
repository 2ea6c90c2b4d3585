package models

import (
	"transit-lc/internal/config"
	"transit-lc/internal/harness"
)

// SystemSource selects the system to evaluate: a preset by ID, an inline
// system, or both (inline fields override the preset). Neither means the
// built-in two-planet default.
type SystemSource struct {
	SystemID string                 `json:"system_id,omitempty"`
	System   *config.SystemConfig   `json:"system,omitempty"`
	TimeGrid *config.TimeGridConfig `json:"time_grid,omitempty"`
}

// LightCurveRequest is the body of POST /api/v1/lightcurve.
type LightCurveRequest struct {
	SystemSource
	// Model is "quad", "limbdark", "uniform", or empty to pick by coefficient count.
	Model string `json:"model,omitempty"`
	// LimbDarkening overrides the system's coefficients when set.
	LimbDarkening  []float64 `json:"limb_darkening,omitempty"`
	IncludeSummary bool      `json:"include_summary,omitempty"`
}

// CheckRequest is the body of POST /api/v1/check.
type CheckRequest struct {
	SystemSource
	Tolerance *harness.Tolerance  `json:"tolerance,omitempty"`
	Sweep     *config.SweepConfig `json:"sweep,omitempty"`
	// SweepOnly skips the batched and idempotence scenarios.
	SweepOnly bool `json:"sweep_only,omitempty"`
}

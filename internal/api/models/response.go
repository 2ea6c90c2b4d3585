package models

import (
	"transit-lc/internal/analysis"
	"transit-lc/internal/config"
	"transit-lc/internal/report"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ModelInfo describes a light curve model variant
type ModelInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a model parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// SystemInfo describes a preset system file
type SystemInfo struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	File          string               `json:"file"`
	Central       config.CentralConfig `json:"central"`
	Bodies        []string             `json:"bodies"`
	LimbDarkening []float64            `json:"limb_darkening,omitempty"`
}

// LightCurveResponse carries relative flux, one row per body
type LightCurveResponse struct {
	ID        string                    `json:"id"`
	Model     string                    `json:"model"`
	Cached    bool                      `json:"cached"`
	Times     []float64                 `json:"times"`
	Bodies    []string                  `json:"bodies"`
	Flux      [][]float64               `json:"flux"`
	Summaries []analysis.TransitSummary `json:"summaries,omitempty"`
}

// CheckResponse is the outcome of a suite run
type CheckResponse struct {
	Status string `json:"status"` // "passed" or "failed"
	report.Summary
}

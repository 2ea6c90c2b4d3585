package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"transit-lc/internal/api/models"
	"transit-lc/internal/config"
	"transit-lc/internal/harness"

	"github.com/gin-gonic/gin"
)

// MaxSamples bounds the time grid a single request may ask for.
const MaxSamples = 100_000

// MaxSweepWork bounds orders x radii x samples for one request. The default
// grid at MaxSamples stays inside it.
const MaxSweepWork = 2_000_000

func abortError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// requestError is a failure that already knows its HTTP mapping.
type requestError struct {
	status int
	code   string
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func writeError(c *gin.Context, err error) {
	var rErr *requestError
	if errors.As(err, &rErr) {
		abortError(c, rErr.status, rErr.code, rErr.Error(), nil)
		return
	}
	kind := harness.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case harness.KindInvalidInput:
		status = http.StatusBadRequest
	case harness.KindInstability, harness.KindDivergence:
		status = http.StatusUnprocessableEntity
	case harness.KindTimeout:
		status = http.StatusGatewayTimeout
	case harness.KindCanceled:
		status = http.StatusServiceUnavailable
	}
	abortError(c, status, string(kind), err.Error(), nil)
}

// resolveConfig turns a request's system source into a validated config.
func resolveConfig(store *SystemStore, src models.SystemSource, tol *harness.Tolerance, sweep *config.SweepConfig) (*config.Config, error) {
	cfg := &config.Config{Tolerance: tol}
	if src.SystemID != "" {
		preset, err := store.Load(src.SystemID)
		if err != nil {
			if errors.Is(err, ErrSystemNotFound) {
				return nil, &requestError{status: http.StatusNotFound, code: "SYSTEM_NOT_FOUND", err: err}
			}
			return nil, &requestError{status: http.StatusBadRequest, code: "INVALID_SYSTEM", err: err}
		}
		cfg.System = preset
	}
	if src.System != nil {
		cfg.System = config.MergeSystem(cfg.System, *src.System)
	}
	if src.TimeGrid != nil {
		cfg.TimeGrid = *src.TimeGrid
	}
	if sweep != nil {
		cfg.Sweep = *sweep
	}
	cfg.ApplyDefaults()
	if cfg.TimeGrid.Samples > MaxSamples {
		return nil, &requestError{
			status: http.StatusBadRequest,
			code:   "INVALID_CONFIG",
			err:    fmt.Errorf("time_grid.samples %d exceeds limit %d", cfg.TimeGrid.Samples, MaxSamples),
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &requestError{status: http.StatusBadRequest, code: "INVALID_CONFIG", err: err}
	}
	if work := sweepWork(cfg); work > MaxSweepWork {
		return nil, &requestError{
			status: http.StatusBadRequest,
			code:   "INVALID_CONFIG",
			err:    fmt.Errorf("sweep evaluates %d samples, limit %d", work, MaxSweepWork),
		}
	}
	return cfg, nil
}

func sweepWork(cfg *config.Config) int {
	cases := len(cfg.Sweep.Orders) * len(cfg.Sweep.Radii)
	if cases > 0 && cfg.TimeGrid.Samples > MaxSweepWork/cases {
		return MaxSweepWork + 1
	}
	return cases * cfg.TimeGrid.Samples
}

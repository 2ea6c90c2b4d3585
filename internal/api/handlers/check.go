package handlers

import (
	"net/http"
	"time"

	"transit-lc/internal/api/models"
	"transit-lc/internal/config"
	"transit-lc/internal/harness"
	"transit-lc/internal/report"
	"transit-lc/internal/suite"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckHandler runs consistency suites
type CheckHandler struct {
	store  *SystemStore
	opts   harness.Options
	logger zerolog.Logger
}

func NewCheckHandler(store *SystemStore, opts harness.Options, logger zerolog.Logger) *CheckHandler {
	return &CheckHandler{store: store, opts: opts, logger: logger}
}

// Run handles POST /api/v1/check. It answers 200 when every scenario passed
// and 422 otherwise; the body is the full summary either way.
func (h *CheckHandler) Run(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	cfg, err := resolveConfig(h.store, req.SystemSource, req.Tolerance, req.Sweep)
	if err != nil {
		writeError(c, err)
		return
	}

	scenarios := buildScenarios(cfg, req.SweepOnly)
	runID := uuid.NewString()
	started := time.Now()
	logger := h.logger.With().Str("run_id", runID).Logger()

	summary := harness.NewRunner(h.opts, logger).Run(c.Request.Context(), scenarios)
	passed, failed := summary.Counts()
	logger.Info().
		Int("passed", passed).
		Int("failed", failed).
		Dur("elapsed", time.Since(started)).
		Msg("check run finished")

	resp := models.CheckResponse{
		Status:  "passed",
		Summary: report.NewSummary(runID, started, cfg.Tol(), summary),
	}
	status := http.StatusOK
	if !summary.Passed() {
		resp.Status = "failed"
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

func buildScenarios(cfg *config.Config, sweepOnly bool) []harness.Scenario {
	sys := cfg.SuiteSystem()
	if sweepOnly {
		return suite.Sweep(sys, cfg.Grid(), cfg.Tol())
	}
	return suite.Build(sys, cfg.Grid(), cfg.Tol())
}

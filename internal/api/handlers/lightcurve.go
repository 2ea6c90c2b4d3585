package handlers

import (
	"net/http"
	"strings"

	"transit-lc/internal/analysis"
	"transit-lc/internal/api/models"
	"transit-lc/internal/data"
	"transit-lc/internal/lightcurve"
	"transit-lc/internal/model"
	"transit-lc/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

// LightCurveHandler computes light curves
type LightCurveHandler struct {
	store  *SystemStore
	cache  *data.ResponseCache[models.LightCurveResponse]
	logger zerolog.Logger
}

// NewLightCurveHandler creates a handler; cache may be nil.
func NewLightCurveHandler(store *SystemStore, cache *data.ResponseCache[models.LightCurveResponse], logger zerolog.Logger) *LightCurveHandler {
	return &LightCurveHandler{store: store, cache: cache, logger: logger}
}

// Compute handles POST /api/v1/lightcurve
func (h *LightCurveHandler) Compute(c *gin.Context) {
	var req models.LightCurveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	key, err := data.GenerateCacheKey("lightcurve", req)
	if err != nil {
		writeError(c, err)
		return
	}
	cached, hit := h.cache.Get(key)
	if h.cache != nil {
		observability.RecordCacheLookup(hit)
	}
	if hit {
		cached.Cached = true
		h.logger.Debug().Str("id", cached.ID).Msg("light curve cache hit")
		c.JSON(http.StatusOK, cached)
		return
	}

	cfg, err := resolveConfig(h.store, req.SystemSource, nil, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	sys := cfg.SuiteSystem()

	u := sys.LimbDarkening
	if req.LimbDarkening != nil {
		u = req.LimbDarkening
	} else if strings.EqualFold(strings.TrimSpace(req.Model), lightcurve.NameUniform) {
		u = nil
	}
	lcModel, err := lightcurve.New(req.Model, u)
	if err != nil {
		writeError(c, err)
		return
	}

	orbit, err := model.NewOrbit(sys.Central, sys.Orbit)
	if err != nil {
		writeError(c, err)
		return
	}
	curve, err := lcModel.LightCurve(orbit, sys.Times)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := models.LightCurveResponse{
		ID:     uuid.NewString(),
		Model:  lcModel.Name(),
		Times:  sys.Times,
		Bodies: cfg.System.BodyNames(),
		Flux:   rows(curve),
	}
	if req.IncludeSummary {
		summaries, err := analysis.Summarize(orbit, sys.Times, curve)
		if err != nil {
			writeError(c, err)
			return
		}
		resp.Summaries = analysis.Named(summaries, resp.Bodies)
	}

	h.cache.Set(key, resp)
	h.logger.Info().
		Str("id", resp.ID).
		Str("model", resp.Model).
		Int("bodies", orbit.Len()).
		Int("samples", len(sys.Times)).
		Msg("light curve computed")
	c.JSON(http.StatusOK, resp)
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

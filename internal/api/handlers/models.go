package handlers

import (
	"net/http"

	"transit-lc/internal/api/models"
	"transit-lc/internal/lightcurve"

	"github.com/gin-gonic/gin"
)

// ModelHandler handles model-related requests
type ModelHandler struct{}

// NewModelHandler creates a new model handler
func NewModelHandler() *ModelHandler {
	return &ModelHandler{}
}

// ListModels handles GET /api/v1/models
func (h *ModelHandler) ListModels(c *gin.Context) {
	coeffs := []models.ParameterInfo{
		{
			Name:        "u1",
			Type:        "float",
			Description: "Linear limb-darkening coefficient",
			Default:     0.0,
		},
		{
			Name:        "u2",
			Type:        "float",
			Description: "Quadratic limb-darkening coefficient",
			Default:     0.0,
		},
	}
	out := []models.ModelInfo{
		{
			Name:        lightcurve.NameQuad,
			Description: "Analytic quadratic limb darkening (elliptic-integral closed form); missing coefficients are zero.",
			Parameters:  coeffs,
		},
		{
			Name:        lightcurve.NameLimbDark,
			Description: "Limb-darkening law integrated numerically over the occulted region, taking 0 to 2 coefficients as a list or fixed array.",
			Parameters:  coeffs,
		},
		{
			Name:        lightcurve.NameUniform,
			Description: "Uniform stellar disk from the closed-form overlap area, no limb darkening.",
			Parameters:  []models.ParameterInfo{},
		},
	}
	c.JSON(http.StatusOK, gin.H{"models": out, "max_order": lightcurve.MaxOrder})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/service/calculator"
)

// CalculationHandler exposes the calculators over JSON.
type CalculationHandler struct {
	svc    calculator.Calculator
	logger *zap.Logger
}

// NewCalculationHandler constructs the HTTP handler adapter.
func NewCalculationHandler(svc calculator.Calculator, logger *zap.Logger) *CalculationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalculationHandler{svc: svc, logger: logger}
}

// Dilution handles POST /api/v1/dilution.
func (h *CalculationHandler) Dilution(c *gin.Context) {
	var req models.DilutionRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.Dilution(req)
	h.respond(c, res, err)
}

// Molarity handles POST /api/v1/molarity.
func (h *CalculationHandler) Molarity(c *gin.Context) {
	var req models.MolarityRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.Molarity(req)
	h.respond(c, res, err)
}

// Reconstitution handles POST /api/v1/reconstitution.
func (h *CalculationHandler) Reconstitution(c *gin.Context) {
	var req models.ReconstitutionRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.Reconstitution(req)
	h.respond(c, res, err)
}

// MassVolume handles POST /api/v1/mass-volume.
func (h *CalculationHandler) MassVolume(c *gin.Context) {
	var req models.MassVolumeRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.MassVolume(req)
	h.respond(c, res, err)
}

// CellSeeding handles POST /api/v1/cell-seeding.
func (h *CalculationHandler) CellSeeding(c *gin.Context) {
	var req models.CellSeedingRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.CellSeeding(req)
	h.respond(c, res, err)
}

// PlateSeeding handles POST /api/v1/plate-seeding.
func (h *CalculationHandler) PlateSeeding(c *gin.Context) {
	var req models.PlateSeedingRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.PlateSeeding(req)
	h.respond(c, res, err)
}

// SerialDose handles POST /api/v1/serial-dose.
func (h *CalculationHandler) SerialDose(c *gin.Context) {
	var req models.SerialDoseRequest
	if !h.bind(c, &req) {
		return
	}
	plan, err := h.svc.SerialDose(req)
	h.respond(c, plan, err)
}

// SerialDilution handles POST /api/v1/serial-dilution.
func (h *CalculationHandler) SerialDilution(c *gin.Context) {
	var req models.SerialDilutionRequest
	if !h.bind(c, &req) {
		return
	}
	plan, err := h.svc.SerialDilution(req)
	h.respond(c, plan, err)
}

// Units lists the accepted unit tables.
func (h *CalculationHandler) Units(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": h.svc.Units()})
}

// Plates lists the plate presets.
func (h *CalculationHandler) Plates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plates": h.svc.Plates()})
}

func (h *CalculationHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid calculation payload", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// respond writes the result, or maps a calculation error to 422.
func (h *CalculationHandler) respond(c *gin.Context, result any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}

	var calcErr *models.CalcError
	if errors.As(err, &calcErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": calcErr.Message,
			"kind":  calcErr.KindName(),
			"field": calcErr.Field,
		})
		return
	}

	h.logger.Error("calculation failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "calculation failed"})
}

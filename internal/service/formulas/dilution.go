// Package formulas holds the closed-form single-step solvers: simple dilution,
// the molarity triangle, reconstitution and the mass/volume/concentration triangle.
//
// Every Solve function validates its inputs in a fixed order and returns the
// first failure unchanged.
package formulas

import (
	"math"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/units"
)

// SolveDilution applies C1V1 = C2V2 to parsed values. finalVolumeL is in liters.
func SolveDilution(stock, target models.Concentration, finalVolumeL float64) (models.DilutionResult, error) {
	if stock.Kind != target.Kind {
		return models.DilutionResult{}, models.DomainErrorf("Stock and final concentration must be of the same type (e.g., both molar, both mass/vol, or both activity).")
	}
	if stock.Value < target.Value {
		return models.DilutionResult{}, models.DomainErrorf("Stock concentration cannot be less than the final concentration.")
	}
	if stock.Value == 0 {
		return models.DilutionResult{}, models.DomainErrorf("Stock concentration cannot be zero.")
	}
	if !(finalVolumeL > 0) {
		return models.DilutionResult{}, models.DomainErrorf("Final volume must be > 0.")
	}
	if !finite(finalVolumeL) || !finite(stock.Value) || !finite(target.Value) || target.Value < 0 {
		return models.DilutionResult{}, invalidResult()
	}

	take := (target.Value * finalVolumeL) / stock.Value
	if !finite(take) {
		return models.DilutionResult{}, invalidResult()
	}
	return models.DilutionResult{
		Take:  models.VolumeFromLiters(take),
		Add:   models.VolumeFromLiters(finalVolumeL - take),
		Final: models.VolumeFromLiters(finalVolumeL),
	}, nil
}

// Dilution parses a raw dilution request and solves it.
func Dilution(req models.DilutionRequest) (models.DilutionResult, error) {
	stock, err := units.ParseConcentration(req.Stock.Value, req.Stock.Unit)
	if err != nil {
		return models.DilutionResult{}, models.WithField(err, "stock")
	}
	final, err := units.ParseConcentration(req.Final.Value, req.Final.Unit)
	if err != nil {
		return models.DilutionResult{}, models.WithField(err, "final")
	}
	volume, err := units.ToBase(req.FinalVolume.Value, req.FinalVolume.Unit, units.Volume, "volume")
	if err != nil {
		return models.DilutionResult{}, models.WithField(err, "final_volume")
	}
	return SolveDilution(stock, final, volume)
}

// finite also rejects values whose µL or mg reading would overflow.
func finite(v float64) bool {
	scaled := v * 1e6
	return !math.IsInf(scaled, 0) && !math.IsNaN(scaled)
}

// positiveFinite guards every computed output.
func positiveFinite(v float64) bool {
	return v > 0 && finite(v)
}

func invalidResult() error {
	return models.DomainErrorf("Calculation resulted in an invalid result. Please check inputs.")
}

func unknownSelector(selector string) error {
	return models.DomainErrorf("Unknown solve-for selector: %s", selector)
}

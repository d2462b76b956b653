// Package seeding scales C1V1 dilution math to cell suspensions and plates.
package seeding

import (
	"math"
	"strings"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/units"
	"github.com/mamadbah2/labcalc/pkg/format"
)

// overheadFactor is the 10% extra master mix prepared to cover pipetting loss.
const overheadFactor = 1.1

// Cells dilutes a cell stock (cells/mL) to a final concentration in a final volume (mL).
func Cells(req models.CellSeedingRequest) (models.CellSeedingResult, error) {
	stock, err := units.ParseNumber(req.StockConcentration)
	if err != nil {
		return models.CellSeedingResult{}, models.WithField(err, "stock_concentration")
	}
	final, err := units.ParseNumber(req.FinalConcentration)
	if err != nil {
		return models.CellSeedingResult{}, models.WithField(err, "final_concentration")
	}
	volume, err := units.ParseNumber(req.FinalVolumeML)
	if err != nil {
		return models.CellSeedingResult{}, models.WithField(err, "final_volume_ml")
	}

	if stock <= 0 || final < 0 || volume <= 0 {
		return models.CellSeedingResult{}, models.DomainErrorf("Concentrations and volumes must be positive numbers.")
	}
	if stock < final {
		return models.CellSeedingResult{}, models.DomainErrorf("Stock concentration cannot be less than final concentration.")
	}

	stockML := (final * volume) / stock
	if !allFinite(stockML*1000, volume, final*volume) {
		return models.CellSeedingResult{}, invalidResult()
	}
	return models.CellSeedingResult{
		StockML:       stockML,
		StockUL:       stockML * 1000,
		MediaML:       volume - stockML,
		FinalVolumeML: volume,
		TotalCells:    final * volume,
	}, nil
}

// Plate computes a master mix for seeding req.Wells wells at a density in cells/cm².
func Plate(req models.PlateSeedingRequest, presets *Presets) (models.PlateSeedingResult, error) {
	if presets == nil {
		presets = DefaultPresets()
	}

	wells, err := units.ParseNumber(req.Wells)
	if err != nil || wells <= 0 || wells != math.Trunc(wells) {
		return models.PlateSeedingResult{}, fieldError("Please enter a valid number of wells.", "wells")
	}
	density, err := units.ParseNumber(req.SeedingDensity)
	if err != nil || density <= 0 {
		return models.PlateSeedingResult{}, fieldError("Please enter a valid seeding density.", "seeding_density")
	}
	stock, err := units.ParseNumber(req.StockConcentration)
	if err != nil || stock <= 0 {
		return models.PlateSeedingResult{}, fieldError("Please enter a valid stock concentration.", "stock_concentration")
	}

	plateType := strings.TrimSpace(req.PlateType)
	var area, mediaML float64
	if plateType == CustomPlate {
		area, err = units.ParseNumber(req.CustomSurfaceArea)
		if err != nil || area <= 0 {
			return models.PlateSeedingResult{}, fieldError("Please enter a valid custom surface area.", "custom_surface_area_cm2")
		}
		mediaUL, err := units.ParseNumber(req.CustomMediaVolumeUL)
		if err != nil || mediaUL <= 0 {
			return models.PlateSeedingResult{}, fieldError("Please enter a valid custom media volume.", "custom_media_volume_ul")
		}
		mediaML = mediaUL / 1000
	} else {
		preset, ok := presets.Lookup(plateType)
		if !ok {
			return models.PlateSeedingResult{}, models.WithField(models.DomainErrorf("Unknown plate type: %s", plateType), "plate_type")
		}
		area, mediaML = preset.SurfaceAreaCM2, preset.MediaVolumeML
	}

	if strings.TrimSpace(req.WellVolumeML) != "" {
		override, err := units.ParseNumber(req.WellVolumeML)
		if err != nil || override <= 0 {
			return models.PlateSeedingResult{}, fieldError("Please enter a valid well volume.", "well_volume_ml")
		}
		mediaML = override
	}

	totalCells := density * area * wells
	finalConc := totalCells / (mediaML * wells)
	if wells > math.MaxInt32 || !allFinite(totalCells, finalConc) {
		return models.PlateSeedingResult{}, invalidResult()
	}
	if stock < finalConc {
		return models.PlateSeedingResult{}, models.DomainErrorf(
			"Stock concentration (%s cells/mL) is too low for the desired final concentration (%s cells/mL).",
			format.Number(stock), format.Number(finalConc))
	}

	// The epsilon keeps 10 wells at 11 instead of ceil(11.000000000000002).
	overheadWells := int(math.Ceil(wells*overheadFactor - 1e-9))
	masterMixML := mediaML * float64(overheadWells)
	stockML := (finalConc * masterMixML) / stock
	if !allFinite(masterMixML, stockML*1000) {
		return models.PlateSeedingResult{}, invalidResult()
	}

	return models.PlateSeedingResult{
		PlateType:      plateType,
		Wells:          int(wells),
		OverheadWells:  overheadWells,
		ExtraWells:     overheadWells - int(wells),
		SeedingDensity: density,
		SurfaceAreaCM2: area,
		MediaPerWellML: mediaML,
		TotalCells:     totalCells,
		FinalCellConc:  finalConc,
		MasterMixML:    masterMixML,
		StockML:        stockML,
		StockUL:        stockML * 1000,
		MediaML:        masterMixML - stockML,
	}, nil
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func invalidResult() error {
	return models.DomainErrorf("Calculation resulted in an invalid result. Please check inputs.")
}

func fieldError(message, field string) error {
	return models.WithField(models.DomainErrorf("%s", message), field)
}

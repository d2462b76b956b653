package planner

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mamadbah2/labcalc/internal/domain/models"
)

// MaxDoseSteps bounds the intermediate search of the dose mode.
const MaxDoseSteps = 10

// DoseParams asks for FinalMassG of compound in FinalVolumeUL, preparing any
// intermediate stocks in tubes of IntermediateVolumeUL.
type DoseParams struct {
	FinalMassG           float64
	FinalVolumeUL        float64
	IntermediateVolumeUL float64
}

func (DoseParams) Mode() models.PlanMode { return models.ModeDose }

// dose dilutes directly when the stock volume is pipettable, and otherwise
// walks down through intermediate stocks until the final take reaches the
// minimum pipetting volume.
func (b *builder) dose(p DoseParams) error {
	stock, err := b.doseStock()
	if err != nil {
		return err
	}

	minUL := b.cfg.MinPipetteUL
	switch {
	case !(p.FinalMassG > 0) || math.IsInf(p.FinalMassG, 0):
		return models.WithField(models.DomainErrorf("Final mass must be > 0."), "final_mass")
	case !(p.FinalVolumeUL > 0) || math.IsInf(p.FinalVolumeUL, 0):
		return models.WithField(models.DomainErrorf("Final volume must be > 0."), "final_volume")
	case !(p.IntermediateVolumeUL > minUL) || math.IsInf(p.IntermediateVolumeUL, 0):
		return models.WithField(models.DomainErrorf("Intermediate Volume must be > Min. Pipetting Volume."), "intermediate_volume_ul")
	}

	// mg / mL, numerically equal to g/L.
	target := (p.FinalMassG * 1000) / (p.FinalVolumeUL / 1000)
	if stock < target {
		return models.WithField(models.DomainErrorf("Stock Concentration cannot be less than the required Final Concentration."), "stock")
	}
	final := massPerVolume(target)

	if direct := target / stock * p.FinalVolumeUL; direct >= minUL {
		b.addStep("1", "stock", direct, p.FinalVolumeUL, final).Final = true
		b.plan.Rationale = "A direct dilution is the most efficient method."
		return nil
	}

	current := stock
	maxFactor := p.IntermediateVolumeUL / minUL
	for step := 1; step <= MaxDoseSteps; step++ {
		source := "stock"
		if step > 1 {
			source = fmt.Sprintf("intermediate #%d", step-1)
		}

		needed := target * p.FinalVolumeUL / minUL
		if current <= needed {
			take := target * p.FinalVolumeUL / current
			b.addStep(strconv.Itoa(step), source, take, p.FinalVolumeUL, final).Final = true
			b.plan.Rationale = "A direct dilution is not practical. The following serial dilution is recommended."
			return nil
		}

		factor := snapFactor(math.Min(maxFactor, math.Ceil(current/needed)))
		next := current / factor
		b.addStep(strconv.Itoa(step), source, p.IntermediateVolumeUL/factor, p.IntermediateVolumeUL, massPerVolume(next))
		current = next
	}

	return models.PlanningErrorf("Cannot find a practical dilution protocol within %d steps. Your stock may be too concentrated or your constraints too strict.", MaxDoseSteps)
}

// doseStock returns the stock in mg/mL, converting a molar stock through MW.
func (b *builder) doseStock() (float64, error) {
	src := b.stock.Concentration
	if !(src.Value > 0) || math.IsInf(src.Value, 0) {
		return 0, models.WithField(models.DomainErrorf("Invalid Stock Concentration."), "stock")
	}
	switch src.Kind {
	case models.KindMassPerVolume:
		return src.Value, nil
	case models.KindMolar:
		converted, err := b.convert(src, models.KindMassPerVolume)
		if err != nil {
			return 0, models.WithField(err, "stock")
		}
		return converted.Value, nil
	default:
		return 0, models.WithField(models.DomainErrorf("Dose planning needs a mass/vol or molar stock concentration."), "stock")
	}
}

// snapFactor rounds a dilution factor to 10 or 100 when it is close enough.
func snapFactor(f float64) float64 {
	if math.Abs(f-10) < 0.5 {
		f = 10
	}
	if math.Abs(f-100) < 5 {
		f = 100
	}
	return f
}

func massPerVolume(v float64) models.Concentration {
	return models.Concentration{Kind: models.KindMassPerVolume, Value: v}
}

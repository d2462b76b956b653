package formulas

import (
	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/units"
)

// Reconstitution returns the solvent volume that brings a dry mass to the
// requested concentration. Molar targets need the molecular weight.
func Reconstitution(req models.ReconstitutionRequest) (models.ReconstitutionResult, error) {
	mass, err := units.ToBase(req.Mass.Value, req.Mass.Unit, units.Mass, "mass")
	if err != nil {
		return models.ReconstitutionResult{}, models.WithField(err, "mass")
	}
	conc, err := units.ParseConcentration(req.Concentration.Value, req.Concentration.Unit)
	if err != nil {
		return models.ReconstitutionResult{}, models.WithField(err, "concentration")
	}

	var volL float64
	switch conc.Kind {
	case models.KindMolar:
		mw, err := units.ParseNumber(req.MolecularWeight)
		if err != nil || mw <= 0 {
			return models.ReconstitutionResult{}, models.WithField(
				models.DomainErrorf("Molecular Weight (MW) is required for molar calculations."), "molecular_weight")
		}
		volL = (mass / mw) / conc.Value
	case models.KindRatio:
		return models.ReconstitutionResult{}, models.WithField(
			models.DomainErrorf("An X-factor cannot be used as a reconstitution concentration."), "concentration")
	default:
		volL = mass / conc.Value
	}

	if !positiveFinite(volL) {
		return models.ReconstitutionResult{}, models.DomainErrorf("Calculation resulted in an invalid volume. Please check inputs.")
	}
	return models.ReconstitutionResult{Solvent: models.VolumeFromLiters(volL)}, nil
}

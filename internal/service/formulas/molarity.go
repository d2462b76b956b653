package formulas

import (
	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/units"
)

// Solve-for selectors.
const (
	SolveMass          = "mass"
	SolveVolume        = "volume"
	SolveMolarity      = "molarity"
	SolveConcentration = "concentration"
)

// Molarity solves mass = molarity x volume x MW for req.SolveFor.
func Molarity(req models.MolarityRequest) (models.MolarityResult, error) {
	out := models.MolarityResult{SolveFor: req.SolveFor}

	mw, err := units.ParseNumber(req.MolecularWeight)
	if err != nil || mw <= 0 {
		e := models.DomainErrorf("Molecular Weight (MW) must be a positive number.")
		if err != nil {
			e = models.ParseErrorf("Molecular Weight (MW) must be a positive number.")
		}
		return out, models.WithField(e, "molecular_weight")
	}

	mass := func() (float64, error) {
		v, err := units.ToBase(req.Mass.Value, req.Mass.Unit, units.Mass, "mass")
		return v, models.WithField(err, "mass")
	}
	volume := func() (float64, error) {
		v, err := units.ToBase(req.Volume.Value, req.Volume.Unit, units.Volume, "volume")
		return v, models.WithField(err, "volume")
	}
	molarity := func() (float64, error) {
		v, err := units.ToBase(req.Molarity.Value, req.Molarity.Unit, units.Molar, "molarity")
		return v, models.WithField(err, "molarity")
	}

	switch req.SolveFor {
	case SolveMass:
		vol, err := volume()
		if err != nil {
			return out, err
		}
		m, err := molarity()
		if err != nil {
			return out, err
		}
		grams := m * vol * mw
		if !positiveFinite(grams) {
			return out, invalidResult()
		}
		reading := models.MassFromGrams(grams)
		out.Mass = &reading
	case SolveVolume:
		g, err := mass()
		if err != nil {
			return out, err
		}
		m, err := molarity()
		if err != nil {
			return out, err
		}
		volL := g / (m * mw)
		if !positiveFinite(volL) {
			return out, invalidResult()
		}
		reading := models.VolumeFromLiters(volL)
		out.Volume = &reading
	case SolveMolarity:
		g, err := mass()
		if err != nil {
			return out, err
		}
		vol, err := volume()
		if err != nil {
			return out, err
		}
		molar := g / (vol * mw)
		if !positiveFinite(molar) {
			return out, invalidResult()
		}
		reading := models.MolarityFromMolar(molar)
		out.Molarity = &reading
	default:
		return out, unknownSelector(req.SolveFor)
	}
	return out, nil
}

package formulas

import (
	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/units"
)

// MassVolume solves mass = concentration x volume for req.SolveFor, with the
// concentration in mass/volume units.
func MassVolume(req models.MassVolumeRequest) (models.MassVolumeResult, error) {
	out := models.MassVolumeResult{SolveFor: req.SolveFor}

	mass := func() (float64, error) {
		v, err := units.ToBase(req.Mass.Value, req.Mass.Unit, units.Mass, "mass")
		return v, models.WithField(err, "mass")
	}
	volume := func() (float64, error) {
		v, err := units.ToBase(req.Volume.Value, req.Volume.Unit, units.Volume, "volume")
		return v, models.WithField(err, "volume")
	}
	concentration := func() (float64, error) {
		v, err := units.ToBase(req.Concentration.Value, req.Concentration.Unit, units.MassPerVolume, "concentration")
		return v, models.WithField(err, "concentration")
	}

	switch req.SolveFor {
	case SolveMass:
		vol, err := volume()
		if err != nil {
			return out, err
		}
		conc, err := concentration()
		if err != nil {
			return out, err
		}
		grams := conc * vol
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
		conc, err := concentration()
		if err != nil {
			return out, err
		}
		volL := g / conc
		if !positiveFinite(volL) {
			return out, invalidResult()
		}
		reading := models.VolumeFromLiters(volL)
		out.Volume = &reading
	case SolveConcentration:
		g, err := mass()
		if err != nil {
			return out, err
		}
		vol, err := volume()
		if err != nil {
			return out, err
		}
		gl := g / vol
		if !positiveFinite(gl) {
			return out, invalidResult()
		}
		reading := models.MassConcentrationFromGL(gl)
		out.Concentration = &reading
	default:
		return out, unknownSelector(req.SolveFor)
	}
	return out, nil
}

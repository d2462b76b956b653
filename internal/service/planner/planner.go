// Package planner builds multi-step serial dilution protocols.
//
// Every mode works on concentrations already expressed in a kind's base unit and
// volumes in mL (µL for the dose mode). Plans are returned as fresh values; the
// planner holds no state between calls.
package planner

import (
	"fmt"
	"math"

	"github.com/mamadbah2/labcalc/internal/domain/models"
)

const (
	// MaxSeriesSteps caps the tube count of a factor series.
	MaxSeriesSteps = 1000

	// volumeScale rounds step volumes to 1e-9 µL.
	volumeScale = 1e9
)

// Stock is the source solution a plan starts from.
type Stock struct {
	Concentration   models.Concentration
	MolecularWeight float64 // g/mol, zero when unknown
}

// Config holds the pipetting constraints applied to every plan.
type Config struct {
	OveragePercent   float64
	MinPipetteUL     float64
	MaxPipetteUL     float64
	PreferredFactors []float64
}

// DefaultConfig returns the bench defaults: no overage, a 2-1000 µL pipetting
// range and 10×, 5×, 4×, 3×, 2× as preferred dilution factors.
func DefaultConfig() Config {
	return Config{
		OveragePercent:   0,
		MinPipetteUL:     2,
		MaxPipetteUL:     1000,
		PreferredFactors: []float64{10, 5, 4, 3, 2},
	}
}

// withDefaults fills zero fields from DefaultConfig and validates the result.
func (c Config) withDefaults() (Config, error) {
	def := DefaultConfig()
	if c.MinPipetteUL == 0 {
		c.MinPipetteUL = def.MinPipetteUL
	}
	if c.MaxPipetteUL == 0 {
		c.MaxPipetteUL = def.MaxPipetteUL
	}
	if len(c.PreferredFactors) == 0 {
		c.PreferredFactors = def.PreferredFactors
	}

	switch {
	case c.OveragePercent < 0 || math.IsNaN(c.OveragePercent) || math.IsInf(c.OveragePercent, 0):
		return c, models.WithField(models.DomainErrorf("Overage must be a non-negative percentage."), "overage_percent")
	case !(c.MinPipetteUL > 0) || math.IsInf(c.MinPipetteUL, 0):
		return c, models.WithField(models.DomainErrorf("Min. Pipetting Volume must be > 0."), "min_pipette_ul")
	case !(c.MaxPipetteUL >= c.MinPipetteUL) || math.IsInf(c.MaxPipetteUL, 0):
		return c, models.WithField(models.DomainErrorf("Max. Pipetting Volume must be >= Min. Pipetting Volume."), "max_pipette_ul")
	}
	for _, f := range c.PreferredFactors {
		if !(f > 1) || math.IsInf(f, 0) {
			return c, models.WithField(models.DomainErrorf("Preferred factors must be greater than 1."), "preferred_factors")
		}
	}
	return c, nil
}

// Params selects a planning mode and carries its inputs.
type Params interface {
	Mode() models.PlanMode
}

// Plan computes a dilution protocol from stock for the mode selected by params.
// Out-of-range pipetting volumes are reported as plan warnings, not errors.
func Plan(stock Stock, params Params, cfg Config) (models.DilutionPlan, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return models.DilutionPlan{}, err
	}

	b := &builder{stock: stock, cfg: cfg}
	switch p := params.(type) {
	case SingleParams:
		err = b.single(p)
	case TwoStageParams:
		err = b.twoStage(p)
	case SeriesListParams:
		err = b.seriesList(p)
	case SeriesFactorParams:
		err = b.seriesFactor(p)
	case DoseParams:
		err = b.dose(p)
	case nil:
		err = models.PlanningErrorf("Unknown mode.")
	default:
		err = models.PlanningErrorf("Unknown mode: %s", p.Mode())
	}
	if err != nil {
		return models.DilutionPlan{}, err
	}
	if len(b.plan.Steps) == 0 {
		return models.DilutionPlan{}, models.PlanningErrorf("No steps generated.")
	}

	b.plan.Mode = params.Mode()
	b.applyOverage()
	if err := b.checkVolumes(); err != nil {
		return models.DilutionPlan{}, err
	}
	b.checkPipetting()
	return b.plan, nil
}

// builder accumulates the steps and annotations of one plan.
type builder struct {
	stock Stock
	cfg   Config
	plan  models.DilutionPlan
}

func (b *builder) note(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	for _, existing := range b.plan.Notes {
		if existing == msg {
			return
		}
	}
	b.plan.Notes = append(b.plan.Notes, msg)
}

func (b *builder) warn(format string, args ...any) {
	b.plan.Warnings = append(b.plan.Warnings, fmt.Sprintf(format, args...))
}

// addStep appends a C1V1 step taking takeUL from source into resultUL total.
func (b *builder) addStep(label, source string, takeUL, resultUL float64, result models.Concentration) *models.DilutionStep {
	b.plan.Steps = append(b.plan.Steps, models.DilutionStep{
		Index:    len(b.plan.Steps) + 1,
		Label:    label,
		Source:   source,
		TakeUL:   takeUL,
		AddUL:    resultUL - takeUL,
		ResultUL: resultUL,
		Result:   result,
	})
	return &b.plan.Steps[len(b.plan.Steps)-1]
}

// convert re-expresses c in kind through the stock's molecular weight.
func (b *builder) convert(c models.Concentration, kind models.ConcentrationKind) (models.Concentration, error) {
	out, err := c.Convert(kind, b.stock.MolecularWeight)
	if err != nil {
		if b.stock.MolecularWeight <= 0 {
			err = models.WithField(err, "molecular_weight")
		}
		return models.Concentration{}, err
	}
	switch {
	case c.Kind == models.KindMassPerVolume && kind == models.KindMolar:
		b.note("M = (g/L) / MW; MW = %g g/mol used.", b.stock.MolecularWeight)
	case c.Kind == models.KindMolar && kind == models.KindMassPerVolume:
		b.note("g/L = M × MW; MW = %g g/mol used.", b.stock.MolecularWeight)
	}
	return out, nil
}

// applyOverage scales every step by 1 + overage/100 and rounds volumes.
// Concentrations are unchanged because take and add scale together.
func (b *builder) applyOverage() {
	scale := 1 + b.cfg.OveragePercent/100
	for i := range b.plan.Steps {
		s := &b.plan.Steps[i]
		s.TakeUL = roundVolume(s.TakeUL * scale)
		s.ResultUL = roundVolume(s.ResultUL * scale)
		s.AddUL = roundVolume(s.ResultUL - s.TakeUL)
		s.Pipette = PipetteFor(s.TakeUL)
	}
}

// checkVolumes rejects plans whose volumes or concentrations overflowed or
// went negative.
func (b *builder) checkVolumes() error {
	for _, s := range b.plan.Steps {
		bad := s.TakeUL < 0 || !(s.ResultUL > 0)
		for _, v := range []float64{s.TakeUL, s.AddUL, s.ResultUL, s.Result.Value} {
			bad = bad || math.IsInf(v, 0) || math.IsNaN(v)
		}
		if bad {
			return models.DomainErrorf("Calculation resulted in an invalid result at step %s. Please check inputs.", s.Label)
		}
	}
	return nil
}

func roundVolume(ul float64) float64 {
	return math.Round(ul*volumeScale) / volumeScale
}

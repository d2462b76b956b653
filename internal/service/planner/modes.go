package planner

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/units"
	"github.com/mamadbah2/labcalc/pkg/format"
)

// SingleParams dilutes the stock straight to Target in FinalVolumeML.
type SingleParams struct {
	Target        models.Concentration
	FinalVolumeML float64
}

// TwoStageParams prepares an explicit intermediate first, then dilutes it to Target.
type TwoStageParams struct {
	Intermediate         models.Concentration
	IntermediateVolumeML float64
	Target               models.Concentration
	FinalVolumeML        float64
}

// SeriesListParams prepares one tube per target, each straight from the stock.
// Targets are raw entries in Unit; bad entries are skipped with a note.
type SeriesListParams struct {
	Targets  []string
	Unit     string
	VolumeML float64
}

// SeriesFactorParams cascades Steps tubes, each Factor times weaker than the last.
// Steps is rounded to the nearest integer.
type SeriesFactorParams struct {
	Factor   float64
	Steps    float64
	VolumeML float64
}

func (SingleParams) Mode() models.PlanMode       { return models.ModeSingle }
func (TwoStageParams) Mode() models.PlanMode     { return models.ModeTwoStage }
func (SeriesListParams) Mode() models.PlanMode   { return models.ModeSeriesList }
func (SeriesFactorParams) Mode() models.PlanMode { return models.ModeSeriesFactor }

func (b *builder) requireSource() error {
	if !(b.stock.Concentration.Value > 0) || math.IsInf(b.stock.Concentration.Value, 0) {
		return models.WithField(models.DomainErrorf("Source concentration must be > 0."), "source")
	}
	return nil
}

func (b *builder) single(p SingleParams) error {
	if err := b.requireSource(); err != nil {
		return err
	}
	src := b.stock.Concentration

	target, err := b.convert(p.Target, src.Kind)
	if err != nil {
		return models.WithField(err, "target")
	}
	if target.Value > src.Value {
		return models.WithField(models.DomainErrorf("Target concentration exceeds source concentration."), "target")
	}
	if !(p.FinalVolumeML > 0) {
		return models.WithField(models.DomainErrorf("Final volume must be > 0."), "final_volume_ml")
	}

	finalUL := p.FinalVolumeML * 1000
	b.addStep("1", "stock", target.Value*finalUL/src.Value, finalUL, p.Target)
	b.plan.Rationale = fmt.Sprintf("Using C1V1=C2V2 with overage %g%% to account for losses.", b.cfg.OveragePercent)
	return nil
}

func (b *builder) twoStage(p TwoStageParams) error {
	if err := b.requireSource(); err != nil {
		return err
	}
	src := b.stock.Concentration

	inter, err := b.convert(p.Intermediate, src.Kind)
	if err != nil {
		return models.WithField(err, "intermediate")
	}
	switch {
	case inter.Value > src.Value:
		return models.WithField(models.DomainErrorf("Intermediate concentration exceeds source."), "intermediate")
	case !(inter.Value > 0):
		return models.WithField(models.DomainErrorf("Intermediate concentration must be > 0."), "intermediate")
	case !(p.IntermediateVolumeML > 0):
		return models.WithField(models.DomainErrorf("Intermediate volume must be > 0."), "intermediate_volume_ml")
	}

	target, err := b.convert(p.Target, src.Kind)
	if err != nil {
		return models.WithField(err, "second_target")
	}
	if target.Value > inter.Value {
		return models.WithField(models.DomainErrorf("Final concentration exceeds intermediate."), "second_target")
	}
	if !(p.FinalVolumeML > 0) {
		return models.WithField(models.DomainErrorf("Final volume must be > 0."), "second_volume_ml")
	}

	interUL := p.IntermediateVolumeML * 1000
	finalUL := p.FinalVolumeML * 1000
	takeA := inter.Value * interUL / src.Value
	takeB := target.Value * finalUL / inter.Value
	b.addStep("A", "stock", takeA, interUL, p.Intermediate)
	b.addStep("B", "intermediate", takeB, finalUL, p.Target)

	if takeB > interUL {
		b.note("Step B needs %s µL of intermediate but step A prepares only %s µL.", format.Dose(takeB), format.Dose(interUL))
	}
	b.plan.Rationale = "Two-step plan using explicit intermediate concentration."
	return nil
}

func (b *builder) seriesList(p SeriesListParams) error {
	var entries []string
	for _, raw := range p.Targets {
		if raw = strings.TrimSpace(raw); raw != "" {
			entries = append(entries, raw)
		}
	}
	if len(entries) == 0 {
		return models.WithField(models.DomainErrorf("Provide at least one target concentration."), "series_values")
	}
	if !(p.VolumeML > 0) {
		return models.WithField(models.DomainErrorf("Volume per tube must be > 0."), "series_volume_ml")
	}
	if err := b.requireSource(); err != nil {
		return err
	}
	src := b.stock.Concentration

	// The unit is shared by every entry, so a bad unit fails the whole plan.
	probe, err := units.ParseConcentration("1", p.Unit)
	if err != nil {
		return models.WithField(err, "series_unit")
	}
	if _, err := b.convert(probe, src.Kind); err != nil {
		return models.WithField(err, "series_unit")
	}

	tubeUL := p.VolumeML * 1000
	var skipped []string
	for i, raw := range entries {
		value, err := units.ParseNumber(raw)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("Target %q is not a number; skipped.", raw))
			continue
		}
		if !(value > 0) {
			skipped = append(skipped, fmt.Sprintf("Target %s %s is not positive; skipped.", raw, p.Unit))
			continue
		}
		requested, err := units.ParseConcentration(raw, p.Unit)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("Target %s %s: %s; skipped.", raw, p.Unit, err))
			continue
		}
		target, err := b.convert(requested, src.Kind)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("Target %s %s: %s; skipped.", raw, p.Unit, err))
			continue
		}
		if target.Value > src.Value {
			skipped = append(skipped, fmt.Sprintf("Target %s %s > source; skipped.", raw, p.Unit))
			continue
		}
		b.addStep(strconv.Itoa(i+1), "stock", target.Value*tubeUL/src.Value, tubeUL, requested)
	}

	if len(b.plan.Steps) == 0 {
		return models.PlanningErrorf("No steps generated: %s", strings.Join(skipped, " "))
	}
	for _, msg := range skipped {
		b.note("%s", msg)
	}
	b.plan.Rationale = fmt.Sprintf("Independent tubes computed by C1V1=C2V2 with %g%% overage.", b.cfg.OveragePercent)
	return nil
}

func (b *builder) seriesFactor(p SeriesFactorParams) error {
	factor, steps, volumeML := p.Factor, math.Round(p.Steps), p.VolumeML
	if !(factor > 1) || !(steps >= 1) || !(volumeML > 0) || math.IsInf(factor, 0) || math.IsInf(volumeML, 0) {
		return models.DomainErrorf("Provide factor > 1, steps ≥ 1, volume > 0.")
	}
	if steps > MaxSeriesSteps {
		return models.WithField(models.DomainErrorf("Steps must be at most %d.", MaxSeriesSteps), "steps")
	}
	if err := b.requireSource(); err != nil {
		return err
	}
	src := b.stock.Concentration

	tubeUL := volumeML * 1000
	prev := src.Value
	for i := 1; i <= int(steps); i++ {
		target := prev / factor
		source := "stock"
		if i > 1 {
			source = fmt.Sprintf("tube %d", i-1)
		}
		b.addStep(strconv.Itoa(i), source, target*tubeUL/prev, tubeUL, models.Concentration{Kind: src.Kind, Value: target})
		prev = target
	}
	b.plan.Rationale = fmt.Sprintf("Cascaded %g× serial dilution over %d steps.", factor, int(steps))
	return nil
}

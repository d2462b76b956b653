package planner_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/service/planner"
)

var planOpts = []cmp.Option{
	cmpopts.EquateApprox(0, 1e-9),
	cmpopts.EquateEmpty(),
}

func molar(v float64) models.Concentration {
	return models.Concentration{Kind: models.KindMolar, Value: v}
}

func massVol(v float64) models.Concentration {
	return models.Concentration{Kind: models.KindMassPerVolume, Value: v}
}

func TestPlan_SeriesFactor(t *testing.T) {
	plan, err := planner.Plan(
		planner.Stock{Concentration: molar(1)},
		planner.SeriesFactorParams{Factor: 10, Steps: 3, VolumeML: 1},
		planner.Config{},
	)
	require.NoError(t, err)

	want := models.DilutionPlan{
		Mode: models.ModeSeriesFactor,
		Steps: []models.DilutionStep{
			{Index: 1, Label: "1", Source: "stock", TakeUL: 100, AddUL: 900, ResultUL: 1000, Result: molar(0.1), Pipette: "P200"},
			{Index: 2, Label: "2", Source: "tube 1", TakeUL: 100, AddUL: 900, ResultUL: 1000, Result: molar(0.01), Pipette: "P200"},
			{Index: 3, Label: "3", Source: "tube 2", TakeUL: 100, AddUL: 900, ResultUL: 1000, Result: molar(0.001), Pipette: "P200"},
		},
		Rationale: "Cascaded 10× serial dilution over 3 steps.",
	}
	if diff := cmp.Diff(want, plan, planOpts...); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_SeriesFactorValidation(t *testing.T) {
	stock := planner.Stock{Concentration: molar(1)}

	for _, p := range []planner.SeriesFactorParams{
		{Factor: 1, Steps: 3, VolumeML: 1},
		{Factor: 10, Steps: 0.4, VolumeML: 1},
		{Factor: 10, Steps: 3, VolumeML: 0},
	} {
		_, err := planner.Plan(stock, p, planner.Config{})
		require.ErrorIs(t, err, models.ErrDomain)
		assert.Equal(t, "Provide factor > 1, steps ≥ 1, volume > 0.", err.Error())
	}

	_, err := planner.Plan(stock, planner.SeriesFactorParams{Factor: 2, Steps: 1001, VolumeML: 1}, planner.Config{})
	require.ErrorIs(t, err, models.ErrDomain)

	plan, err := planner.Plan(stock, planner.SeriesFactorParams{Factor: 2, Steps: 2.6, VolumeML: 1}, planner.Config{})
	require.NoError(t, err)
	assert.Len(t, plan.Steps, 3)
}

func TestPlan_SingleConvertsThroughMW(t *testing.T) {
	plan, err := planner.Plan(
		planner.Stock{Concentration: massVol(10), MolecularWeight: 200},
		planner.SingleParams{Target: molar(0.001), FinalVolumeML: 10},
		planner.Config{},
	)
	require.NoError(t, err)

	want := models.DilutionPlan{
		Mode: models.ModeSingle,
		Steps: []models.DilutionStep{
			{Index: 1, Label: "1", Source: "stock", TakeUL: 200, AddUL: 9800, ResultUL: 10000, Result: molar(0.001), Pipette: "P200"},
		},
		Rationale: "Using C1V1=C2V2 with overage 0% to account for losses.",
		Notes:     []string{"g/L = M × MW; MW = 200 g/mol used."},
	}
	if diff := cmp.Diff(want, plan, planOpts...); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_SingleErrors(t *testing.T) {
	_, err := planner.Plan(planner.Stock{Concentration: massVol(1)}, planner.SingleParams{Target: massVol(2), FinalVolumeML: 1}, planner.Config{})
	require.ErrorIs(t, err, models.ErrDomain)
	assert.Equal(t, "Target concentration exceeds source concentration.", err.Error())

	_, err = planner.Plan(planner.Stock{Concentration: massVol(1)}, planner.SingleParams{Target: massVol(0.5)}, planner.Config{})
	assert.EqualError(t, err, "Final volume must be > 0.")

	_, err = planner.Plan(planner.Stock{Concentration: massVol(1)}, planner.SingleParams{Target: molar(0.5), FinalVolumeML: 1}, planner.Config{})
	require.ErrorIs(t, err, models.ErrPlanning)
	var calcErr *models.CalcError
	require.True(t, errors.As(err, &calcErr))
	assert.Equal(t, "molecular_weight", calcErr.Field)

	_, err = planner.Plan(planner.Stock{Concentration: massVol(0)}, planner.SingleParams{Target: massVol(0), FinalVolumeML: 1}, planner.Config{})
	assert.EqualError(t, err, "Source concentration must be > 0.")
}

func TestPlan_RejectsOverflowingVolumes(t *testing.T) {
	_, err := planner.Plan(
		planner.Stock{Concentration: massVol(10)},
		planner.SingleParams{Target: massVol(1), FinalVolumeML: 1e306},
		planner.Config{},
	)
	require.ErrorIs(t, err, models.ErrDomain)
	assert.Equal(t, "Calculation resulted in an invalid result at step 1. Please check inputs.", err.Error())

	_, err = planner.Plan(
		planner.Stock{Concentration: massVol(10)},
		planner.SingleParams{Target: massVol(-1), FinalVolumeML: 1},
		planner.Config{},
	)
	require.ErrorIs(t, err, models.ErrDomain, "negative take")

	_, err = planner.Plan(
		planner.Stock{Concentration: massVol(10)},
		planner.SingleParams{Target: massVol(1), FinalVolumeML: 1},
		planner.Config{OveragePercent: 1e308},
	)
	require.ErrorIs(t, err, models.ErrDomain, "overage overflow")
}

func TestPlan_Overage(t *testing.T) {
	plan, err := planner.Plan(
		planner.Stock{Concentration: massVol(10)},
		planner.SingleParams{Target: massVol(1), FinalVolumeML: 1},
		planner.Config{OveragePercent: 10},
	)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)

	step := plan.Steps[0]
	assert.InDelta(t, 110, step.TakeUL, 1e-9)
	assert.InDelta(t, 990, step.AddUL, 1e-9)
	assert.InDelta(t, 1100, step.ResultUL, 1e-9)
	assert.InDelta(t, 1.1, step.ResultML(), 1e-12)
	assert.Equal(t, massVol(1), step.Result)
	assert.Equal(t, "Using C1V1=C2V2 with overage 10% to account for losses.", plan.Rationale)
}

func TestPlan_TwoStage(t *testing.T) {
	plan, err := planner.Plan(
		planner.Stock{Concentration: molar(1)},
		planner.TwoStageParams{
			Intermediate:         molar(0.01),
			IntermediateVolumeML: 1,
			Target:               molar(1e-6),
			FinalVolumeML:        1,
		},
		planner.Config{},
	)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	assert.Equal(t, "A", plan.Steps[0].Label)
	assert.InDelta(t, 10, plan.Steps[0].TakeUL, 1e-9)
	assert.Equal(t, "B", plan.Steps[1].Label)
	assert.Equal(t, "intermediate", plan.Steps[1].Source)
	assert.InDelta(t, 0.1, plan.Steps[1].TakeUL, 1e-9)
	assert.Equal(t, "P2 (tip pre-wet, 2–3×)", plan.Steps[1].Pipette)

	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "Step B: take 0.1 µL outside pipetting range (2-1000 µL).")
	assert.Contains(t, plan.Warnings[0], "Suggested pre-dilution of the intermediate: 10× then 2×.")
}

func TestPlan_TwoStageErrors(t *testing.T) {
	stock := planner.Stock{Concentration: molar(1)}

	_, err := planner.Plan(stock, planner.TwoStageParams{Intermediate: molar(2), IntermediateVolumeML: 1, Target: molar(0.1), FinalVolumeML: 1}, planner.Config{})
	assert.EqualError(t, err, "Intermediate concentration exceeds source.")

	_, err = planner.Plan(stock, planner.TwoStageParams{Intermediate: molar(0.1), Target: molar(0.01), FinalVolumeML: 1}, planner.Config{})
	assert.EqualError(t, err, "Intermediate volume must be > 0.")

	_, err = planner.Plan(stock, planner.TwoStageParams{Intermediate: molar(0.1), IntermediateVolumeML: 1, Target: molar(0.5), FinalVolumeML: 1}, planner.Config{})
	assert.EqualError(t, err, "Final concentration exceeds intermediate.")

	_, err = planner.Plan(stock, planner.TwoStageParams{Intermediate: molar(0.1), IntermediateVolumeML: 1, Target: molar(0.01)}, planner.Config{})
	assert.EqualError(t, err, "Final volume must be > 0.")
}

func TestPlan_TwoStageNotesShortIntermediate(t *testing.T) {
	plan, err := planner.Plan(
		planner.Stock{Concentration: molar(1)},
		planner.TwoStageParams{Intermediate: molar(0.1), IntermediateVolumeML: 1, Target: molar(0.05), FinalVolumeML: 10},
		planner.Config{},
	)
	require.NoError(t, err)
	require.Len(t, plan.Notes, 1)
	assert.Contains(t, plan.Notes[0], "Step B needs 5,000 µL of intermediate")
}

func TestPlan_SeriesListSkipsInfeasibleTargets(t *testing.T) {
	plan, err := planner.Plan(
		planner.Stock{Concentration: massVol(1)},
		planner.SeriesListParams{Targets: []string{"2", "0.5", "abc", "-1", " "}, Unit: "mg/mL", VolumeML: 1},
		planner.Config{},
	)
	require.NoError(t, err)

	want := []models.DilutionStep{
		{Index: 1, Label: "2", Source: "stock", TakeUL: 500, AddUL: 500, ResultUL: 1000, Result: massVol(0.5), Pipette: "P1000"},
	}
	if diff := cmp.Diff(want, plan.Steps, planOpts...); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{
		"Target 2 mg/mL > source; skipped.",
		`Target "abc" is not a number; skipped.`,
		"Target -1 mg/mL is not positive; skipped.",
	}, plan.Notes)
	assert.Equal(t, "Independent tubes computed by C1V1=C2V2 with 0% overage.", plan.Rationale)
}

func TestPlan_SeriesListFailures(t *testing.T) {
	stock := planner.Stock{Concentration: massVol(1)}

	_, err := planner.Plan(stock, planner.SeriesListParams{Targets: []string{"5", "6"}, Unit: "mg/mL", VolumeML: 1}, planner.Config{})
	require.ErrorIs(t, err, models.ErrPlanning)
	assert.Equal(t, "No steps generated: Target 5 mg/mL > source; skipped. Target 6 mg/mL > source; skipped.", err.Error())

	_, err = planner.Plan(stock, planner.SeriesListParams{Targets: []string{" ", ""}, Unit: "mg/mL", VolumeML: 1}, planner.Config{})
	assert.EqualError(t, err, "Provide at least one target concentration.")

	_, err = planner.Plan(stock, planner.SeriesListParams{Targets: []string{"0.1"}, Unit: "mg/mL"}, planner.Config{})
	assert.EqualError(t, err, "Volume per tube must be > 0.")

	_, err = planner.Plan(stock, planner.SeriesListParams{Targets: []string{"0.1"}, Unit: "furlongs", VolumeML: 1}, planner.Config{})
	require.ErrorIs(t, err, models.ErrParse)

	_, err = planner.Plan(stock, planner.SeriesListParams{Targets: []string{"0.1"}, Unit: "mM", VolumeML: 1}, planner.Config{})
	require.ErrorIs(t, err, models.ErrPlanning)
}

func TestPlan_WarningsOnlyOutsidePipettingRange(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		volumeML float64
		warn     bool
	}{
		{name: "below min", target: 0.001, volumeML: 1, warn: true},
		{name: "at min", target: 0.002, volumeML: 1, warn: false},
		{name: "mid range", target: 0.5, volumeML: 1, warn: false},
		{name: "at max", target: 1, volumeML: 1, warn: false},
		{name: "above max", target: 1, volumeML: 1.5, warn: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planner.Plan(
				planner.Stock{Concentration: massVol(1)},
				planner.SingleParams{Target: massVol(tt.target), FinalVolumeML: tt.volumeML},
				planner.Config{},
			)
			require.NoError(t, err)
			if tt.warn {
				assert.Len(t, plan.Warnings, 1)
			} else {
				assert.Empty(t, plan.Warnings)
			}
		})
	}
}

func TestPlan_Config(t *testing.T) {
	stock := planner.Stock{Concentration: massVol(1)}
	params := planner.SingleParams{Target: massVol(0.1), FinalVolumeML: 1}

	_, err := planner.Plan(stock, params, planner.Config{OveragePercent: -5})
	require.ErrorIs(t, err, models.ErrDomain)

	_, err = planner.Plan(stock, params, planner.Config{MinPipetteUL: 50, MaxPipetteUL: 10})
	assert.EqualError(t, err, "Max. Pipetting Volume must be >= Min. Pipetting Volume.")

	_, err = planner.Plan(stock, params, planner.Config{MinPipetteUL: -1})
	assert.EqualError(t, err, "Min. Pipetting Volume must be > 0.")

	_, err = planner.Plan(stock, params, planner.Config{PreferredFactors: []float64{10, 1}})
	assert.EqualError(t, err, "Preferred factors must be greater than 1.")

	_, err = planner.Plan(stock, nil, planner.Config{})
	require.ErrorIs(t, err, models.ErrPlanning)

	plan, err := planner.Plan(stock, params, planner.Config{MinPipetteUL: 200})
	require.NoError(t, err)
	assert.Len(t, plan.Warnings, 1)
}

func TestDefaultConfig(t *testing.T) {
	cfg := planner.DefaultConfig()
	assert.Equal(t, 0.0, cfg.OveragePercent)
	assert.Equal(t, 2.0, cfg.MinPipetteUL)
	assert.Equal(t, 1000.0, cfg.MaxPipetteUL)
	assert.Equal(t, []float64{10, 5, 4, 3, 2}, cfg.PreferredFactors)
}

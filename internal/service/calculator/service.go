// Package calculator is the entry point of the presentation layers: it takes raw
// request payloads, parses them first-error-wins and runs the matching solver.
package calculator

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/service/formulas"
	"github.com/mamadbah2/labcalc/internal/service/planner"
	"github.com/mamadbah2/labcalc/internal/service/seeding"
	"github.com/mamadbah2/labcalc/internal/units"
)

// Calculator is implemented by Service and consumed by the HTTP handlers.
type Calculator interface {
	Dilution(req models.DilutionRequest) (models.DilutionResult, error)
	Molarity(req models.MolarityRequest) (models.MolarityResult, error)
	Reconstitution(req models.ReconstitutionRequest) (models.ReconstitutionResult, error)
	MassVolume(req models.MassVolumeRequest) (models.MassVolumeResult, error)
	CellSeeding(req models.CellSeedingRequest) (models.CellSeedingResult, error)
	PlateSeeding(req models.PlateSeedingRequest) (models.PlateSeedingResult, error)
	SerialDose(req models.SerialDoseRequest) (models.DilutionPlan, error)
	SerialDilution(req models.SerialDilutionRequest) (models.DilutionPlan, error)
	Units() []UnitTable
	Plates() []seeding.PlatePreset
}

// UnitTable lists the units accepted for one kind of quantity.
type UnitTable struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Base  string   `json:"base"`
	Units []string `json:"units"`
}

// Service wires the solvers to shared, read-only configuration. The preset
// registry is swapped whole by SetPresets; a calculation sees one snapshot.
type Service struct {
	presets  atomic.Pointer[seeding.Presets]
	defaults planner.Config
	logger   *zap.Logger
}

// NewService constructs a calculator. A nil presets registry falls back to the
// built-in plates.
func NewService(presets *seeding.Presets, defaults planner.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if presets == nil {
		presets = seeding.DefaultPresets()
	}
	s := &Service{
		defaults: defaults,
		logger:   logger,
	}
	s.presets.Store(presets)
	return s
}

// SetPresets replaces the plate registry used by later calculations.
func (s *Service) SetPresets(presets *seeding.Presets) {
	if presets == nil {
		presets = seeding.DefaultPresets()
	}
	s.presets.Store(presets)
	s.logger.Info("plate presets replaced", zap.Int("count", len(presets.List())))
}

// Dilution solves C1V1 = C2V2.
func (s *Service) Dilution(req models.DilutionRequest) (models.DilutionResult, error) {
	res, err := formulas.Dilution(req)
	s.record("dilution", err)
	return res, err
}

// Molarity solves the mass/volume/molarity triangle.
func (s *Service) Molarity(req models.MolarityRequest) (models.MolarityResult, error) {
	res, err := formulas.Molarity(req)
	s.record("molarity", err, zap.String("solve_for", req.SolveFor))
	return res, err
}

// Reconstitution computes the solvent volume for a powder.
func (s *Service) Reconstitution(req models.ReconstitutionRequest) (models.ReconstitutionResult, error) {
	res, err := formulas.Reconstitution(req)
	s.record("reconstitution", err)
	return res, err
}

// MassVolume solves the mass/volume/concentration triangle.
func (s *Service) MassVolume(req models.MassVolumeRequest) (models.MassVolumeResult, error) {
	res, err := formulas.MassVolume(req)
	s.record("mass_volume", err, zap.String("solve_for", req.SolveFor))
	return res, err
}

// CellSeeding dilutes a cell suspension.
func (s *Service) CellSeeding(req models.CellSeedingRequest) (models.CellSeedingResult, error) {
	res, err := seeding.Cells(req)
	s.record("cell_seeding", err)
	return res, err
}

// PlateSeeding computes a plate master mix.
func (s *Service) PlateSeeding(req models.PlateSeedingRequest) (models.PlateSeedingResult, error) {
	res, err := seeding.Plate(req, s.presets.Load())
	s.record("plate_seeding", err, zap.String("plate_type", req.PlateType))
	return res, err
}

// SerialDose plans an exact dose from a mass/vol stock.
func (s *Service) SerialDose(req models.SerialDoseRequest) (models.DilutionPlan, error) {
	plan, err := s.serialDose(req)
	s.record("serial_dose", err, zap.Int("steps", len(plan.Steps)))
	return plan, err
}

func (s *Service) serialDose(req models.SerialDoseRequest) (models.DilutionPlan, error) {
	stock, err := units.ToBase(req.Stock.Value, req.Stock.Unit, units.DoseStock, "concentration")
	if err != nil {
		return models.DilutionPlan{}, models.WithField(err, "stock")
	}
	params, err := doseParams(req.FinalMass, req.FinalVolume, req.IntermediateVolumeUL)
	if err != nil {
		return models.DilutionPlan{}, err
	}
	cfg, err := s.plannerConfig(req.Settings, models.ModeDose)
	if err != nil {
		return models.DilutionPlan{}, err
	}

	// DoseStock is based on mg/mL, which is numerically g/L.
	src := planner.Stock{Concentration: models.Concentration{Kind: models.KindMassPerVolume, Value: stock}}
	return planner.Plan(src, params, cfg)
}

// SerialDilution runs the serial dilution planner in the requested mode.
func (s *Service) SerialDilution(req models.SerialDilutionRequest) (models.DilutionPlan, error) {
	plan, err := s.serialDilution(req)
	s.record("serial_dilution", err, zap.String("mode", req.Mode), zap.Int("steps", len(plan.Steps)), zap.Int("warnings", len(plan.Warnings)))
	return plan, err
}

func (s *Service) serialDilution(req models.SerialDilutionRequest) (models.DilutionPlan, error) {
	source, err := units.ParseConcentration(req.Source.Value, req.Source.Unit)
	if err != nil {
		return models.DilutionPlan{}, models.WithField(err, "source")
	}
	var mw float64
	if strings.TrimSpace(req.MolecularWeight) != "" {
		if mw, err = units.ParseNumber(req.MolecularWeight); err != nil {
			return models.DilutionPlan{}, models.WithField(err, "molecular_weight")
		}
	}
	cfg, err := s.plannerConfig(req.Settings, models.PlanMode(strings.TrimSpace(req.Mode)))
	if err != nil {
		return models.DilutionPlan{}, err
	}

	params, err := modeParams(req)
	if err != nil {
		return models.DilutionPlan{}, err
	}
	return planner.Plan(planner.Stock{Concentration: source, MolecularWeight: mw}, params, cfg)
}

func modeParams(req models.SerialDilutionRequest) (planner.Params, error) {
	switch models.PlanMode(strings.TrimSpace(req.Mode)) {
	case models.ModeSingle:
		target, err := units.ParseConcentration(req.Target.Value, req.Target.Unit)
		if err != nil {
			return nil, models.WithField(err, "target")
		}
		return planner.SingleParams{Target: target, FinalVolumeML: lenient(req.FinalVolumeML)}, nil

	case models.ModeTwoStage:
		inter, err := units.ParseConcentration(req.Intermediate.Value, req.Intermediate.Unit)
		if err != nil {
			return nil, models.WithField(err, "intermediate")
		}
		target, err := units.ParseConcentration(req.SecondTarget.Value, req.SecondTarget.Unit)
		if err != nil {
			return nil, models.WithField(err, "second_target")
		}
		return planner.TwoStageParams{
			Intermediate:         inter,
			IntermediateVolumeML: lenient(req.IntermediateVolumeML),
			Target:               target,
			FinalVolumeML:        lenient(req.SecondVolumeML),
		}, nil

	case models.ModeSeriesList:
		return planner.SeriesListParams{
			Targets:  strings.Split(req.SeriesValues, ","),
			Unit:     req.SeriesUnit,
			VolumeML: lenient(req.SeriesVolumeML),
		}, nil

	case models.ModeSeriesFactor:
		return planner.SeriesFactorParams{
			Factor:   lenient(req.Factor),
			Steps:    lenient(req.Steps),
			VolumeML: lenient(req.FactorVolumeML),
		}, nil

	case models.ModeDose:
		return doseParams(req.FinalMass, req.DoseVolume, req.IntermediateVolumeUL)

	default:
		return nil, models.WithField(models.PlanningErrorf("Unknown mode."), "mode")
	}
}

func doseParams(mass, volume models.Quantity, intermediateUL string) (planner.DoseParams, error) {
	massG, err := units.ToBase(mass.Value, mass.Unit, units.Mass, "mass")
	if err != nil {
		return planner.DoseParams{}, models.WithField(err, "final_mass")
	}
	volumeUL, err := units.ToBase(volume.Value, volume.Unit, units.DoseVolume, "volume")
	if err != nil {
		return planner.DoseParams{}, models.WithField(err, "final_volume")
	}
	interUL, err := units.ParseNumber(intermediateUL)
	if err != nil {
		return planner.DoseParams{}, models.WithField(err, "intermediate_volume_ul")
	}
	return planner.DoseParams{FinalMassG: massG, FinalVolumeUL: volumeUL, IntermediateVolumeUL: interUL}, nil
}

// plannerConfig overlays the non-blank request settings on the service defaults.
// A zero minimum pipetting volume means the default, except for dose plans,
// where an explicit zero is rejected.
func (s *Service) plannerConfig(settings models.PlannerSettings, mode models.PlanMode) (planner.Config, error) {
	cfg := s.defaults
	optional := []struct {
		raw   string
		field string
		dst   *float64
	}{
		{settings.OveragePercent, "overage_percent", &cfg.OveragePercent},
		{settings.MinPipetteUL, "min_pipette_ul", &cfg.MinPipetteUL},
		{settings.MaxPipetteUL, "max_pipette_ul", &cfg.MaxPipetteUL},
	}
	for _, opt := range optional {
		if strings.TrimSpace(opt.raw) == "" {
			continue
		}
		v, err := units.ParseNumber(opt.raw)
		if err != nil {
			return planner.Config{}, models.WithField(err, opt.field)
		}
		*opt.dst = v
	}
	if mode == models.ModeDose && strings.TrimSpace(settings.MinPipetteUL) != "" && !(cfg.MinPipetteUL > 0) {
		return planner.Config{}, models.WithField(models.DomainErrorf("Min. Pipetting Volume must be > 0."), "min_pipette_ul")
	}

	if strings.TrimSpace(settings.PreferredFactors) != "" {
		factors, err := units.ParseList(settings.PreferredFactors)
		if err != nil {
			return planner.Config{}, models.WithField(err, "preferred_factors")
		}
		cfg.PreferredFactors = factors
	}
	return cfg, nil
}

// lenient parses volumes and counts whose absence the planner reports itself.
func lenient(raw string) float64 {
	v, err := units.ParseNumber(raw)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Units lists every unit table, sorted by name.
func (s *Service) Units() []UnitTable {
	registry := units.Registry()
	out := make([]UnitTable, 0, len(registry))
	for name, table := range registry {
		out = append(out, UnitTable{Name: name, Kind: table.Kind(), Base: table.Base(), Units: table.Units()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Plates lists the plate presets in declaration order.
func (s *Service) Plates() []seeding.PlatePreset {
	return s.presets.Load().List()
}

// record logs the outcome of a calculation. Rejected input is a user error and
// is logged at info; anything else is unexpected.
func (s *Service) record(operation string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", operation))
	if err == nil {
		s.logger.Debug("calculation completed", fields...)
		return
	}

	var calcErr *models.CalcError
	if errors.As(err, &calcErr) {
		s.logger.Info("calculation rejected", append(fields,
			zap.String("kind", calcErr.KindName()),
			zap.String("field", calcErr.Field),
			zap.String("reason", calcErr.Message),
		)...)
		return
	}
	s.logger.Warn("calculation failed", append(fields, zap.Error(err))...)
}

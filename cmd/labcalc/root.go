package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/labcalc/internal/config"
	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/service/calculator"
	"github.com/mamadbah2/labcalc/internal/service/seeding"
	"github.com/mamadbah2/labcalc/pkg/clients/labcalc"
	"github.com/mamadbah2/labcalc/pkg/logger"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	out io.Writer

	envFile   string
	serverURL string
	remote    bool
	jsonOut   bool
	verbose   bool

	logger  *zap.Logger
	backend labcalc.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "labcalc",
		Short: "Dilution, molarity and cell seeding calculators",
		Long: `labcalc converts bench quantities into pipetting instructions.

Quantities are given as "VALUE UNIT", for example --stock "10 mM" or
--mass "2.5 mg". Numbers accept lab shorthand: 25k, 2.5 million, 3x10^5.

Calculations run in-process by default; --remote sends them to a labcalc
server (LABCALC_SERVER_URL or --server).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file to load before reading the environment")
	flags.BoolVar(&a.remote, "remote", false, "send calculations to a labcalc server")
	flags.StringVar(&a.serverURL, "server", "", "server URL for --remote (overrides LABCALC_SERVER_URL)")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(
		a.dilutionCmd(),
		a.molarityCmd(),
		a.reconstitutionCmd(),
		a.massVolumeCmd(),
		a.cellSeedingCmd(),
		a.plateSeedingCmd(),
		a.serialDoseCmd(),
		a.serialCmd(),
		a.unitsCmd(),
		a.platesCmd(),
	)
	return root
}

// setup loads configuration and picks the local or remote backend.
func (a *app) setup() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	if a.logger, err = logger.NewConsole(level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if a.remote || a.serverURL != "" {
		clientCfg := cfg.Client
		if a.serverURL != "" {
			clientCfg.ServerURL = strings.TrimSuffix(a.serverURL, "/")
		}
		a.logger.Debug("using remote backend", zap.String("server", clientCfg.ServerURL))
		a.backend = labcalc.NewClient(clientCfg)
		return nil
	}

	presets, err := seeding.LoadPresets(cfg.Plates.PresetsFile)
	if err != nil {
		return err
	}
	svc := calculator.NewService(presets, cfg.Planner.Defaults(), logger.Named(a.logger, "calculator"))
	a.backend = localBackend{svc: svc}
	return nil
}

// print writes v as indented JSON when --json is set and via render otherwise.
func (a *app) print(v any, render func(io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	render(a.out)
	return nil
}

// localBackend runs calculations in-process. Calculations never block, so
// the context is unused.
type localBackend struct {
	svc *calculator.Service
}

func (l localBackend) Dilution(_ context.Context, req models.DilutionRequest) (models.DilutionResult, error) {
	return l.svc.Dilution(req)
}

func (l localBackend) Molarity(_ context.Context, req models.MolarityRequest) (models.MolarityResult, error) {
	return l.svc.Molarity(req)
}

func (l localBackend) Reconstitution(_ context.Context, req models.ReconstitutionRequest) (models.ReconstitutionResult, error) {
	return l.svc.Reconstitution(req)
}

func (l localBackend) MassVolume(_ context.Context, req models.MassVolumeRequest) (models.MassVolumeResult, error) {
	return l.svc.MassVolume(req)
}

func (l localBackend) CellSeeding(_ context.Context, req models.CellSeedingRequest) (models.CellSeedingResult, error) {
	return l.svc.CellSeeding(req)
}

func (l localBackend) PlateSeeding(_ context.Context, req models.PlateSeedingRequest) (models.PlateSeedingResult, error) {
	return l.svc.PlateSeeding(req)
}

func (l localBackend) SerialDose(_ context.Context, req models.SerialDoseRequest) (models.DilutionPlan, error) {
	return l.svc.SerialDose(req)
}

func (l localBackend) SerialDilution(_ context.Context, req models.SerialDilutionRequest) (models.DilutionPlan, error) {
	return l.svc.SerialDilution(req)
}

func (l localBackend) Units(context.Context) ([]calculator.UnitTable, error) {
	return l.svc.Units(), nil
}

func (l localBackend) Plates(context.Context) ([]seeding.PlatePreset, error) {
	return l.svc.Plates(), nil
}

package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/labcalc/internal/domain/models"
)

func (a *app) dilutionCmd() *cobra.Command {
	var req models.DilutionRequest
	cmd := &cobra.Command{
		Use:     "dilution",
		Short:   "Simple C1V1=C2V2 dilution",
		Example: `  labcalc dilution --stock "10 mM" --final "100 µM" --volume "1 mL"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend.Dilution(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res, func(w io.Writer) { renderDilution(w, res) })
		},
	}
	fs := cmd.Flags()
	quantityVar(fs, &req.Stock, "stock", "stock concentration")
	quantityVar(fs, &req.Final, "final", "final concentration")
	quantityVar(fs, &req.FinalVolume, "volume", "final volume")
	return cmd
}

func (a *app) molarityCmd() *cobra.Command {
	var req models.MolarityRequest
	cmd := &cobra.Command{
		Use:     "molarity",
		Short:   "Solve mass = molarity x volume x MW for one unknown",
		Example: `  labcalc molarity --solve-for mass --mw 58.44 --volume "500 mL" --molarity "150 mM"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend.Molarity(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res, func(w io.Writer) { renderMolarity(w, res) })
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&req.SolveFor, "solve-for", "mass", "unknown to solve: mass, volume or molarity")
	fs.StringVar(&req.MolecularWeight, "mw", "", "molecular weight (g/mol)")
	quantityVar(fs, &req.Mass, "mass", "mass")
	quantityVar(fs, &req.Volume, "volume", "volume")
	quantityVar(fs, &req.Molarity, "molarity", "molar concentration")
	return cmd
}

func (a *app) reconstitutionCmd() *cobra.Command {
	var req models.ReconstitutionRequest
	cmd := &cobra.Command{
		Use:     "reconstitution",
		Short:   "Solvent volume that brings a lyophilized mass to a concentration",
		Example: `  labcalc reconstitution --mass "1 mg" --concentration "10 mM" --mw 500`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend.Reconstitution(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res, func(w io.Writer) { renderReconstitution(w, res) })
		},
	}
	fs := cmd.Flags()
	quantityVar(fs, &req.Mass, "mass", "mass of powder")
	quantityVar(fs, &req.Concentration, "concentration", "target concentration")
	fs.StringVar(&req.MolecularWeight, "mw", "", "molecular weight (g/mol), needed for molar targets")
	return cmd
}

func (a *app) massVolumeCmd() *cobra.Command {
	var req models.MassVolumeRequest
	cmd := &cobra.Command{
		Use:     "mass-volume",
		Short:   "Solve mass = concentration x volume for one unknown",
		Example: `  labcalc mass-volume --solve-for volume --mass "5 mg" --concentration "2 mg/mL"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend.MassVolume(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res, func(w io.Writer) { renderMassVolume(w, res) })
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&req.SolveFor, "solve-for", "mass", "unknown to solve: mass, volume or concentration")
	quantityVar(fs, &req.Mass, "mass", "mass")
	quantityVar(fs, &req.Volume, "volume", "volume")
	quantityVar(fs, &req.Concentration, "concentration", "mass/volume concentration")
	return cmd
}

func (a *app) cellSeedingCmd() *cobra.Command {
	var req models.CellSeedingRequest
	cmd := &cobra.Command{
		Use:     "cell-seeding",
		Short:   "Dilute a cell suspension (cells/mL)",
		Example: `  labcalc cell-seeding --stock "2.5 million" --final 100k --volume-ml 10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend.CellSeeding(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res, func(w io.Writer) { renderCellSeeding(w, res) })
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&req.StockConcentration, "stock", "", "stock suspension (cells/mL)")
	fs.StringVar(&req.FinalConcentration, "final", "", "final suspension (cells/mL)")
	fs.StringVar(&req.FinalVolumeML, "volume-ml", "", "final volume (mL)")
	return cmd
}

func (a *app) plateSeedingCmd() *cobra.Command {
	var req models.PlateSeedingRequest
	cmd := &cobra.Command{
		Use:     "plate-seeding",
		Short:   "Master mix for seeding wells of a plate",
		Example: `  labcalc plate-seeding --plate 96-well --wells 60 --density 10k --stock 1e6`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend.PlateSeeding(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(res, func(w io.Writer) { renderPlateSeeding(w, res) })
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&req.PlateType, "plate", "96-well", "plate preset name or \"custom\"")
	fs.StringVar(&req.Wells, "wells", "", "number of wells to seed")
	fs.StringVar(&req.SeedingDensity, "density", "", "seeding density (cells/cm²)")
	fs.StringVar(&req.StockConcentration, "stock", "", "stock suspension (cells/mL)")
	fs.StringVar(&req.CustomSurfaceArea, "area", "", "surface area per well (cm²), custom plates")
	fs.StringVar(&req.CustomMediaVolumeUL, "media-ul", "", "media per well (µL), custom plates")
	fs.StringVar(&req.WellVolumeML, "well-volume-ml", "", "override media per well (mL)")
	return cmd
}

func (a *app) serialDoseCmd() *cobra.Command {
	var req models.SerialDoseRequest
	cmd := &cobra.Command{
		Use:     "serial-dose",
		Short:   "Protocol that delivers an exact mass in a final volume",
		Example: `  labcalc serial-dose --stock "10 mg/mL" --mass "50 ng" --volume "200 µL" --intermediate-ul 100`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.backend.SerialDose(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(plan, func(w io.Writer) { renderPlan(w, plan) })
		},
	}
	fs := cmd.Flags()
	quantityVar(fs, &req.Stock, "stock", "stock concentration (mass/vol)")
	quantityVar(fs, &req.FinalMass, "mass", "mass to deliver")
	quantityVar(fs, &req.FinalVolume, "volume", "final volume")
	fs.StringVar(&req.IntermediateVolumeUL, "intermediate-ul", "", "volume of each intermediate tube (µL)")
	plannerFlags(fs, &req.Settings)
	return cmd
}

func (a *app) serialCmd() *cobra.Command {
	var req models.SerialDilutionRequest
	cmd := &cobra.Command{
		Use:     "serial-dilution",
		Aliases: []string{"serial"},
		Short:   "Plan a serial dilution",
		Long: `Plan a serial dilution from a stock.

Modes:
  single         one dilution to --target in --final-volume-ml
  intermediate   stock -> --intermediate -> --second-target
  series_list    independent tubes for each of --values in --unit
  series_factor  --steps tubes cascaded by --factor
  dose           deliver --mass in --dose-volume through intermediates`,
		Example: `  labcalc serial --mode series_factor --source "10 mM" --factor 10 --steps 5 --tube-ml 1
  labcalc serial --mode single --source "1 mg/mL" --mw 200 --target "1 mM" --final-volume-ml 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := a.backend.SerialDilution(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(plan, func(w io.Writer) { renderPlan(w, plan) })
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&req.Mode, "mode", string(models.ModeSingle), "single, intermediate, series_list, series_factor or dose")
	quantityVar(fs, &req.Source, "source", "source concentration")
	fs.StringVar(&req.MolecularWeight, "mw", "", "molecular weight (g/mol) for molar/mass conversions")

	quantityVar(fs, &req.Target, "target", "target concentration (single)")
	fs.StringVar(&req.FinalVolumeML, "final-volume-ml", "", "final volume in mL (single)")

	quantityVar(fs, &req.Intermediate, "intermediate", "intermediate concentration (intermediate)")
	fs.StringVar(&req.IntermediateVolumeML, "intermediate-volume-ml", "", "intermediate volume in mL (intermediate)")
	quantityVar(fs, &req.SecondTarget, "second-target", "final concentration (intermediate)")
	fs.StringVar(&req.SecondVolumeML, "second-volume-ml", "", "final volume in mL (intermediate)")

	fs.StringVar(&req.SeriesValues, "values", "", "comma-separated targets (series_list)")
	fs.StringVar(&req.SeriesUnit, "unit", "", "unit of --values (series_list)")
	fs.StringVar(&req.SeriesVolumeML, "series-volume-ml", "", "volume per tube in mL (series_list)")

	fs.StringVar(&req.Factor, "factor", "", "dilution factor per step (series_factor)")
	fs.StringVar(&req.Steps, "steps", "", "number of tubes (series_factor)")
	fs.StringVar(&req.FactorVolumeML, "tube-ml", "", "volume per tube in mL (series_factor)")

	quantityVar(fs, &req.FinalMass, "mass", "mass to deliver (dose)")
	quantityVar(fs, &req.DoseVolume, "dose-volume", "final volume (dose)")
	fs.StringVar(&req.IntermediateVolumeUL, "intermediate-ul", "", "volume of each intermediate tube in µL (dose)")

	plannerFlags(fs, &req.Settings)
	return cmd
}

func (a *app) unitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List the accepted units and their conversion factors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.backend.Units(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(tables, func(w io.Writer) { renderUnits(w, tables) })
		},
	}
}

func (a *app) platesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plates",
		Short: "List the plate presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plates, err := a.backend.Plates(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(plates, func(w io.Writer) { renderPlates(w, plates) })
		},
	}
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/service/calculator"
	"github.com/mamadbah2/labcalc/internal/service/seeding"
	"github.com/mamadbah2/labcalc/pkg/format"
)

// planStyles only colors output written to a terminal; the renderer falls back
// to plain text for pipes and buffers.
type planStyles struct {
	heading lipgloss.Style
	warning lipgloss.Style
	note    lipgloss.Style
}

func newPlanStyles(w io.Writer) planStyles {
	r := lipgloss.NewRenderer(w)
	return planStyles{
		heading: r.NewStyle().Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		note:    r.NewStyle().Faint(true),
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// volumeText picks µL below 1 mL and mL otherwise.
func volumeText(v models.VolumeReading) string {
	if v.Milliliters < 1 {
		return format.Dose(v.Microliters) + " µL"
	}
	return format.Dose(v.Milliliters) + " mL"
}

func massText(m models.MassReading) string {
	if m.Grams < 1 {
		return format.Dose(m.Milligrams) + " mg"
	}
	return format.Dose(m.Grams) + " g"
}

func molarText(molar float64) string {
	switch {
	case molar >= 1:
		return format.Number(molar) + " M"
	case molar >= 1e-3:
		return format.Number(molar*1e3) + " mM"
	case molar >= 1e-6:
		return format.Number(molar*1e6) + " µM"
	default:
		return format.Number(molar*1e9) + " nM"
	}
}

func concentrationText(c models.Concentration) string {
	switch c.Kind {
	case models.KindMolar:
		return molarText(c.Value)
	case models.KindMassPerVolume:
		// g/L and mg/mL share a magnitude.
		return format.Concentration(c.Value)
	case models.KindRatio:
		return format.Number(c.Value) + "X"
	default:
		return format.Number(c.Value) + " " + c.Kind.BaseUnit()
	}
}

func renderDilution(w io.Writer, res models.DilutionResult) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Take stock\t%s\n", volumeText(res.Take))
	fmt.Fprintf(tw, "Add diluent\t%s\n", volumeText(res.Add))
	fmt.Fprintf(tw, "Final volume\t%s\n", volumeText(res.Final))
	tw.Flush()
}

func renderMolarity(w io.Writer, res models.MolarityResult) {
	switch {
	case res.Mass != nil:
		fmt.Fprintf(w, "Mass: %s\n", massText(*res.Mass))
	case res.Volume != nil:
		fmt.Fprintf(w, "Volume: %s\n", volumeText(*res.Volume))
	case res.Molarity != nil:
		fmt.Fprintf(w, "Molarity: %s\n", molarText(res.Molarity.Molar))
	}
}

func renderReconstitution(w io.Writer, res models.ReconstitutionResult) {
	fmt.Fprintf(w, "Add solvent: %s\n", volumeText(res.Solvent))
}

func renderMassVolume(w io.Writer, res models.MassVolumeResult) {
	switch {
	case res.Mass != nil:
		fmt.Fprintf(w, "Mass: %s\n", massText(*res.Mass))
	case res.Volume != nil:
		fmt.Fprintf(w, "Volume: %s\n", volumeText(*res.Volume))
	case res.Concentration != nil:
		fmt.Fprintf(w, "Concentration: %s\n", format.Concentration(res.Concentration.MilligramsPerML))
	}
}

func renderCellSeeding(w io.Writer, res models.CellSeedingResult) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Cell suspension\t%s µL\n", format.Dose(res.StockUL))
	fmt.Fprintf(tw, "Media\t%s mL\n", format.Dose(res.MediaML))
	fmt.Fprintf(tw, "Final volume\t%s mL\n", format.Dose(res.FinalVolumeML))
	fmt.Fprintf(tw, "Total cells\t%s\n", format.Number(res.TotalCells))
	tw.Flush()
}

func renderPlateSeeding(w io.Writer, res models.PlateSeedingResult) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Plate\t%s\n", res.PlateType)
	fmt.Fprintf(tw, "Wells\t%d (+%d extra, %d prepared)\n", res.Wells, res.ExtraWells, res.OverheadWells)
	fmt.Fprintf(tw, "Media per well\t%s mL\n", format.Dose(res.MediaPerWellML))
	fmt.Fprintf(tw, "Cells per well\t%s\n", format.Number(res.SeedingDensity*res.SurfaceAreaCM2))
	fmt.Fprintf(tw, "Master mix\t%s mL at %s cells/mL\n", format.Dose(res.MasterMixML), format.Number(res.FinalCellConc))
	fmt.Fprintf(tw, "Cell suspension\t%s µL\n", format.Dose(res.StockUL))
	fmt.Fprintf(tw, "Media\t%s mL\n", format.Dose(res.MediaML))
	tw.Flush()
}

func renderPlan(w io.Writer, plan models.DilutionPlan) {
	st := newPlanStyles(w)
	fmt.Fprintln(w, st.heading.Render("Mode: "+string(plan.Mode)))
	if plan.Rationale != "" {
		fmt.Fprintln(w, plan.Rationale)
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "STEP\tFROM\tTAKE (µL)\tADD (µL)\tTOTAL (µL)\tRESULT\tPIPETTE")
	for _, s := range plan.Steps {
		label := s.Label
		if s.Final {
			label += " (final)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			label, s.Source,
			format.Dose(s.TakeUL), format.Dose(s.AddUL), format.Dose(s.ResultUL),
			concentrationText(s.Result), s.Pipette)
	}
	tw.Flush()

	renderList(w, "Notes", plan.Notes, st.note)
	renderList(w, "Warnings", plan.Warnings, st.warning)
}

func renderList(w io.Writer, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", style.Bold(true).Render(title+":"))
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", style.Render(item))
	}
}

func renderUnits(w io.Writer, tables []calculator.UnitTable) {
	tw := newTable(w)
	fmt.Fprintln(tw, "TABLE\tKIND\tBASE\tUNITS")
	for _, t := range tables {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Name, t.Kind, t.Base, strings.Join(t.Units, ", "))
	}
	tw.Flush()
}

func renderPlates(w io.Writer, plates []seeding.PlatePreset) {
	tw := newTable(w)
	fmt.Fprintln(tw, "PLATE\tAREA (cm²)\tMEDIA (mL)")
	for _, p := range plates {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, format.Number(p.SurfaceAreaCM2), format.Dose(p.MediaVolumeML))
	}
	tw.Flush()
}

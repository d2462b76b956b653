package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mamadbah2/labcalc/internal/domain/models"
)

// quantityValue binds a "VALUE UNIT" flag such as "10 mM" or "2.5 million cells/mL"
// to a models.Quantity. The unit is everything after the last space.
type quantityValue struct {
	q *models.Quantity
}

var _ pflag.Value = quantityValue{}

func (v quantityValue) String() string {
	if v.q == nil || (v.q.Value == "" && v.q.Unit == "") {
		return ""
	}
	return strings.TrimSpace(v.q.Value + " " + v.q.Unit)
}

func (v quantityValue) Set(s string) error {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, " \t")
	if i < 0 {
		return fmt.Errorf("expected VALUE UNIT, e.g. \"10 mM\", got %q", s)
	}
	v.q.Value = strings.TrimSpace(s[:i])
	v.q.Unit = s[i+1:]
	return nil
}

func (v quantityValue) Type() string {
	return "quantity"
}

func quantityVar(fs *pflag.FlagSet, q *models.Quantity, name, usage string) {
	fs.Var(quantityValue{q: q}, name, usage)
}

// plannerFlags registers the pipetting settings shared by the planner commands.
func plannerFlags(fs *pflag.FlagSet, s *models.PlannerSettings) {
	fs.StringVar(&s.OveragePercent, "overage", "", "extra volume per step in percent")
	fs.StringVar(&s.MinPipetteUL, "min-ul", "", "smallest volume you pipette reliably (µL)")
	fs.StringVar(&s.MaxPipetteUL, "max-ul", "", "largest volume one pipette takes (µL)")
	fs.StringVar(&s.PreferredFactors, "factors", "", "comma-separated preferred dilution factors")
}

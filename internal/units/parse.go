// Package units turns user-typed numbers and unit symbols into base-unit values.
package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mamadbah2/labcalc/internal/domain/models"
)

var (
	millionSuffix  = regexp.MustCompile(`\s*million`)
	thousandSuffix = regexp.MustCompile(`k$`)
	timesTenPower  = regexp.MustCompile(`x10\^`)
)

// ParseNumber parses plain and scientific numbers plus lab shorthand:
// "25k", "2.5 million" and "3x10^5".
func ParseNumber(raw string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = replaceFirst(millionSuffix, s, "e6")
	s = replaceFirst(thousandSuffix, s, "e3")
	s = replaceFirst(timesTenPower, s, "e")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || isHexFloat(s) {
		return 0, models.ParseErrorf("Invalid number input: %q. Please use standard or scientific notation (e.g., 1000, 1e3, 25k, or 2.5 million).", raw)
	}
	return v, nil
}

// ToBase parses raw and converts it into table's base unit. kind names the
// quantity in error messages.
func ToBase(raw, unit string, table Table, kind string) (float64, error) {
	v, err := ParseNumber(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, models.ParseErrorf("Invalid %s input. Must be a non-negative number.", kind)
	}

	factor, ok := table.Factor(unit)
	if !ok {
		return 0, models.ParseErrorf("Unsupported %s unit: %s", kind, unit)
	}
	return v * factor, nil
}

// ParseConcentration parses a value and tags it with the kind implied by unit.
func ParseConcentration(raw, unit string) (models.Concentration, error) {
	v, err := ParseNumber(raw)
	if err != nil {
		return models.Concentration{}, err
	}

	if unit == "X" {
		if v <= 0 {
			return models.Concentration{}, models.ParseErrorf("X-factor must be a positive number.")
		}
		return models.Concentration{Kind: models.KindRatio, Value: v}, nil
	}
	if f, ok := Molar.Factor(unit); ok {
		return models.Concentration{Kind: models.KindMolar, Value: v * f}, nil
	}
	if f, ok := MassPerVolume.Factor(unit); ok {
		return models.Concentration{Kind: models.KindMassPerVolume, Value: v * f}, nil
	}
	if f, ok := Activity.Factor(unit); ok {
		return models.Concentration{Kind: models.KindActivity, Value: v * f}, nil
	}
	return models.Concentration{}, models.ParseErrorf("Unsupported concentration unit: %s", unit)
}

// ParseList parses a comma-separated list of numbers such as "10,5,4,3,2".
// Blank entries are ignored; the first invalid entry fails the whole list.
func ParseList(raw string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := ParseNumber(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// KindOf reports the concentration kind a unit symbol belongs to.
func KindOf(unit string) (models.ConcentrationKind, bool) {
	if unit == "X" {
		return models.KindRatio, true
	}
	if _, ok := Molar.Factor(unit); ok {
		return models.KindMolar, true
	}
	if _, ok := MassPerVolume.Factor(unit); ok {
		return models.KindMassPerVolume, true
	}
	if _, ok := Activity.Factor(unit); ok {
		return models.KindActivity, true
	}
	return "", false
}

// isHexFloat reports Go's hexadecimal float syntax, which ParseFloat accepts
// but lab input never uses.
func isHexFloat(s string) bool {
	return strings.HasPrefix(strings.TrimLeft(s, "+-"), "0x")
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

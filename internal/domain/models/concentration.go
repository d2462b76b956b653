package models

// ConcentrationKind tags a concentration with its dimension.
type ConcentrationKind string

const (
	KindMolar         ConcentrationKind = "molar"
	KindMassPerVolume ConcentrationKind = "mass/vol"
	KindActivity      ConcentrationKind = "activity"
	KindRatio         ConcentrationKind = "X"
)

// BaseUnit returns the unit Concentration.Value is expressed in for the kind.
func (k ConcentrationKind) BaseUnit() string {
	switch k {
	case KindMolar:
		return "M"
	case KindMassPerVolume:
		return "g/L"
	case KindActivity:
		return "IU/mL"
	case KindRatio:
		return "X"
	default:
		return ""
	}
}

// Concentration is a parsed concentration in its kind's base unit.
type Concentration struct {
	Kind  ConcentrationKind `json:"kind"`
	Value float64           `json:"value"`
}

// Convert re-expresses c in the target kind. Molar and mass/vol convert into each
// other through the molecular weight (g/mol); a non-positive mw means none was given.
func (c Concentration) Convert(target ConcentrationKind, mw float64) (Concentration, error) {
	if c.Kind == target {
		return c, nil
	}
	if mw <= 0 {
		return Concentration{}, PlanningErrorf("Molecular weight is required to convert between mass/vol and molar.")
	}

	switch {
	case c.Kind == KindMassPerVolume && target == KindMolar:
		return Concentration{Kind: KindMolar, Value: c.Value / mw}, nil
	case c.Kind == KindMolar && target == KindMassPerVolume:
		return Concentration{Kind: KindMassPerVolume, Value: c.Value * mw}, nil
	default:
		return Concentration{}, PlanningErrorf("Unsupported conversion.")
	}
}

package units

import "strings"

// Table maps unit symbols to the factor that converts them into the table's base unit.
// Tables are built once at init and never mutated, so they are safe to share.
type Table struct {
	kind    string
	base    string
	order   []string
	factors map[string]float64
}

type entry struct {
	unit   string
	factor float64
}

func newTable(kind, base string, entries ...entry) Table {
	t := Table{kind: kind, base: base, factors: make(map[string]float64, len(entries)*2)}
	for _, e := range entries {
		t.order = append(t.order, e.unit)
		t.factors[e.unit] = e.factor
		// ASCII spelling for keyboards without µ.
		if alias := strings.ReplaceAll(e.unit, "µ", "u"); alias != e.unit {
			t.factors[alias] = e.factor
		}
	}
	return t
}

// Kind names the quantity measured by the table ("volume", "mass", ...).
func (t Table) Kind() string { return t.kind }

// Base is the unit every factor converts into.
func (t Table) Base() string { return t.base }

// Factor returns the conversion factor for unit.
func (t Table) Factor(unit string) (float64, bool) {
	f, ok := t.factors[unit]
	return f, ok
}

// Units lists the canonical unit symbols in display order. Aliases are omitted.
func (t Table) Units() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

var (
	Volume = newTable("volume", "L",
		entry{"L", 1}, entry{"mL", 1e-3}, entry{"µL", 1e-6}, entry{"nL", 1e-9})

	Mass = newTable("mass", "g",
		entry{"g", 1}, entry{"mg", 1e-3}, entry{"µg", 1e-6}, entry{"ng", 1e-9})

	Molar = newTable("molarity", "M",
		entry{"M", 1}, entry{"mM", 1e-3}, entry{"µM", 1e-6}, entry{"nM", 1e-9})

	Activity = newTable("activity", "IU/mL",
		entry{"IU/mL", 1}, entry{"kIU/mL", 1000})

	MassPerVolume = newTable("concentration", "g/L",
		entry{"g/L", 1}, entry{"mg/mL", 1}, entry{"µg/mL", 1e-3}, entry{"ng/mL", 1e-6}, entry{"ng/µL", 1e-3})

	// DoseStock is the stock table of the dose calculator, based on mg/mL.
	DoseStock = newTable("concentration", "mg/mL",
		entry{"mg/mL", 1}, entry{"µg/mL", 1e-3}, entry{"g/L", 1}, entry{"ng/mL", 1e-6}, entry{"µg/µL", 1})

	// DoseVolume is the final-volume table of the dose calculator, based on µL.
	DoseVolume = newTable("volume", "µL",
		entry{"mL", 1000}, entry{"µL", 1})
)

// Registry returns every shared table keyed by a stable name, for listing endpoints.
func Registry() map[string]Table {
	return map[string]Table{
		"volume":      Volume,
		"mass":        Mass,
		"molar":       Molar,
		"activity":    Activity,
		"mass_volume": MassPerVolume,
		"dose_stock":  DoseStock,
		"dose_volume": DoseVolume,
	}
}

package models

// VolumeReading is one volume expressed in the units a bench user reads.
type VolumeReading struct {
	Liters      float64 `json:"l"`
	Milliliters float64 `json:"ml"`
	Microliters float64 `json:"ul"`
}

// VolumeFromLiters scales a volume in liters into a VolumeReading.
func VolumeFromLiters(l float64) VolumeReading {
	return VolumeReading{Liters: l, Milliliters: l * 1e3, Microliters: l * 1e6}
}

// MassReading is a mass in g and mg.
type MassReading struct {
	Grams      float64 `json:"g"`
	Milligrams float64 `json:"mg"`
}

// MassFromGrams scales a mass in grams into a MassReading.
func MassFromGrams(g float64) MassReading {
	return MassReading{Grams: g, Milligrams: g * 1e3}
}

// MolarityReading is a molarity in M and mM.
type MolarityReading struct {
	Molar      float64 `json:"m"`
	Millimolar float64 `json:"mm"`
}

// MolarityFromMolar scales a molarity in M into a MolarityReading.
func MolarityFromMolar(m float64) MolarityReading {
	return MolarityReading{Molar: m, Millimolar: m * 1e3}
}

// MassConcentrationReading is a mass/volume concentration. g/L and mg/mL are the
// same magnitude; both are reported so callers do not have to know that.
type MassConcentrationReading struct {
	GramsPerLiter   float64 `json:"g_per_l"`
	MilligramsPerML float64 `json:"mg_per_ml"`
}

// MassConcentrationFromGL builds a MassConcentrationReading from g/L.
func MassConcentrationFromGL(gl float64) MassConcentrationReading {
	return MassConcentrationReading{GramsPerLiter: gl, MilligramsPerML: gl}
}

// DilutionResult is the outcome of a C1V1=C2V2 dilution.
type DilutionResult struct {
	Take  VolumeReading `json:"take"`
	Add   VolumeReading `json:"add"`
	Final VolumeReading `json:"final"`
}

// MolarityResult holds whichever quantity of the molarity triangle was solved.
type MolarityResult struct {
	SolveFor string           `json:"solve_for"`
	Mass     *MassReading     `json:"mass,omitempty"`
	Volume   *VolumeReading   `json:"volume,omitempty"`
	Molarity *MolarityReading `json:"molarity,omitempty"`
}

// ReconstitutionResult is the solvent volume to add to a lyophilized mass.
type ReconstitutionResult struct {
	Solvent VolumeReading `json:"solvent"`
}

// MassVolumeResult holds whichever quantity of mass = concentration x volume was solved.
type MassVolumeResult struct {
	SolveFor      string                    `json:"solve_for"`
	Mass          *MassReading              `json:"mass,omitempty"`
	Volume        *VolumeReading            `json:"volume,omitempty"`
	Concentration *MassConcentrationReading `json:"concentration,omitempty"`
}

// CellSeedingResult describes how to prepare a cell suspension. Volumes in mL.
type CellSeedingResult struct {
	StockML       float64 `json:"stock_ml"`
	StockUL       float64 `json:"stock_ul"`
	MediaML       float64 `json:"media_ml"`
	FinalVolumeML float64 `json:"final_volume_ml"`
	TotalCells    float64 `json:"total_cells"`
}

// PlateSeedingResult describes a master mix for seeding a plate.
type PlateSeedingResult struct {
	PlateType      string  `json:"plate_type"`
	Wells          int     `json:"wells"`
	OverheadWells  int     `json:"overhead_wells"`
	ExtraWells     int     `json:"extra_wells"`
	SeedingDensity float64 `json:"seeding_density"`
	SurfaceAreaCM2 float64 `json:"surface_area_cm2"`
	MediaPerWellML float64 `json:"media_per_well_ml"`
	TotalCells     float64 `json:"total_cells"`
	FinalCellConc  float64 `json:"final_cell_conc"`
	MasterMixML    float64 `json:"master_mix_ml"`
	StockML        float64 `json:"stock_ml"`
	StockUL        float64 `json:"stock_ul"`
	MediaML        float64 `json:"media_ml"`
}

package models

// Quantity is a raw magnitude and unit as typed by the user.
type Quantity struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// DilutionRequest asks for a simple C1V1=C2V2 dilution.
type DilutionRequest struct {
	Stock       Quantity `json:"stock"`
	Final       Quantity `json:"final"`
	FinalVolume Quantity `json:"final_volume"`
}

// MolarityRequest solves mass = molarity x volume x MW for one unknown.
// SolveFor is one of "mass", "volume", "molarity".
type MolarityRequest struct {
	SolveFor        string   `json:"solve_for" binding:"required"`
	MolecularWeight string   `json:"molecular_weight"`
	Mass            Quantity `json:"mass"`
	Volume          Quantity `json:"volume"`
	Molarity        Quantity `json:"molarity"`
}

// ReconstitutionRequest asks how much solvent brings a mass to a concentration.
type ReconstitutionRequest struct {
	Mass            Quantity `json:"mass"`
	Concentration   Quantity `json:"concentration"`
	MolecularWeight string   `json:"molecular_weight"`
}

// MassVolumeRequest solves mass = concentration x volume for one unknown.
// SolveFor is one of "mass", "volume", "concentration".
type MassVolumeRequest struct {
	SolveFor      string   `json:"solve_for" binding:"required"`
	Mass          Quantity `json:"mass"`
	Volume        Quantity `json:"volume"`
	Concentration Quantity `json:"concentration"`
}

// CellSeedingRequest dilutes a cell suspension. Concentrations are cells/mL and
// the volume is mL; no unit conversion is applied.
type CellSeedingRequest struct {
	StockConcentration string `json:"stock_concentration"`
	FinalConcentration string `json:"final_concentration"`
	FinalVolumeML      string `json:"final_volume_ml"`
}

// PlateSeedingRequest prepares a master mix for seeding wells of a plate.
type PlateSeedingRequest struct {
	PlateType           string `json:"plate_type" binding:"required"`
	Wells               string `json:"wells"`
	SeedingDensity      string `json:"seeding_density"`
	StockConcentration  string `json:"stock_concentration"`
	CustomSurfaceArea   string `json:"custom_surface_area_cm2"`
	CustomMediaVolumeUL string `json:"custom_media_volume_ul"`
	WellVolumeML        string `json:"well_volume_ml"`
}

// PlannerSettings carries the optional pipetting configuration of a plan.
// Empty fields fall back to the server defaults.
type PlannerSettings struct {
	OveragePercent   string `json:"overage_percent"`
	MinPipetteUL     string `json:"min_pipette_ul"`
	MaxPipetteUL     string `json:"max_pipette_ul"`
	PreferredFactors string `json:"preferred_factors"`
}

// SerialDoseRequest asks for a protocol delivering an exact mass in a final volume.
type SerialDoseRequest struct {
	Stock                Quantity        `json:"stock"`
	FinalMass            Quantity        `json:"final_mass"`
	FinalVolume          Quantity        `json:"final_volume"`
	IntermediateVolumeUL string          `json:"intermediate_volume_ul"`
	Settings             PlannerSettings `json:"settings"`
}

// SerialDilutionRequest drives the serial dilution planner. Only the fields of
// the selected Mode are read.
type SerialDilutionRequest struct {
	Mode            string   `json:"mode" binding:"required"`
	Source          Quantity `json:"source"`
	MolecularWeight string   `json:"molecular_weight"`

	Target        Quantity `json:"target"`
	FinalVolumeML string   `json:"final_volume_ml"`

	Intermediate         Quantity `json:"intermediate"`
	IntermediateVolumeML string   `json:"intermediate_volume_ml"`
	SecondTarget         Quantity `json:"second_target"`
	SecondVolumeML       string   `json:"second_volume_ml"`

	SeriesValues   string `json:"series_values"`
	SeriesUnit     string `json:"series_unit"`
	SeriesVolumeML string `json:"series_volume_ml"`

	Factor         string `json:"factor"`
	Steps          string `json:"steps"`
	FactorVolumeML string `json:"factor_volume_ml"`

	FinalMass            Quantity `json:"final_mass"`
	DoseVolume           Quantity `json:"dose_volume"`
	IntermediateVolumeUL string   `json:"intermediate_volume_ul"`

	Settings PlannerSettings `json:"settings"`
}

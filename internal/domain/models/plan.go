package models

// PlanMode identifies how a serial dilution plan was built.
type PlanMode string

const (
	ModeSingle       PlanMode = "single"
	ModeTwoStage     PlanMode = "intermediate"
	ModeSeriesList   PlanMode = "series_list"
	ModeSeriesFactor PlanMode = "series_factor"
	ModeDose         PlanMode = "dose"
)

// DilutionStep is one pipetting operation. Volumes are in µL.
type DilutionStep struct {
	Index    int           `json:"index"`
	Label    string        `json:"label"`
	Source   string        `json:"source"`
	TakeUL   float64       `json:"take_ul"`
	AddUL    float64       `json:"add_ul"`
	ResultUL float64       `json:"result_ul"`
	Result   Concentration `json:"result_concentration"`
	Pipette  string        `json:"pipette,omitempty"`
	Final    bool          `json:"final,omitempty"`
}

// ResultML returns the step's result volume in mL.
func (s DilutionStep) ResultML() float64 {
	return s.ResultUL / 1000
}

// DilutionPlan is the ordered output of the serial dilution planner.
type DilutionPlan struct {
	Mode      PlanMode       `json:"mode"`
	Steps     []DilutionStep `json:"steps"`
	Rationale string         `json:"rationale,omitempty"`
	Notes     []string       `json:"notes,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

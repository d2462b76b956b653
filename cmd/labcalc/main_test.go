package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/server/handlers"
	"github.com/mamadbah2/labcalc/internal/server/router"
	"github.com/mamadbah2/labcalc/internal/service/calculator"
	"github.com/mamadbah2/labcalc/internal/service/planner"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

// run executes the CLI with an empty environment and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "PLATE_PRESETS_FILE",
		"PLANNER_OVERAGE_PERCENT", "PLANNER_MIN_PIPETTE_UL", "PLANNER_MAX_PIPETTE_UL", "PLANNER_PREFERRED_FACTORS",
		"LABCALC_SERVER_URL", "LABCALC_CLIENT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func TestDilution_Text(t *testing.T) {
	out, err := run(t, "dilution", "--stock", "10 mM", "--final", "100 µM", "--volume", "1 mL")
	require.NoError(t, err)

	assert.Contains(t, out, "Take stock")
	assert.Contains(t, out, "10 µL")
	assert.Contains(t, out, "990 µL")
	assert.Contains(t, out, "1 mL")
}

func TestDilution_CalculationError(t *testing.T) {
	_, err := run(t, "dilution", "--stock", "1 mM", "--final", "5 mM", "--volume", "1 mL")
	require.ErrorIs(t, err, models.ErrDomain)
}

func TestQuantityFlag_RequiresUnit(t *testing.T) {
	_, err := run(t, "dilution", "--stock", "10mM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected VALUE UNIT")
}

func TestQuantityValue_Set(t *testing.T) {
	cases := map[string]models.Quantity{
		"10 mM":                {Value: "10", Unit: "mM"},
		"  2.5 million IU/mL ": {Value: "2.5 million", Unit: "IU/mL"},
		"1e-3\tg/L":            {Value: "1e-3", Unit: "g/L"},
	}
	for raw, want := range cases {
		var q models.Quantity
		require.NoError(t, quantityValue{q: &q}.Set(raw), raw)
		assert.Equal(t, want, q, raw)
		assert.Equal(t, want.Value+" "+want.Unit, quantityValue{q: &q}.String())
	}
}

func TestSerialDilution_JSON(t *testing.T) {
	out, err := run(t, "--json", "serial",
		"--mode", "series_factor", "--source", "1 M", "--factor", "10", "--steps", "3", "--tube-ml", "1")
	require.NoError(t, err)

	var plan models.DilutionPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, models.ModeSeriesFactor, plan.Mode)
	require.Len(t, plan.Steps, 3)
	for _, step := range plan.Steps {
		assert.InDelta(t, 100, step.TakeUL, 1e-9)
		assert.InDelta(t, 900, step.AddUL, 1e-9)
	}
	assert.InDelta(t, 1e-3, plan.Steps[2].Result.Value, 1e-12)
}

func TestSerialDilution_TextWithWarnings(t *testing.T) {
	out, err := run(t, "serial",
		"--mode", "single", "--source", "10 mM", "--target", "10 µM", "--final-volume-ml", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Mode: single")
	assert.Contains(t, out, "STEP")
	assert.Contains(t, out, "10 µM")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "outside pipetting range")
}

func TestSerialDilution_SettingsFlags(t *testing.T) {
	out, err := run(t, "--json", "serial",
		"--mode", "single", "--source", "10 mM", "--target", "1 mM", "--final-volume-ml", "1",
		"--overage", "10")
	require.NoError(t, err)

	var plan models.DilutionPlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan.Steps, 1)
	assert.InDelta(t, 110, plan.Steps[0].TakeUL, 1e-9)
	assert.InDelta(t, 1100, plan.Steps[0].ResultUL, 1e-9)
}

func TestSerialDose(t *testing.T) {
	out, err := run(t, "serial-dose",
		"--stock", "1 mg/mL", "--mass", "1 µg", "--volume", "1 mL", "--intermediate-ul", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: dose")
	assert.Contains(t, out, "direct dilution")
}

func TestListings(t *testing.T) {
	out, err := run(t, "plates")
	require.NoError(t, err)
	assert.Contains(t, out, "96-well")
	assert.Contains(t, out, "384-well")

	out, err = run(t, "units")
	require.NoError(t, err)
	assert.Contains(t, out, "activity")
	assert.Contains(t, out, "IU/mL")
}

func TestPlatePresetsFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`plates:
  - name: T25 flask
    surface_area_cm2: 25
    media_volume_ml: 5
`), 0o600))

	for _, key := range []string{"LABCALC_SERVER_URL", "LABCALC_CLIENT_TIMEOUT"} {
		t.Setenv(key, "")
	}
	var out bytes.Buffer
	root := newRootCmd(&out)
	t.Setenv("PLATE_PRESETS_FILE", path)
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "plates"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "T25 flask")
}

func TestRemoteBackend(t *testing.T) {
	svc := calculator.NewService(nil, planner.DefaultConfig(), nil)
	srv := httptest.NewServer(router.New(handlers.NewCalculationHandler(svc, nil), nil))
	t.Cleanup(srv.Close)

	out, err := run(t, "--server", srv.URL, "serial",
		"--mode", "series_factor", "--source", "100 µM", "--factor", "2", "--steps", "2", "--tube-ml", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: series_factor")
	assert.Contains(t, out, "tube 1")

	_, err = run(t, "--server", srv.URL, "cell-seeding", "--stock", "1e5", "--final", "1e6", "--volume-ml", "10")
	require.ErrorIs(t, err, models.ErrDomain)
}

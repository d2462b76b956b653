package units_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/labcalc/internal/domain/models"
	"github.com/mamadbah2/labcalc/internal/units"
)

func TestParseNumber_Shorthand(t *testing.T) {
	cases := map[string]float64{
		"25k":         25000,
		"2.5 million": 2.5e6,
		"2.5million":  2.5e6,
		"3x10^5":      3e5,
		"1.5x10^-3":   1.5e-3,
		"  42  ":      42,
		"1e3":         1000,
		"0.5":         0.5,
		"-4":          -4,
		"25K":         25000,
		"7 MILLION":   7e6,
	}
	for raw, want := range cases {
		got, err := units.ParseNumber(raw)
		require.NoError(t, err, raw)
		assert.InDelta(t, want, got, math.Abs(want)*1e-12+1e-15, raw)
	}
}

func TestParseNumber_Invalid(t *testing.T) {
	for _, raw := range []string{"abc", "", "   ", "k", "1,000", "NaN", "inf", "12abc", "0x1p-2", "-0X10"} {
		_, err := units.ParseNumber(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, models.ErrParse, raw)
		assert.Contains(t, err.Error(), "Invalid number input")
	}
}

func TestToBase(t *testing.T) {
	v, err := units.ToBase("250", "µL", units.Volume, "volume")
	require.NoError(t, err)
	assert.InDelta(t, 250e-6, v, 1e-15)

	v, err = units.ToBase("250", "uL", units.Volume, "volume")
	require.NoError(t, err)
	assert.InDelta(t, 250e-6, v, 1e-15, "ascii alias")

	_, err = units.ToBase("-1", "mL", units.Volume, "volume")
	require.ErrorIs(t, err, models.ErrParse)
	assert.Equal(t, "Invalid volume input. Must be a non-negative number.", err.Error())

	_, err = units.ToBase("1", "gallon", units.Volume, "volume")
	require.ErrorIs(t, err, models.ErrParse)
	assert.Equal(t, "Unsupported volume unit: gallon", err.Error())

	_, err = units.ToBase("x", "gallon", units.Volume, "volume")
	assert.Contains(t, err.Error(), "Invalid number input", "parse error wins over unit error")
}

func TestParseConcentration(t *testing.T) {
	c, err := units.ParseConcentration("10", "mM")
	require.NoError(t, err)
	assert.Equal(t, models.KindMolar, c.Kind)
	assert.InDelta(t, 0.01, c.Value, 1e-15)

	c, err = units.ParseConcentration("5", "µg/mL")
	require.NoError(t, err)
	assert.Equal(t, models.KindMassPerVolume, c.Kind)
	assert.InDelta(t, 5e-3, c.Value, 1e-15)

	c, err = units.ParseConcentration("2", "kIU/mL")
	require.NoError(t, err)
	assert.Equal(t, models.KindActivity, c.Kind)
	assert.InDelta(t, 2000, c.Value, 1e-9)

	c, err = units.ParseConcentration("10", "X")
	require.NoError(t, err)
	assert.Equal(t, models.Concentration{Kind: models.KindRatio, Value: 10}, c)

	_, err = units.ParseConcentration("0", "X")
	require.ErrorIs(t, err, models.ErrParse)
	assert.Equal(t, "X-factor must be a positive number.", err.Error())

	_, err = units.ParseConcentration("1", "ppm")
	assert.Equal(t, "Unsupported concentration unit: ppm", err.Error())

	c, err = units.ParseConcentration("-3", "mg/mL")
	require.NoError(t, err, "negative mass/vol is left to the caller")
	assert.InDelta(t, -3, c.Value, 1e-12)
}

func TestKindOf(t *testing.T) {
	k, ok := units.KindOf("nM")
	assert.True(t, ok)
	assert.Equal(t, models.KindMolar, k)

	_, ok = units.KindOf("furlong")
	assert.False(t, ok)
}

func TestTableUnitsOmitAliases(t *testing.T) {
	assert.Equal(t, []string{"L", "mL", "µL", "nL"}, units.Volume.Units())
	assert.Equal(t, "L", units.Volume.Base())
	assert.Contains(t, units.Registry(), "mass_volume")
}

func TestParseList(t *testing.T) {
	got, err := units.ParseList("10, 5,4 ,,3,2")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 5, 4, 3, 2}, got)

	got, err = units.ParseList("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = units.ParseList("10,five")
	assert.ErrorIs(t, err, models.ErrParse)
}

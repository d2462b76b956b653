// Package format renders calculation results the way bench protocols print them.
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Number formats large values with k/M suffixes and values below 1 with three
// significant digits: 2500000 -> "2.50M", 100000 -> "100k", 0.0005 -> "0.000500".
func Number(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 2, 64) + "M"
	case abs >= 1e3:
		return strings.TrimSuffix(strconv.FormatFloat(v/1e3, 'f', 1, 64), ".0") + "k"
	case abs >= 1:
		return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
	default:
		return Precision(v, 3)
	}
}

// Dose formats pipetting volumes: up to four decimals with digit grouping, and
// three significant digits below 1e-3.
func Dose(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.Abs(v) < 1e-3 {
		return Precision(v, 3)
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(4)))
}

// Concentration formats a mass/volume concentration given in mg/mL, choosing
// mg/mL, µg/mL or ng/mL so the number stays readable.
func Concentration(mgPerML float64) string {
	if mgPerML == 0 {
		return "0 mg/mL"
	}
	ngPerML := mgPerML * 1e6
	switch {
	case ngPerML >= 1e6:
		return Number(mgPerML) + " mg/mL"
	case ngPerML >= 1000:
		return Number(mgPerML*1000) + " µg/mL"
	default:
		return Number(ngPerML) + " ng/mL"
	}
}

// Precision renders v with p significant digits, switching to exponent notation
// for very small or very large magnitudes.
func Precision(v float64, p int) string {
	if v == 0 {
		return strconv.FormatFloat(0, 'f', p-1, 64)
	}
	sci := strconv.FormatFloat(v, 'e', p-1, 64)
	mantissa, expPart, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expPart)

	if exp < -6 || exp >= p {
		sign := "+"
		if exp < 0 {
			sign = "-"
		}
		return mantissa + "e" + sign + strconv.Itoa(int(math.Abs(float64(exp))))
	}
	return strconv.FormatFloat(v, 'f', p-1-exp, 64)
}

package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/mamadbah2/labcalc/pkg/format"
)

const factorTolerance = 1e-9

// PipetteFor suggests the instrument for transferring ul microliters.
func PipetteFor(ul float64) string {
	switch {
	case ul < 0.5:
		return "P2 (tip pre-wet, 2–3×)"
	case ul <= 2:
		return "P2"
	case ul <= 10:
		return "P10"
	case ul <= 20:
		return "P20"
	case ul <= 200:
		return "P200"
	case ul <= 1000:
		return "P1000"
	default:
		return "serological pipet"
	}
}

// FactorPath decomposes an overall dilution factor into preferred factors.
// Exact divisors are taken greedily in preference order; whatever is left is
// covered by the smallest preferred factor that reaches it, or by the largest
// one repeatedly. The product of the path is never below overall.
func FactorPath(overall float64, preferred []float64) []float64 {
	var factors []float64
	for _, f := range preferred {
		if f > 1 && !math.IsInf(f, 0) {
			factors = append(factors, f)
		}
	}
	if len(factors) == 0 || !(overall > 1+factorTolerance) || math.IsInf(overall, 0) {
		return nil
	}

	var path []float64
	remaining := overall
	for _, f := range factors {
		for remaining > 1+factorTolerance && divides(remaining, f) {
			path = append(path, f)
			remaining /= f
		}
	}

	for remaining > 1+factorTolerance {
		f := smallestCovering(factors, remaining)
		path = append(path, f)
		remaining /= f
	}
	return path
}

func divides(n, f float64) bool {
	q := n / f
	return q >= 1-factorTolerance && math.Abs(q-math.Round(q)) <= factorTolerance*q
}

func smallestCovering(factors []float64, n float64) float64 {
	best, largest := 0.0, 0.0
	for _, f := range factors {
		if f >= n-factorTolerance && (best == 0 || f < best) {
			best = f
		}
		largest = math.Max(largest, f)
	}
	if best == 0 {
		return largest
	}
	return best
}

// checkPipetting attaches one warning per step whose take volume falls outside
// the configured pipetting range.
func (b *builder) checkPipetting() {
	minUL, maxUL := b.cfg.MinPipetteUL, b.cfg.MaxPipetteUL
	for _, s := range b.plan.Steps {
		if s.TakeUL >= minUL && s.TakeUL <= maxUL {
			continue
		}

		msg := fmt.Sprintf("Step %s: take %s µL outside pipetting range (%g-%g µL). Consider adding an intermediate pre-dilution or changing factor.",
			s.Label, format.Dose(s.TakeUL), minUL, maxUL)
		if s.TakeUL > 0 && s.TakeUL < minUL {
			if path := FactorPath(minUL/s.TakeUL, b.cfg.PreferredFactors); len(path) > 0 {
				msg += fmt.Sprintf(" Suggested pre-dilution of the %s: %s.", s.Source, describePath(path))
			}
		}
		b.warn("%s", msg)
	}
}

func describePath(path []float64) string {
	parts := make([]string, len(path))
	for i, f := range path {
		parts[i] = fmt.Sprintf("%g×", f)
	}
	return strings.Join(parts, " then ")
}

package quote

import "math"

// RoundToQuarter rounds v to the nearest quarter point (.0, .25, .5, .75).
// The fractional thresholds are half-open: [.125,.375) maps to .25 and so on,
// with [.875,1) carrying into the next integer. Non-finite inputs are
// returned unchanged rather than failing.
func RoundToQuarter(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	integer, frac := math.Modf(v)

	switch {
	case frac < 0.125:
		frac = 0
	case frac < 0.375:
		frac = 0.25
	case frac < 0.625:
		frac = 0.5
	case frac < 0.875:
		frac = 0.75
	default:
		integer++
		frac = 0
	}

	return integer + frac
}

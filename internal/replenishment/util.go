package replenishment

import "math"

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

// derefOrZero treats an unknown value as zero, for sorting and totals.
func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

package replenishment

// serviceLevelZ maps a target fill rate to a safety factor. Sorted descending by probability.
var serviceLevelZ = []struct {
	probability float64
	z           float64
}{
	{0.99, 2.33},
	{0.98, 2.05},
	{0.97, 1.88},
	{0.96, 1.75},
	{0.95, 1.65},
	{0.94, 1.55},
	{0.93, 1.48},
	{0.92, 1.41},
	{0.91, 1.34},
	{0.90, 1.28},
	{0.85, 1.04},
	{0.80, 0.84},
}

// fallbackZ applies below the lowest table entry.
const fallbackZ = 0.67

// ZScore returns the safety factor for serviceLevel. It is a step function: the
// first entry whose probability does not exceed serviceLevel wins.
func ZScore(serviceLevel float64) float64 {
	for _, e := range serviceLevelZ {
		if e.probability <= serviceLevel {
			return e.z
		}
	}
	return fallbackZ
}

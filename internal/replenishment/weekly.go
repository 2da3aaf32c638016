package replenishment

import "sort"

// WeeklyQuantities is a sparse week number -> quantity mapping used for supply
// schedules and demand forecasts. A week that is not present reads as zero.
type WeeklyQuantities map[int]float64

// Get returns the quantity for week, or zero when the week is absent.
func (w WeeklyQuantities) Get(week int) float64 {
	return w[week]
}

// Lookup returns the quantity for week and whether the week has an entry.
func (w WeeklyQuantities) Lookup(week int) (float64, bool) {
	v, ok := w[week]
	return v, ok
}

// Weeks returns the populated week numbers in ascending order.
func (w WeeklyQuantities) Weeks() []int {
	weeks := make([]int, 0, len(w))
	for week := range w {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks
}

// Add accumulates qty into week, creating the entry if needed.
// Only callers building a schedule use this; the engine never mutates its inputs.
func (w WeeklyQuantities) Add(week int, qty float64) {
	w[week] += qty
}

// positiveMean returns the mean of the strictly positive values and whether any existed.
func (w WeeklyQuantities) positiveMean() (float64, bool) {
	var sum float64
	var n int
	for _, week := range w.Weeks() {
		if v := w[week]; v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

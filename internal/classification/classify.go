// Package classification segments SKUs into the ABC/XYZ matrix that drives
// replenishment policy.
package classification

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ABC cut-offs on the cumulative share of annual consumption value.
	abcAThreshold = 0.80
	abcBThreshold = 0.96

	// XYZ cut-offs on the coefficient of variation of monthly demand.
	xyzXThreshold = 0.5
	xyzYThreshold = 1.0

	// MinMonthsForXYZ is the history needed to measure variability instead of estimating it.
	MinMonthsForXYZ = 6

	weeksPerYear = 52
)

// Item is one SKU to classify.
type Item struct {
	SKUCode         string
	AvgWeeklyDemand float64
}

// Input is the data a classification run works from. Costs and Monthly are
// keyed by the codes of the source systems, which may differ from SKUCode by a
// trailing "GT".
type Input struct {
	Items   []Item
	Costs   map[string]float64
	Monthly map[string]map[string]float64 // code -> month (YYYY-MM) -> quantity out
}

// SKUClass is the classification of one SKU.
type SKUClass struct {
	SKUCode      string   `json:"sku_code"`
	ABC          string   `json:"abc_class"`
	XYZ          string   `json:"xyz_class"`
	MatrixCell   string   `json:"matrix_cell"`
	UnitCost     float64  `json:"unit_cost"`
	AnnualValue  float64  `json:"annual_consumption_value"`
	CV           *float64 `json:"cv_demand"` // nil when variability is unbounded
	XYZEstimated bool     `json:"xyz_estimated"`
	MonthsOfData int      `json:"months_of_data"`
}

// Result is a full classification run.
type Result struct {
	Classes    []SKUClass     `json:"classes"`
	TotalValue float64        `json:"total_annual_value"`
	CellCounts map[string]int `json:"cell_counts"`
	Estimated  int            `json:"estimated_count"`
}

// Classify computes ABC and XYZ classes for every item, in input order.
func Classify(in Input) Result {
	classes := make([]SKUClass, len(in.Items))
	for i, item := range in.Items {
		classes[i] = SKUClass{SKUCode: item.SKUCode}
		if cost, ok := lookup(in.Costs, item.SKUCode); ok {
			classes[i].UnitCost = cost
		}
		classes[i].AnnualValue = item.AvgWeeklyDemand * weeksPerYear * classes[i].UnitCost
	}

	res := Result{Classes: classes, CellCounts: make(map[string]int)}
	res.TotalValue = assignABC(classes)

	for i, item := range in.Items {
		monthly, _ := lookup(in.Monthly, item.SKUCode)
		assignXYZ(&classes[i], item.AvgWeeklyDemand, monthly)
		if classes[i].XYZEstimated {
			res.Estimated++
		}
		classes[i].MatrixCell = classes[i].ABC + classes[i].XYZ
		res.CellCounts[classes[i].MatrixCell]++
	}

	return res
}

// assignABC ranks by annual value and assigns classes by cumulative share.
func assignABC(classes []SKUClass) float64 {
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return classes[order[a]].AnnualValue > classes[order[b]].AnnualValue
	})

	total := decimal.Zero
	for _, c := range classes {
		total = total.Add(decimal.NewFromFloat(c.AnnualValue))
	}

	if !total.IsPositive() {
		for i := range classes {
			classes[i].ABC = "C"
		}
		return total.InexactFloat64()
	}

	a, b := decimal.NewFromFloat(abcAThreshold), decimal.NewFromFloat(abcBThreshold)
	cumulative := decimal.Zero
	anyA := false
	for _, idx := range order {
		cumulative = cumulative.Add(decimal.NewFromFloat(classes[idx].AnnualValue))
		share := cumulative.Div(total)
		switch {
		case share.LessThanOrEqual(a):
			classes[idx].ABC = "A"
			anyA = true
		case share.LessThanOrEqual(b):
			classes[idx].ABC = "B"
		default:
			classes[idx].ABC = "C"
		}
	}

	// a dominant SKU can push the first share past the A cut-off
	if !anyA && len(order) > 0 {
		classes[order[0]].ABC = "A"
	}

	return total.InexactFloat64()
}

// assignXYZ measures variability from monthly history, or estimates it from
// weekly volume when there is not enough history.
func assignXYZ(c *SKUClass, avgWeekly float64, monthly map[string]float64) {
	c.MonthsOfData = len(monthly)

	var cv float64
	if len(monthly) >= MinMonthsForXYZ {
		cv = coefficientOfVariation(monthValues(monthly))
	} else {
		c.XYZEstimated = true
		switch {
		case avgWeekly >= 10:
			cv = 0.6
		case avgWeekly >= 1:
			cv = 0.8
		case avgWeekly > 0:
			cv = 1.2
		default:
			cv = math.Inf(1)
		}
	}

	switch {
	case cv < xyzXThreshold:
		c.XYZ = "X"
	case cv < xyzYThreshold:
		c.XYZ = "Y"
	default:
		c.XYZ = "Z"
	}
	if !math.IsInf(cv, 1) {
		v := math.Round(cv*10000) / 10000
		c.CV = &v
	}
}

func monthValues(monthly map[string]float64) []float64 {
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = monthly[m]
	}
	return values
}

// coefficientOfVariation is the sample standard deviation over the mean. A
// non-positive mean is unbounded variability.
func coefficientOfVariation(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return math.Inf(1)
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean <= 0 {
		return math.Inf(1)
	}
	if n < 2 {
		return 0
	}

	sq := 0.0
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq/(n-1)) / mean
}

// lookup finds code in m, then tolerates a trailing "GT" on either side.
func lookup[V any](m map[string]V, code string) (V, bool) {
	if v, ok := m[code]; ok {
		return v, true
	}
	if trimmed := strings.TrimSuffix(code, "GT"); trimmed != code {
		if v, ok := m[trimmed]; ok {
			return v, true
		}
	}
	v, ok := m[code+"GT"]
	return v, ok
}

package replenishment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInvalidCurrentWeek is returned when the current week is not a positive week number.
var ErrInvalidCurrentWeek = errors.New("current week must be positive")

// Input is one batch computation over a set of SKUs.
type Input struct {
	SKUs         []SKU
	Inventory    map[string]float64          // on hand per SKU code; missing reads as 0
	Supply       map[string]WeeklyQuantities // incoming per SKU code
	Forecasts    map[string]WeeklyQuantities // optional
	CurrentWeek  int
	HorizonWeeks int
}

// Result is everything a batch computation produces.
type Result struct {
	Projections    []SKUProjection   `json:"projections"`
	Suggestions    []Suggestion      `json:"suggestions"`
	PurchaseOrders []ConsolidatedPO  `json:"purchase_orders"`
	Summary        ProjectionSummary `json:"summary"`
	Risk           RiskReport        `json:"risk"`
}

// ValidateWeek rejects week numbers that cannot be projected from.
func ValidateWeek(week int) error {
	if week <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCurrentWeek, week)
	}
	return nil
}

// ProjectionInputFor builds the projection input for one SKU of the batch.
func (in Input) ProjectionInputFor(sku SKU) ProjectionInput {
	return ProjectionInput{
		SKU:              sku,
		CurrentInventory: in.Inventory[sku.Code],
		CurrentWeek:      in.CurrentWeek,
		Supply:           in.Supply[sku.Code],
		Forecast:         in.Forecasts[sku.Code],
		HorizonWeeks:     in.HorizonWeeks,
	}
}

// Run projects every SKU sequentially and assembles the result.
func Run(in Input) (*Result, error) {
	if err := ValidateWeek(in.CurrentWeek); err != nil {
		return nil, err
	}

	projections := make([]SKUProjection, len(in.SKUs))
	for i, sku := range in.SKUs {
		projections[i] = ProjectSKU(in.ProjectionInputFor(sku))
	}

	return Assemble(projections, in.CurrentWeek, in.HorizonWeeks), nil
}

// Assemble derives suggestions, purchase orders, the summary and the risk report
// from already computed projections.
func Assemble(projections []SKUProjection, currentWeek, horizonWeeks int) *Result {
	if projections == nil {
		projections = make([]SKUProjection, 0)
	}
	if horizonWeeks <= 0 {
		horizonWeeks = DefaultHorizonWeeks
	}

	suggestions := GenerateSuggestions(projections, currentWeek)
	pos := ConsolidateBySupplier(suggestions)

	return &Result{
		Projections:    projections,
		Suggestions:    suggestions,
		PurchaseOrders: pos,
		Summary:        Summarize(projections, suggestions, pos, currentWeek, horizonWeeks),
		Risk:           BuildRiskReport(projections, suggestions, currentWeek),
	}
}

// Summarize rolls projections and suggestions up into dashboard totals with a
// per-supplier breakdown sorted by supplier code.
func Summarize(projections []SKUProjection, suggestions []Suggestion, pos []ConsolidatedPO, currentWeek, horizonWeeks int) ProjectionSummary {
	summary := ProjectionSummary{
		CurrentWeek:    currentWeek,
		WeekStartDate:  WeekStartDate(currentWeek),
		HorizonWeeks:   horizonWeeks,
		TotalSKUs:      len(projections),
		BySupplier:     make([]SupplierBreakdown, 0),
		PurchaseOrders: pos,
	}
	if summary.PurchaseOrders == nil {
		summary.PurchaseOrders = make([]ConsolidatedPO, 0)
	}

	bySupplier := make(map[string]*SupplierBreakdown)
	costs := make(map[string]decimal.Decimal)
	breakdown := func(code string) *SupplierBreakdown {
		code = supplierOrUnknown(code)
		b, ok := bySupplier[code]
		if !ok {
			b = &SupplierBreakdown{SupplierCode: code}
			bySupplier[code] = b
		}
		return b
	}

	for _, p := range projections {
		b := breakdown(p.SKU.SupplierCode)
		b.SKUCount++
		switch p.Urgency {
		case UrgencyCritical:
			summary.CriticalCount++
			b.CriticalCount++
		case UrgencyWarning:
			summary.WarningCount++
			b.WarningCount++
		default:
			summary.OKCount++
		}
	}

	total := decimal.Zero
	for _, s := range suggestions {
		b := breakdown(s.SupplierCode)
		b.SuggestionCount++
		b.TotalOrderQty += s.SuggestedOrderQty

		cost := decimal.NewFromFloat(derefOrZero(s.EstimatedCost))
		costs[b.SupplierCode] = costs[b.SupplierCode].Add(cost)
		total = total.Add(cost)

		summary.SuggestionCount++
		summary.TotalOrderQty += s.SuggestedOrderQty
	}
	summary.TotalEstimatedCost = total.InexactFloat64()

	for code, b := range bySupplier {
		b.TotalCost = costs[code].InexactFloat64()
		summary.BySupplier = append(summary.BySupplier, *b)
	}
	sort.Slice(summary.BySupplier, func(i, j int) bool {
		return summary.BySupplier[i].SupplierCode < summary.BySupplier[j].SupplierCode
	})

	return summary
}

// FilterBySupplier keeps the SKUs of one supplier. An empty code keeps everything.
func FilterBySupplier(skus []SKU, supplierCode string) []SKU {
	if supplierCode == "" {
		return skus
	}
	out := make([]SKU, 0)
	for _, s := range skus {
		if supplierOrUnknown(s.SupplierCode) == supplierCode {
			out = append(out, s)
		}
	}
	return out
}

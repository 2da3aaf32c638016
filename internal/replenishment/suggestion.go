package replenishment

import (
	"math"
	"sort"
)

// GenerateSuggestions turns risky projections into order suggestions. The result
// lists CRITICAL before WARNING, then by descending estimated cost.
func GenerateSuggestions(projections []SKUProjection, currentWeek int) []Suggestion {
	suggestions := make([]Suggestion, 0)
	for i := range projections {
		if s, ok := suggest(&projections[i], currentWeek); ok {
			suggestions = append(suggestions, s)
		}
	}

	sortSuggestions(suggestions)
	return suggestions
}

// suggest builds the suggestion for one projection, if policy allows one this week.
func suggest(p *SKUProjection, currentWeek int) (Suggestion, bool) {
	sku := p.SKU
	if sku.AvgWeeklyDemand <= 0 || sku.LeadTimeWeeks <= 0 || p.Urgency == UrgencyOK {
		return Suggestion{}, false
	}

	critical := p.Urgency == UrgencyCritical
	if sku.Method == MethodOnDemand && !critical {
		return Suggestion{}, false
	}
	if !critical && !sku.Review.IsReviewWeek(currentWeek) {
		return Suggestion{}, false
	}

	arrivalWeek := currentWeek + sku.LeadTimeWeeks
	projectedAtArrival := p.projectedAt(arrivalWeek)

	gap := p.TargetInventory - projectedAtArrival
	if gap <= 0 {
		return Suggestion{}, false
	}

	qty := roundOrderQty(gap, sku.MOQ)
	orderQty := float64(qty)

	s := Suggestion{
		SKUCode:            sku.Code,
		Description:        sku.Description,
		SupplierCode:       sku.SupplierCode,
		MatrixCell:         sku.MatrixCell,
		Method:             sku.Method,
		Urgency:            p.Urgency,
		CurrentInventory:   p.CurrentInventory,
		InventoryPosition:  p.InventoryPosition,
		SafetyStock:        p.SafetyStockUnits,
		ReorderPoint:       p.ReorderPoint,
		TargetInventory:    p.TargetInventory,
		StockoutWeek:       p.StockoutWeek,
		ReorderTriggerWeek: p.ReorderTriggerWeek,
		LeadTimeWeeks:      sku.LeadTimeWeeks,
		MOQ:                sku.MOQ,
		ArrivalWeek:        arrivalWeek,
		ArrivalDate:        WeekStartDate(arrivalWeek),
		ProjectedAtArrival: projectedAtArrival,
		RawGap:             roundFloat(gap, 1),
		SuggestedOrderQty:  qty,
		WeeksOfCover:       roundFloat(orderQty/sku.AvgWeeklyDemand, 1),
		DaysOfSupply:       int(math.Round(p.CurrentInventory / (sku.AvgWeeklyDemand / 7))),
	}

	if sku.UnitCost != nil {
		s.EstimatedCost = floatPtr(math.Round(orderQty * *sku.UnitCost))
	}
	if sku.QtyPerContainer != nil && *sku.QtyPerContainer > 0 {
		s.EstimatedContainers = floatPtr(roundFloat(orderQty / *sku.QtyPerContainer, 1))
	}
	if sku.UnitWeight != nil {
		s.TotalWeight = floatPtr(math.Round(orderQty * *sku.UnitWeight))
	}

	return s, true
}

// roundOrderQty rounds a positive gap up to the next multiple of moq, or to the
// next whole unit when moq is 1 or unset.
func roundOrderQty(gap float64, moq int) int {
	if moq > 1 {
		m := float64(moq)
		return int(math.Ceil(gap/m) * m)
	}
	return int(math.Ceil(gap))
}

func sortSuggestions(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		ri, rj := suggestions[i].Urgency.rank(), suggestions[j].Urgency.rank()
		if ri != rj {
			return ri < rj
		}
		return derefOrZero(suggestions[i].EstimatedCost) > derefOrZero(suggestions[j].EstimatedCost)
	})
}

package replenishment

import (
	"fmt"
	"sort"
)

const (
	// noDemandCover is reported as weeks of cover when there is no demand.
	noDemandCover = 999
	// noStockoutSortKey places items without a stockout week after all others.
	noStockoutSortKey = 9999
)

// BuildRiskReport classifies every projection into critical, warning and ok buckets.
func BuildRiskReport(projections []SKUProjection, suggestions []Suggestion, currentWeek int) RiskReport {
	bySKU := make(map[string]*Suggestion, len(suggestions))
	for i := range suggestions {
		bySKU[suggestions[i].SKUCode] = &suggestions[i]
	}

	report := RiskReport{
		CurrentWeek:   currentWeek,
		WeekStartDate: WeekStartDate(currentWeek),
		CriticalItems: make([]RiskItem, 0),
		WarningItems:  make([]RiskItem, 0),
		OKItems:       make([]RiskItem, 0),
	}

	for i := range projections {
		p := &projections[i]
		item := buildRiskItem(p, bySKU[p.SKU.Code], currentWeek)

		switch p.Urgency {
		case UrgencyCritical:
			report.CriticalItems = append(report.CriticalItems, item)
		case UrgencyWarning:
			report.WarningItems = append(report.WarningItems, item)
		default:
			report.OKItems = append(report.OKItems, item)
		}

		if p.Urgency != UrgencyOK && !item.HasSuggestion {
			report.UnmitigatedRiskCount++
		}
		if p.DemandSource == DemandForecast {
			report.ForecastDrivenCount++
		} else {
			report.HistoricalCount++
		}
	}

	sort.SliceStable(report.CriticalItems, func(i, j int) bool {
		return stockoutSortKey(report.CriticalItems[i]) < stockoutSortKey(report.CriticalItems[j])
	})
	sort.SliceStable(report.WarningItems, func(i, j int) bool {
		return report.WarningItems[i].WeeksOfCover < report.WarningItems[j].WeeksOfCover
	})

	report.CriticalCount = len(report.CriticalItems)
	report.WarningCount = len(report.WarningItems)
	report.OKCount = len(report.OKItems)
	report.TotalSKUs = len(projections)

	return report
}

func buildRiskItem(p *SKUProjection, s *Suggestion, currentWeek int) RiskItem {
	sku := p.SKU

	item := RiskItem{
		SKUCode:          sku.Code,
		Description:      sku.Description,
		SupplierCode:     sku.SupplierCode,
		MatrixCell:       sku.MatrixCell,
		RiskLevel:        p.Urgency,
		RiskType:         classifyRiskType(p),
		DemandSource:     p.DemandSource,
		CurrentInventory: p.CurrentInventory,
		WeeksOfCover:     noDemandCover,
		SafetyStock:      p.SafetyStockUnits,
		ReorderPoint:     p.ReorderPoint,
		StockoutWeek:     p.StockoutWeek,
		ArrivalWeek:      currentWeek + sku.LeadTimeWeeks,
	}
	if sku.AvgWeeklyDemand > 0 {
		item.WeeksOfCover = roundFloat(p.CurrentInventory/sku.AvgWeeklyDemand, 1)
	}
	if p.StockoutWeek != nil {
		d := WeekStartDate(*p.StockoutWeek)
		item.StockoutDate = &d
	}

	item.ProjectedAtArrival = p.projectedAt(item.ArrivalWeek)
	if s != nil {
		item.HasSuggestion = true
		item.SuggestedOrderQty = s.SuggestedOrderQty
		item.ArrivalWeek = s.ArrivalWeek
		item.ProjectedAtArrival = s.ProjectedAtArrival
	}
	item.MitigationStatus = classifyMitigation(item.ProjectedAtArrival, item.SuggestedOrderQty, p.SafetyStockUnits)

	item.ActionNote = actionNote(item, p)
	item.CustomerImpactNote = impactNote(item, currentWeek)

	return item
}

// classifyRiskType picks the most severe threshold crossed anywhere on the curve.
func classifyRiskType(p *SKUProjection) RiskType {
	switch {
	case p.hasStatus(StatusStockout):
		return RiskStockout
	case p.hasStatus(StatusCritical):
		return RiskBelowSafety
	case p.hasStatus(StatusWarning):
		return RiskBelowReorder
	default:
		return RiskLowCover
	}
}

func classifyMitigation(projectedAtArrival float64, orderQty int, safetyStock float64) MitigationStatus {
	afterOrder := projectedAtArrival + float64(orderQty)
	switch {
	case afterOrder > safetyStock:
		return MitigationCovered
	case afterOrder > 0:
		return MitigationPartial
	default:
		return MitigationNone
	}
}

func stockoutSortKey(item RiskItem) int {
	if item.StockoutWeek == nil {
		return noStockoutSortKey
	}
	return *item.StockoutWeek
}

func actionNote(item RiskItem, p *SKUProjection) string {
	if item.HasSuggestion {
		return fmt.Sprintf("Order %d units from %s now, arriving W%d (%s)",
			item.SuggestedOrderQty, supplierOrUnknown(item.SupplierCode), item.ArrivalWeek, WeekStartDate(item.ArrivalWeek).Format(dateLayout))
	}

	switch {
	case item.RiskLevel == UrgencyOK:
		return "No action needed"
	case p.SKU.AvgWeeklyDemand <= 0 || p.SKU.LeadTimeWeeks <= 0:
		return "Missing demand or lead time data, review SKU master data"
	case p.SKU.Method == MethodOnDemand:
		return "On-demand SKU, order only against confirmed customer demand"
	case !p.SKU.Review.IsReviewWeek(p.CurrentWeek):
		return fmt.Sprintf("Review at next %s review", p.SKU.Review)
	default:
		return "Pipeline covers target inventory, monitor inbound shipments"
	}
}

func impactNote(item RiskItem, currentWeek int) string {
	switch {
	case item.RiskType == RiskStockout && item.StockoutWeek != nil:
		weeksAway := *item.StockoutWeek - currentWeek
		note := fmt.Sprintf("Projected stockout in W%d (%s), %d weeks out",
			*item.StockoutWeek, item.StockoutDate.Format(dateLayout), weeksAway)
		if item.MitigationStatus == MitigationCovered {
			return note + ", covered by the suggested order"
		}
		return note + ", customer orders at risk"
	case item.RiskType == RiskStockout || item.RiskType == RiskBelowSafety:
		return "Inventory dips below safety stock, service level at risk"
	case item.RiskType == RiskBelowReorder:
		return "Inventory falls below reorder point, no customer impact expected if ordered on time"
	default:
		if item.WeeksOfCover >= noDemandCover {
			return "No recorded demand"
		}
		return fmt.Sprintf("%.1f weeks of cover on hand", item.WeeksOfCover)
	}
}

package replenishment

import (
	"sort"

	"github.com/shopspring/decimal"
)

// UnknownSupplier groups suggestions whose SKU has no supplier code.
const UnknownSupplier = "Unknown"

// ConsolidateBySupplier groups suggestions into one purchase order per supplier,
// ordered by descending total cost.
//
// A single item with unknown weight makes the supplier's TotalWeight nil: a
// partial weight is misleading for container planning. Container estimates are
// summed over the items that have a known container size.
func ConsolidateBySupplier(suggestions []Suggestion) []ConsolidatedPO {
	type group struct {
		po         ConsolidatedPO
		cost       decimal.Decimal
		weight     decimal.Decimal
		weightOK   bool
		containers decimal.Decimal
		anyBox     bool
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, s := range suggestions {
		code := s.SupplierCode
		if code == "" {
			code = UnknownSupplier
		}

		g, ok := groups[code]
		if !ok {
			g = &group{
				po:       ConsolidatedPO{SupplierCode: code, Items: make([]Suggestion, 0)},
				weightOK: true,
			}
			groups[code] = g
			order = append(order, code)
		}

		g.po.Items = append(g.po.Items, s)
		g.po.ItemCount++
		g.po.TotalQty += s.SuggestedOrderQty
		g.cost = g.cost.Add(decimal.NewFromFloat(derefOrZero(s.EstimatedCost)))

		if s.TotalWeight == nil {
			g.weightOK = false
		} else if g.weightOK {
			g.weight = g.weight.Add(decimal.NewFromFloat(*s.TotalWeight))
		}

		if s.EstimatedContainers != nil {
			g.containers = g.containers.Add(decimal.NewFromFloat(*s.EstimatedContainers))
			g.anyBox = true
		}

		if s.Urgency == UrgencyCritical {
			g.po.CriticalCount++
		}
		if s.ArrivalWeek > g.po.ExpectedArrivalWeek {
			g.po.ExpectedArrivalWeek = s.ArrivalWeek
		}
	}

	pos := make([]ConsolidatedPO, 0, len(order))
	for _, code := range order {
		g := groups[code]
		g.po.TotalCost = g.cost.InexactFloat64()
		if g.weightOK {
			g.po.TotalWeight = floatPtr(g.weight.InexactFloat64())
		}
		if g.anyBox {
			g.po.EstimatedContainers = floatPtr(g.containers.Round(1).InexactFloat64())
		}
		g.po.ExpectedArrivalDate = WeekStartDate(g.po.ExpectedArrivalWeek)
		pos = append(pos, g.po)
	}

	sort.SliceStable(pos, func(i, j int) bool {
		return pos[i].TotalCost > pos[j].TotalCost
	})

	return pos
}

package replenishment

// ProjectionInput is everything needed to project one SKU forward.
type ProjectionInput struct {
	SKU              SKU
	CurrentInventory float64
	CurrentWeek      int
	Supply           WeeklyQuantities
	Forecast         WeeklyQuantities // optional
	HorizonWeeks     int              // <= 0 means DefaultHorizonWeeks
}

// ProjectSKU simulates inventory week by week and classifies the SKU's urgency.
func ProjectSKU(in ProjectionInput) SKUProjection {
	sku := in.SKU
	horizon := in.HorizonWeeks
	if horizon <= 0 {
		horizon = DefaultHorizonWeeks
	}

	// 1. Pick the demand source: forecast mean when any positive forecast exists
	effectiveDemand := sku.AvgWeeklyDemand
	source := DemandHistorical
	if mean, ok := in.Forecast.positiveMean(); ok {
		effectiveDemand = mean
		source = DemandForecast
	}

	// 2. Thresholds on the effective demand
	th := CalculateThresholds(ThresholdInput{
		AvgWeeklyDemand: effectiveDemand,
		CVDemand:        sku.CVDemand,
		LeadTimeWeeks:   sku.LeadTimeWeeks,
		ServiceLevel:    sku.ServiceLevel,
		Multiplier:      sku.SafetyStockMultiplier,
		TargetWOH:       sku.TargetWOH,
	})

	pos := CalculatePosition(in.CurrentInventory, in.Supply)

	p := SKUProjection{
		SKU:                   sku,
		CurrentWeek:           in.CurrentWeek,
		CurrentInventory:      in.CurrentInventory,
		EffectiveWeeklyDemand: roundFloat(effectiveDemand, 1),
		SafetyStockUnits:      roundFloat(th.SafetyStockUnits, 1),
		SafetyStockWeeks:      roundFloat(th.SafetyStockWeeks, 1),
		ReorderPoint:          roundFloat(th.ReorderPoint, 1),
		TargetInventory:       roundFloat(th.TargetInventory, 1),
		InventoryPosition:     roundFloat(pos.InventoryPosition, 1),
		TotalInTransit:        roundFloat(pos.TotalInTransit, 1),
		IncomingSchedule:      pos.Arrivals,
		Weeks:                 make([]ProjectionWeek, 0, horizon),
		DemandSource:          source,
	}

	// 3. Week loop over the unrounded running balance
	projected := in.CurrentInventory
	for i := 0; i < horizon; i++ {
		week := in.CurrentWeek + i + 1

		demand := effectiveDemand
		if v, ok := in.Forecast.Lookup(week); ok {
			demand = v
		}
		arriving := in.Supply.Get(week)

		projected += arriving - demand

		status := StatusOK
		switch {
		case projected <= 0:
			status = StatusStockout
		case projected < th.SafetyStockUnits:
			status = StatusCritical
		case projected < th.ReorderPoint:
			status = StatusWarning
		}

		if projected <= 0 && p.StockoutWeek == nil {
			p.StockoutWeek = intPtr(week)
		}
		if projected < th.ReorderPoint && p.ReorderTriggerWeek == nil {
			p.ReorderTriggerWeek = intPtr(week)
		}

		p.Weeks = append(p.Weeks, ProjectionWeek{
			Week:               week,
			Date:               WeekStartDate(week),
			ProjectedInventory: roundFloat(projected, 1),
			Demand:             roundFloat(demand, 1),
			Arrivals:           arriving,
			SafetyStock:        p.SafetyStockUnits,
			ReorderPoint:       p.ReorderPoint,
			TargetInventory:    p.TargetInventory,
			Status:             status,
		})
	}

	p.Urgency = classifyUrgency(in.CurrentWeek, sku, p.StockoutWeek, p.ReorderTriggerWeek)

	return p
}

// classifyUrgency ties urgency to how soon the SKU can be reviewed and restocked:
// a stockout inside the lead time is critical, a reorder trigger inside the next
// review cycle plus lead time is a warning.
func classifyUrgency(currentWeek int, sku SKU, stockoutWeek, reorderTriggerWeek *int) Urgency {
	urgencyHorizon := currentWeek + sku.Review.CycleWeeks() + sku.LeadTimeWeeks

	if stockoutWeek != nil && *stockoutWeek <= currentWeek+sku.LeadTimeWeeks {
		return UrgencyCritical
	}
	if reorderTriggerWeek != nil && *reorderTriggerWeek <= urgencyHorizon {
		return UrgencyWarning
	}
	return UrgencyOK
}

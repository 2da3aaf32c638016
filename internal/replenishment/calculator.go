package replenishment

import "math"

// ThresholdInput carries the demand statistics and policy used to size buffers.
type ThresholdInput struct {
	AvgWeeklyDemand float64
	CVDemand        float64
	LeadTimeWeeks   int
	ServiceLevel    float64
	Multiplier      float64
	TargetWOH       float64
}

// Thresholds holds the derived inventory levels for one SKU. Values are unrounded.
type Thresholds struct {
	SafetyStockUnits float64
	SafetyStockWeeks float64
	ReorderPoint     float64
	// TargetInventory covers warehouse-only stock contracted by the customer. With
	// long lead times it is routinely below ReorderPoint; that is expected.
	TargetInventory float64
}

// CalculateThresholds computes safety stock, reorder point and target inventory.
func CalculateThresholds(in ThresholdInput) Thresholds {
	var t Thresholds

	multiplier := in.Multiplier
	if multiplier <= 0 {
		multiplier = 1.0
	}

	// 1. Safety stock = z × σ_weekly × √LT × multiplier, capped at the target weeks-on-hand
	if in.AvgWeeklyDemand > 0 && in.LeadTimeWeeks > 0 {
		sigma := in.AvgWeeklyDemand * in.CVDemand
		ss := ZScore(in.ServiceLevel) * sigma * math.Sqrt(float64(in.LeadTimeWeeks)) * multiplier
		ss = math.Max(0, ss)
		if in.TargetWOH > 0 {
			ss = math.Min(ss, in.AvgWeeklyDemand*in.TargetWOH)
		}
		t.SafetyStockUnits = ss
	}

	// 2. Safety stock expressed in weeks of demand
	if in.AvgWeeklyDemand > 0 {
		t.SafetyStockWeeks = t.SafetyStockUnits / in.AvgWeeklyDemand
	}

	// 3. Reorder point = lead-time demand + safety stock
	if in.AvgWeeklyDemand > 0 && in.LeadTimeWeeks > 0 {
		t.ReorderPoint = in.AvgWeeklyDemand*float64(in.LeadTimeWeeks) + t.SafetyStockUnits
	}

	// 4. Target inventory = demand × target weeks-on-hand
	t.TargetInventory = math.Max(0, in.AvgWeeklyDemand*in.TargetWOH)

	return t
}

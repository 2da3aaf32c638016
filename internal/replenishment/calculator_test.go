package replenishment

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestZScore(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0.995, 2.33},
		{0.99, 2.33},
		{0.975, 1.88},
		{0.95, 1.65},
		{0.949, 1.55},
		{0.90, 1.28},
		{0.87, 1.04},
		{0.80, 0.84},
		{0.79, 0.67},
		{0, 0.67},
	}

	for _, tt := range tests {
		if got := ZScore(tt.level); got != tt.want {
			t.Errorf("ZScore(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestCalculateThresholds_ReferenceExample(t *testing.T) {
	th := CalculateThresholds(ThresholdInput{
		AvgWeeklyDemand: 10,
		CVDemand:        0.5,
		LeadTimeWeeks:   10,
		ServiceLevel:    0.95,
		Multiplier:      1.0,
		TargetWOH:       6,
	})

	wantSS := 1.65 * 5 * math.Sqrt(10)
	if !approxEqual(th.SafetyStockUnits, wantSS, 1e-9) {
		t.Errorf("SafetyStockUnits = %v, want %v", th.SafetyStockUnits, wantSS)
	}
	if !approxEqual(th.SafetyStockUnits, 26.09, 0.01) {
		t.Errorf("SafetyStockUnits = %v, want ~26.09", th.SafetyStockUnits)
	}
	if !approxEqual(th.ReorderPoint, 126.09, 0.01) {
		t.Errorf("ReorderPoint = %v, want ~126.09", th.ReorderPoint)
	}
	if th.TargetInventory != 60 {
		t.Errorf("TargetInventory = %v, want 60", th.TargetInventory)
	}
	if th.TargetInventory >= th.ReorderPoint {
		t.Errorf("expected target %v below reorder point %v for a long lead time", th.TargetInventory, th.ReorderPoint)
	}
}

func TestCalculateThresholds_Properties(t *testing.T) {
	tests := []struct {
		name string
		in   ThresholdInput
	}{
		{"capped by target weeks", ThresholdInput{AvgWeeklyDemand: 10, CVDemand: 2, LeadTimeWeeks: 16, ServiceLevel: 0.99, Multiplier: 1, TargetWOH: 4}},
		{"large multiplier", ThresholdInput{AvgWeeklyDemand: 3, CVDemand: 0.8, LeadTimeWeeks: 9, ServiceLevel: 0.97, Multiplier: 3, TargetWOH: 2}},
		{"no cap", ThresholdInput{AvgWeeklyDemand: 7, CVDemand: 0.3, LeadTimeWeeks: 4, ServiceLevel: 0.9, Multiplier: 1, TargetWOH: 0}},
		{"zero variability", ThresholdInput{AvgWeeklyDemand: 12, CVDemand: 0, LeadTimeWeeks: 2, ServiceLevel: 0.95, Multiplier: 1, TargetWOH: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := CalculateThresholds(tt.in)
			if tt.in.TargetWOH > 0 && th.SafetyStockUnits > tt.in.AvgWeeklyDemand*tt.in.TargetWOH+1e-9 {
				t.Errorf("safety stock %v exceeds cap %v", th.SafetyStockUnits, tt.in.AvgWeeklyDemand*tt.in.TargetWOH)
			}
			if th.ReorderPoint < th.SafetyStockUnits {
				t.Errorf("reorder point %v below safety stock %v", th.ReorderPoint, th.SafetyStockUnits)
			}
			if th.SafetyStockUnits < 0 {
				t.Errorf("negative safety stock %v", th.SafetyStockUnits)
			}
		})
	}
}

func TestCalculateThresholds_Degenerate(t *testing.T) {
	tests := []struct {
		name       string
		in         ThresholdInput
		wantSS     float64
		wantROP    float64
		wantTarget float64
	}{
		{"zero demand", ThresholdInput{CVDemand: 0.5, LeadTimeWeeks: 4, ServiceLevel: 0.95, TargetWOH: 6}, 0, 0, 0},
		{"zero lead time", ThresholdInput{AvgWeeklyDemand: 10, CVDemand: 0.5, ServiceLevel: 0.95, TargetWOH: 6}, 0, 0, 60},
		{"non-positive multiplier reads as one", ThresholdInput{AvgWeeklyDemand: 10, CVDemand: 0.1, LeadTimeWeeks: 4, ServiceLevel: 0.95, Multiplier: 0, TargetWOH: 6}, 1.65 * 1 * 2, 40 + 3.3, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := CalculateThresholds(tt.in)
			if !approxEqual(th.SafetyStockUnits, tt.wantSS, 1e-9) {
				t.Errorf("SafetyStockUnits = %v, want %v", th.SafetyStockUnits, tt.wantSS)
			}
			if !approxEqual(th.ReorderPoint, tt.wantROP, 1e-9) {
				t.Errorf("ReorderPoint = %v, want %v", th.ReorderPoint, tt.wantROP)
			}
			if !approxEqual(th.TargetInventory, tt.wantTarget, 1e-9) {
				t.Errorf("TargetInventory = %v, want %v", th.TargetInventory, tt.wantTarget)
			}
		})
	}
}

func TestCalculatePosition(t *testing.T) {
	pos := CalculatePosition(50, WeeklyQuantities{14: 30, 12: 20, 13: 0, 15: -5})

	if pos.TotalInTransit != 50 {
		t.Errorf("TotalInTransit = %v, want 50", pos.TotalInTransit)
	}
	if pos.InventoryPosition != 100 {
		t.Errorf("InventoryPosition = %v, want 100", pos.InventoryPosition)
	}
	if len(pos.Arrivals) != 2 || pos.Arrivals[0].Week != 12 || pos.Arrivals[1].Week != 14 {
		t.Errorf("Arrivals = %+v, want weeks 12 and 14 in order", pos.Arrivals)
	}

	empty := CalculatePosition(7, nil)
	if empty.InventoryPosition != 7 || empty.TotalInTransit != 0 || len(empty.Arrivals) != 0 {
		t.Errorf("empty schedule position = %+v", empty)
	}
}

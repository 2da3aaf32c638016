package replenishment

import (
	"reflect"
	"testing"
	"time"
)

func testSKU(code string, opts ...func(*SKU)) SKU {
	s := SKU{
		Code:                  code,
		Description:           "Item " + code,
		SupplierCode:          "SUP-A",
		MatrixCell:            "AX",
		AvgWeeklyDemand:       10,
		CVDemand:              0,
		LeadTimeWeeks:         2,
		MOQ:                   1,
		ServiceLevel:          0.95,
		TargetWOH:             4,
		SafetyStockMultiplier: 1,
		Method:                MethodAuto,
		Review:                ReviewWeekly,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func TestWeekStartDate(t *testing.T) {
	tests := []struct {
		week int
		want time.Time
	}{
		{1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{2, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		{53, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := WeekStartDate(tt.week); !got.Equal(tt.want) {
			t.Errorf("WeekStartDate(%d) = %v, want %v", tt.week, got, tt.want)
		}
	}
}

func TestCurrentWeekNumber(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"epoch", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{"end of first week", time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC), 1},
		{"second week", time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), 2},
		{"before epoch", time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), 1},
		{"a year later", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 53},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentWeekNumber(tt.now); got != tt.want {
				t.Errorf("CurrentWeekNumber(%v) = %d, want %d", tt.now, got, tt.want)
			}
		})
	}
}

func TestProjectSKU_ZeroInventoryStocksOutImmediately(t *testing.T) {
	sku := testSKU("Z1", func(s *SKU) {
		s.AvgWeeklyDemand = 5
		s.CVDemand = 0.5
		s.LeadTimeWeeks = 4
	})

	p := ProjectSKU(ProjectionInput{SKU: sku, CurrentInventory: 0, CurrentWeek: 10})

	if len(p.Weeks) != DefaultHorizonWeeks {
		t.Fatalf("got %d weeks, want %d", len(p.Weeks), DefaultHorizonWeeks)
	}
	for _, w := range p.Weeks {
		if w.ProjectedInventory >= 0 {
			t.Errorf("week %d projected %v, want negative", w.Week, w.ProjectedInventory)
		}
		if w.Status != StatusStockout {
			t.Errorf("week %d status %s, want STOCKOUT", w.Week, w.Status)
		}
	}
	if p.StockoutWeek == nil || *p.StockoutWeek != 11 {
		t.Errorf("StockoutWeek = %v, want 11", p.StockoutWeek)
	}
	if p.Urgency != UrgencyCritical {
		t.Errorf("Urgency = %s, want CRITICAL", p.Urgency)
	}
	if p.DemandSource != DemandHistorical {
		t.Errorf("DemandSource = %s, want historical", p.DemandSource)
	}
}

func TestProjectSKU_WeekNumbersAreContiguous(t *testing.T) {
	p := ProjectSKU(ProjectionInput{SKU: testSKU("W1"), CurrentInventory: 100, CurrentWeek: 37, HorizonWeeks: 12})

	if len(p.Weeks) != 12 {
		t.Fatalf("got %d weeks, want 12", len(p.Weeks))
	}
	for i, w := range p.Weeks {
		if w.Week != 37+i+1 {
			t.Errorf("week[%d] = %d, want %d", i, w.Week, 37+i+1)
		}
		if !w.Date.Equal(WeekStartDate(w.Week)) {
			t.Errorf("week %d date %v does not match calendar", w.Week, w.Date)
		}
	}
}

func TestProjectSKU_Idempotent(t *testing.T) {
	in := ProjectionInput{
		SKU:              testSKU("I1", func(s *SKU) { s.CVDemand = 0.7; s.LeadTimeWeeks = 6 }),
		CurrentInventory: 42,
		CurrentWeek:      20,
		Supply:           WeeklyQuantities{22: 15, 25: 40, 31: 10},
		Forecast:         WeeklyQuantities{21: 12, 22: 0, 23: 9.5},
	}

	first := ProjectSKU(in)
	second := ProjectSKU(in)
	if !reflect.DeepEqual(first, second) {
		t.Error("two projections of identical input differ")
	}
}

func TestProjectSKU_Statuses(t *testing.T) {
	// SS 0, ROP 20, target 40
	sku := testSKU("S1")
	p := ProjectSKU(ProjectionInput{
		SKU:              sku,
		CurrentInventory: 35,
		CurrentWeek:      8,
		Supply:           WeeklyQuantities{12: 10},
		HorizonWeeks:     5,
	})

	want := []struct {
		projected float64
		status    WeekStatus
	}{
		{25, StatusOK},
		{15, StatusWarning},
		{5, StatusWarning},
		{5, StatusWarning},
		{-5, StatusStockout},
	}
	for i, w := range want {
		got := p.Weeks[i]
		if got.ProjectedInventory != w.projected || got.Status != w.status {
			t.Errorf("week %d = (%v, %s), want (%v, %s)", got.Week, got.ProjectedInventory, got.Status, w.projected, w.status)
		}
	}
	if p.ReorderTriggerWeek == nil || *p.ReorderTriggerWeek != 10 {
		t.Errorf("ReorderTriggerWeek = %v, want 10", p.ReorderTriggerWeek)
	}
	if p.StockoutWeek == nil || *p.StockoutWeek != 13 {
		t.Errorf("StockoutWeek = %v, want 13", p.StockoutWeek)
	}
	if p.InventoryPosition != 45 || p.TotalInTransit != 10 {
		t.Errorf("position = (%v, %v), want (45, 10)", p.InventoryPosition, p.TotalInTransit)
	}
}

func TestProjectSKU_ForecastOverridesHistory(t *testing.T) {
	sku := testSKU("F1", func(s *SKU) { s.AvgWeeklyDemand = 100 })

	p := ProjectSKU(ProjectionInput{
		SKU:              sku,
		CurrentInventory: 50,
		CurrentWeek:      4,
		Forecast:         WeeklyQuantities{5: 0, 6: 10, 7: 20},
		HorizonWeeks:     4,
	})

	if p.DemandSource != DemandForecast {
		t.Fatalf("DemandSource = %s, want forecast", p.DemandSource)
	}
	if p.EffectiveWeeklyDemand != 15 {
		t.Errorf("EffectiveWeeklyDemand = %v, want 15", p.EffectiveWeeklyDemand)
	}

	wantDemand := []float64{0, 10, 20, 15}
	for i, w := range p.Weeks {
		if w.Demand != wantDemand[i] {
			t.Errorf("week %d demand = %v, want %v", w.Week, w.Demand, wantDemand[i])
		}
	}
	if p.Weeks[3].ProjectedInventory != 5 {
		t.Errorf("final projection = %v, want 5", p.Weeks[3].ProjectedInventory)
	}
}

func TestProjectSKU_ZeroForecastFallsBackToHistory(t *testing.T) {
	p := ProjectSKU(ProjectionInput{
		SKU:              testSKU("F2"),
		CurrentInventory: 100,
		CurrentWeek:      4,
		Forecast:         WeeklyQuantities{5: 0, 6: 0},
		HorizonWeeks:     3,
	})

	if p.DemandSource != DemandHistorical {
		t.Errorf("DemandSource = %s, want historical", p.DemandSource)
	}
	// explicit zero entries still apply to their own week
	if p.Weeks[0].Demand != 0 || p.Weeks[2].Demand != 10 {
		t.Errorf("demands = %v, %v; want 0, 10", p.Weeks[0].Demand, p.Weeks[2].Demand)
	}
}

func TestProjectSKU_StockoutUsesUnroundedBalance(t *testing.T) {
	// 0.04 rounds to 0.0 for display but is still in stock
	sku := testSKU("R1", func(s *SKU) { s.AvgWeeklyDemand = 0.98; s.TargetWOH = 0 })
	p := ProjectSKU(ProjectionInput{SKU: sku, CurrentInventory: 1.02, CurrentWeek: 1, HorizonWeeks: 1})

	w := p.Weeks[0]
	if w.ProjectedInventory != 0 {
		t.Fatalf("display value = %v, want 0", w.ProjectedInventory)
	}
	if w.Status == StatusStockout || p.StockoutWeek != nil {
		t.Errorf("status = %s, stockout = %v; want no stockout", w.Status, p.StockoutWeek)
	}
}

func TestClassifyUrgency(t *testing.T) {
	tests := []struct {
		name     string
		review   ReviewFrequency
		stockout *int
		trigger  *int
		want     Urgency
	}{
		{"stockout inside lead time", ReviewWeekly, intPtr(12), intPtr(11), UrgencyCritical},
		{"stockout after lead time, trigger inside horizon", ReviewWeekly, intPtr(13), intPtr(13), UrgencyWarning},
		{"trigger beyond weekly horizon", ReviewWeekly, nil, intPtr(14), UrgencyOK},
		{"trigger inside monthly horizon", ReviewMonthly, nil, intPtr(16), UrgencyWarning},
		{"trigger beyond monthly horizon", ReviewMonthly, nil, intPtr(17), UrgencyOK},
		{"biweekly horizon edge", ReviewBiweekly, nil, intPtr(14), UrgencyWarning},
		{"nothing crossed", ReviewWeekly, nil, nil, UrgencyOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sku := testSKU("U", func(s *SKU) { s.Review = tt.review })
			if got := classifyUrgency(10, sku, tt.stockout, tt.trigger); got != tt.want {
				t.Errorf("classifyUrgency() = %s, want %s", got, tt.want)
			}
		})
	}
}

package replenishment

import (
	"testing"
)

func projectAndSuggest(t *testing.T, sku SKU, inventory float64, week int) (SKUProjection, []Suggestion) {
	t.Helper()
	p := ProjectSKU(ProjectionInput{SKU: sku, CurrentInventory: inventory, CurrentWeek: week})
	return p, GenerateSuggestions([]SKUProjection{p}, week)
}

func TestGenerateSuggestions_Gating(t *testing.T) {
	tests := []struct {
		name        string
		sku         SKU
		inventory   float64
		week        int
		wantUrgency Urgency
		wantQty     int // 0 means no suggestion
	}{
		{"auto warning", testSKU("G1"), 25, 8, UrgencyWarning, 35},
		{"on demand warning is skipped", testSKU("G2", func(s *SKU) { s.Method = MethodOnDemand }), 25, 8, UrgencyWarning, 0},
		{"on demand critical is suggested", testSKU("G3", func(s *SKU) { s.Method = MethodOnDemand }), 15, 8, UrgencyCritical, 45},
		{"monthly warning off review week", testSKU("G4", func(s *SKU) { s.Review = ReviewMonthly }), 25, 9, UrgencyWarning, 0},
		{"monthly warning on review week", testSKU("G5", func(s *SKU) { s.Review = ReviewMonthly }), 25, 8, UrgencyWarning, 35},
		{"monthly critical off review week", testSKU("G6", func(s *SKU) { s.Review = ReviewMonthly }), 15, 9, UrgencyCritical, 45},
		{"biweekly warning off review week", testSKU("G7", func(s *SKU) { s.Review = ReviewBiweekly }), 25, 7, UrgencyWarning, 0},
		{"ok is skipped", testSKU("G8"), 500, 8, UrgencyOK, 0},
		{"zero demand is skipped", testSKU("G9", func(s *SKU) { s.AvgWeeklyDemand = 0 }), 0, 8, UrgencyCritical, 0},
		{"zero lead time is skipped", testSKU("G10", func(s *SKU) { s.LeadTimeWeeks = 0 }), 0, 8, UrgencyWarning, 0},
		{"pipeline already above target", testSKU("G11", func(s *SKU) { s.LeadTimeWeeks = 10; s.TargetWOH = 2 }), 200, 1, UrgencyWarning, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, got := projectAndSuggest(t, tt.sku, tt.inventory, tt.week)
			if p.Urgency != tt.wantUrgency {
				t.Fatalf("urgency = %s, want %s", p.Urgency, tt.wantUrgency)
			}
			if tt.wantQty == 0 {
				if len(got) != 0 {
					t.Errorf("got %d suggestions, want none: %+v", len(got), got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("got %d suggestions, want 1", len(got))
			}
			if got[0].SuggestedOrderQty != tt.wantQty {
				t.Errorf("qty = %d, want %d", got[0].SuggestedOrderQty, tt.wantQty)
			}
		})
	}
}

func TestGenerateSuggestions_DerivedFields(t *testing.T) {
	sku := testSKU("D1", func(s *SKU) {
		s.AvgWeeklyDemand = 5
		s.CVDemand = 0.5
		s.LeadTimeWeeks = 4
		s.MOQ = 12
		s.UnitCost = floatPtr(2.5)
		s.UnitWeight = floatPtr(1.25)
		s.QtyPerContainer = floatPtr(100)
	})

	_, got := projectAndSuggest(t, sku, 0, 10)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	s := got[0]

	if s.ArrivalWeek != 14 || !s.ArrivalDate.Equal(WeekStartDate(14)) {
		t.Errorf("arrival = W%d %v, want W14", s.ArrivalWeek, s.ArrivalDate)
	}
	if s.ProjectedAtArrival != -20 {
		t.Errorf("ProjectedAtArrival = %v, want -20", s.ProjectedAtArrival)
	}
	if s.RawGap != 40 {
		t.Errorf("RawGap = %v, want 40", s.RawGap)
	}
	if s.SuggestedOrderQty != 48 {
		t.Errorf("SuggestedOrderQty = %d, want 48", s.SuggestedOrderQty)
	}
	if s.WeeksOfCover != 9.6 {
		t.Errorf("WeeksOfCover = %v, want 9.6", s.WeeksOfCover)
	}
	if s.EstimatedCost == nil || *s.EstimatedCost != 120 {
		t.Errorf("EstimatedCost = %v, want 120", s.EstimatedCost)
	}
	if s.EstimatedContainers == nil || *s.EstimatedContainers != 0.5 {
		t.Errorf("EstimatedContainers = %v, want 0.5", s.EstimatedContainers)
	}
	if s.TotalWeight == nil || *s.TotalWeight != 60 {
		t.Errorf("TotalWeight = %v, want 60", s.TotalWeight)
	}
	if s.DaysOfSupply != 0 {
		t.Errorf("DaysOfSupply = %d, want 0", s.DaysOfSupply)
	}
}

func TestGenerateSuggestions_UnknownValuesStayNil(t *testing.T) {
	sku := testSKU("N1", func(s *SKU) { s.QtyPerContainer = floatPtr(0) })
	_, got := projectAndSuggest(t, sku, 15, 8)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	if got[0].EstimatedCost != nil || got[0].TotalWeight != nil || got[0].EstimatedContainers != nil {
		t.Errorf("derived fields should be nil: %+v", got[0])
	}
}

func TestGenerateSuggestions_ArrivalBeyondHorizon(t *testing.T) {
	sku := testSKU("H1", func(s *SKU) { s.LeadTimeWeeks = 30; s.TargetWOH = 8 })
	p := ProjectSKU(ProjectionInput{SKU: sku, CurrentInventory: 0, CurrentWeek: 5, HorizonWeeks: 20})
	got := GenerateSuggestions([]SKUProjection{p}, 5)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	// last simulated week is W25 at -200
	if got[0].ProjectedAtArrival != -200 || got[0].SuggestedOrderQty != 280 {
		t.Errorf("arrival projection %v qty %d, want -200 and 280", got[0].ProjectedAtArrival, got[0].SuggestedOrderQty)
	}
}

func TestRoundOrderQty(t *testing.T) {
	tests := []struct {
		gap  float64
		moq  int
		want int
	}{
		{35, 12, 36},
		{36, 12, 36},
		{0.5, 1, 1},
		{10.2, 0, 11},
		{1, 50, 50},
		{100.01, 25, 125},
	}
	for _, tt := range tests {
		if got := roundOrderQty(tt.gap, tt.moq); got != tt.want {
			t.Errorf("roundOrderQty(%v, %d) = %d, want %d", tt.gap, tt.moq, got, tt.want)
		}
	}
}

func TestRoundOrderQty_SmallestMultiple(t *testing.T) {
	for _, gap := range []float64{0.1, 1, 7.5, 23, 99.9, 144, 1000.3} {
		for moq := 2; moq <= 48; moq++ {
			q := roundOrderQty(gap, moq)
			if q%moq != 0 {
				t.Fatalf("roundOrderQty(%v, %d) = %d, not a multiple", gap, moq, q)
			}
			if float64(q) < gap || float64(q-moq) >= gap {
				t.Fatalf("roundOrderQty(%v, %d) = %d, not the smallest multiple >= gap", gap, moq, q)
			}
		}
	}
}

func TestSortSuggestions(t *testing.T) {
	suggestions := []Suggestion{
		{SKUCode: "w-cheap", Urgency: UrgencyWarning, EstimatedCost: floatPtr(10)},
		{SKUCode: "c-nil", Urgency: UrgencyCritical},
		{SKUCode: "w-dear", Urgency: UrgencyWarning, EstimatedCost: floatPtr(500)},
		{SKUCode: "c-dear", Urgency: UrgencyCritical, EstimatedCost: floatPtr(300)},
		{SKUCode: "c-nil-2", Urgency: UrgencyCritical},
	}
	sortSuggestions(suggestions)

	want := []string{"c-dear", "c-nil", "c-nil-2", "w-dear", "w-cheap"}
	for i, code := range want {
		if suggestions[i].SKUCode != code {
			t.Errorf("position %d = %s, want %s", i, suggestions[i].SKUCode, code)
		}
	}
}

func TestGenerateSuggestions_EmptyInput(t *testing.T) {
	got := GenerateSuggestions(nil, 10)
	if got == nil || len(got) != 0 {
		t.Errorf("GenerateSuggestions(nil) = %#v, want empty non-nil slice", got)
	}
}

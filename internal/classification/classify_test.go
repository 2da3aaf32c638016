package classification

import (
	"math"
	"testing"

	"github.com/andresuchdata/replenish/internal/replenishment"
)

func sixMonths(values ...float64) map[string]float64 {
	months := []string{"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06", "2025-07"}
	m := make(map[string]float64)
	for i, v := range values {
		m[months[i]] = v
	}
	return m
}

func TestClassify_ABC(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		costs map[string]float64
		want  []string
	}{
		{
			name:  "cumulative share",
			items: []Item{{"S4", 6}, {"S1", 70}, {"S2", 10}, {"S5", 4}, {"S3", 10}},
			costs: map[string]float64{"S1": 1, "S2": 1, "S3": 1, "S4": 1, "S5": 1},
			want:  []string{"B", "A", "A", "C", "B"},
		},
		{
			name:  "dominant sku is still A",
			items: []Item{{"BIG", 95}, {"SMALL", 5}},
			costs: map[string]float64{"BIG": 1, "SMALL": 1},
			want:  []string{"A", "C"},
		},
		{
			name:  "no value means all C",
			items: []Item{{"X1", 10}, {"X2", 0}},
			costs: map[string]float64{},
			want:  []string{"C", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(Input{Items: tt.items, Costs: tt.costs})
			for i, w := range tt.want {
				if res.Classes[i].ABC != w {
					t.Errorf("%s ABC = %s, want %s", res.Classes[i].SKUCode, res.Classes[i].ABC, w)
				}
			}
		})
	}
}

func TestClassify_XYZ(t *testing.T) {
	tests := []struct {
		name          string
		avg           float64
		monthly       map[string]float64
		wantXYZ       string
		wantCV        float64 // NaN means nil
		wantEstimated bool
	}{
		{"stable history", 20, sixMonths(100, 100, 100, 100, 100, 100), "X", 0, false},
		{"moderate history", 20, sixMonths(50, 150, 50, 150, 50, 150), "Y", 0.5477, false},
		{"erratic history", 20, sixMonths(0, 0, 0, 0, 0, 600), "Z", 2.4495, false},
		{"zero history", 20, sixMonths(0, 0, 0, 0, 0, 0), "Z", math.NaN(), false},
		{"short history, high volume", 12, sixMonths(1, 2, 3), "Y", 0.6, true},
		{"short history, medium volume", 3, nil, "Y", 0.8, true},
		{"short history, low volume", 0.5, nil, "Z", 1.2, true},
		{"no demand", 0, nil, "Z", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(Input{
				Items:   []Item{{"SKU", tt.avg}},
				Costs:   map[string]float64{"SKU": 1},
				Monthly: map[string]map[string]float64{"SKU": tt.monthly},
			})
			c := res.Classes[0]
			if c.XYZ != tt.wantXYZ {
				t.Errorf("XYZ = %s, want %s", c.XYZ, tt.wantXYZ)
			}
			if c.XYZEstimated != tt.wantEstimated {
				t.Errorf("XYZEstimated = %v, want %v", c.XYZEstimated, tt.wantEstimated)
			}
			switch {
			case math.IsNaN(tt.wantCV):
				if c.CV != nil {
					t.Errorf("CV = %v, want nil", *c.CV)
				}
			case c.CV == nil:
				t.Errorf("CV = nil, want %v", tt.wantCV)
			case math.Abs(*c.CV-tt.wantCV) > 1e-4:
				t.Errorf("CV = %v, want %v", *c.CV, tt.wantCV)
			}
		})
	}
}

func TestClassify_MatrixCellAndCounts(t *testing.T) {
	res := Classify(Input{
		Items: []Item{{"A1GT", 70}, {"B1", 20}, {"C1", 10}},
		Costs: map[string]float64{"A1": 1, "B1": 1, "C1": 1},
		Monthly: map[string]map[string]float64{
			"A1GT": sixMonths(10, 10, 10, 10, 10, 10),
			"C1GT": sixMonths(0, 0, 0, 0, 0, 600),
		},
	})

	want := []string{"AX", "BY", "CZ"}
	for i, w := range want {
		if res.Classes[i].MatrixCell != w {
			t.Errorf("%s cell = %s, want %s", res.Classes[i].SKUCode, res.Classes[i].MatrixCell, w)
		}
	}
	if res.Classes[0].UnitCost != 1 {
		t.Errorf("GT-suffixed code did not match its cost")
	}
	if res.Estimated != 1 {
		t.Errorf("Estimated = %d, want 1", res.Estimated)
	}
	if res.CellCounts["AX"] != 1 || res.CellCounts["CZ"] != 1 {
		t.Errorf("CellCounts = %v", res.CellCounts)
	}
	if res.TotalValue != 5200 {
		t.Errorf("TotalValue = %v", res.TotalValue)
	}
}

func TestLookup(t *testing.T) {
	m := map[string]int{"P100": 1, "Q200GT": 2}
	tests := []struct {
		code   string
		want   int
		wantOK bool
	}{
		{"P100", 1, true},
		{"P100GT", 1, true},
		{"Q200", 2, true},
		{"Q200GT", 2, true},
		{"R300", 0, false},
	}
	for _, tt := range tests {
		got, ok := lookup(m, tt.code)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("lookup(%q) = (%d, %v), want (%d, %v)", tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDefaultPolicies(t *testing.T) {
	policies := DefaultPolicies()
	if len(policies) != 9 {
		t.Fatalf("got %d policies, want 9", len(policies))
	}
	for _, p := range policies {
		if !p.Review.Valid() || !p.Method.Valid() {
			t.Errorf("%s has invalid enums: %s/%s", p.MatrixCell, p.Review, p.Method)
		}
	}

	cz, ok := DefaultPolicy("CZ")
	if !ok || cz.Method != replenishment.MethodOnDemand || cz.Review != replenishment.ReviewMonthly || cz.TargetWOH != 10 {
		t.Errorf("CZ policy = %+v", cz)
	}
	if _, ok := DefaultPolicy("DX"); ok {
		t.Error("DX should have no policy")
	}

	var sku replenishment.SKU
	ax, _ := DefaultPolicy("AX")
	ax.Apply(&sku)
	if sku.ServiceLevel != 0.97 || sku.TargetWOH != 4 || sku.Review != replenishment.ReviewWeekly || sku.SafetyStockMultiplier != 1 {
		t.Errorf("applied SKU = %+v", sku)
	}

	policies[0].TargetWOH = 99
	if again, _ := DefaultPolicy("AX"); again.TargetWOH != 4 {
		t.Error("DefaultPolicies must return a copy")
	}
}

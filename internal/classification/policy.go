package classification

import (
	"github.com/andresuchdata/replenish/internal/replenishment"
)

// Policy is the replenishment policy of one ABC/XYZ matrix cell.
type Policy struct {
	MatrixCell            string                            `json:"matrix_cell" db:"matrix_cell"`
	ServiceLevel          float64                           `json:"service_level" db:"service_level"`
	TargetWOH             float64                           `json:"target_woh" db:"target_woh"`
	Review                replenishment.ReviewFrequency     `json:"review_frequency" db:"review_frequency"`
	Method                replenishment.ReplenishmentMethod `json:"replenishment_method" db:"replenishment_method"`
	SafetyStockMultiplier float64                           `json:"safety_stock_multiplier" db:"safety_stock_multiplier"`
	Notes                 string                            `json:"notes" db:"notes"`
}

var defaultPolicies = []Policy{
	{"AX", 0.97, 4, replenishment.ReviewWeekly, replenishment.MethodAuto, 1.0, "High value, stable: tight control, auto replenish"},
	{"AY", 0.95, 5, replenishment.ReviewWeekly, replenishment.MethodAuto, 1.0, "High value, moderate: buffer slightly more"},
	{"AZ", 0.93, 6, replenishment.ReviewWeekly, replenishment.MethodManualReview, 1.0, "High value, erratic: human review before ordering"},
	{"BX", 0.95, 5, replenishment.ReviewBiweekly, replenishment.MethodAuto, 1.0, "Medium value, stable: standard auto"},
	{"BY", 0.93, 6, replenishment.ReviewBiweekly, replenishment.MethodAuto, 1.0, "Medium value, moderate: moderate buffer"},
	{"BZ", 0.90, 8, replenishment.ReviewBiweekly, replenishment.MethodManualReview, 1.0, "Medium value, erratic: review before ordering"},
	{"CX", 0.92, 6, replenishment.ReviewMonthly, replenishment.MethodAuto, 1.0, "Low value, stable: less frequent review"},
	{"CY", 0.90, 8, replenishment.ReviewMonthly, replenishment.MethodAuto, 1.0, "Low value, moderate: bulk order"},
	{"CZ", 0.85, 10, replenishment.ReviewMonthly, replenishment.MethodOnDemand, 1.0, "Low value, erratic: order only when needed"},
}

// DefaultPolicies returns the nine-cell default policy grid, AX through CZ.
func DefaultPolicies() []Policy {
	out := make([]Policy, len(defaultPolicies))
	copy(out, defaultPolicies)
	return out
}

// DefaultPolicy returns the default policy for a matrix cell.
func DefaultPolicy(cell string) (Policy, bool) {
	for _, p := range defaultPolicies {
		if p.MatrixCell == cell {
			return p, true
		}
	}
	return Policy{}, false
}

// Apply copies the policy parameters onto a SKU.
func (p Policy) Apply(sku *replenishment.SKU) {
	sku.ServiceLevel = p.ServiceLevel
	sku.TargetWOH = p.TargetWOH
	sku.Review = p.Review
	sku.Method = p.Method
	sku.SafetyStockMultiplier = p.SafetyStockMultiplier
}

package replenishment

import "time"

// DefaultHorizonWeeks is the projection length used when none is given.
const DefaultHorizonWeeks = 20

// SKU is a classification record: identity, demand statistics, supply
// parameters and the replenishment policy of its ABC/XYZ cell.
// Nil pointers mean the value is unknown.
type SKU struct {
	Code         string `json:"sku_code"`
	Description  string `json:"description"`
	SupplierCode string `json:"supplier_code"`
	ABCClass     string `json:"abc_class"`
	XYZClass     string `json:"xyz_class"`
	MatrixCell   string `json:"matrix_cell"`

	UnitCost   *float64 `json:"unit_cost"`
	UnitWeight *float64 `json:"unit_weight"`

	AvgWeeklyDemand float64 `json:"avg_weekly_demand"`
	CVDemand        float64 `json:"cv_demand"`

	LeadTimeWeeks   int      `json:"lead_time_weeks"`
	MOQ             int      `json:"moq"`
	QtyPerContainer *float64 `json:"qty_per_container"`

	ServiceLevel          float64             `json:"service_level"`
	TargetWOH             float64             `json:"target_woh"`
	SafetyStockMultiplier float64             `json:"safety_stock_multiplier"`
	Method                ReplenishmentMethod `json:"replenishment_method"`
	Review                ReviewFrequency     `json:"review_frequency"`
}

// ProjectionWeek is one simulated week of a projection curve.
type ProjectionWeek struct {
	Week               int        `json:"week"`
	Date               time.Time  `json:"date"`
	ProjectedInventory float64    `json:"projected_inventory"`
	Demand             float64    `json:"demand"`
	Arrivals           float64    `json:"arrivals"`
	SafetyStock        float64    `json:"safety_stock"`
	ReorderPoint       float64    `json:"reorder_point"`
	TargetInventory    float64    `json:"target_inventory"`
	Status             WeekStatus `json:"status"`
}

// SKUProjection is the complete projection result for one SKU.
type SKUProjection struct {
	SKU                   SKU                `json:"sku"`
	CurrentWeek           int                `json:"current_week"`
	CurrentInventory      float64            `json:"current_inventory"`
	EffectiveWeeklyDemand float64            `json:"effective_weekly_demand"`
	SafetyStockUnits      float64            `json:"safety_stock_units"`
	SafetyStockWeeks      float64            `json:"safety_stock_weeks"`
	ReorderPoint          float64            `json:"reorder_point"`
	TargetInventory       float64            `json:"target_inventory"`
	InventoryPosition     float64            `json:"inventory_position"`
	TotalInTransit        float64            `json:"total_in_transit"`
	IncomingSchedule      []ScheduledArrival `json:"incoming_schedule"`
	Weeks                 []ProjectionWeek   `json:"weeks"`
	StockoutWeek          *int               `json:"stockout_week"`
	ReorderTriggerWeek    *int               `json:"reorder_trigger_week"`
	Urgency               Urgency            `json:"urgency"`
	DemandSource          DemandSource       `json:"demand_source"`
}

// projectedAt returns the curve value for week, falling back to the last
// simulated week when week lies beyond the horizon.
func (p *SKUProjection) projectedAt(week int) float64 {
	if len(p.Weeks) == 0 {
		return p.CurrentInventory
	}
	for _, w := range p.Weeks {
		if w.Week == week {
			return w.ProjectedInventory
		}
	}
	return p.Weeks[len(p.Weeks)-1].ProjectedInventory
}

// hasStatus reports whether any simulated week carries status.
func (p *SKUProjection) hasStatus(status WeekStatus) bool {
	for _, w := range p.Weeks {
		if w.Status == status {
			return true
		}
	}
	return false
}

// Suggestion is a replenishment order proposal for one SKU.
type Suggestion struct {
	SKUCode      string              `json:"sku_code"`
	Description  string              `json:"description"`
	SupplierCode string              `json:"supplier_code"`
	MatrixCell   string              `json:"matrix_cell"`
	Method       ReplenishmentMethod `json:"replenishment_method"`
	Urgency      Urgency             `json:"urgency"`

	CurrentInventory   float64 `json:"current_inventory"`
	InventoryPosition  float64 `json:"inventory_position"`
	SafetyStock        float64 `json:"safety_stock"`
	ReorderPoint       float64 `json:"reorder_point"`
	TargetInventory    float64 `json:"target_inventory"`
	StockoutWeek       *int    `json:"stockout_week"`
	ReorderTriggerWeek *int    `json:"reorder_trigger_week"`

	LeadTimeWeeks      int       `json:"lead_time_weeks"`
	MOQ                int       `json:"moq"`
	ArrivalWeek        int       `json:"arrival_week"`
	ArrivalDate        time.Time `json:"arrival_date"`
	ProjectedAtArrival float64   `json:"projected_at_arrival"`
	RawGap             float64   `json:"raw_gap"`
	SuggestedOrderQty  int       `json:"suggested_order_qty"`

	WeeksOfCover        float64  `json:"weeks_of_cover"`
	EstimatedCost       *float64 `json:"estimated_cost"`
	EstimatedContainers *float64 `json:"estimated_containers"`
	TotalWeight         *float64 `json:"total_weight"`
	DaysOfSupply        int      `json:"days_of_supply"`
}

// ConsolidatedPO combines all suggestions for one supplier.
type ConsolidatedPO struct {
	SupplierCode        string       `json:"supplier_code"`
	Items               []Suggestion `json:"items"`
	ItemCount           int          `json:"item_count"`
	TotalQty            int          `json:"total_qty"`
	TotalCost           float64      `json:"total_cost"`
	TotalWeight         *float64     `json:"total_weight"`
	EstimatedContainers *float64     `json:"estimated_containers"`
	CriticalCount       int          `json:"critical_count"`
	ExpectedArrivalWeek int          `json:"expected_arrival_week"`
	ExpectedArrivalDate time.Time    `json:"expected_arrival_date"`
}

// RiskItem is the customer-facing view of one SKU's risk.
type RiskItem struct {
	SKUCode      string       `json:"sku_code"`
	Description  string       `json:"description"`
	SupplierCode string       `json:"supplier_code"`
	MatrixCell   string       `json:"matrix_cell"`
	RiskLevel    Urgency      `json:"risk_level"`
	RiskType     RiskType     `json:"risk_type"`
	DemandSource DemandSource `json:"demand_source"`

	CurrentInventory float64    `json:"current_inventory"`
	WeeksOfCover     float64    `json:"weeks_of_cover"`
	SafetyStock      float64    `json:"safety_stock"`
	ReorderPoint     float64    `json:"reorder_point"`
	StockoutWeek     *int       `json:"stockout_week"`
	StockoutDate     *time.Time `json:"stockout_date"`

	HasSuggestion      bool             `json:"has_suggestion"`
	SuggestedOrderQty  int              `json:"suggested_order_qty"`
	ArrivalWeek        int              `json:"arrival_week"`
	ProjectedAtArrival float64          `json:"projected_at_arrival"`
	MitigationStatus   MitigationStatus `json:"mitigation_status"`

	ActionNote         string `json:"action_note"`
	CustomerImpactNote string `json:"customer_impact_note"`
}

// RiskReport buckets every SKU by risk level.
type RiskReport struct {
	CurrentWeek          int        `json:"current_week"`
	WeekStartDate        time.Time  `json:"week_start_date"`
	CriticalItems        []RiskItem `json:"critical_items"`
	WarningItems         []RiskItem `json:"warning_items"`
	OKItems              []RiskItem `json:"ok_items"`
	TotalSKUs            int        `json:"total_skus"`
	CriticalCount        int        `json:"critical_count"`
	WarningCount         int        `json:"warning_count"`
	OKCount              int        `json:"ok_count"`
	UnmitigatedRiskCount int        `json:"unmitigated_risk_count"`
	ForecastDrivenCount  int        `json:"forecast_driven_count"`
	HistoricalCount      int        `json:"historical_count"`
}

// SupplierBreakdown aggregates projection and suggestion figures per supplier.
type SupplierBreakdown struct {
	SupplierCode    string  `json:"supplier_code"`
	SKUCount        int     `json:"sku_count"`
	CriticalCount   int     `json:"critical_count"`
	WarningCount    int     `json:"warning_count"`
	SuggestionCount int     `json:"suggestion_count"`
	TotalOrderQty   int     `json:"total_order_qty"`
	TotalCost       float64 `json:"total_cost"`
}

// ProjectionSummary is the dashboard-level roll-up of one computation.
type ProjectionSummary struct {
	CurrentWeek        int                 `json:"current_week"`
	WeekStartDate      time.Time           `json:"week_start_date"`
	HorizonWeeks       int                 `json:"horizon_weeks"`
	TotalSKUs          int                 `json:"total_skus"`
	CriticalCount      int                 `json:"critical_count"`
	WarningCount       int                 `json:"warning_count"`
	OKCount            int                 `json:"ok_count"`
	SuggestionCount    int                 `json:"suggestion_count"`
	TotalOrderQty      int                 `json:"total_order_qty"`
	TotalEstimatedCost float64             `json:"total_estimated_cost"`
	BySupplier         []SupplierBreakdown `json:"by_supplier"`
	PurchaseOrders     []ConsolidatedPO    `json:"purchase_orders"`
}

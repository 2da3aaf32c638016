// internal/repository/replenishment_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/replenish/internal/classification"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/replenishment"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ReplenishmentRepository loads engine inputs and stores run results.
type ReplenishmentRepository interface {
	ListClassifications(ctx context.Context, supplierCode string) ([]replenishment.SKU, error)
	GetInventorySnapshot(ctx context.Context) (map[string]float64, error)
	GetIncomingSupply(ctx context.Context, fromWeek int) (map[string]replenishment.WeeklyQuantities, error)
	GetForecasts(ctx context.Context, fromWeek int) (map[string]replenishment.WeeklyQuantities, error)
	SaveRun(ctx context.Context, run *domain.Run, suggestions []replenishment.Suggestion) error
	GetLatestRun(ctx context.Context) (*domain.Run, error)
}

// ClassificationRepository reads demand history and stores ABC/XYZ results.
type ClassificationRepository interface {
	ListDemandHistory(ctx context.Context) (classification.Input, error)
	ListPolicies(ctx context.Context) ([]classification.Policy, error)
	EnsurePolicies(ctx context.Context, policies []classification.Policy) (int, error)
	UpdateClassifications(ctx context.Context, classes []classification.SKUClass) error
}

// DemandItemRow is one SKU with its average weekly demand.
type DemandItemRow struct {
	SKUCode         string  `db:"sku_code"`
	AvgWeeklyDemand float64 `db:"avg_weekly_demand"`
}

// CostRow is the unit cost recorded for a source code.
type CostRow struct {
	Code     string  `db:"code"`
	UnitCost float64 `db:"unit_cost"`
}

// MonthlyDemandRow is the quantity shipped for a source code in one month.
type MonthlyDemandRow struct {
	Code     string  `db:"code"`
	Month    string  `db:"month"`
	Quantity float64 `db:"quantity"`
}

// BuildClassificationInput assembles the classification input from its rows.
// Repeated cost rows keep the last value; monthly rows for the same month add up.
func BuildClassificationInput(items []DemandItemRow, costs []CostRow, monthly []MonthlyDemandRow) classification.Input {
	in := classification.Input{
		Items:   make([]classification.Item, 0, len(items)),
		Costs:   make(map[string]float64, len(costs)),
		Monthly: make(map[string]map[string]float64),
	}
	for _, it := range items {
		in.Items = append(in.Items, classification.Item{SKUCode: it.SKUCode, AvgWeeklyDemand: it.AvgWeeklyDemand})
	}
	for _, c := range costs {
		in.Costs[c.Code] = c.UnitCost
	}
	for _, m := range monthly {
		months, ok := in.Monthly[m.Code]
		if !ok {
			months = make(map[string]float64)
			in.Monthly[m.Code] = months
		}
		months[m.Month] += m.Quantity
	}
	return in
}

// SupplyRow is one expected inbound shipment line.
type SupplyRow struct {
	SKUCode         string    `db:"sku_code"`
	ExpectedArrival time.Time `db:"expected_arrival"`
	Quantity        float64   `db:"quantity"`
}

// ForecastRow is one forecast quantity for a week.
type ForecastRow struct {
	SKUCode  string  `db:"sku_code"`
	Week     int     `db:"week_number"`
	Quantity float64 `db:"quantity"`
}

// BucketSupply sums supply rows into week buckets from fromWeek on. Arrivals
// dated before fromWeek are late shipments and land in fromWeek.
func BucketSupply(rows []SupplyRow, fromWeek int) map[string]replenishment.WeeklyQuantities {
	out := make(map[string]replenishment.WeeklyQuantities)
	for _, r := range rows {
		if r.Quantity <= 0 {
			continue
		}
		week := replenishment.CurrentWeekNumber(r.ExpectedArrival)
		if week < fromWeek {
			week = fromWeek
		}
		addWeek(out, r.SKUCode, week, r.Quantity)
	}
	return out
}

// BucketForecasts keeps the forecast rows from fromWeek on.
func BucketForecasts(rows []ForecastRow, fromWeek int) map[string]replenishment.WeeklyQuantities {
	out := make(map[string]replenishment.WeeklyQuantities)
	for _, r := range rows {
		if r.Week < fromWeek {
			continue
		}
		addWeek(out, r.SKUCode, r.Week, r.Quantity)
	}
	return out
}

func addWeek(m map[string]replenishment.WeeklyQuantities, sku string, week int, qty float64) {
	w, ok := m[sku]
	if !ok {
		w = make(replenishment.WeeklyQuantities)
		m[sku] = w
	}
	w.Add(week, qty)
}

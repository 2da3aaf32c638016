// internal/repository/postgres/replenishment_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/jmoiron/sqlx"
)

type replenishmentRepository struct {
	db *DB
}

func NewReplenishmentRepository(db *DB) repository.ReplenishmentRepository {
	return &replenishmentRepository{db: db}
}

func (r *replenishmentRepository) ListClassifications(ctx context.Context, supplierCode string) ([]replenishment.SKU, error) {
	query := `
		SELECT
			c.sku_code,
			COALESCE(c.description, '') AS description,
			COALESCE(c.supplier_code, '') AS supplier_code,
			COALESCE(c.abc_class, '') AS abc_class,
			COALESCE(c.xyz_class, '') AS xyz_class,
			COALESCE(c.matrix_cell, '') AS matrix_cell,
			c.unit_cost,
			c.unit_weight,
			COALESCE(c.avg_weekly_demand, 0) AS avg_weekly_demand,
			COALESCE(c.cv_demand, 0) AS cv_demand,
			COALESCE(c.lead_time_weeks, 0) AS lead_time_weeks,
			COALESCE(c.moq, 1) AS moq,
			c.qty_per_container,
			COALESCE(p.service_level, 0.95) AS service_level,
			COALESCE(p.target_woh, 4) AS target_woh,
			COALESCE(p.safety_stock_multiplier, 1) AS safety_stock_multiplier,
			COALESCE(p.review_frequency, 'weekly') AS review_frequency,
			COALESCE(p.replenishment_method, 'auto') AS replenishment_method
		FROM v_sku_classification c
		LEFT JOIN classification_policies p ON p.matrix_cell = c.matrix_cell
	`

	var args []interface{}
	supplierCode = strings.TrimSpace(supplierCode)
	switch {
	case supplierCode == "":
	case strings.EqualFold(supplierCode, replenishment.UnknownSupplier):
		query += " WHERE COALESCE(c.supplier_code, '') = ''"
	default:
		query += " WHERE c.supplier_code = $1"
		args = append(args, supplierCode)
	}
	query += " ORDER BY c.sku_code"

	var rows []repository.ClassificationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error listing classifications: %w", err)
	}

	return repository.RowsToSKUs(rows), nil
}

func (r *replenishmentRepository) GetInventorySnapshot(ctx context.Context) (map[string]float64, error) {
	query := `
		SELECT DISTINCT ON (sku_code) sku_code, on_hand
		FROM inventory_snapshots
		ORDER BY sku_code, snapshot_date DESC
	`

	var rows []struct {
		SKUCode string  `db:"sku_code"`
		OnHand  float64 `db:"on_hand"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error getting inventory snapshot: %w", err)
	}

	snapshot := make(map[string]float64, len(rows))
	for _, row := range rows {
		snapshot[row.SKUCode] = row.OnHand
	}
	return snapshot, nil
}

func (r *replenishmentRepository) GetIncomingSupply(ctx context.Context, fromWeek int) (map[string]replenishment.WeeklyQuantities, error) {
	query := `
		SELECT sku_code, expected_arrival, quantity
		FROM incoming_supply
		WHERE quantity > 0 AND received_at IS NULL
		ORDER BY sku_code, expected_arrival
	`

	var rows []repository.SupplyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error getting incoming supply: %w", err)
	}

	return repository.BucketSupply(rows, fromWeek), nil
}

func (r *replenishmentRepository) GetForecasts(ctx context.Context, fromWeek int) (map[string]replenishment.WeeklyQuantities, error) {
	query := `
		SELECT sku_code, week_number, SUM(quantity) AS quantity
		FROM demand_forecasts
		WHERE week_number >= $1
		GROUP BY sku_code, week_number
		ORDER BY sku_code, week_number
	`

	var rows []repository.ForecastRow
	if err := r.db.SelectContext(ctx, &rows, query, fromWeek); err != nil {
		return nil, fmt.Errorf("error getting forecasts: %w", err)
	}

	return repository.BucketForecasts(rows, fromWeek), nil
}

func (r *replenishmentRepository) SaveRun(ctx context.Context, run *domain.Run, suggestions []replenishment.Suggestion) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO replenishment_runs (
				id, week, supplier_code, status, total_skus, critical_count, warning_count,
				suggestion_count, total_order_qty, total_estimated_cost, started_at, completed_at, error_message
			) VALUES (
				:id, :week, :supplier_code, :status, :total_skus, :critical_count, :warning_count,
				:suggestion_count, :total_order_qty, :total_estimated_cost, :started_at, :completed_at, :error_message
			)
			ON CONFLICT (id) DO UPDATE SET
				status = EXCLUDED.status,
				total_skus = EXCLUDED.total_skus,
				critical_count = EXCLUDED.critical_count,
				warning_count = EXCLUDED.warning_count,
				suggestion_count = EXCLUDED.suggestion_count,
				total_order_qty = EXCLUDED.total_order_qty,
				total_estimated_cost = EXCLUDED.total_estimated_cost,
				completed_at = EXCLUDED.completed_at,
				error_message = EXCLUDED.error_message
		`, run)
		if err != nil {
			return fmt.Errorf("error saving run %s: %w", run.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM replenishment_suggestions WHERE run_id = $1`, run.ID); err != nil {
			return fmt.Errorf("error clearing suggestions for run %s: %w", run.ID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO replenishment_suggestions (
				run_id, sku_code, supplier_code, matrix_cell, urgency, replenishment_method,
				current_inventory, inventory_position, safety_stock, reorder_point, target_inventory,
				stockout_week, arrival_week, projected_at_arrival, suggested_order_qty,
				estimated_cost, estimated_containers, total_weight
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`)
		if err != nil {
			return fmt.Errorf("error preparing suggestion insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range suggestions {
			_, err := stmt.ExecContext(ctx,
				run.ID, s.SKUCode, s.SupplierCode, s.MatrixCell, string(s.Urgency), string(s.Method),
				s.CurrentInventory, s.InventoryPosition, s.SafetyStock, s.ReorderPoint, s.TargetInventory,
				s.StockoutWeek, s.ArrivalWeek, s.ProjectedAtArrival, s.SuggestedOrderQty,
				s.EstimatedCost, s.EstimatedContainers, s.TotalWeight,
			)
			if err != nil {
				return fmt.Errorf("error saving suggestion %s: %w", s.SKUCode, err)
			}
		}

		return nil
	})
}

func (r *replenishmentRepository) GetLatestRun(ctx context.Context) (*domain.Run, error) {
	query := `
		SELECT id, week, COALESCE(supplier_code, '') AS supplier_code, status, total_skus,
			critical_count, warning_count, suggestion_count, total_order_qty,
			total_estimated_cost, started_at, completed_at, COALESCE(error_message, '') AS error_message
		FROM replenishment_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run domain.Run
	if err := r.db.GetContext(ctx, &run, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error getting latest run: %w", err)
	}
	return &run, nil
}

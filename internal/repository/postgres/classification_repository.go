package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/replenish/internal/classification"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/jmoiron/sqlx"
)

type classificationRepository struct {
	db *DB
}

func NewClassificationRepository(db *DB) repository.ClassificationRepository {
	return &classificationRepository{db: db}
}

func (r *classificationRepository) ListDemandHistory(ctx context.Context) (classification.Input, error) {
	var items []repository.DemandItemRow
	if err := r.db.SelectContext(ctx, &items, `
		SELECT sku_code, COALESCE(avg_weekly_demand, 0) AS avg_weekly_demand
		FROM skus
		ORDER BY sku_code
	`); err != nil {
		return classification.Input{}, fmt.Errorf("error listing skus: %w", err)
	}

	var costs []repository.CostRow
	if err := r.db.SelectContext(ctx, &costs, `
		SELECT code, unit_cost
		FROM item_costs
		WHERE unit_cost IS NOT NULL
		ORDER BY code, updated_at
	`); err != nil {
		return classification.Input{}, fmt.Errorf("error listing item costs: %w", err)
	}

	var monthly []repository.MonthlyDemandRow
	if err := r.db.SelectContext(ctx, &monthly, `
		SELECT code, to_char(date_trunc('month', movement_date), 'YYYY-MM') AS month, SUM(quantity_out) AS quantity
		FROM stock_movements
		GROUP BY code, month
		ORDER BY code, month
	`); err != nil {
		return classification.Input{}, fmt.Errorf("error listing monthly demand: %w", err)
	}

	return repository.BuildClassificationInput(items, costs, monthly), nil
}

func (r *classificationRepository) ListPolicies(ctx context.Context) ([]classification.Policy, error) {
	var policies []classification.Policy
	if err := r.db.SelectContext(ctx, &policies, `
		SELECT matrix_cell, service_level, target_woh, review_frequency, replenishment_method,
			safety_stock_multiplier, COALESCE(notes, '') AS notes
		FROM classification_policies
		ORDER BY matrix_cell
	`); err != nil {
		return nil, fmt.Errorf("error listing policies: %w", err)
	}
	return policies, nil
}

// EnsurePolicies inserts the given policies for cells that have none and
// returns how many were added. Existing policies are left untouched.
func (r *classificationRepository) EnsurePolicies(ctx context.Context, policies []classification.Policy) (int, error) {
	var added int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, p := range policies {
			res, err := tx.NamedExecContext(ctx, `
				INSERT INTO classification_policies (
					matrix_cell, service_level, target_woh, review_frequency,
					replenishment_method, safety_stock_multiplier, notes
				) VALUES (
					:matrix_cell, :service_level, :target_woh, :review_frequency,
					:replenishment_method, :safety_stock_multiplier, :notes
				)
				ON CONFLICT (matrix_cell) DO NOTHING
			`, p)
			if err != nil {
				return fmt.Errorf("error inserting policy %s: %w", p.MatrixCell, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				added += int(n)
			}
		}
		return nil
	})
	return added, err
}

func (r *classificationRepository) UpdateClassifications(ctx context.Context, classes []classification.SKUClass) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sku_classifications (
				sku_code, abc_class, xyz_class, matrix_cell, unit_cost,
				annual_consumption_value, cv_demand, xyz_estimated, months_of_data, classified_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (sku_code) DO UPDATE SET
				abc_class = EXCLUDED.abc_class,
				xyz_class = EXCLUDED.xyz_class,
				matrix_cell = EXCLUDED.matrix_cell,
				unit_cost = EXCLUDED.unit_cost,
				annual_consumption_value = EXCLUDED.annual_consumption_value,
				cv_demand = EXCLUDED.cv_demand,
				xyz_estimated = EXCLUDED.xyz_estimated,
				months_of_data = EXCLUDED.months_of_data,
				classified_at = EXCLUDED.classified_at
		`)
		if err != nil {
			return fmt.Errorf("error preparing classification upsert: %w", err)
		}
		defer stmt.Close()

		for _, c := range classes {
			if _, err := stmt.ExecContext(ctx,
				c.SKUCode, c.ABC, c.XYZ, c.MatrixCell, c.UnitCost,
				c.AnnualValue, c.CV, c.XYZEstimated, c.MonthsOfData,
			); err != nil {
				return fmt.Errorf("error saving classification %s: %w", c.SKUCode, err)
			}
		}
		return nil
	})
}

package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/replenish/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

// seedTable describes how one CSV file maps onto a table.
type seedTable struct {
	table    string
	file     string
	columns  []string
	conflict []string // upsert key; empty appends
}

var seedTables = []seedTable{
	{table: "skus", file: "skus.csv", columns: []string{"sku_code", "description", "supplier_code", "avg_weekly_demand", "cv_demand", "lead_time_weeks", "moq", "qty_per_container", "unit_weight"}, conflict: []string{"sku_code"}},
	{table: "item_costs", file: "item_costs.csv", columns: []string{"code", "unit_cost"}, conflict: []string{"code"}},
	{table: "inventory_snapshots", file: "inventory.csv", columns: []string{"sku_code", "snapshot_date", "on_hand"}, conflict: []string{"sku_code", "snapshot_date"}},
	{table: "incoming_supply", file: "incoming_supply.csv", columns: []string{"sku_code", "expected_arrival", "quantity"}},
	{table: "demand_forecasts", file: "forecasts.csv", columns: []string{"sku_code", "week_number", "quantity"}, conflict: []string{"sku_code", "week_number"}},
	{table: "stock_movements", file: "stock_movements.csv", columns: []string{"code", "movement_date", "quantity_out"}},
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load SKU, inventory, supply and forecast CSV files into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory containing the seed CSV files",
				Value:   "./data/seeds",
				EnvVars: []string{"SEED_DATA_DIR"},
			},
		},
		Action: runSeed,
	}
}

func runSeed(c *cli.Context) error {
	dataDir := c.String("data-dir")
	db := fromContext(c).db

	tx, err := db.BeginTxx(c.Context, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range seedTables {
		path := filepath.Join(dataDir, t.file)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Log.Info().Str("file", path).Msg("seed file missing, skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		n, err := loadCSV(c.Context, tx, t, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", t.table, err)
		}
		logger.Log.Info().Str("table", t.table).Int("rows", n).Msg("seeded")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// loadCSV inserts every record of r into t. Header names select the columns, so
// the file may carry extra columns in any order; empty cells load as NULL.
func loadCSV(ctx context.Context, tx *sqlx.Tx, t seedTable, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	idx, err := columnIndexes(header, t.columns)
	if err != nil {
		return 0, err
	}

	query := insertQuery(t)
	n := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(idx))
		for i, col := range idx {
			if col < len(record) && strings.TrimSpace(record[col]) != "" {
				args[i] = strings.TrimSpace(record[col])
			}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return n, fmt.Errorf("failed to insert line %d: %w", n+2, err)
		}
		n++
	}
	return n, nil
}

func columnIndexes(header, columns []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}

	idx := make([]int, len(columns))
	for i, col := range columns {
		p, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		idx[i] = p
	}
	return idx, nil
}

func insertQuery(t seedTable) string {
	placeholders := make([]string, len(t.columns))
	for i := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.table, strings.Join(t.columns, ", "), strings.Join(placeholders, ", "))
	if len(t.conflict) == 0 {
		return query
	}

	key := make(map[string]bool, len(t.conflict))
	for _, c := range t.conflict {
		key[c] = true
	}
	var updates []string
	for _, col := range t.columns {
		if !key[col] {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s", query, strings.Join(t.conflict, ", "), strings.Join(updates, ", "))
}

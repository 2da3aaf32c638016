package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/repository/postgres"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/andresuchdata/replenish/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type envKey struct{}

// env holds the services a command runs against.
type env struct {
	db             *sqlx.DB
	replenishment  *service.ReplenishmentService
	classification *service.ClassificationService
}

func fromContext(c *cli.Context) *env {
	e, _ := c.Context.Value(envKey{}).(*env)
	return e
}

func filterFrom(c *cli.Context) domain.ReplenishmentFilter {
	return domain.ReplenishmentFilter{
		SupplierCode: c.String("supplier"),
		Week:         c.Int("week"),
	}.Normalize()
}

func initEnv(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cfg := config.Load()
	xdb := sqlx.NewDb(db, "pgx")
	pg := postgres.Wrap(xdb, cfg.Database.MaxConcurrency)

	resultCache, locker, err := cache.NewBackends(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		resultCache, locker = cache.NewNoopReplenishmentCache(), cache.NewLocalRunLocker()
	}

	opts := service.EngineOptionsFromConfig(cfg.Engine)
	if h := c.Int("horizon"); h > 0 {
		opts.HorizonWeeks = h
	}

	c.Context = context.WithValue(c.Context, envKey{}, &env{
		db:             xdb,
		replenishment:  service.NewReplenishmentService(postgres.NewReplenishmentRepository(pg), resultCache, locker, opts, time.Now),
		classification: service.NewClassificationService(postgres.NewClassificationRepository(pg), resultCache),
	})
	return nil
}

func closeEnv(c *cli.Context) error {
	if e := fromContext(c); e != nil && e.db != nil {
		return e.db.Close()
	}
	return nil
}

// withOutput runs fn against the --output file, or stdout when unset.
func withOutput(c *cli.Context, fn func(w io.Writer) error) error {
	path := c.String("output")
	if path == "" || path == "-" {
		return fn(c.App.Writer)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Log.Info().Str("path", path).Msg("output written")
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: usage}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "replenish",
		Usage: "Project inventory, suggest orders and report supply risk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Usage:    "Database connection string",
				Required: true,
				EnvVars:  []string{"DATABASE_URL"},
			},
			&cli.IntFlag{
				Name:    "week",
				Usage:   "Week number to plan from (default: current week)",
				EnvVars: []string{"ENGINE_CURRENT_WEEK"},
			},
			&cli.StringFlag{
				Name:  "supplier",
				Usage: "Only consider SKUs of this supplier (\"Unknown\" for SKUs without one)",
			},
			&cli.IntFlag{
				Name:  "horizon",
				Usage: "Projection horizon in weeks",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: initEnv,
		After:  closeEnv,
		Commands: []*cli.Command{
			{
				Name:  "project",
				Usage: "Print the projection summary as JSON",
				Flags: []cli.Flag{
					outputFlag("Write to file instead of stdout"),
					&cli.BoolFlag{Name: "full", Usage: "Include every projection curve"},
				},
				Action: runProject,
			},
			{
				Name:   "risk-report",
				Usage:  "Print the customer meeting risk summary",
				Flags:  []cli.Flag{outputFlag("Write to file instead of stdout")},
				Action: runRiskReport,
			},
			{
				Name:   "suggest",
				Usage:  "Write order suggestions as CSV",
				Flags:  []cli.Flag{outputFlag("CSV file (default: stdout)")},
				Action: runSuggest,
			},
			{
				Name:  "export",
				Usage: "Write the purchase-order workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "xlsx file", Value: "purchase-orders.xlsx"},
				},
				Action: runExport,
			},
			{
				Name:   "classify",
				Usage:  "Recompute ABC/XYZ classes from demand history",
				Action: runClassify,
			},
			{
				Name:   "run",
				Usage:  "Compute and record this week's replenishment run",
				Action: runRecord,
			},
			seedCommand(),
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Msg("could not load .env file")
	}

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("replenish failed")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4
	defaultLockTTL = 2 * time.Minute
)

// EngineOptions tunes how the service runs the projection engine.
type EngineOptions struct {
	HorizonWeeks int
	Workers      int
	// CurrentWeek pins the week; 0 derives it from the clock.
	CurrentWeek int
	LockTTL     time.Duration
}

// EngineOptionsFromConfig maps the engine config section.
func EngineOptionsFromConfig(cfg config.EngineConfig) EngineOptions {
	return EngineOptions{
		HorizonWeeks: cfg.HorizonWeeks,
		Workers:      cfg.Workers,
		CurrentWeek:  cfg.CurrentWeek,
		LockTTL:      time.Duration(cfg.LockTTLSeconds) * time.Second,
	}
}

type ReplenishmentService struct {
	repo   repository.ReplenishmentRepository
	cache  cache.ReplenishmentCache
	locker cache.RunLocker
	opts   EngineOptions
	clock  func() time.Time
}

func NewReplenishmentService(
	repo repository.ReplenishmentRepository,
	cacheImpl cache.ReplenishmentCache,
	locker cache.RunLocker,
	opts EngineOptions,
	clock func() time.Time,
) *ReplenishmentService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReplenishmentCache()
	}
	if locker == nil {
		locker = cache.NewLocalRunLocker()
	}
	if clock == nil {
		clock = time.Now
	}
	if opts.HorizonWeeks <= 0 {
		opts.HorizonWeeks = replenishment.DefaultHorizonWeeks
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	return &ReplenishmentService{
		repo:   repo,
		cache:  cacheImpl,
		locker: locker,
		opts:   opts,
		clock:  clock,
	}
}

// CurrentWeek returns the pinned week, or the week containing the clock's now.
func (s *ReplenishmentService) CurrentWeek() int {
	if s.opts.CurrentWeek > 0 {
		return s.opts.CurrentWeek
	}
	return replenishment.CurrentWeekNumber(s.clock())
}

func (s *ReplenishmentService) weekFor(filter domain.ReplenishmentFilter) int {
	if filter.Week != 0 {
		return filter.Week
	}
	return s.CurrentWeek()
}

// Compute loads the engine inputs and runs a full computation without touching the cache.
func (s *ReplenishmentService) Compute(ctx context.Context, filter domain.ReplenishmentFilter) (*replenishment.Result, error) {
	filter = filter.Normalize()
	week := s.weekFor(filter)
	if err := replenishment.ValidateWeek(week); err != nil {
		return nil, err
	}

	in, err := s.loadInput(ctx, filter.SupplierCode, week)
	if err != nil {
		return nil, err
	}

	projections := make([]replenishment.SKUProjection, len(in.SKUs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, sku := range in.SKUs {
		i, sku := i, sku
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			projections[i] = replenishment.ProjectSKU(in.ProjectionInputFor(sku))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().
		Int("week", week).
		Int("skus", len(projections)).
		Str("supplier", filter.SupplierCode).
		Msg("replenishment: computed projections")

	return replenishment.Assemble(projections, week, s.opts.HorizonWeeks), nil
}

// loadInput fetches the classification, inventory, supply and forecast data concurrently.
func (s *ReplenishmentService) loadInput(ctx context.Context, supplierCode string, week int) (replenishment.Input, error) {
	in := replenishment.Input{CurrentWeek: week, HorizonWeeks: s.opts.HorizonWeeks}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		skus, err := s.repo.ListClassifications(gctx, supplierCode)
		if err != nil {
			return fmt.Errorf("load classifications: %w", err)
		}
		in.SKUs = replenishment.FilterBySupplier(skus, supplierCode)
		return nil
	})
	g.Go(func() error {
		inv, err := s.repo.GetInventorySnapshot(gctx)
		if err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		in.Inventory = inv
		return nil
	})
	g.Go(func() error {
		supply, err := s.repo.GetIncomingSupply(gctx, week+1)
		if err != nil {
			return fmt.Errorf("load incoming supply: %w", err)
		}
		in.Supply = supply
		return nil
	})
	g.Go(func() error {
		forecasts, err := s.repo.GetForecasts(gctx, week+1)
		if err != nil {
			return fmt.Errorf("load forecasts: %w", err)
		}
		in.Forecasts = forecasts
		return nil
	})

	return in, g.Wait()
}

// Result returns the cached computation for the filter, computing it on a miss.
func (s *ReplenishmentService) Result(ctx context.Context, filter domain.ReplenishmentFilter) (*replenishment.Result, error) {
	filter = filter.Normalize()
	week := s.weekFor(filter)

	if res, ok, err := s.cache.GetResult(ctx, week, filter); err == nil && ok {
		return res, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("replenishment: cache get result failed")
	}

	res, err := s.Compute(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetResult(ctx, week, filter, res); err != nil {
		log.Warn().Err(err).Msg("replenishment: cache set result failed")
	}

	return res, nil
}

func (s *ReplenishmentService) GetSummary(ctx context.Context, filter domain.ReplenishmentFilter) (*replenishment.ProjectionSummary, error) {
	res, err := s.Result(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &res.Summary, nil
}

func (s *ReplenishmentService) GetProjections(ctx context.Context, filter domain.ReplenishmentFilter) ([]replenishment.SKUProjection, error) {
	res, err := s.Result(ctx, filter)
	if err != nil {
		return nil, err
	}
	return res.Projections, nil
}

// GetProjection returns one SKU's projection or repository.ErrNotFound.
func (s *ReplenishmentService) GetProjection(ctx context.Context, filter domain.ReplenishmentFilter, skuCode string) (*replenishment.SKUProjection, error) {
	res, err := s.Result(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range res.Projections {
		if res.Projections[i].SKU.Code == skuCode {
			return &res.Projections[i], nil
		}
	}
	return nil, fmt.Errorf("projection for %s: %w", skuCode, repository.ErrNotFound)
}

func (s *ReplenishmentService) GetSuggestions(ctx context.Context, filter domain.ReplenishmentFilter) ([]replenishment.Suggestion, error) {
	res, err := s.Result(ctx, filter)
	if err != nil {
		return nil, err
	}
	return res.Suggestions, nil
}

func (s *ReplenishmentService) GetPurchaseOrders(ctx context.Context, filter domain.ReplenishmentFilter) ([]replenishment.ConsolidatedPO, error) {
	res, err := s.Result(ctx, filter)
	if err != nil {
		return nil, err
	}
	return res.PurchaseOrders, nil
}

func (s *ReplenishmentService) GetRiskReport(ctx context.Context, filter domain.ReplenishmentFilter) (*replenishment.RiskReport, error) {
	res, err := s.Result(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &res.Risk, nil
}

// GetMeetingSummary renders the plain-text risk summary for the weekly meeting.
func (s *ReplenishmentService) GetMeetingSummary(ctx context.Context, filter domain.ReplenishmentFilter) (string, error) {
	res, err := s.Result(ctx, filter)
	if err != nil {
		return "", err
	}
	return replenishment.RenderMeetingSummary(res.Risk, res.PurchaseOrders), nil
}

// RecordRun computes the week under the run lock and persists the run with its
// suggestions. A failed computation is still recorded as a failed run.
func (s *ReplenishmentService) RecordRun(ctx context.Context, filter domain.ReplenishmentFilter) (*domain.Run, error) {
	filter = filter.Normalize()
	week := s.weekFor(filter)
	if err := replenishment.ValidateWeek(week); err != nil {
		return nil, err
	}

	lock, err := s.locker.Obtain(ctx, week, s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Int("week", week).Msg("replenishment: release run lock failed")
		}
	}()

	run := domain.NewRun(week, filter.SupplierCode, s.clock())
	run.Status = domain.RunProcessing

	res, computeErr := s.Compute(ctx, filter)
	if computeErr != nil {
		run.Fail(s.clock(), computeErr)
		if err := s.repo.SaveRun(ctx, run, nil); err != nil {
			log.Error().Err(err).Str("run_id", run.ID.String()).Msg("replenishment: save failed run")
		}
		return run, computeErr
	}

	run.TotalSKUs = res.Summary.TotalSKUs
	run.CriticalCount = res.Summary.CriticalCount
	run.WarningCount = res.Summary.WarningCount
	run.SuggestionCount = res.Summary.SuggestionCount
	run.TotalOrderQty = res.Summary.TotalOrderQty
	run.TotalEstimatedCost = res.Summary.TotalEstimatedCost
	run.Complete(s.clock())

	if err := s.repo.SaveRun(ctx, run, res.Suggestions); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	if err := s.cache.InvalidateWeek(ctx, week); err != nil {
		log.Warn().Err(err).Int("week", week).Msg("replenishment: cache invalidate failed")
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("week", week).
		Int("suggestions", run.SuggestionCount).
		Msg("replenishment: run recorded")

	return run, nil
}

func (s *ReplenishmentService) GetLatestRun(ctx context.Context) (*domain.Run, error) {
	return s.repo.GetLatestRun(ctx)
}

// IsClientError reports whether err stems from bad caller input.
func IsClientError(err error) bool {
	return errors.Is(err, replenishment.ErrInvalidCurrentWeek)
}

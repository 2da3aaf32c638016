package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/classification"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/rs/zerolog/log"
)

type ClassificationService struct {
	repo  repository.ClassificationRepository
	cache cache.ReplenishmentCache
}

func NewClassificationService(repo repository.ClassificationRepository, cacheImpl cache.ReplenishmentCache) *ClassificationService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReplenishmentCache()
	}
	return &ClassificationService{repo: repo, cache: cacheImpl}
}

// Reclassify recomputes ABC/XYZ classes from demand history, seeds default
// policies for matrix cells that have none, and stores the classes.
func (s *ClassificationService) Reclassify(ctx context.Context) (*classification.Result, error) {
	in, err := s.repo.ListDemandHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load demand history: %w", err)
	}

	res := classification.Classify(in)

	existing, err := s.repo.ListPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}
	missing := missingPolicies(existing, res.CellCounts)
	if len(missing) > 0 {
		added, err := s.repo.EnsurePolicies(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("seed policies: %w", err)
		}
		log.Info().Int("added", added).Msg("classification: seeded default policies")
	}

	if err := s.repo.UpdateClassifications(ctx, res.Classes); err != nil {
		return nil, fmt.Errorf("save classifications: %w", err)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("classification: cache invalidate failed")
	}

	log.Info().
		Int("skus", len(res.Classes)).
		Int("estimated", res.Estimated).
		Msg("classification: reclassified")

	return &res, nil
}

// missingPolicies returns the default policy of every used cell without a stored one.
func missingPolicies(existing []classification.Policy, cellCounts map[string]int) []classification.Policy {
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.MatrixCell] = true
	}

	var out []classification.Policy
	for _, p := range classification.DefaultPolicies() {
		if cellCounts[p.MatrixCell] > 0 && !have[p.MatrixCell] {
			out = append(out, p)
		}
	}
	return out
}

package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/redis/go-redis/v9"
)

const (
	resultKeyPrefix = "replenishment:result"
	scanBatchSize   = 100
)

// ReplenishmentCache stores computed results per week and filter.
type ReplenishmentCache interface {
	GetResult(ctx context.Context, week int, filter domain.ReplenishmentFilter) (*replenishment.Result, bool, error)
	SetResult(ctx context.Context, week int, filter domain.ReplenishmentFilter, res *replenishment.Result) error
	InvalidateWeek(ctx context.Context, week int) error
	InvalidateAll(ctx context.Context) error
}

type redisReplenishmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReplenishmentCache struct{}

func NewReplenishmentCache(cfg config.CacheConfig) (ReplenishmentCache, error) {
	if !cfg.Enabled {
		return &noopReplenishmentCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisReplenishmentCache(client, ttl), nil
}

// NewRedisReplenishmentCache wraps an existing client.
func NewRedisReplenishmentCache(client *redis.Client, ttl time.Duration) ReplenishmentCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisReplenishmentCache{client: client, ttl: ttl}
}

func NewNoopReplenishmentCache() ReplenishmentCache {
	return &noopReplenishmentCache{}
}

func (c *redisReplenishmentCache) GetResult(ctx context.Context, week int, filter domain.ReplenishmentFilter) (*replenishment.Result, bool, error) {
	payload, err := c.client.Get(ctx, buildResultKey(week, filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var res replenishment.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, false, fmt.Errorf("decode replenishment result cache: %w", err)
	}

	return &res, true, nil
}

func (c *redisReplenishmentCache) SetResult(ctx context.Context, week int, filter domain.ReplenishmentFilter, res *replenishment.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode replenishment result cache: %w", err)
	}

	if err := c.client.Set(ctx, buildResultKey(week, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReplenishmentCache) InvalidateWeek(ctx context.Context, week int) error {
	return deleteKeysWithPrefix(ctx, c.client, weekKeyPrefix(week), scanBatchSize)
}

func (c *redisReplenishmentCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, resultKeyPrefix, scanBatchSize)
}

func (n *noopReplenishmentCache) GetResult(ctx context.Context, week int, filter domain.ReplenishmentFilter) (*replenishment.Result, bool, error) {
	return nil, false, nil
}

func (n *noopReplenishmentCache) SetResult(ctx context.Context, week int, filter domain.ReplenishmentFilter, res *replenishment.Result) error {
	return nil
}

func (n *noopReplenishmentCache) InvalidateWeek(ctx context.Context, week int) error {
	return nil
}

func (n *noopReplenishmentCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func weekKeyPrefix(week int) string {
	return fmt.Sprintf("%s:w%d:", resultKeyPrefix, week)
}

func buildResultKey(week int, filter domain.ReplenishmentFilter) string {
	return weekKeyPrefix(week) + filterHash(filter)
}

func filterHash(filter domain.ReplenishmentFilter) string {
	supplier := strings.ToUpper(strings.TrimSpace(filter.SupplierCode))
	if supplier == "" {
		return "all"
	}

	sum := sha1.Sum([]byte("supplier=" + supplier))
	return hex.EncodeToString(sum[:])
}

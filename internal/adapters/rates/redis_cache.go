package rates

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const cacheKeyPrefix = "ebank:rates:"

// CachedProvider keeps live quotes in Redis for a short TTL. Redis problems are
// logged and the call falls through to the wrapped provider.
type CachedProvider struct {
	next   portssvc.RateProvider
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ portssvc.RateProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps next with a Redis cache.
func NewCachedProvider(next portssvc.RateProvider, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedProvider{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedProvider) PriceOf(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = domain.NormalizeAsset(symbol)
	return c.cached(ctx, cacheKeyPrefix+"price:"+symbol, func() (decimal.Decimal, error) {
		return c.next.PriceOf(ctx, symbol)
	})
}

func (c *CachedProvider) MadToUsd(ctx context.Context) (decimal.Decimal, error) {
	return c.cached(ctx, cacheKeyPrefix+"madusd", func() (decimal.Decimal, error) {
		return c.next.MadToUsd(ctx)
	})
}

func (c *CachedProvider) cached(ctx context.Context, key string, load func() (decimal.Decimal, error)) (decimal.Decimal, error) {
	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if v, parseErr := decimal.NewFromString(raw); parseErr == nil {
			return v, nil
		}
		c.logger.Warn("Discarding unparseable cached rate", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Rate cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	v, err := load()
	if err != nil {
		return decimal.Zero, err
	}
	if setErr := c.client.Set(ctx, key, v.String(), c.ttl).Err(); setErr != nil {
		c.logger.Warn("Rate cache write failed", slog.String("key", key), slog.String("error", setErr.Error()))
	}
	return v, nil
}

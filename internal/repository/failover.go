package repository

import (
	"context"
	"sync/atomic"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSearchCache serves from the primary cache until it errors,
// then switches to the fallback and probes the primary again after a
// minute.
type FailoverSearchCache struct {
	primary  domain.SearchCache
	fallback domain.SearchCache
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// UnixNano of the last failed probe; atomic because Get and
	// markDown run from concurrent requests.
	lastCheck atomic.Int64
}

func NewFailoverSearchCache(primary, fallback domain.SearchCache, logger *zerolog.Logger) *FailoverSearchCache {
	return &FailoverSearchCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSearchCache) Get(ctx context.Context, query string) ([]*models.Item, bool, error) {
	if !r.isDown.Load() {
		items, ok, err := r.primary.Get(ctx, query)
		if err == nil {
			return items, ok, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		items, ok, err := r.primary.Get(ctx, query)
		if err == nil {
			r.isDown.Store(false)
			return items, ok, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Get(ctx, query)
}

func (r *FailoverSearchCache) Set(ctx context.Context, query string, items []*models.Item) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, query, items)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Set(ctx, query, items)
}

func (r *FailoverSearchCache) Invalidate(ctx context.Context) error {
	// Both caches must drop their entries; a fallback holding stale
	// search results after item updates would be worse than no cache.
	fallbackErr := r.fallback.Invalidate(ctx)

	if !r.isDown.Load() {
		if err := r.primary.Invalidate(ctx); err != nil {
			r.markDown(err)
			return fallbackErr
		}
	}
	return fallbackErr
}

func (r *FailoverSearchCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary search cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

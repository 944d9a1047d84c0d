// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval fans a query vector out across the ten summary
// categories and collects ranked candidate summaries into per-category
// buckets.
package retrieval

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// SearchService is the external typed nearest-neighbor search. It must
// return an empty slice, not an error, when a category has no matches.
type SearchService interface {
	SearchByCategory(ctx context.Context, queryVector []float32, cat types.Category, topK int) ([]types.SummaryRecord, error)
}

// Aggregator retrieves one CategoryBucket per category. Category searches
// are independent: they run in parallel and a failure or timeout in one
// degrades that category to an empty bucket without touching the others.
type Aggregator struct {
	search SearchService
	cfg    types.RetrievalConfig
	log    *zap.Logger
}

// NewAggregator creates an Aggregator. A nil logger disables logging.
func NewAggregator(search SearchService, cfg types.RetrievalConfig, log *zap.Logger) *Aggregator {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{search: search, cfg: cfg, log: log}
}

// Retrieve queries every category in parallel and returns a bucket for all
// ten, empty where the search returned nothing or failed. The only error
// returned is the parent context's cancellation.
func (a *Aggregator) Retrieve(ctx context.Context, queryVector []float32) (map[types.Category]types.CategoryBucket, error) {
	categories := types.AllCategories()
	buckets := make([]types.CategoryBucket, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range categories {
		i, cat := i, cat
		g.Go(func() error {
			buckets[i] = a.retrieveOne(gctx, queryVector, cat)
			return nil
		})
	}
	// Tasks never return errors; Wait only joins them.
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[types.Category]types.CategoryBucket, len(categories))
	for i, cat := range categories {
		out[cat] = buckets[i]
	}
	return out, nil
}

// retrieveOne runs a single category's search under its own timeout and
// absorbs any failure into an empty bucket.
func (a *Aggregator) retrieveOne(ctx context.Context, queryVector []float32, cat types.Category) types.CategoryBucket {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	records, err := a.search.SearchByCategory(ctx, queryVector, cat, a.cfg.TopK)
	if err != nil {
		a.log.Warn("category search failed, using empty bucket",
			zap.String("category", string(cat)), zap.Error(err))
		return types.CategoryBucket{Category: cat}
	}

	if len(records) > a.cfg.TopK {
		records = records[:a.cfg.TopK]
	}
	return types.CategoryBucket{Category: cat, Records: records}
}

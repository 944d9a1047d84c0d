// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires retrieval, analysis, anchor selection, context
// composition, and sequential generation into the single request-level
// operation: Run(requirement) -> final document.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-engine/internal/analysis"
	"github.com/pdiddy/paper-engine/internal/anchor"
	"github.com/pdiddy/paper-engine/internal/compose"
	"github.com/pdiddy/paper-engine/internal/generate"
	"github.com/pdiddy/paper-engine/internal/mapping"
	"github.com/pdiddy/paper-engine/internal/retrieval"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// Embedder turns request text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Pipeline owns the assembled components for one engine instance. Each
// Run call builds its own working set (buckets, insights, anchors,
// contexts, states); nothing is shared or cached across requests.
type Pipeline struct {
	table      mapping.Table
	aggregator *retrieval.Aggregator
	analyzer   *analysis.Analyzer
	selector   *anchor.Selector
	composer   *compose.Composer
	orch       *generate.Orchestrator
	embed      Embedder
	log        *zap.Logger
}

// New assembles a Pipeline. The mapping table is validated here: a
// malformed table aborts construction rather than failing per-request.
func New(
	cfg types.PipelineConfig,
	search retrieval.SearchService,
	fetch anchor.SectionFetcher,
	gen generate.Generator,
	embed Embedder,
	log *zap.Logger,
) (*Pipeline, error) {
	table := mapping.Default()
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("validating mapping table: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		table:      table,
		aggregator: retrieval.NewAggregator(search, cfg.Retrieval, log),
		analyzer:   analysis.NewAnalyzer(cfg.Analysis),
		selector:   anchor.NewSelector(fetch, table, log),
		composer:   compose.NewComposer(table),
		orch:       generate.NewOrchestrator(gen, cfg.Generation, log),
		embed:      embed,
		log:        log,
	}, nil
}

// Run executes one generation request end to end and returns the final
// document. It either returns a complete document or an error naming the
// failed stage; partial documents are never returned.
func (p *Pipeline) Run(ctx context.Context, requirement string) (string, error) {
	log := p.log.With(zap.String("request_id", uuid.NewString()))
	log.Info("starting generation request", zap.Int("requirement_len", len(requirement)))

	queryVector, err := p.embed.Embed(ctx, requirement)
	if err != nil {
		return "", fmt.Errorf("embedding requirement: %w", err)
	}

	buckets, err := p.aggregator.Retrieve(ctx, queryVector)
	if err != nil {
		return "", fmt.Errorf("retrieving summaries: %w", err)
	}

	insights, excerpts, err := p.fanOut(ctx, buckets, log)
	if err != nil {
		return "", err
	}

	contexts := p.composer.Compose(buckets, insights, excerpts)
	log.Info("contexts composed",
		zap.Int("insights", len(insights)),
		zap.Int("anchors", len(excerpts)))

	doc, err := p.orch.Run(ctx, contexts, requirement)
	if err != nil {
		return "", err
	}

	log.Info("generation request complete", zap.Int("document_len", len(doc)))
	return doc, nil
}

// fanOut runs the per-category pattern analyses and the anchor selection
// concurrently. Both consume the immutable bucket set; neither observes
// the other's intermediate state.
func (p *Pipeline) fanOut(
	ctx context.Context,
	buckets map[types.Category]types.CategoryBucket,
	log *zap.Logger,
) (map[types.Category]types.PatternInsight, []types.AnchorExcerpt, error) {
	var (
		insightSlots = make([]types.PatternInsight, len(p.table.Analyzable))
		excerpts     []types.AnchorExcerpt
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range p.table.Analyzable {
		i, cat := i, cat
		g.Go(func() error {
			insightSlots[i] = p.analyzer.Analyze(buckets[cat])
			return nil
		})
	}
	g.Go(func() error {
		var err error
		excerpts, err = p.selector.Select(gctx, buckets)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("selecting anchor excerpts: %w", err)
	}

	insights := make(map[types.Category]types.PatternInsight, len(insightSlots))
	for i, cat := range p.table.Analyzable {
		insights[cat] = insightSlots[i]
		log.Debug("pattern analysis complete",
			zap.String("category", string(cat)),
			zap.Int("patterns", len(insightSlots[i].Patterns)),
			zap.Int("trends", len(insightSlots[i].Trends)))
	}
	return insights, excerpts, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package anchor selects the papers whose full source sections accompany
// generation. At most one anchor paper per anchored target section, chosen
// by strict-maximum relevance across the section's anchor category pool.
package anchor

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/internal/mapping"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// SectionFetcher is the external full-section text service. Fragments come
// back in original document order (ascending chunk index); an unavailable
// section yields an empty slice, not an error.
type SectionFetcher interface {
	FetchFullSection(ctx context.Context, paperID string, section types.TargetSection) ([]string, error)
}

// Selector picks anchor papers and fetches their section excerpts.
type Selector struct {
	fetch SectionFetcher
	table mapping.Table
	log   *zap.Logger
}

// NewSelector creates a Selector. A nil logger disables logging.
func NewSelector(fetch SectionFetcher, table mapping.Table, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{fetch: fetch, table: table, log: log}
}

// Select walks the anchored sections in mapping-table order, picks each
// one's winning paper, and fetches its full section text. When two sections
// resolve to the same paper the excerpts merge into a single entry. An
// empty candidate pool or a failed fetch produces no excerpt for that
// section; neither is an error.
func (s *Selector) Select(ctx context.Context, buckets map[types.Category]types.CategoryBucket) ([]types.AnchorExcerpt, error) {
	var (
		excerpts []types.AnchorExcerpt
		byPaper  = make(map[string]int)
	)

	for _, plan := range s.table.Plans {
		if !plan.NeedsAnchor {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		paperID, ok := pickWinner(plan.AnchorPool, buckets)
		if !ok {
			s.log.Info("no anchor candidates for section",
				zap.String("section", string(plan.Section)))
			continue
		}

		fragments, err := s.fetch.FetchFullSection(ctx, paperID, plan.Section)
		if err != nil {
			s.log.Warn("anchor section fetch failed, continuing without excerpt",
				zap.String("paper_id", paperID),
				zap.String("section", string(plan.Section)),
				zap.Error(err))
			continue
		}
		if len(fragments) == 0 {
			s.log.Info("anchor section unavailable",
				zap.String("paper_id", paperID),
				zap.String("section", string(plan.Section)))
			continue
		}

		if idx, seen := byPaper[paperID]; seen {
			excerpts[idx].Sections[plan.Section] = fragments
			continue
		}
		byPaper[paperID] = len(excerpts)
		excerpts = append(excerpts, types.AnchorExcerpt{
			PaperID:  paperID,
			Sections: map[types.TargetSection][]string{plan.Section: fragments},
		})
	}

	return excerpts, nil
}

// pickWinner scans each pool category's top-ranked record and returns the
// paper with the strict maximum relevance score. On a tie the category
// listed first in the pool wins, so the result is stable across runs.
func pickWinner(pool []types.Category, buckets map[types.Category]types.CategoryBucket) (string, bool) {
	var (
		bestID    string
		bestScore float64
		found     bool
	)
	for _, cat := range pool {
		top, ok := buckets[cat].Top()
		if !ok {
			continue
		}
		if !found || top.RelevanceScore > bestScore {
			bestID = top.PaperID
			bestScore = top.RelevanceScore
			found = true
		}
	}
	return bestID, found
}

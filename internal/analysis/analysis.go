// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis derives cross-paper pattern insights from one category's
// ranked summaries. The analysis is plain keyword co-occurrence counting:
// deterministic, reproducible, and cheap to test. No model calls.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// stopwords are tokens too common to signal an approach. The list is small
// on purpose: over-filtering hides real domain terms.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "are": true, "was": true, "were": true, "from": true,
	"using": true, "used": true, "use": true, "uses": true, "based": true,
	"which": true, "their": true, "these": true, "those": true, "into": true,
	"over": true, "between": true, "both": true, "such": true, "more": true,
	"than": true, "also": true, "can": true, "has": true, "have": true,
	"its": true, "our": true, "they": true, "each": true, "all": true,
	"paper": true, "papers": true, "propose": true, "proposed": true,
	"approach": true, "method": true, "methods": true, "results": true,
	"show": true, "shows": true, "not": true, "but": true, "when": true,
}

// Analyzer turns a CategoryBucket into a PatternInsight.
type Analyzer struct {
	cfg types.AnalysisConfig
}

// NewAnalyzer creates an Analyzer, applying defaults for zero-valued
// settings.
func NewAnalyzer(cfg types.AnalysisConfig) *Analyzer {
	if cfg.TrendThreshold <= 0 {
		cfg.TrendThreshold = 0.5
	}
	if cfg.MinSupport <= 0 {
		cfg.MinSupport = 2
	}
	if cfg.MaxPatterns <= 0 {
		cfg.MaxPatterns = 10
	}
	return &Analyzer{cfg: cfg}
}

// Analyze computes the insight for one bucket. A bucket with fewer than two
// records yields an insight with empty patterns and trends: insufficient
// evidence is a valid outcome, not a failure.
func (a *Analyzer) Analyze(bucket types.CategoryBucket) types.PatternInsight {
	insight := types.PatternInsight{
		Category:      bucket.Category,
		TopicClusters: clusterByTopic(bucket.Records),
	}

	n := len(bucket.Records)
	if n < 2 {
		return insight
	}

	support := keywordSupport(bucket.Records)

	// Deterministic ordering: support descending, then alphabetical.
	keywords := make([]string, 0, len(support))
	for kw, count := range support {
		if count >= a.cfg.MinSupport {
			keywords = append(keywords, kw)
		}
	}
	sort.Slice(keywords, func(i, j int) bool {
		if support[keywords[i]] != support[keywords[j]] {
			return support[keywords[i]] > support[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > a.cfg.MaxPatterns {
		keywords = keywords[:a.cfg.MaxPatterns]
	}

	half := n / 2
	for _, kw := range keywords {
		count := support[kw]
		insight.Patterns = append(insight.Patterns,
			fmt.Sprintf("%s appears in %d/%d retrieved summaries", kw, count, n))

		if float64(count)/float64(n) > a.cfg.TrendThreshold {
			insight.Trends = append(insight.Trends, insight.Patterns[len(insight.Patterns)-1])
		}
		if count > half {
			insight.CommonApproaches = append(insight.CommonApproaches, kw)
		}
	}

	return insight
}

// clusterByTopic groups records by shared topic label.
func clusterByTopic(records []types.SummaryRecord) map[string][]types.SummaryRecord {
	clusters := make(map[string][]types.SummaryRecord)
	for _, rec := range records {
		for _, topic := range rec.Topics {
			clusters[topic] = append(clusters[topic], rec)
		}
	}
	return clusters
}

// keywordSupport counts, per keyword, how many distinct records mention it.
func keywordSupport(records []types.SummaryRecord) map[string]int {
	support := make(map[string]int)
	for _, rec := range records {
		for kw := range recordKeywords(rec.Text) {
			support[kw]++
		}
	}
	return support
}

// recordKeywords extracts the set of candidate keywords from one summary's
// text: lowercased alphanumeric tokens of at least three characters that
// are not stopwords.
func recordKeywords(text string) map[string]bool {
	keywords := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isTokenRune(r)
	}) {
		if len(tok) < 3 || stopwords[tok] {
			continue
		}
		keywords[tok] = true
	}
	return keywords
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_':
		return true
	}
	return false
}

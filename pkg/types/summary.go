// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the paper-engine pipeline.
package types

// Category identifies one of the ten typed summary aspects maintained
// per indexed paper.
type Category string

const (
	CatBackground     Category = "background"
	CatRelatedWork    Category = "relatedwork"
	CatChallenges     Category = "challenges"
	CatInnovations    Category = "innovations"
	CatMethodology    Category = "methodology"
	CatExpeDesign     Category = "expedesign"
	CatBaseline       Category = "baseline"
	CatMetric         Category = "metric"
	CatResultAnalysis Category = "resultanalysis"
	CatConclusion     Category = "conclusion"
)

// AllCategories returns the ten categories in canonical enumeration order.
// This order is load-bearing: selection tie-breaks resolve to the category
// listed first.
func AllCategories() []Category {
	return []Category{
		CatBackground, CatRelatedWork, CatChallenges, CatInnovations,
		CatMethodology, CatExpeDesign, CatBaseline, CatMetric,
		CatResultAnalysis, CatConclusion,
	}
}

// Valid reports whether c is one of the ten known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// TargetSection identifies one of the five sections of a generated paper.
type TargetSection string

const (
	SectionIntroduction TargetSection = "introduction"
	SectionRelatedWork  TargetSection = "related_work"
	SectionMethods      TargetSection = "methods"
	SectionExperiments  TargetSection = "experiments"
	SectionConclusion   TargetSection = "conclusion"
)

// AllTargetSections returns the five target sections in document order,
// which is also the fixed generation order.
func AllTargetSections() []TargetSection {
	return []TargetSection{
		SectionIntroduction, SectionRelatedWork, SectionMethods,
		SectionExperiments, SectionConclusion,
	}
}

// Title returns the section's display heading.
func (s TargetSection) Title() string {
	switch s {
	case SectionIntroduction:
		return "Introduction"
	case SectionRelatedWork:
		return "Related Work"
	case SectionMethods:
		return "Methods"
	case SectionExperiments:
		return "Experiments"
	case SectionConclusion:
		return "Conclusion"
	}
	return string(s)
}

// SummaryRecord is one typed summary retrieved for a paper. Records are
// immutable once retrieved; downstream components read them but never
// modify them.
type SummaryRecord struct {
	// PaperID identifies the summarized paper.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Text is the summary body.
	Text string `json:"text" yaml:"text"`

	// SourceSections lists the paper sections the summary was distilled
	// from, in document order (at most 5).
	SourceSections []string `json:"source_sections" yaml:"source_sections"`

	// Topics are the summary's topic labels (at most 10).
	Topics []string `json:"topics" yaml:"topics"`

	// RelevanceScore is the retrieval similarity to the query vector.
	// Higher is more relevant.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// CategoryBucket holds one category's ranked retrieval results, most
// relevant first. A bucket with no records is a valid outcome of an empty
// or failed search.
type CategoryBucket struct {
	Category Category        `json:"category" yaml:"category"`
	Records  []SummaryRecord `json:"records" yaml:"records"`
}

// Top returns the bucket's top-ranked record, if any.
func (b CategoryBucket) Top() (SummaryRecord, bool) {
	if len(b.Records) == 0 {
		return SummaryRecord{}, false
	}
	return b.Records[0], true
}

// PatternInsight is the cross-paper analysis derived from one analyzable
// category's bucket. Recomputed each run, never persisted.
type PatternInsight struct {
	Category Category `json:"category" yaml:"category"`

	// Patterns are frequency statements of the form
	// "<keyword> appears in m/n retrieved summaries".
	Patterns []string `json:"patterns" yaml:"patterns"`

	// Trends is the subset of patterns whose support exceeds the
	// configured threshold.
	Trends []string `json:"trends" yaml:"trends"`

	// CommonApproaches are keywords shared by more than half the records.
	CommonApproaches []string `json:"common_approaches" yaml:"common_approaches"`

	// TopicClusters groups records by shared topic label.
	TopicClusters map[string][]SummaryRecord `json:"topic_clusters" yaml:"topic_clusters"`
}

// AnchorExcerpt carries full source-section text for one anchor paper.
// At most two exist per request; when the method and experiment anchors
// resolve to the same paper, one entry carries both section excerpts.
type AnchorExcerpt struct {
	// PaperID identifies the anchor paper.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Sections maps a target section to the paper's full section text as
	// ordered fragments (original chunk order preserved).
	Sections map[TargetSection][]string `json:"sections" yaml:"sections"`
}

// SectionContext is the composed knowledge context for one target section.
// Built once per request and read-only afterwards.
type SectionContext struct {
	Section TargetSection `json:"section" yaml:"section"`
	Text    string        `json:"text" yaml:"text"`
}

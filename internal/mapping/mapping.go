// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapping holds the static category-to-section relevance table that
// drives context composition and anchor selection. The table is the single
// source of truth: the composer and the selector both consume it, so the
// relevance policy lives in exactly one place.
package mapping

import (
	"fmt"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// SectionPlan describes how one target section's context is assembled.
type SectionPlan struct {
	// Section is the target section this plan covers.
	Section types.TargetSection `json:"section" yaml:"section"`

	// Categories lists the summary categories that feed this section, in
	// composition order.
	Categories []types.Category `json:"categories" yaml:"categories"`

	// NeedsAnchor marks sections that include a full source excerpt from
	// an anchor paper.
	NeedsAnchor bool `json:"needs_anchor" yaml:"needs_anchor"`

	// AnchorPool lists the categories whose top-ranked records compete to
	// supply the anchor paper, in tie-break order. Empty unless
	// NeedsAnchor is set.
	AnchorPool []types.Category `json:"anchor_pool,omitempty" yaml:"anchor_pool,omitempty"`
}

// Table is a versioned relevance mapping. Plans appear in document order,
// which is also the generation order.
type Table struct {
	Version    int              `json:"version" yaml:"version"`
	Plans      []SectionPlan    `json:"plans" yaml:"plans"`
	Analyzable []types.Category `json:"analyzable" yaml:"analyzable"`
}

// Default returns the built-in relevance table.
func Default() Table {
	return Table{
		Version: 1,
		Plans: []SectionPlan{
			{
				Section: types.SectionIntroduction,
				Categories: []types.Category{
					types.CatBackground, types.CatChallenges,
					types.CatInnovations, types.CatMethodology,
				},
			},
			{
				Section: types.SectionRelatedWork,
				Categories: []types.Category{
					types.CatRelatedWork, types.CatChallenges, types.CatBaseline,
				},
			},
			{
				Section:     types.SectionMethods,
				Categories:  []types.Category{types.CatMethodology},
				NeedsAnchor: true,
				AnchorPool:  []types.Category{types.CatMethodology},
			},
			{
				Section: types.SectionExperiments,
				Categories: []types.Category{
					types.CatExpeDesign, types.CatBaseline,
					types.CatMetric, types.CatResultAnalysis,
				},
				NeedsAnchor: true,
				AnchorPool: []types.Category{
					types.CatExpeDesign, types.CatBaseline,
					types.CatMetric, types.CatResultAnalysis,
				},
			},
			{
				Section: types.SectionConclusion,
				Categories: []types.Category{
					types.CatConclusion, types.CatResultAnalysis, types.CatInnovations,
				},
			},
		},
		Analyzable: []types.Category{
			types.CatMethodology, types.CatInnovations, types.CatChallenges,
			types.CatExpeDesign, types.CatMetric,
		},
	}
}

// Plan returns the plan for a target section.
func (t Table) Plan(section types.TargetSection) (SectionPlan, bool) {
	for _, p := range t.Plans {
		if p.Section == section {
			return p, true
		}
	}
	return SectionPlan{}, false
}

// IsAnalyzable reports whether a category is in the analyzable set.
func (t Table) IsAnalyzable(cat types.Category) bool {
	for _, c := range t.Analyzable {
		if c == cat {
			return true
		}
	}
	return false
}

// Validate checks the table's structural invariants. A malformed table is a
// startup error: nothing per-request can repair it.
func (t Table) Validate() error {
	if t.Version <= 0 {
		return fmt.Errorf("mapping table version must be positive, got %d", t.Version)
	}

	sections := types.AllTargetSections()
	if len(t.Plans) != len(sections) {
		return fmt.Errorf("mapping table has %d plans, want %d", len(t.Plans), len(sections))
	}
	for i, want := range sections {
		p := t.Plans[i]
		if p.Section != want {
			return fmt.Errorf("plan %d covers %q, want %q", i, p.Section, want)
		}
		if len(p.Categories) == 0 {
			return fmt.Errorf("plan for %q lists no categories", p.Section)
		}
		for _, c := range p.Categories {
			if !c.Valid() {
				return fmt.Errorf("plan for %q references unknown category %q", p.Section, c)
			}
		}
		if p.NeedsAnchor && len(p.AnchorPool) == 0 {
			return fmt.Errorf("plan for %q needs an anchor but has an empty anchor pool", p.Section)
		}
		if !p.NeedsAnchor && len(p.AnchorPool) > 0 {
			return fmt.Errorf("plan for %q has an anchor pool but no anchor flag", p.Section)
		}
		for _, c := range p.AnchorPool {
			if !c.Valid() {
				return fmt.Errorf("anchor pool for %q references unknown category %q", p.Section, c)
			}
		}
	}

	for _, c := range t.Analyzable {
		if !c.Valid() {
			return fmt.Errorf("analyzable set references unknown category %q", c)
		}
	}

	return nil
}

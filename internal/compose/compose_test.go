// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"strings"
	"testing"

	"github.com/pdiddy/paper-engine/internal/mapping"
	"github.com/pdiddy/paper-engine/pkg/types"
)

func emptyBuckets() map[types.Category]types.CategoryBucket {
	buckets := make(map[types.Category]types.CategoryBucket)
	for _, cat := range types.AllCategories() {
		buckets[cat] = types.CategoryBucket{Category: cat}
	}
	return buckets
}

func record(paperID, text string) types.SummaryRecord {
	return types.SummaryRecord{PaperID: paperID, Text: text}
}

func TestComposeAllSectionsPresent(t *testing.T) {
	c := NewComposer(mapping.Default())
	contexts := c.Compose(emptyBuckets(), nil, nil)

	if len(contexts) != 5 {
		t.Fatalf("len(contexts) = %d, want 5", len(contexts))
	}
	for _, section := range types.AllTargetSections() {
		sc, ok := contexts[section]
		if !ok {
			t.Errorf("context for %s missing", section)
			continue
		}
		if sc.Section != section {
			t.Errorf("context section = %s, want %s", sc.Section, section)
		}
		if sc.Text == "" {
			t.Errorf("context text for %s is empty, want at least headers", section)
		}
	}
}

func TestComposeDegenerateAllEmpty(t *testing.T) {
	// All ten buckets empty: composition still succeeds with header-only
	// texts and no summary material.
	c := NewComposer(mapping.Default())
	contexts := c.Compose(emptyBuckets(), nil, nil)

	intro := contexts[types.SectionIntroduction].Text
	if !strings.Contains(intro, "Context: Introduction") {
		t.Errorf("intro context missing header: %q", intro)
	}
	if strings.Contains(intro, "Summary 1") {
		t.Errorf("intro context contains summary material despite empty buckets")
	}
}

func TestComposeCategoryOrderWithinSection(t *testing.T) {
	buckets := emptyBuckets()
	buckets[types.CatBackground] = types.CategoryBucket{
		Category: types.CatBackground,
		Records:  []types.SummaryRecord{record("p1", "BACKGROUND-TEXT")},
	}
	buckets[types.CatChallenges] = types.CategoryBucket{
		Category: types.CatChallenges,
		Records:  []types.SummaryRecord{record("p2", "CHALLENGES-TEXT")},
	}
	buckets[types.CatMethodology] = types.CategoryBucket{
		Category: types.CatMethodology,
		Records:  []types.SummaryRecord{record("p3", "METHODOLOGY-TEXT")},
	}

	c := NewComposer(mapping.Default())
	intro := c.Compose(buckets, nil, nil)[types.SectionIntroduction].Text

	// Introduction draws from background, challenges, innovations,
	// methodology, in that order.
	bg := strings.Index(intro, "BACKGROUND-TEXT")
	ch := strings.Index(intro, "CHALLENGES-TEXT")
	me := strings.Index(intro, "METHODOLOGY-TEXT")
	if bg < 0 || ch < 0 || me < 0 {
		t.Fatalf("intro missing mapped category material: bg=%d ch=%d me=%d", bg, ch, me)
	}
	if !(bg < ch && ch < me) {
		t.Errorf("category material out of order: bg=%d ch=%d me=%d", bg, ch, me)
	}
}

func TestComposeExcludesUnmappedCategories(t *testing.T) {
	buckets := emptyBuckets()
	buckets[types.CatConclusion] = types.CategoryBucket{
		Category: types.CatConclusion,
		Records:  []types.SummaryRecord{record("p9", "CONCLUSION-ONLY-TEXT")},
	}

	c := NewComposer(mapping.Default())
	contexts := c.Compose(buckets, nil, nil)

	if strings.Contains(contexts[types.SectionIntroduction].Text, "CONCLUSION-ONLY-TEXT") {
		t.Error("introduction includes conclusion-category material")
	}
	if !strings.Contains(contexts[types.SectionConclusion].Text, "CONCLUSION-ONLY-TEXT") {
		t.Error("conclusion missing its mapped material")
	}
}

func TestComposeTrendsFollowSummaries(t *testing.T) {
	buckets := emptyBuckets()
	buckets[types.CatMethodology] = types.CategoryBucket{
		Category: types.CatMethodology,
		Records:  []types.SummaryRecord{record("p1", "METHOD-SUMMARY")},
	}
	insights := map[types.Category]types.PatternInsight{
		types.CatMethodology: {
			Category: types.CatMethodology,
			Trends:   []string{"TREND-STATEMENT"},
		},
	}

	c := NewComposer(mapping.Default())
	methods := c.Compose(buckets, insights, nil)[types.SectionMethods].Text

	si := strings.Index(methods, "METHOD-SUMMARY")
	ti := strings.Index(methods, "TREND-STATEMENT")
	if si < 0 || ti < 0 {
		t.Fatalf("methods context missing material: summary=%d trend=%d", si, ti)
	}
	if si > ti {
		t.Errorf("trend precedes its category's summaries: summary=%d trend=%d", si, ti)
	}
}

func TestComposeAnchorOnlyInMethodsAndExperiments(t *testing.T) {
	excerpts := []types.AnchorExcerpt{
		{
			PaperID: "pA",
			Sections: map[types.TargetSection][]string{
				types.SectionMethods:     {"METHODS-EXCERPT"},
				types.SectionExperiments: {"EXPERIMENTS-EXCERPT"},
			},
		},
	}

	c := NewComposer(mapping.Default())
	contexts := c.Compose(emptyBuckets(), nil, excerpts)

	if !strings.Contains(contexts[types.SectionMethods].Text, "METHODS-EXCERPT") {
		t.Error("methods context missing anchor excerpt")
	}
	if !strings.Contains(contexts[types.SectionExperiments].Text, "EXPERIMENTS-EXCERPT") {
		t.Error("experiments context missing anchor excerpt")
	}
	// Breadth sections never carry source excerpts.
	for _, section := range []types.TargetSection{
		types.SectionIntroduction, types.SectionRelatedWork, types.SectionConclusion,
	} {
		text := contexts[section].Text
		if strings.Contains(text, "METHODS-EXCERPT") || strings.Contains(text, "EXPERIMENTS-EXCERPT") {
			t.Errorf("%s context includes a source excerpt", section)
		}
	}
}

func TestComposeAnchorFragmentOrder(t *testing.T) {
	excerpts := []types.AnchorExcerpt{
		{
			PaperID: "pA",
			Sections: map[types.TargetSection][]string{
				types.SectionMethods: {"FRAG-ONE", "FRAG-TWO", "FRAG-THREE"},
			},
		},
	}

	c := NewComposer(mapping.Default())
	methods := c.Compose(emptyBuckets(), nil, excerpts)[types.SectionMethods].Text

	i1 := strings.Index(methods, "FRAG-ONE")
	i2 := strings.Index(methods, "FRAG-TWO")
	i3 := strings.Index(methods, "FRAG-THREE")
	if !(i1 >= 0 && i1 < i2 && i2 < i3) {
		t.Errorf("fragment order not preserved: %d %d %d", i1, i2, i3)
	}
}

func TestComposeCapsSummariesPerCategory(t *testing.T) {
	recs := []types.SummaryRecord{
		record("p1", "RANK-1"), record("p2", "RANK-2"),
		record("p3", "RANK-3"), record("p4", "RANK-4"),
	}
	buckets := emptyBuckets()
	buckets[types.CatMethodology] = types.CategoryBucket{Category: types.CatMethodology, Records: recs}

	c := NewComposer(mapping.Default())
	methods := c.Compose(buckets, nil, nil)[types.SectionMethods].Text

	if !strings.Contains(methods, "RANK-3") {
		t.Error("third-ranked summary missing")
	}
	if strings.Contains(methods, "RANK-4") {
		t.Error("fourth-ranked summary included, want top 3 only")
	}
}

func TestComposeIsPure(t *testing.T) {
	buckets := emptyBuckets()
	buckets[types.CatBackground] = types.CategoryBucket{
		Category: types.CatBackground,
		Records:  []types.SummaryRecord{record("p1", "stable text")},
	}
	c := NewComposer(mapping.Default())

	first := c.Compose(buckets, nil, nil)
	second := c.Compose(buckets, nil, nil)
	for _, section := range types.AllTargetSections() {
		if first[section].Text != second[section].Text {
			t.Errorf("composition for %s differs across identical calls", section)
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package anchor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/pdiddy/paper-engine/internal/mapping"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// --- mock fetcher ---

type mockFetcher struct {
	// fragments[paperID][section] is the fetch result.
	fragments map[string]map[types.TargetSection][]string
	errs      map[string]error
	calls     []string
}

func (m *mockFetcher) FetchFullSection(_ context.Context, paperID string, section types.TargetSection) ([]string, error) {
	m.calls = append(m.calls, paperID+"/"+string(section))
	if err := m.errs[paperID]; err != nil {
		return nil, err
	}
	return m.fragments[paperID][section], nil
}

func topRecord(cat types.Category, paperID string, score float64) types.CategoryBucket {
	return types.CategoryBucket{
		Category: cat,
		Records:  []types.SummaryRecord{{PaperID: paperID, RelevanceScore: score}},
	}
}

func emptyBuckets() map[types.Category]types.CategoryBucket {
	buckets := make(map[types.Category]types.CategoryBucket)
	for _, cat := range types.AllCategories() {
		buckets[cat] = types.CategoryBucket{Category: cat}
	}
	return buckets
}

func fetcherFor(papers ...string) *mockFetcher {
	m := &mockFetcher{fragments: make(map[string]map[types.TargetSection][]string)}
	for _, p := range papers {
		m.fragments[p] = map[types.TargetSection][]string{
			types.SectionMethods:     {p + " methods chunk 0", p + " methods chunk 1"},
			types.SectionExperiments: {p + " experiments chunk 0"},
		}
	}
	return m
}

func TestSelectDistinctAnchors(t *testing.T) {
	// Methodology top scores 0.91; the experiment pool's best top record is
	// the 0.92 resultanalysis paper. Two distinct anchors result.
	buckets := emptyBuckets()
	buckets[types.CatMethodology] = types.CategoryBucket{
		Category: types.CatMethodology,
		Records: []types.SummaryRecord{
			{PaperID: "pA", RelevanceScore: 0.91},
			{PaperID: "pA", RelevanceScore: 0.88},
			{PaperID: "pB", RelevanceScore: 0.80},
			{PaperID: "pC", RelevanceScore: 0.77},
			{PaperID: "pB", RelevanceScore: 0.70},
		},
	}
	buckets[types.CatExpeDesign] = topRecord(types.CatExpeDesign, "pD", 0.85)
	buckets[types.CatBaseline] = topRecord(types.CatBaseline, "pE", 0.60)
	buckets[types.CatMetric] = topRecord(types.CatMetric, "pF", 0.55)
	buckets[types.CatResultAnalysis] = topRecord(types.CatResultAnalysis, "pG", 0.92)

	sel := NewSelector(fetcherFor("pA", "pG"), mapping.Default(), nil)
	excerpts, err := sel.Select(context.Background(), buckets)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if len(excerpts) != 2 {
		t.Fatalf("len(excerpts) = %d, want 2", len(excerpts))
	}
	if excerpts[0].PaperID != "pA" {
		t.Errorf("method anchor = %s, want pA", excerpts[0].PaperID)
	}
	if _, ok := excerpts[0].Sections[types.SectionMethods]; !ok {
		t.Error("method anchor missing methods excerpt")
	}
	if excerpts[1].PaperID != "pG" {
		t.Errorf("experiment anchor = %s, want pG", excerpts[1].PaperID)
	}
	if _, ok := excerpts[1].Sections[types.SectionExperiments]; !ok {
		t.Error("experiment anchor missing experiments excerpt")
	}
}

func TestSelectSamePaperMergesIntoOneEntry(t *testing.T) {
	buckets := emptyBuckets()
	buckets[types.CatMethodology] = topRecord(types.CatMethodology, "pX", 0.9)
	buckets[types.CatExpeDesign] = topRecord(types.CatExpeDesign, "pX", 0.8)

	sel := NewSelector(fetcherFor("pX"), mapping.Default(), nil)
	excerpts, err := sel.Select(context.Background(), buckets)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if len(excerpts) != 1 {
		t.Fatalf("len(excerpts) = %d, want 1 merged entry", len(excerpts))
	}
	ex := excerpts[0]
	if ex.PaperID != "pX" {
		t.Errorf("anchor = %s, want pX", ex.PaperID)
	}
	if len(ex.Sections) != 2 {
		t.Errorf("sections = %d, want both methods and experiments", len(ex.Sections))
	}
}

func TestSelectTieBreakIsDeterministic(t *testing.T) {
	// Equal top scores across the experiment pool: the category listed
	// first (expedesign) must win, every time.
	buckets := emptyBuckets()
	buckets[types.CatExpeDesign] = topRecord(types.CatExpeDesign, "pFirst", 0.75)
	buckets[types.CatMetric] = topRecord(types.CatMetric, "pOther", 0.75)

	fetcher := fetcherFor("pFirst", "pOther")
	sel := NewSelector(fetcher, mapping.Default(), nil)

	for i := 0; i < 10; i++ {
		excerpts, err := sel.Select(context.Background(), buckets)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if len(excerpts) != 1 {
			t.Fatalf("len(excerpts) = %d, want 1", len(excerpts))
		}
		if excerpts[0].PaperID != "pFirst" {
			t.Fatalf("run %d: anchor = %s, want pFirst", i, excerpts[0].PaperID)
		}
	}
}

func TestSelectEmptyPoolsProduceNoExcerpts(t *testing.T) {
	fetcher := fetcherFor()
	sel := NewSelector(fetcher, mapping.Default(), nil)

	excerpts, err := sel.Select(context.Background(), emptyBuckets())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(excerpts) != 0 {
		t.Errorf("excerpts = %v, want none", excerpts)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetch calls = %v, want none", fetcher.calls)
	}
}

func TestSelectFetchFailureIsNotFatal(t *testing.T) {
	buckets := emptyBuckets()
	buckets[types.CatMethodology] = topRecord(types.CatMethodology, "pBad", 0.9)
	buckets[types.CatBaseline] = topRecord(types.CatBaseline, "pGood", 0.7)

	fetcher := fetcherFor("pGood")
	fetcher.errs = map[string]error{"pBad": errors.New("store offline")}

	sel := NewSelector(fetcher, mapping.Default(), nil)
	excerpts, err := sel.Select(context.Background(), buckets)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	// Method anchor fetch failed; experiment anchor still produced.
	if len(excerpts) != 1 {
		t.Fatalf("len(excerpts) = %d, want 1", len(excerpts))
	}
	if excerpts[0].PaperID != "pGood" {
		t.Errorf("anchor = %s, want pGood", excerpts[0].PaperID)
	}
}

func TestSelectPreservesFragmentOrder(t *testing.T) {
	buckets := emptyBuckets()
	buckets[types.CatMethodology] = topRecord(types.CatMethodology, "pA", 0.9)

	fetcher := fetcherFor("pA")
	sel := NewSelector(fetcher, mapping.Default(), nil)

	excerpts, err := sel.Select(context.Background(), buckets)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := []string{"pA methods chunk 0", "pA methods chunk 1"}
	if !reflect.DeepEqual(excerpts[0].Sections[types.SectionMethods], want) {
		t.Errorf("fragments = %v, want %v (chunk order)", excerpts[0].Sections[types.SectionMethods], want)
	}
}

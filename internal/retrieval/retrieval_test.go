package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// --- mock search service ---

type mockSearch struct {
	results map[types.Category][]types.SummaryRecord
	errs    map[types.Category]error

	// block lists categories whose search hangs until the context is done.
	block map[types.Category]bool
}

func (m *mockSearch) SearchByCategory(ctx context.Context, _ []float32, cat types.Category, _ int) ([]types.SummaryRecord, error) {
	if m.block[cat] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := m.errs[cat]; err != nil {
		return nil, err
	}
	return m.results[cat], nil
}

func records(paperIDs ...string) []types.SummaryRecord {
	recs := make([]types.SummaryRecord, len(paperIDs))
	for i, id := range paperIDs {
		recs[i] = types.SummaryRecord{PaperID: id, Text: "summary of " + id}
	}
	return recs
}

func TestRetrieveAllCategoriesPresent(t *testing.T) {
	search := &mockSearch{
		results: map[types.Category][]types.SummaryRecord{
			types.CatMethodology: records("p1", "p2"),
		},
	}
	agg := NewAggregator(search, types.RetrievalConfig{TopK: 5}, nil)

	buckets, err := agg.Retrieve(context.Background(), []float32{1, 0})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(buckets) != 10 {
		t.Fatalf("len(buckets) = %d, want 10", len(buckets))
	}
	for _, cat := range types.AllCategories() {
		bucket, ok := buckets[cat]
		if !ok {
			t.Errorf("bucket for %s missing", cat)
			continue
		}
		if bucket.Category != cat {
			t.Errorf("bucket category = %s, want %s", bucket.Category, cat)
		}
	}
	if got := len(buckets[types.CatMethodology].Records); got != 2 {
		t.Errorf("methodology records = %d, want 2", got)
	}
	if got := len(buckets[types.CatBackground].Records); got != 0 {
		t.Errorf("background records = %d, want 0", got)
	}
}

func TestRetrieveFailureDegradesToEmptyBucket(t *testing.T) {
	search := &mockSearch{
		results: map[types.Category][]types.SummaryRecord{
			types.CatBaseline: records("p3"),
		},
		errs: map[types.Category]error{
			types.CatMetric: errors.New("index unavailable"),
		},
	}
	agg := NewAggregator(search, types.RetrievalConfig{TopK: 5}, nil)

	buckets, err := agg.Retrieve(context.Background(), []float32{1})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if got := len(buckets[types.CatMetric].Records); got != 0 {
		t.Errorf("failed category records = %d, want 0", got)
	}
	// Sibling categories are unaffected.
	if got := len(buckets[types.CatBaseline].Records); got != 1 {
		t.Errorf("sibling records = %d, want 1", got)
	}
}

func TestRetrieveTimeoutIsolatedToOneCategory(t *testing.T) {
	search := &mockSearch{
		results: map[types.Category][]types.SummaryRecord{
			types.CatBackground: records("p1"),
		},
		block: map[types.Category]bool{types.CatConclusion: true},
	}
	agg := NewAggregator(search, types.RetrievalConfig{TopK: 5, Timeout: 20 * time.Millisecond}, nil)

	buckets, err := agg.Retrieve(context.Background(), []float32{1})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if got := len(buckets[types.CatConclusion].Records); got != 0 {
		t.Errorf("timed-out category records = %d, want 0", got)
	}
	if got := len(buckets[types.CatBackground].Records); got != 1 {
		t.Errorf("sibling records = %d, want 1", got)
	}
}

func TestRetrieveTruncatesToTopK(t *testing.T) {
	many := make([]types.SummaryRecord, 8)
	for i := range many {
		many[i] = types.SummaryRecord{PaperID: fmt.Sprintf("p%d", i)}
	}
	search := &mockSearch{
		results: map[types.Category][]types.SummaryRecord{types.CatBackground: many},
	}
	agg := NewAggregator(search, types.RetrievalConfig{TopK: 3}, nil)

	buckets, err := agg.Retrieve(context.Background(), []float32{1})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if got := len(buckets[types.CatBackground].Records); got != 3 {
		t.Errorf("records = %d, want 3", got)
	}
	// Rank order preserved after truncation.
	if buckets[types.CatBackground].Records[0].PaperID != "p0" {
		t.Errorf("top record = %s, want p0", buckets[types.CatBackground].Records[0].PaperID)
	}
}

func TestRetrieveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := NewAggregator(&mockSearch{}, types.RetrievalConfig{}, nil)
	if _, err := agg.Retrieve(ctx, []float32{1}); !errors.Is(err, context.Canceled) {
		t.Errorf("Retrieve() error = %v, want context.Canceled", err)
	}
}

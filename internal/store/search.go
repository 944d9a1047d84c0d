// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// SearchByCategory returns up to topK summaries for a category, ranked by
// cosine similarity to the query vector, most relevant first. An indexed
// category with no matches yields an empty slice, never an error. Ties keep
// insertion order, so ranking is stable across runs.
func (s *Store) SearchByCategory(ctx context.Context, queryVector []float32, cat types.Category, topK int) ([]types.SummaryRecord, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, text, source_sections, topics, embedding
		 FROM summaries WHERE category = ? ORDER BY rowid`, string(cat))
	if err != nil {
		return nil, fmt.Errorf("querying summaries for %s: %w", cat, err)
	}
	defer rows.Close()

	var records []types.SummaryRecord
	for rows.Next() {
		var (
			rec          types.SummaryRecord
			sectionsJSON sql.NullString
			topicsJSON   sql.NullString
			embJSON      string
		)
		if err := rows.Scan(&rec.PaperID, &rec.Text, &sectionsJSON, &topicsJSON, &embJSON); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		if sectionsJSON.Valid {
			json.Unmarshal([]byte(sectionsJSON.String), &rec.SourceSections)
		}
		if topicsJSON.Valid {
			json.Unmarshal([]byte(topicsJSON.String), &rec.Topics)
		}

		var embedding []float32
		if err := json.Unmarshal([]byte(embJSON), &embedding); err != nil {
			return nil, fmt.Errorf("decoding embedding for %s/%s: %w", cat, rec.PaperID, err)
		}
		rec.RelevanceScore = cosineSimilarity(queryVector, embedding)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RelevanceScore > records[j].RelevanceScore
	})
	if len(records) > topK {
		records = records[:topK]
	}
	return records, nil
}

// FetchFullSection returns a paper's stored section text as fragments in
// ascending chunk order. An unknown paper or section yields an empty slice.
func (s *Store) FetchFullSection(ctx context.Context, paperID string, section types.TargetSection) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM fragments
		 WHERE paper_id = ? AND section = ?
		 ORDER BY chunk_index ASC`, paperID, string(section))
	if err != nil {
		return nil, fmt.Errorf("querying fragments for %s/%s: %w", paperID, section, err)
	}
	defer rows.Close()

	var fragments []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scanning fragment row: %w", err)
		}
		fragments = append(fragments, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fragment rows: %w", err)
	}
	return fragments, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

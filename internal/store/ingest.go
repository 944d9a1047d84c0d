// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// Embedder computes an embedding vector for one summary text during ingest.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PaperDocument is the on-disk YAML layout for one paper's typed summaries
// and source-section fragments: dataDir/summaries/[paperID].yaml.
type PaperDocument struct {
	// PaperID identifies the paper.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Summaries holds the paper's typed summaries, one per category.
	Summaries []PaperSummary `json:"summaries" yaml:"summaries"`

	// Sections holds the paper's full section text for excerpt fetches.
	Sections []PaperSection `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// PaperSummary is one typed summary within a PaperDocument.
type PaperSummary struct {
	Category       types.Category `json:"category" yaml:"category"`
	Text           string         `json:"text" yaml:"text"`
	SourceSections []string       `json:"source_sections,omitempty" yaml:"source_sections,omitempty"`
	Topics         []string       `json:"topics,omitempty" yaml:"topics,omitempty"`
}

// PaperSection is one section's ordered fragments within a PaperDocument.
type PaperSection struct {
	Section   types.TargetSection `json:"section" yaml:"section"`
	Fragments []string            `json:"fragments" yaml:"fragments"`
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of papers processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads paper YAML files from dataDir/summaries/ and populates the
// database, embedding each summary's text. Unchanged files are skipped and
// changed ones re-indexed, keyed by file modification time.
func (s *Store) Ingest(ctx context.Context, embed Embedder, w io.Writer) (IngestSummary, error) {
	srcDir := filepath.Join(s.dataDir, summariesDir)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading summaries directory %s: %w", srcDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		paperID := strings.TrimSuffix(entry.Name(), ".yaml")

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE paper_id = ?`, paperID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", paperID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(filepath.Join(srcDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		var doc PaperDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", paperID, err)
			summary.Failed++
			continue
		}
		if doc.PaperID == "" {
			doc.PaperID = paperID
		}

		if err := s.ingestPaper(ctx, &doc, embed, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", paperID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d summaries, %d sections)\n", paperID, len(doc.Summaries), len(doc.Sections))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d summaries, %d sections)\n", paperID, len(doc.Summaries), len(doc.Sections))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestPaper(ctx context.Context, doc *PaperDocument, embed Embedder, modTime string, isUpdate bool) error {
	// Embed outside the transaction: API calls are slow and can fail.
	embeddings := make([][]float32, len(doc.Summaries))
	for i, sum := range doc.Summaries {
		if !sum.Category.Valid() {
			return fmt.Errorf("unknown category %q", sum.Category)
		}
		vec, err := embed.Embed(ctx, sum.Text)
		if err != nil {
			return fmt.Errorf("embedding %s summary: %w", sum.Category, err)
		}
		embeddings[i] = vec
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM summaries WHERE paper_id = ?`, doc.PaperID); err != nil {
			return fmt.Errorf("deleting old summaries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM fragments WHERE paper_id = ?`, doc.PaperID); err != nil {
			return fmt.Errorf("deleting old fragments: %w", err)
		}
	}

	sumStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO summaries (category, paper_id, text, source_sections, topics, embedding)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing summary insert: %w", err)
	}
	defer sumStmt.Close()

	for i, sum := range doc.Summaries {
		sectionsJSON, _ := json.Marshal(sum.SourceSections)
		topicsJSON, _ := json.Marshal(sum.Topics)
		embJSON, _ := json.Marshal(embeddings[i])
		_, err := sumStmt.ExecContext(ctx,
			string(sum.Category), doc.PaperID, sum.Text,
			string(sectionsJSON), string(topicsJSON), string(embJSON))
		if err != nil {
			return fmt.Errorf("inserting %s summary: %w", sum.Category, err)
		}
	}

	fragStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO fragments (paper_id, section, chunk_index, text)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing fragment insert: %w", err)
	}
	defer fragStmt.Close()

	for _, sec := range doc.Sections {
		for i, frag := range sec.Fragments {
			_, err := fragStmt.ExecContext(ctx, doc.PaperID, string(sec.Section), i, frag)
			if err != nil {
				return fmt.Errorf("inserting %s fragment %d: %w", sec.Section, i, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (paper_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		doc.PaperID, modTime)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index typed paper summaries into the summary store",
	Long: `Ingest reads paper YAML files from the store's summaries/ directory,
embeds each typed summary, and indexes summaries and source-section
fragments into a SQLite database. Unchanged papers are skipped on
subsequent runs.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	embed, err := llm.New(cfg.Embedding.AIConfig, "")
	if err != nil {
		return fmt.Errorf("configuring embedding client: %w", err)
	}

	summary, err := st.Ingest(cmd.Context(), embed, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed ingest", summary.Failed)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run [requirement]",
	Short: "Generate a complete paper from a short requirement",
	Long: `Run executes one generation request end to end: retrieves typed
summaries for the requirement across all ten categories, analyzes
cross-paper patterns, selects anchor source excerpts, composes per-section
contexts, and generates the five sections in dependency order followed by
a global coherence pass.

The result is written to the output directory, or stdout with --stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("model", "", "AI model identifier for generation")
	runCmd.Flags().String("provider", "", "AI provider: anthropic or openai")
	runCmd.Flags().String("output-dir", "output", "directory for generated papers")
	runCmd.Flags().Bool("stdout", false, "write the document to stdout instead of a file")
	runCmd.Flags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	requirement := strings.Join(args, " ")

	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}
	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		cfg.Generation.Provider = provider
		cfg.Generation.APIKey = secretDefault(providerKeyFile(provider), "")
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Generation.Model = model
	}

	log, err := buildLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	gen, err := llm.New(cfg.Generation.AIConfig, "")
	if err != nil {
		return fmt.Errorf("configuring generation client: %w", err)
	}
	embed, err := llm.New(cfg.Embedding.AIConfig, "")
	if err != nil {
		return fmt.Errorf("configuring embedding client: %w", err)
	}

	p, err := pipeline.New(cfg, st, st, gen, embed, log)
	if err != nil {
		return err
	}

	doc, err := p.Run(cmd.Context(), requirement)
	if err != nil {
		return err
	}

	if useStdout, _ := cmd.Flags().GetBool("stdout"); useStdout {
		fmt.Fprintln(os.Stdout, doc)
		return nil
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(outputDir, fmt.Sprintf("paper-%s.md", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Wrote", outPath)
	return nil
}

func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the API: anthropic or openai.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for rate-limited API
	// calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestsPerMinute throttles outbound API calls. Zero disables
	// throttling.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`
}

// RetrievalConfig holds settings for the category fan-out phase.
type RetrievalConfig struct {
	// TopK is the maximum number of summaries retrieved per category
	// (default 5).
	TopK int `json:"top_k" yaml:"top_k"`

	// Timeout bounds each category's search call. A timed-out category
	// degrades to an empty bucket without affecting its siblings.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// AnalysisConfig holds settings for cross-paper pattern analysis.
type AnalysisConfig struct {
	// TrendThreshold is the support ratio above which a pattern is
	// promoted to a trend (default 0.5: appears in a majority of records).
	TrendThreshold float64 `json:"trend_threshold" yaml:"trend_threshold"`

	// MinSupport is the minimum number of records a keyword must appear
	// in to produce a pattern (default 2).
	MinSupport int `json:"min_support" yaml:"min_support"`

	// MaxPatterns caps the number of pattern statements per insight
	// (default 10).
	MaxPatterns int `json:"max_patterns" yaml:"max_patterns"`
}

// GenerationConfig holds settings for the sequential generation phase.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// SummaryLengthHint is the approximate word count requested for
	// condensed section summaries (default 150).
	SummaryLengthHint int `json:"summary_length_hint" yaml:"summary_length_hint"`

	// StageTimeout bounds each generate, summarize, and coherence call.
	// A sequential-phase timeout is fatal to the request.
	StageTimeout time.Duration `json:"stage_timeout" yaml:"stage_timeout"`
}

// EmbeddingConfig holds settings for query and ingest embedding calls.
type EmbeddingConfig struct {
	AIConfig `yaml:",inline"`
}

// StoreConfig holds settings for the summary store.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/ and
	// summaries/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations for one engine instance.
type PipelineConfig struct {
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}

// DefaultPipelineConfig returns a PipelineConfig with all defaults applied.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Retrieval: RetrievalConfig{
			TopK:    5,
			Timeout: 30 * time.Second,
		},
		Analysis: AnalysisConfig{
			TrendThreshold: 0.5,
			MinSupport:     2,
			MaxPatterns:    10,
		},
		Generation: GenerationConfig{
			SummaryLengthHint: 150,
			StageTimeout:      5 * time.Minute,
		},
		Store: StoreConfig{
			DataDir: "data",
		},
	}
}

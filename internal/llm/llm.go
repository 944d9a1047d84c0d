// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm implements the generation, summarization, and embedding
// services over the Anthropic and OpenAI HTTP APIs.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// provider is one backing API. Implementations handle a single completion
// or embedding request and return the raw text or vector.
type provider interface {
	complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	embed(ctx context.Context, text string) ([]float32, error)
}

const (
	sectionMaxTokens   = 4096
	summaryMaxTokens   = 1024
	coherenceMaxTokens = 16384
)

const generatePrompt = `You are writing one section of an academic paper.

User requirement:
%s
%s
Reference material for this section:
%s

Write the section in formal academic prose. Stay consistent with the
completed predecessor sections, do not repeat their content, and ground
claims in the reference material. Respond with the section text only.`

const predecessorBlock = `
Condensed summaries of completed predecessor sections:
%s
`

const summarizePrompt = `Condense the following paper section to roughly %d words,
preserving its key claims and structure. Respond with the summary only.

%s`

const coherencePrompt = `Below is a complete paper draft, section by section. Revise it
into a single coherent document: smooth transitions, remove repetition, and keep
terminology consistent. Preserve the section structure and headings. Respond with
the revised document only.

%s`

// Client calls a Generative AI API with rate limiting and 429 retries.
// It implements the pipeline's Generator and Embedder contracts.
type Client struct {
	prov    provider
	limiter *rate.Limiter
}

// New creates a Client for the configured provider. BaseURL overrides are
// for tests; pass "" for the real API endpoint.
func New(cfg types.AIConfig, baseURL string) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key not configured")
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}

	var prov provider
	switch cfg.Provider {
	case "anthropic":
		model := cfg.Model
		if model == "" {
			model = "claude-sonnet-4-5-20250929"
		}
		prov = &anthropicProvider{
			apiKey: cfg.APIKey, model: model, client: httpClient,
			maxRetries: cfg.MaxRetries, baseURL: baseURL,
		}
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o"
		}
		prov = &openaiProvider{
			apiKey: cfg.APIKey, model: model, client: httpClient,
			maxRetries: cfg.MaxRetries, baseURL: baseURL,
		}
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: anthropic, openai)", cfg.Provider)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{prov: prov, limiter: limiter}, nil
}

// Generate produces a section's full text.
func (c *Client) Generate(ctx context.Context, contextText, requirement string, predecessorSummaries []string) (string, error) {
	var preds string
	if len(predecessorSummaries) > 0 {
		var b strings.Builder
		for i, s := range predecessorSummaries {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		preds = fmt.Sprintf(predecessorBlock, b.String())
	}
	prompt := fmt.Sprintf(generatePrompt, requirement, preds, contextText)

	text, err := c.call(ctx, prompt, sectionMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generating section: %w", err)
	}
	return text, nil
}

// Summarize condenses a section's full text to roughly lengthHint words.
func (c *Client) Summarize(ctx context.Context, fullText string, lengthHint int) (string, error) {
	if lengthHint <= 0 {
		lengthHint = 150
	}
	text, err := c.call(ctx, fmt.Sprintf(summarizePrompt, lengthHint, fullText), summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("summarizing section: %w", err)
	}
	return text, nil
}

// CoherencePass rewrites the concatenated draft into the final document.
func (c *Client) CoherencePass(ctx context.Context, combined string) (string, error) {
	text, err := c.call(ctx, fmt.Sprintf(coherencePrompt, combined), coherenceMaxTokens)
	if err != nil {
		return "", fmt.Errorf("coherence pass: %w", err)
	}
	return text, nil
}

// Embed computes an embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.prov.embed(ctx, text)
}

func (c *Client) call(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	return c.prov.complete(ctx, prompt, maxTokens)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

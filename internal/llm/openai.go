// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/paper-engine/internal/httputil"
)

const (
	openaiDefaultURL     = "https://api.openai.com"
	openaiEmbeddingModel = "text-embedding-3-small"
)

type openaiProvider struct {
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
	baseURL    string
}

type openaiChatRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []openaiChatMessage `json:"messages"`
}

type openaiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openaiEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openaiEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *openaiProvider) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, _ := json.Marshal(openaiChatRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages:  []openaiChatMessage{{Role: "user", Content: prompt}},
	})

	resp, err := p.post(ctx, "/v1/chat/completions", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API %d: %s", resp.StatusCode, string(b))
	}

	var cr openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty openai response")
	}
	return cr.Choices[0].Message.Content, nil
}

func (p *openaiProvider) embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(openaiEmbeddingRequest{
		Model: openaiEmbeddingModel,
		Input: text,
	})

	resp, err := p.post(ctx, "/v1/embeddings", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("openai embeddings API %d: %s", resp.StatusCode, string(b))
	}

	var er openaiEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, err
	}
	if len(er.Data) == 0 {
		return nil, fmt.Errorf("empty openai embedding response")
	}
	return er.Data[0].Embedding, nil
}

func (p *openaiProvider) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	base := p.baseURL
	if base == "" {
		base = openaiDefaultURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := httputil.DoWithRetry(ctx, p.client, req, p.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	return resp, nil
}

// Package search provides the external evidence-search capability
// used during claim verification and source assessment.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/veridex/internal/events"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/llm"
	"github.com/ppiankov/veridex/internal/model"
)

// Kind selects the prompt framing for a search.
type Kind string

const (
	KindFactCheck  Kind = "fact-check"
	KindReputation Kind = "source-reputation"
	KindMedia      Kind = "media-verification"
)

const previewChars = 200

// Client searches via the Perplexity chat completions API.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	maxQueryChars int
	limiter       *rate.Limiter
}

// NewClient creates a search client. Returns nil when no API key is
// configured; a nil *Client degrades every search to an error result.
func NewClient(cfg model.SearchConfig) *Client {
	if cfg.APIKey == "" {
		return nil
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	maxQuery := cfg.MaxQueryChars
	if maxQuery <= 0 {
		maxQuery = 150
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       "https://api.perplexity.ai",
		httpClient:    &http.Client{Timeout: timeout},
		maxQueryChars: maxQuery,
		limiter:       rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Func binds the client to a run recorder and search kind, producing
// the SearchFunc handed to reasoning requests.
func (c *Client) Func(rec *events.Recorder, kind Kind) llm.SearchFunc {
	return func(ctx context.Context, query string) (string, error) {
		return c.Search(ctx, query, kind, rec)
	}
}

// Source is a per-run search factory. Components hold a Source at
// construction and bind it to the run's recorder when they execute.
type Source func(rec *events.Recorder) llm.SearchFunc

// Source returns the per-run factory for the given kind. A nil client
// yields a nil Source, which disables evidence search downstream.
func (c *Client) Source(kind Kind) Source {
	if c == nil {
		return nil
	}
	return func(rec *events.Recorder) llm.SearchFunc {
		return c.Func(rec, kind)
	}
}

// Search performs one evidence search, logging the operation to the
// run recorder. Queries are truncated to bound token usage.
func (c *Client) Search(ctx context.Context, query string, kind Kind, rec *events.Recorder) (string, error) {
	if c == nil {
		return "", fmt.Errorf("search is not configured")
	}

	if len(query) > c.maxQueryChars {
		query = jsonx.TruncateRunes(query, c.maxQueryChars)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := c.makeRequest(ctx, framePrompt(query, kind))
	if rec != nil {
		if err != nil {
			rec.Search(query, false, "")
		} else {
			rec.Search(query, true, preview(result))
		}
	}
	if err != nil {
		return "", err
	}
	return result, nil
}

// framePrompt keeps search prompts concise per kind.
func framePrompt(query string, kind Kind) string {
	switch kind {
	case KindFactCheck:
		return "Briefly fact-check with sources: " + query
	case KindReputation:
		return fmt.Sprintf("Credibility of %s? Brief summary.", query)
	case KindMedia:
		return "Is this media authentic or manipulated: " + query
	default:
		return query
	}
}

type perplexityRequest struct {
	Model     string              `json:"model"`
	Messages  []perplexityMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) makeRequest(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(perplexityRequest{
		Model: "sonar",
		Messages: []perplexityMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: 500,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp perplexityResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty search response")
	}
	return resp.Choices[0].Message.Content, nil
}

func preview(s string) string {
	return jsonx.TruncateRunes(s, previewChars)
}

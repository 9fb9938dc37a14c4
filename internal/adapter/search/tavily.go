// Package search implements web-search provider adapters used for generic
// pricing-signal discovery.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"appraisal-orchestrator/internal/domain"
)

// TavilyProvider queries the Tavily search API. The credential is optional;
// without it the provider reports itself unconfigured and is skipped.
type TavilyProvider struct {
	BaseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewTavilyProvider(baseURL, apiKey string, httpClient *http.Client, limiter *rate.Limiter, logger *slog.Logger) *TavilyProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &TavilyProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
		limiter: limiter,
		logger:  logger,
	}
}

func (p *TavilyProvider) Name() string     { return "tavily" }
func (p *TavilyProvider) Configured() bool { return p.apiKey != "" }

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeImages     bool   `json:"include_images"`
	IncludeRawContent bool   `json:"include_raw_content"`
	MaxResults        int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

func (p *TavilyProvider) Search(ctx context.Context, query string) ([]domain.WebSnippet, error) {
	if !p.Configured() {
		return nil, nil
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tavily rate wait: %w", err)
		}
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:      p.apiKey,
		Query:       query,
		SearchDepth: "advanced",
		MaxResults:  6,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		p.logger.Warn("tavily_search_failed",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", truncate(string(body), 300)))
		return nil, nil
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil
	}

	snippets := make([]domain.WebSnippet, 0, len(result.Results))
	for _, r := range result.Results {
		text := r.Content
		if text == "" {
			text = r.Snippet
		}
		snippets = append(snippets, domain.WebSnippet{Title: r.Title, URL: r.URL, Snippet: text})
	}
	return snippets, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ domain.SearchProvider = (*TavilyProvider)(nil)

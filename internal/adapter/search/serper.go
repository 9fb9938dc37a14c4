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

// SerperProvider queries the Serper Google-search API. Organic and shopping
// results are merged; shopping entries without a snippet use their price
// string so the fusion step still sees a signal.
type SerperProvider struct {
	BaseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewSerperProvider(baseURL, apiKey string, httpClient *http.Client, limiter *rate.Limiter, logger *slog.Logger) *SerperProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &SerperProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
		limiter: limiter,
		logger:  logger,
	}
}

func (p *SerperProvider) Name() string     { return "serper" }
func (p *SerperProvider) Configured() bool { return p.apiKey != "" }

type serperRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl"`
	Num int    `json:"num"`
}

type serperItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Price   string `json:"price"`
}

type serperResponse struct {
	Organic  []serperItem `json:"organic"`
	Shopping []serperItem `json:"shopping"`
}

func (p *SerperProvider) Search(ctx context.Context, query string) ([]domain.WebSnippet, error) {
	if !p.Configured() {
		return nil, nil
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("serper rate wait: %w", err)
		}
	}

	payload, err := json.Marshal(serperRequest{Q: query, GL: "us", Num: 8})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create serper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		p.logger.Warn("serper_search_failed",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", truncate(string(body), 300)))
		return nil, nil
	}

	var result serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil
	}

	items := append(result.Organic, result.Shopping...)
	snippets := make([]domain.WebSnippet, 0, len(items))
	for _, it := range items {
		text := it.Snippet
		if text == "" {
			text = it.Price
		}
		snippets = append(snippets, domain.WebSnippet{Title: it.Title, URL: it.Link, Snippet: text})
	}
	return snippets, nil
}

var _ domain.SearchProvider = (*SerperProvider)(nil)

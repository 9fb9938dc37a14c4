package search

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"appraisal-orchestrator/internal/domain"
)

// Service fans pricing queries out across the configured providers and
// merges the hits into one deduplicated, capped snippet list.
type Service struct {
	providers []domain.SearchProvider
	cap       int
	logger    *slog.Logger
}

func NewService(providers []domain.SearchProvider, cap int, logger *slog.Logger) *Service {
	return &Service{
		providers: providers,
		cap:       cap,
		logger:    logger,
	}
}

// Collect runs every query sequentially; for each query the providers run
// concurrently. Provider failures contribute nothing and never abort the
// search. The merged list is deduplicated by host and capped.
func (s *Service) Collect(ctx context.Context, item domain.ItemQuery) []domain.WebSnippet {
	var configured []domain.SearchProvider
	for _, p := range s.providers {
		if p.Configured() {
			configured = append(configured, p)
		}
	}
	if len(configured) == 0 {
		s.logger.Debug("web_search_skipped", slog.String("reason", "no providers configured"))
		return []domain.WebSnippet{}
	}

	queries := BuildQueries(item)

	var merged []domain.WebSnippet
	for _, query := range queries {
		results := make([][]domain.WebSnippet, len(configured))
		done := make(chan int, len(configured))
		for i, provider := range configured {
			go func(idx int, p domain.SearchProvider) {
				snippets, err := p.Search(ctx, query)
				if err != nil {
					s.logger.Warn("search_provider_failed",
						slog.String("provider", p.Name()),
						slog.String("query", query),
						slog.String("error", err.Error()))
				} else {
					results[idx] = snippets
				}
				done <- idx
			}(i, provider)
		}
		for range configured {
			<-done
		}
		for _, snippets := range results {
			merged = append(merged, snippets...)
		}
	}

	deduped := DedupeByHost(merged)
	if len(deduped) > s.cap {
		deduped = deduped[:s.cap]
	}

	s.logger.Info("web_search_completed",
		slog.Int("queries", len(queries)),
		slog.Int("raw_hits", len(merged)),
		slog.Int("kept", len(deduped)))

	return deduped
}

// DedupeByHost keeps the first-seen snippet per hostname, with a leading
// "www." stripped before comparison. Unparsable URLs are dropped.
func DedupeByHost(snippets []domain.WebSnippet) []domain.WebSnippet {
	seen := make(map[string]struct{})
	out := make([]domain.WebSnippet, 0, len(snippets))
	for _, snip := range snippets {
		u, err := url.Parse(snip.URL)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		out = append(out, snip)
	}
	return out
}

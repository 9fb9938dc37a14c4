package domain

import "context"

// WebSnippet is one general web-search hit used as a pricing signal.
type WebSnippet struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchProvider issues one query against a general web-search backend.
//
// Configured reports whether the provider has the credential it needs; an
// unconfigured provider is skipped rather than treated as failing.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]WebSnippet, error)
	Configured() bool
	Name() string
}

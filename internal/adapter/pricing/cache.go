package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"appraisal-orchestrator/internal/domain"
)

// CachedSource memoizes successful lookups of the wrapped source for a
// bounded time. Misses and errors are never cached, so a source that was
// briefly unreachable recovers on the next request.
type CachedSource struct {
	inner domain.PriceSource
	cache *expirable.LRU[string, *domain.PriceSignal]
}

func NewCachedSource(inner domain.PriceSource, size int, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: expirable.NewLRU[string, *domain.PriceSignal](size, nil, ttl),
	}
}

func (c *CachedSource) Source() string { return c.inner.Source() }

func (c *CachedSource) Lookup(ctx context.Context, name, set string) (*domain.PriceSignal, error) {
	key := strings.ToLower(name) + "|" + strings.ToLower(set)
	if signal, ok := c.cache.Get(key); ok {
		return signal, nil
	}

	signal, err := c.inner.Lookup(ctx, name, set)
	if err != nil {
		return nil, err
	}
	if signal != nil {
		c.cache.Add(key, signal)
	}
	return signal, nil
}

var _ domain.PriceSource = (*CachedSource)(nil)

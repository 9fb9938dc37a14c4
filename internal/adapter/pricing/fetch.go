package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// fetchJSON GETs url and decodes the body into out. A non-2xx status is not
// an error: it returns (false, nil) so adapters degrade to "no result".
// Only transport-level failures produce an error.
func fetchJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create catalog request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, nil
	}
	return true, nil
}

// pickFirstPriced selects the first candidate with any populated price point,
// falling back to the first candidate overall. Callers must pass a non-empty
// slice.
func pickFirstPriced[T any](candidates []T, hasPrice func(T) bool) T {
	for _, c := range candidates {
		if hasPrice(c) {
			return c
		}
	}
	return candidates[0]
}

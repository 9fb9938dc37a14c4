package domain

import "context"

// PriceSignal is one catalog adapter's normalized lookup result. Prices keeps
// every named price point for the source with nil for points the catalog did
// not report, so callers can render them deterministically.
type PriceSignal struct {
	Source          string             `json:"source"`
	URL             string             `json:"url"`
	SetName         string             `json:"set_name,omitempty"`
	CollectorNumber string             `json:"collector_number,omitempty"`
	Rarity          string             `json:"rarity,omitempty"`
	Prices          map[string]*string `json:"prices"`
}

// HasAnyPrice reports whether at least one price point is populated.
func (s *PriceSignal) HasAnyPrice() bool {
	if s == nil {
		return false
	}
	for _, v := range s.Prices {
		if v != nil && *v != "" {
			return true
		}
	}
	return false
}

// PriceSource looks up one collectible ecosystem's catalog.
//
// Lookup returns (nil, nil) when the source has no match, the name is empty,
// or the source's credential is absent. A non-nil error means a transport
// failure; the orchestrator recovers it as an absent signal.
type PriceSource interface {
	Lookup(ctx context.Context, name, set string) (*PriceSignal, error)
	Source() string
}

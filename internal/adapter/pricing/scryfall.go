// Package pricing implements per-ecosystem catalog adapters that normalize
// heterogeneous third-party price schemas into domain.PriceSignal.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"appraisal-orchestrator/internal/domain"
)

// ScryfallSource looks up Magic: The Gathering cards. Scryfall needs no
// credential; the query uses exact-name match restricted to unique prints.
type ScryfallSource struct {
	BaseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewScryfallSource(baseURL string, httpClient *http.Client, logger *slog.Logger) *ScryfallSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ScryfallSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

func (s *ScryfallSource) Source() string { return "scryfall" }

type scryfallCard struct {
	Name            string `json:"name"`
	ScryfallURI     string `json:"scryfall_uri"`
	SetName         string `json:"set_name"`
	CollectorNumber string `json:"collector_number"`
	Rarity          string `json:"rarity"`
	Prices          struct {
		USD     *string `json:"usd"`
		USDFoil *string `json:"usd_foil"`
		EUR     *string `json:"eur"`
		EURFoil *string `json:"eur_foil"`
	} `json:"prices"`
}

type scryfallSearchResponse struct {
	Data []scryfallCard `json:"data"`
}

func (s *ScryfallSource) Lookup(ctx context.Context, name, set string) (*domain.PriceSignal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	query := fmt.Sprintf("!%q unique:prints", name)
	if set != "" {
		query += " set:" + strings.ReplaceAll(set, `"`, "")
	}
	searchURL := fmt.Sprintf("%s/cards/search?q=%s", s.BaseURL, url.QueryEscape(query))

	var result scryfallSearchResponse
	ok, err := fetchJSON(ctx, s.client, searchURL, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("scryfall search failed: %w", err)
	}
	if !ok || len(result.Data) == 0 {
		return nil, nil
	}

	card := pickFirstPriced(result.Data, func(c scryfallCard) bool {
		return c.Prices.USD != nil || c.Prices.USDFoil != nil || c.Prices.EUR != nil || c.Prices.EURFoil != nil
	})

	s.logger.Debug("scryfall_match",
		slog.String("name", card.Name),
		slog.String("set", card.SetName))

	return &domain.PriceSignal{
		Source:          s.Source(),
		URL:             card.ScryfallURI,
		SetName:         card.SetName,
		CollectorNumber: card.CollectorNumber,
		Rarity:          card.Rarity,
		Prices: map[string]*string{
			"usd":      card.Prices.USD,
			"usd_foil": card.Prices.USDFoil,
			"eur":      card.Prices.EUR,
			"eur_foil": card.Prices.EURFoil,
		},
	}, nil
}

var _ domain.PriceSource = (*ScryfallSource)(nil)

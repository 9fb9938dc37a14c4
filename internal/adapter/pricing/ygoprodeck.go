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

// YGOProDeckSource looks up Yu-Gi-Oh! cards. The catalog only supports fuzzy
// name search (fname), so the set hint is ignored; no credential needed.
type YGOProDeckSource struct {
	BaseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewYGOProDeckSource(baseURL string, httpClient *http.Client, logger *slog.Logger) *YGOProDeckSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &YGOProDeckSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

func (s *YGOProDeckSource) Source() string { return "ygoprodeck" }

type ygoCardPrice struct {
	TCGPlayer    *string `json:"tcgplayer_price"`
	Ebay         *string `json:"ebay_price"`
	Amazon       *string `json:"amazon_price"`
	CoolStuffInc *string `json:"coolstuffinc_price"`
}

type ygoCard struct {
	Name     string `json:"name"`
	CardSets []struct {
		SetName   string `json:"set_name"`
		SetRarity string `json:"set_rarity"`
	} `json:"card_sets"`
	CardPrices []ygoCardPrice `json:"card_prices"`
}

type ygoResponse struct {
	Data []ygoCard `json:"data"`
}

func (s *YGOProDeckSource) Lookup(ctx context.Context, name, _ string) (*domain.PriceSignal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	searchURL := fmt.Sprintf("%s/api/v7/cardinfo.php?fname=%s", s.BaseURL, url.QueryEscape(name))

	var result ygoResponse
	ok, err := fetchJSON(ctx, s.client, searchURL, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("ygoprodeck search failed: %w", err)
	}
	if !ok || len(result.Data) == 0 {
		return nil, nil
	}

	card := pickFirstPriced(result.Data, func(c ygoCard) bool {
		if len(c.CardPrices) == 0 {
			return false
		}
		p := c.CardPrices[0]
		return nonZero(p.TCGPlayer) || nonZero(p.Ebay) || nonZero(p.Amazon) || nonZero(p.CoolStuffInc)
	})

	var prices ygoCardPrice
	if len(card.CardPrices) > 0 {
		prices = card.CardPrices[0]
	}

	signal := &domain.PriceSignal{
		Source: s.Source(),
		URL:    fmt.Sprintf("%s/card/?search=%s", s.BaseURL, url.QueryEscape(name)),
		Prices: map[string]*string{
			"tcgplayer":    prices.TCGPlayer,
			"ebay":         prices.Ebay,
			"amazon":       prices.Amazon,
			"coolstuffinc": prices.CoolStuffInc,
		},
	}
	if len(card.CardSets) > 0 {
		signal.SetName = card.CardSets[0].SetName
		signal.Rarity = card.CardSets[0].SetRarity
	}

	s.logger.Debug("ygoprodeck_match", slog.String("name", card.Name))

	return signal, nil
}

// nonZero treats the catalog's "0.00" placeholder as absent.
func nonZero(p *string) bool {
	return p != nil && *p != "" && *p != "0.00" && *p != "0"
}

var _ domain.PriceSource = (*YGOProDeckSource)(nil)

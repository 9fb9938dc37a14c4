package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"appraisal-orchestrator/internal/domain"
)

// PokemonTCGSource looks up Pokémon cards. The catalog requires an API key;
// when the key is absent the adapter reports "no result" so the rest of the
// pipeline proceeds with whatever sources remain.
type PokemonTCGSource struct {
	BaseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

func NewPokemonTCGSource(baseURL, apiKey string, httpClient *http.Client, logger *slog.Logger) *PokemonTCGSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &PokemonTCGSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
		logger:  logger,
	}
}

func (s *PokemonTCGSource) Source() string { return "pokemontcg" }

type pokemonMarketPrices struct {
	Low    *float64 `json:"low"`
	Mid    *float64 `json:"mid"`
	High   *float64 `json:"high"`
	Market *float64 `json:"market"`
}

type pokemonCard struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Rarity string `json:"rarity"`
	Set    struct {
		Name string `json:"name"`
	} `json:"set"`
	TCGPlayer struct {
		URL    string                         `json:"url"`
		Prices map[string]pokemonMarketPrices `json:"prices"`
	} `json:"tcgplayer"`
	Images struct {
		Large string `json:"large"`
	} `json:"images"`
}

type pokemonResponse struct {
	Data []pokemonCard `json:"data"`
}

func (s *PokemonTCGSource) Lookup(ctx context.Context, name, set string) (*domain.PriceSignal, error) {
	if s.apiKey == "" || strings.TrimSpace(name) == "" {
		return nil, nil
	}

	parts := []string{fmt.Sprintf("name:%q", name)}
	if set != "" {
		parts = append(parts, fmt.Sprintf("set.name:%q", set))
	}
	query := strings.Join(parts, " ")
	searchURL := fmt.Sprintf("%s/v2/cards?q=%s&pageSize=6", s.BaseURL, url.QueryEscape(query))

	var result pokemonResponse
	ok, err := fetchJSON(ctx, s.client, searchURL, map[string]string{"X-Api-Key": s.apiKey}, &result)
	if err != nil {
		return nil, fmt.Errorf("pokemontcg search failed: %w", err)
	}
	if !ok || len(result.Data) == 0 {
		return nil, nil
	}

	card := pickFirstPriced(result.Data, func(c pokemonCard) bool {
		for _, variant := range c.TCGPlayer.Prices {
			if variant.Market != nil || variant.Low != nil || variant.Mid != nil || variant.High != nil {
				return true
			}
		}
		return false
	})

	lookupURL := card.TCGPlayer.URL
	if lookupURL == "" {
		lookupURL = card.Images.Large
	}
	if lookupURL == "" {
		lookupURL = searchURL
	}

	s.logger.Debug("pokemontcg_match",
		slog.String("name", card.Name),
		slog.String("set", card.Set.Name))

	return &domain.PriceSignal{
		Source:          s.Source(),
		URL:             lookupURL,
		SetName:         card.Set.Name,
		CollectorNumber: card.Number,
		Rarity:          card.Rarity,
		Prices:          flattenPokemonPrices(card.TCGPlayer.Prices),
	}, nil
}

// flattenPokemonPrices turns the per-variant tcgplayer price object into the
// common named-price mapping, e.g. "holofoil_market". Missing points stay
// nil so they render as null downstream.
func flattenPokemonPrices(variants map[string]pokemonMarketPrices) map[string]*string {
	out := make(map[string]*string)
	for variant, p := range variants {
		out[variant+"_low"] = formatPrice(p.Low)
		out[variant+"_mid"] = formatPrice(p.Mid)
		out[variant+"_high"] = formatPrice(p.High)
		out[variant+"_market"] = formatPrice(p.Market)
	}
	return out
}

func formatPrice(v *float64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatFloat(*v, 'f', 2, 64)
	return &s
}

var _ domain.PriceSource = (*PokemonTCGSource)(nil)

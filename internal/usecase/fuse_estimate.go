package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"appraisal-orchestrator/internal/domain"
)

const fusionSystemPrompt = `Fuse pricing signals for a collectible. Output JSON: ` +
	`{"estimate_low": number, "estimate_high": number, "currency": string, ` +
	`"reasoning": string, "sources": [{"title": string, "url": string}]}. Only JSON.`

type fusionInput struct {
	Query       domain.ItemQuery               `json:"query"`
	APIPricing  map[string]*domain.PriceSignal `json:"apiPricing"`
	WebSnippets []domain.WebSnippet            `json:"webSnippets"`
}

// FuseEstimate asks the oracle to combine catalog signals and web snippets
// into one low/high estimate. Any failure, including unparsable output,
// degrades to (nil, err); a missing fusion is not a pipeline failure.
func FuseEstimate(
	ctx context.Context,
	extractor domain.Extractor,
	query domain.ItemQuery,
	pricing map[string]*domain.PriceSignal,
	snippets []domain.WebSnippet,
) (*domain.FusedEstimate, error) {
	payload, err := json.Marshal(fusionInput{
		Query:       query,
		APIPricing:  pricing,
		WebSnippets: snippets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fusion input: %w", err)
	}

	raw, err := extractor.ExtractJSON(ctx, fusionSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("fusion call failed: %w", err)
	}

	var fused domain.FusedEstimate
	if err := json.Unmarshal(raw, &fused); err != nil {
		return nil, fmt.Errorf("failed to parse fusion output: %w", err)
	}
	return &fused, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"appraisal-orchestrator/internal/domain"
)

const reportSystemPrompt = `Return JSON with 8 sections for a collectible appraisal: ` +
	`{"intro": string, "details": string, "market_trends": string, "regional_variations": string, ` +
	`"counterfeit_risks": [string], "verification_methods": [string], "next_steps": [string], ` +
	`"ebay_listing": string}. ` +
	`Always start intro with: "If this [item type] is authentic, its value would be ...". Only JSON.`

type reportInput struct {
	Query       domain.ItemQuery               `json:"query"`
	Fused       *domain.FusedEstimate          `json:"fused"`
	APIPricing  map[string]*domain.PriceSignal `json:"apiPricing"`
	WebSnippets []domain.WebSnippet            `json:"webSnippets"`
}

// CompileReport asks the oracle to produce the 8-section appraisal document.
// The intro template is pinned by instruction only; the orchestrator does
// not repair the wording locally. Failures degrade to (nil, err).
func CompileReport(
	ctx context.Context,
	extractor domain.Extractor,
	query domain.ItemQuery,
	fused *domain.FusedEstimate,
	pricing map[string]*domain.PriceSignal,
	snippets []domain.WebSnippet,
) (*domain.AppraisalReport, error) {
	payload, err := json.Marshal(reportInput{
		Query:       query,
		Fused:       fused,
		APIPricing:  pricing,
		WebSnippets: snippets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report input: %w", err)
	}

	raw, err := extractor.ExtractJSON(ctx, reportSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("report call failed: %w", err)
	}

	var report domain.AppraisalReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report output: %w", err)
	}
	return &report, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-orchestrator/internal/domain"
)

func TestFuseEstimate_ParsesEstimate(t *testing.T) {
	extractor := &stubExtractor{responses: []json.RawMessage{json.RawMessage(fusionOutput)}}

	fused, err := FuseEstimate(context.Background(), extractor, domain.ItemQuery{Name: "Charizard"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 250.0, fused.EstimateLow)
	assert.Equal(t, 420.0, fused.EstimateHigh)
	assert.Equal(t, "USD", fused.Currency)
	require.Len(t, fused.Sources, 1)
	assert.Equal(t, "TCGplayer", fused.Sources[0].Title)
}

func TestFuseEstimate_UnparsableOutputIsAnError(t *testing.T) {
	extractor := &stubExtractor{responses: []json.RawMessage{
		json.RawMessage(`{"estimate_low":"around two hundred"}`),
	}}

	_, err := FuseEstimate(context.Background(), extractor, domain.ItemQuery{Name: "x"}, nil, nil)
	assert.Error(t, err)
}

func TestCompileReport_ParsesSections(t *testing.T) {
	extractor := &stubExtractor{responses: []json.RawMessage{json.RawMessage(reportOutput)}}

	report, err := CompileReport(context.Background(), extractor, domain.ItemQuery{ItemType: "trading card"}, nil, nil, nil)
	require.NoError(t, err)

	assert.Contains(t, report.Intro, "If this trading card is authentic, its value would be")
	assert.Len(t, report.CounterfeitRisks, 1)
	assert.Len(t, report.NextSteps, 1)
	assert.NotEmpty(t, report.EbayListing)
}

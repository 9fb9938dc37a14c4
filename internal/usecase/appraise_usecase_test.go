package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-orchestrator/internal/domain"
	"appraisal-orchestrator/internal/usecase/search"
)

// stubExtractor answers extraction, fusion and report calls from canned
// payloads keyed by call order. A nil entry simulates a failing call.
type stubExtractor struct {
	responses []json.RawMessage
	errs      []error
	delay     time.Duration
	calls     int
}

func (s *stubExtractor) ExtractJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	return s.next(ctx)
}

func (s *stubExtractor) ExtractJSONVision(ctx context.Context, system, prompt, imageDataURL string) (json.RawMessage, error) {
	return s.next(ctx)
}

func (s *stubExtractor) next(ctx context.Context) (json.RawMessage, error) {
	idx := s.calls
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	return nil, errors.New("unexpected extractor call")
}

func (s *stubExtractor) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	return "", errors.New("not used")
}

func (s *stubExtractor) Model() string { return "stub" }

type stubSource struct {
	name   string
	signal *domain.PriceSignal
	err    error
	calls  int
}

func (s *stubSource) Source() string { return s.name }

func (s *stubSource) Lookup(ctx context.Context, name, set string) (*domain.PriceSignal, error) {
	s.calls++
	return s.signal, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func emptySearch() *search.Service {
	return search.NewService(nil, 10, testLogger())
}

const pokemonExtraction = `{"category":"pokemon","item_type":"trading card","name":"Charizard","set":"Base Set"}`
const fusionOutput = `{"estimate_low":250,"estimate_high":420,"currency":"USD","reasoning":"catalog and sold listings agree","sources":[{"title":"TCGplayer","url":"https://tcgplayer.com"}]}`
const reportOutput = `{"intro":"If this trading card is authentic, its value would be between $250 and $420.","details":"d","market_trends":"m","regional_variations":"r","counterfeit_risks":["fake holo pattern"],"verification_methods":["check light test"],"next_steps":["grade it"],"ebay_listing":"Charizard Base Set"}`

func TestAppraise_MissingInput(t *testing.T) {
	u := NewAppraiseUsecase(&stubExtractor{}, nil, emptySearch(), time.Second, testLogger())

	_, err := u.Execute(context.Background(), AppraiseInput{Question: "   "})
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestAppraise_FullPipeline(t *testing.T) {
	url := "https://prices.pokemontcg.io/card"
	market := "389.99"
	source := &stubSource{name: "pokemontcg", signal: &domain.PriceSignal{
		Source: "pokemontcg",
		URL:    url,
		Prices: map[string]*string{"holofoil_market": &market},
	}}
	extractor := &stubExtractor{responses: []json.RawMessage{
		json.RawMessage(pokemonExtraction),
		json.RawMessage(fusionOutput),
		json.RawMessage(reportOutput),
	}}
	u := NewAppraiseUsecase(
		extractor,
		map[domain.Category]domain.PriceSource{domain.CategoryPokemon: source},
		emptySearch(),
		5*time.Second,
		testLogger(),
	)

	result, err := u.Execute(context.Background(), AppraiseInput{Question: "PSA 10 Charizard base set 4/102"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AppraisalID)
	assert.Equal(t, domain.CategoryPokemon, result.Query.Category)
	require.Contains(t, result.Pricing, "pokemon")
	require.NotNil(t, result.Pricing["pokemon"])
	assert.Equal(t, url, result.Pricing["pokemon"].URL)
	require.NotNil(t, result.Fused)
	assert.Equal(t, 250.0, result.Fused.EstimateLow)
	require.NotNil(t, result.Sections)
	assert.Contains(t, result.Sections.Intro, "If this trading card is authentic")
	assert.Equal(t, 1, source.calls)
}

func TestAppraise_NonCardCategorySkipsCatalogs(t *testing.T) {
	source := &stubSource{name: "pokemontcg"}
	extractor := &stubExtractor{responses: []json.RawMessage{
		json.RawMessage(`{"category":"retro_video_game","item_type":"video game","name":"EarthBound","platform":"SNES"}`),
		json.RawMessage(fusionOutput),
		json.RawMessage(reportOutput),
	}}
	u := NewAppraiseUsecase(
		extractor,
		map[domain.Category]domain.PriceSource{domain.CategoryPokemon: source},
		emptySearch(),
		5*time.Second,
		testLogger(),
	)

	result, err := u.Execute(context.Background(), AppraiseInput{Question: "EarthBound SNES cart"})
	require.NoError(t, err)

	assert.Zero(t, source.calls)
	assert.Empty(t, result.Pricing)
	assert.NotNil(t, result.Web)
}

func TestAppraise_FusionAndReportDegradeToNil(t *testing.T) {
	extractor := &stubExtractor{
		responses: []json.RawMessage{json.RawMessage(pokemonExtraction), nil, nil},
		errs:      []error{nil, errors.New("fusion upstream error"), errors.New("report upstream error")},
	}
	u := NewAppraiseUsecase(extractor, nil, emptySearch(), 5*time.Second, testLogger())

	result, err := u.Execute(context.Background(), AppraiseInput{Question: "Charizard"})
	require.NoError(t, err, "fusion and report failures must not fail the request")

	assert.Nil(t, result.Fused)
	assert.Nil(t, result.Sections)
	assert.Equal(t, domain.CategoryPokemon, result.Query.Category)
}

func TestAppraise_PriceSourceFailureDegrades(t *testing.T) {
	source := &stubSource{name: "pokemontcg", err: errors.New("connection reset")}
	extractor := &stubExtractor{responses: []json.RawMessage{
		json.RawMessage(pokemonExtraction),
		json.RawMessage(fusionOutput),
		json.RawMessage(reportOutput),
	}}
	u := NewAppraiseUsecase(
		extractor,
		map[domain.Category]domain.PriceSource{domain.CategoryPokemon: source},
		emptySearch(),
		5*time.Second,
		testLogger(),
	)

	result, err := u.Execute(context.Background(), AppraiseInput{Question: "Charizard"})
	require.NoError(t, err)

	require.Contains(t, result.Pricing, "pokemon")
	assert.Nil(t, result.Pricing["pokemon"])
	require.NotNil(t, result.Sections)
}

func TestAppraise_ExtractionTimeout(t *testing.T) {
	extractor := &stubExtractor{
		delay:     200 * time.Millisecond,
		responses: []json.RawMessage{json.RawMessage(pokemonExtraction)},
	}
	u := NewAppraiseUsecase(extractor, nil, emptySearch(), 20*time.Millisecond, testLogger())

	_, err := u.Execute(context.Background(), AppraiseInput{Question: "Charizard"})
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestAppraise_ExtractionFailurePropagates(t *testing.T) {
	extractor := &stubExtractor{errs: []error{&domain.UpstreamError{Source: "openai", Status: 500, Detail: "boom"}}}
	u := NewAppraiseUsecase(extractor, nil, emptySearch(), time.Second, testLogger())

	_, err := u.Execute(context.Background(), AppraiseInput{Question: "Charizard"})
	require.Error(t, err)
	var upstream *domain.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestAppraise_MinimalDepthSkipsEnrichment(t *testing.T) {
	source := &stubSource{name: "pokemontcg"}
	extractor := &stubExtractor{responses: []json.RawMessage{
		json.RawMessage(pokemonExtraction),
		json.RawMessage(reportOutput), // second call is the report, not fusion
	}}
	u := NewAppraiseUsecase(
		extractor,
		map[domain.Category]domain.PriceSource{domain.CategoryPokemon: source},
		emptySearch(),
		5*time.Second,
		testLogger(),
	)

	result, err := u.Execute(context.Background(), AppraiseInput{Question: "Charizard", Depth: DepthMinimal})
	require.NoError(t, err)

	assert.Zero(t, source.calls)
	assert.Empty(t, result.Pricing)
	assert.Empty(t, result.Web)
	assert.Nil(t, result.Fused)
	require.NotNil(t, result.Sections)
	assert.Equal(t, 2, extractor.calls)
}

func TestAppraise_IdenticalRequestsShareShape(t *testing.T) {
	run := func() *AppraisalResult {
		extractor := &stubExtractor{responses: []json.RawMessage{
			json.RawMessage(pokemonExtraction),
			json.RawMessage(fusionOutput),
			json.RawMessage(reportOutput),
		}}
		u := NewAppraiseUsecase(extractor, nil, emptySearch(), 5*time.Second, testLogger())
		result, err := u.Execute(context.Background(), AppraiseInput{Question: "Charizard"})
		require.NoError(t, err)
		return result
	}

	a, b := run(), run()

	assert.Equal(t, a.Query, b.Query)
	assert.Equal(t, a.Fused != nil, b.Fused != nil)
	assert.Equal(t, a.Sections != nil, b.Sections != nil)
	assert.Equal(t, len(a.Web), len(b.Web))
	assert.NotEqual(t, a.AppraisalID, b.AppraisalID)
}

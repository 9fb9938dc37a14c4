package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"appraisal-orchestrator/internal/domain"
	"appraisal-orchestrator/internal/usecase/search"
)

// Depth selects how much enrichment the pipeline performs.
type Depth string

const (
	// DepthFull runs catalog lookups, web search, fusion and the report.
	DepthFull Depth = "full"
	// DepthMinimal skips enrichment and fusion and compiles the report
	// from the extracted query alone.
	DepthMinimal Depth = "minimal"
)

// AppraiseInput carries one appraisal request. Question may be empty when an
// image is supplied; ImageDataURL is a data: URL built by the upload handler.
type AppraiseInput struct {
	Question     string
	Context      string
	ImageDataURL string
	Depth        Depth
}

// AppraisalResult is the assembled pipeline output. Pricing and Web are
// always non-nil; Fused and Sections are nil when their stage degraded.
type AppraisalResult struct {
	AppraisalID string                         `json:"appraisal_id"`
	Query       domain.ItemQuery               `json:"query"`
	Pricing     map[string]*domain.PriceSignal `json:"apiPricing"`
	Web         []domain.WebSnippet            `json:"web"`
	Fused       *domain.FusedEstimate          `json:"fused"`
	Sections    *domain.AppraisalReport        `json:"sections"`
}

// AppraiseUsecase runs the extraction, enrichment, fusion and report stages
// for one request under a single shared deadline.
type AppraiseUsecase interface {
	Execute(ctx context.Context, input AppraiseInput) (*AppraisalResult, error)
}

// pricingKeys maps a trading-card category to its key in the response
// payload. Non-card categories get no catalog lookup at all.
var pricingKeys = map[domain.Category]string{
	domain.CategoryMTG:     "mtg",
	domain.CategoryYuGiOh:  "ygo",
	domain.CategoryPokemon: "pokemon",
}

type appraiseUsecase struct {
	extractor domain.Extractor
	sources   map[domain.Category]domain.PriceSource
	webSearch *search.Service
	timeout   time.Duration
	logger    *slog.Logger
}

// NewAppraiseUsecase wires the pipeline. sources is keyed by the trading
// card category each adapter serves.
func NewAppraiseUsecase(
	extractor domain.Extractor,
	sources map[domain.Category]domain.PriceSource,
	webSearch *search.Service,
	timeout time.Duration,
	logger *slog.Logger,
) AppraiseUsecase {
	return &appraiseUsecase{
		extractor: extractor,
		sources:   sources,
		webSearch: webSearch,
		timeout:   timeout,
		logger:    logger,
	}
}

func (u *appraiseUsecase) Execute(ctx context.Context, input AppraiseInput) (*AppraisalResult, error) {
	if strings.TrimSpace(input.Question) == "" && input.ImageDataURL == "" {
		return nil, domain.ErrMissingInput
	}

	// One deadline governs every stage; stages past extraction degrade
	// instead of failing when it expires.
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	appraisalID := uuid.NewString()
	start := time.Now()

	query, err := u.extract(ctx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			u.logger.Error("extraction_timed_out", slog.String("appraisal_id", appraisalID))
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, err
	}

	result := &AppraisalResult{
		AppraisalID: appraisalID,
		Query:       *query,
		Pricing:     map[string]*domain.PriceSignal{},
		Web:         []domain.WebSnippet{},
	}

	if input.Depth != DepthMinimal {
		u.enrich(ctx, result)

		fused, err := FuseEstimate(ctx, u.extractor, result.Query, result.Pricing, result.Web)
		if err != nil {
			u.logger.Warn("fusion_degraded",
				slog.String("appraisal_id", appraisalID),
				slog.String("error", err.Error()))
		} else {
			result.Fused = fused
		}
	}

	sections, err := CompileReport(ctx, u.extractor, result.Query, result.Fused, result.Pricing, result.Web)
	if err != nil {
		u.logger.Warn("report_degraded",
			slog.String("appraisal_id", appraisalID),
			slog.String("error", err.Error()))
	} else {
		result.Sections = sections
	}

	u.logger.Info("appraisal_completed",
		slog.String("appraisal_id", appraisalID),
		slog.String("category", string(result.Query.Category)),
		slog.Int("web_snippets", len(result.Web)),
		slog.Bool("fused", result.Fused != nil),
		slog.Bool("sections", result.Sections != nil),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return result, nil
}

func (u *appraiseUsecase) extract(ctx context.Context, input AppraiseInput) (*domain.ItemQuery, error) {
	user := input.Question
	if input.Context != "" {
		user = input.Question + "\n\nContext:\n" + input.Context
	}

	var raw []byte
	var err error
	if input.ImageDataURL != "" {
		prompt := user
		if strings.TrimSpace(prompt) == "" {
			prompt = "Return ONLY JSON per the schema."
		}
		raw, err = u.extractor.ExtractJSONVision(ctx, extractionSystemPrompt, prompt, input.ImageDataURL)
	} else {
		raw, err = u.extractor.ExtractJSON(ctx, extractionSystemPrompt, user)
	}
	if err != nil {
		return nil, err
	}
	return ParseItemQuery(raw)
}

// enrich runs the category's catalog lookup and the web search concurrently.
// Both branches recover their own failures so neither can cancel the other.
func (u *appraiseUsecase) enrich(ctx context.Context, result *AppraisalResult) {
	g, gctx := errgroup.WithContext(ctx)

	if key, isCard := pricingKeys[result.Query.Category]; isCard {
		for cat, k := range pricingKeys {
			if _, known := u.sources[cat]; known {
				result.Pricing[k] = nil
			}
		}
		source, known := u.sources[result.Query.Category]
		if known {
			name, set := result.Query.Name, result.Query.Set
			g.Go(func() error {
				signal, err := source.Lookup(gctx, name, set)
				if err != nil {
					u.logger.Warn("price_lookup_degraded",
						slog.String("source", source.Source()),
						slog.String("error", err.Error()))
					return nil
				}
				result.Pricing[key] = signal
				return nil
			})
		}
	}

	g.Go(func() error {
		result.Web = u.webSearch.Collect(gctx, result.Query)
		return nil
	})

	_ = g.Wait()
}

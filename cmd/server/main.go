package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"appraisal-orchestrator/internal/adapter/httpapi"
	"appraisal-orchestrator/internal/adapter/oracle"
	"appraisal-orchestrator/internal/adapter/pricing"
	searchadapter "appraisal-orchestrator/internal/adapter/search"
	"appraisal-orchestrator/internal/domain"
	"appraisal-orchestrator/internal/infra/config"
	"appraisal-orchestrator/internal/infra/httpclient"
	"appraisal-orchestrator/internal/infra/logger"
	"appraisal-orchestrator/internal/usecase"
	searchusecase "appraisal-orchestrator/internal/usecase/search"
)

func main() {
	// 1. Load Config (.env first, real env wins)
	_ = godotenv.Load()
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New()
	slog.SetDefault(log)
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; appraisal requests will be rejected")
	}

	// 3. Initialize Adapters
	oracleHTTP := httpclient.NewPooledClient(time.Duration(cfg.OpenAITimeout) * time.Second)
	catalogHTTP := httpclient.NewPooledClient(15 * time.Second)
	searchHTTP := httpclient.NewPooledClient(15 * time.Second)

	extractor := oracle.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ChatModel, oracleHTTP, log)

	cacheTTL := time.Duration(cfg.PriceCacheTTL) * time.Second
	sources := map[domain.Category]domain.PriceSource{
		domain.CategoryMTG:     pricing.NewCachedSource(pricing.NewScryfallSource(cfg.ScryfallBaseURL, catalogHTTP, log), cfg.PriceCacheSize, cacheTTL),
		domain.CategoryYuGiOh:  pricing.NewCachedSource(pricing.NewYGOProDeckSource(cfg.YGOProDeckBaseURL, catalogHTTP, log), cfg.PriceCacheSize, cacheTTL),
		domain.CategoryPokemon: pricing.NewCachedSource(pricing.NewPokemonTCGSource(cfg.PokemonTCGBaseURL, cfg.PokemonTCGAPIKey, catalogHTTP, log), cfg.PriceCacheSize, cacheTTL),
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.SearchRateLimitRPS), cfg.SearchRateLimitRPS)
	providers := []domain.SearchProvider{
		searchadapter.NewTavilyProvider(cfg.TavilyBaseURL, cfg.TavilyAPIKey, searchHTTP, limiter, log),
		searchadapter.NewSerperProvider(cfg.SerperBaseURL, cfg.SerperAPIKey, searchHTTP, limiter, log),
	}
	webSearch := searchusecase.NewService(providers, cfg.WebSnippetCap, log)

	// 4. Initialize Usecase
	appraise := usecase.NewAppraiseUsecase(
		extractor,
		sources,
		webSearch,
		time.Duration(cfg.AppraiseTimeout)*time.Second,
		log,
	)

	// 5. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// 6. Register Handlers
	handler := httpapi.NewHandler(appraise, extractor, cfg.OpenAIAPIKey != "", cfg.UploadMaxBytes, log)
	handler.Register(e)

	// 7. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("Starting server", "addr", addr, "model", extractor.Model())
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 8. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

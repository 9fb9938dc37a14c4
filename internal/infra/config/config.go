package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-driven option. Credentials for optional
// enrichment sources may be empty; only the OpenAI key is mandatory, and its
// absence is surfaced per request rather than at startup.
type Config struct {
	Env  string
	Port string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	ChatModel     string
	OpenAITimeout int

	PokemonTCGAPIKey string
	TavilyAPIKey     string
	SerperAPIKey     string

	ScryfallBaseURL   string
	YGOProDeckBaseURL string
	PokemonTCGBaseURL string
	TavilyBaseURL     string
	SerperBaseURL     string

	AppraiseTimeout int
	UploadMaxBytes  int64
	WebSnippetCap   int

	PriceCacheSize     int
	PriceCacheTTL      int
	SearchRateLimitRPS int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8787"),

		OpenAIAPIKey:  getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		ChatModel:     getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAITimeout: getEnvInt("OPENAI_TIMEOUT_SECONDS", 60),

		PokemonTCGAPIKey: getSecret("POKEMON_TCG_API_KEY", "POKEMON_TCG_API_KEY_FILE", ""),
		TavilyAPIKey:     getSecret("TAVILY_API_KEY", "TAVILY_API_KEY_FILE", ""),
		SerperAPIKey:     getSecret("SERPER_API_KEY", "SERPER_API_KEY_FILE", ""),

		ScryfallBaseURL:   getEnv("SCRYFALL_BASE_URL", "https://api.scryfall.com"),
		YGOProDeckBaseURL: getEnv("YGOPRODECK_BASE_URL", "https://db.ygoprodeck.com"),
		PokemonTCGBaseURL: getEnv("POKEMONTCG_BASE_URL", "https://api.pokemontcg.io"),
		TavilyBaseURL:     getEnv("TAVILY_BASE_URL", "https://api.tavily.com"),
		SerperBaseURL:     getEnv("SERPER_BASE_URL", "https://google.serper.dev"),

		AppraiseTimeout: getEnvInt("APPRAISE_TIMEOUT_SECONDS", 25),
		UploadMaxBytes:  int64(getEnvInt("UPLOAD_MAX_BYTES", 4_500_000)),
		WebSnippetCap:   getEnvInt("WEB_SNIPPET_CAP", 10),

		PriceCacheSize:     getEnvInt("PRICE_CACHE_SIZE", 256),
		PriceCacheTTL:      getEnvInt("PRICE_CACHE_TTL_SECONDS", 300),
		SearchRateLimitRPS: getEnvInt("SEARCH_RATE_LIMIT_RPS", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

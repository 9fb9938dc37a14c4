package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, 25, cfg.AppraiseTimeout)
	assert.Equal(t, int64(4_500_000), cfg.UploadMaxBytes)
	assert.Equal(t, 10, cfg.WebSnippetCap)
	assert.Equal(t, 256, cfg.PriceCacheSize)
	assert.Equal(t, 5, cfg.SearchRateLimitRPS)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("APPRAISE_TIMEOUT_SECONDS", "40")
	t.Setenv("UPLOAD_MAX_BYTES", "1000000")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gpt-4.1", cfg.OpenAIModel)
	assert.Equal(t, 40, cfg.AppraiseTimeout)
	assert.Equal(t, int64(1_000_000), cfg.UploadMaxBytes)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("WEB_SNIPPET_CAP", "lots")

	cfg := Load()

	assert.Equal(t, 10, cfg.WebSnippetCap)
}

func TestGetSecret_PrefersEnvOverFile(t *testing.T) {
	secretFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(secretFile, []byte("from-file\n"), 0o600))

	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("OPENAI_API_KEY_FILE", secretFile)
	assert.Equal(t, "from-env", getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""))
}

func TestGetSecret_ReadsFileAndTrims(t *testing.T) {
	secretFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(secretFile, []byte("  sk-secret \n"), 0o600))

	t.Setenv("TAVILY_API_KEY_FILE", secretFile)
	assert.Equal(t, "sk-secret", getSecret("TAVILY_API_KEY", "TAVILY_API_KEY_FILE", ""))
}

func TestGetSecret_MissingFileFallsBack(t *testing.T) {
	t.Setenv("SERPER_API_KEY_FILE", filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, "", getSecret("SERPER_API_KEY", "SERPER_API_KEY_FILE", ""))
}

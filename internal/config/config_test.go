package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", " tmdb ")
	t.Setenv("GEMINI_API_KEY", "gem")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tmdb", cfg.TMDBAPIKey)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 6, cfg.MovieCap)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, float32(0.7), cfg.Temperature)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_RequiresCatalogKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProviderKeys(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "tmdb")
	t.Setenv("CINESNAP_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName())

	t.Setenv("CINESNAP_PROVIDER", "llama")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_TracingNeedsEndpoint(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "tmdb")
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("ENABLE_TRACING", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CINESNAP_MODEL=gemini-2.5-pro\n"), 0o600))
	t.Setenv("CINESNAP_MODEL", "before")

	LoadEnvFiles(filepath.Join(dir, "missing.env"), path)
	assert.Equal(t, "gemini-2.5-pro", os.Getenv("CINESNAP_MODEL"))
}

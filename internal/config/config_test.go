package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournaija/tournaija/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOURNAIJA_CONFIG", "")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, config.DefaultAPIPrefix, cfg.APIPrefix)
	assert.Equal(t, config.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, config.HotelProviderStatic, cfg.HotelProvider)
	assert.Equal(t, config.BookingProviderMemory, cfg.BookingProvider)
	assert.Equal(t, config.DefaultAgentTimeout, int(cfg.AgentTimeoutDuration().Seconds()))
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournaija.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9100
llm:
  provider: anthropic
  model: claude-sonnet-4-6
hotel_provider: makcorps
hotel_api_key: from-file
`), 0o600))

	t.Setenv("TOURNAIJA_CONFIG", path)
	t.Setenv("HOTEL_API_KEY", "from-env")
	t.Setenv("LLM_MODEL", "claude-opus-4-1")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, config.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "claude-opus-4-1", cfg.LLM.Model, "env overrides file")
	assert.Equal(t, "from-env", cfg.HotelAPIKey)
	assert.Equal(t, config.DefaultBreakerMaxFailures, cfg.LLM.BreakerMaxFailures, "unset keys keep defaults")
}

func TestLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournaija.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_prefix":"/v2","llm":{"provider":"openai"}}`), 0o600))
	t.Setenv("TOURNAIJA_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "/v2", cfg.APIPrefix)
	assert.Equal(t, config.ProviderOpenAI, cfg.LLM.Provider)
}

func TestResponseCacheAndPricingFromEnv(t *testing.T) {
	t.Setenv("TOURNAIJA_CONFIG", "")
	t.Setenv("RESPONSE_CACHE_TTL", "90")
	t.Setenv("LLM_OUTPUT_COST_PER_MILLION", "15")
	t.Setenv("LLM_INPUT_COST_PER_MILLION", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.ResponseCacheDuration())
	assert.Equal(t, config.DefaultInputCostPerMillion, cfg.LLM.InputCostPerMillion, "unparsable values are ignored")
	assert.Equal(t, 15.0, cfg.LLM.OutputCostPerMillion)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"defaults", func(*config.Config) {}, true},
		{"unknown llm provider", func(c *config.Config) { c.LLM.Provider = "llama" }, false},
		{"makcorps without key", func(c *config.Config) { c.HotelProvider = config.HotelProviderMakcorps }, false},
		{"elasticsearch without host", func(c *config.Config) { c.HotelProvider = config.HotelProviderElasticsearch }, false},
		{"postgres without url", func(c *config.Config) { c.BookingProvider = config.BookingProviderPostgres }, false},
		{"production without keys", func(c *config.Config) { c.Environment = "production" }, false},
		{"bad port", func(c *config.Config) { c.Port = 0 }, false},
		{"negative cache ttl", func(c *config.Config) { c.ResponseCacheTTL = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

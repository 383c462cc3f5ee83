package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Environment string `json:"environment" yaml:"environment"`
	APIPrefix   string `json:"api_prefix" yaml:"api_prefix"`
	LogLevel    string `json:"log_level" yaml:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`

	// Auth
	APIKeyHeader string   `json:"api_key_header" yaml:"api_key_header"`
	APIKeys      []string `json:"api_keys" yaml:"api_keys"`
	EnableAuth   bool     `json:"enable_auth" yaml:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	// Agent
	AgentTimeout    int `json:"agent_timeout" yaml:"agent_timeout"` // seconds
	MaxPromptLength int `json:"max_prompt_length" yaml:"max_prompt_length"`
	// ResponseCacheTTL caches structured flow outputs; 0 disables the cache.
	ResponseCacheTTL int `json:"response_cache_ttl" yaml:"response_cache_ttl"` // seconds

	// Security
	EnablePIIDetection bool     `json:"enable_pii_detection" yaml:"enable_pii_detection"`
	PIIKeywords        []string `json:"pii_keywords" yaml:"pii_keywords"`
	EnableDataMasking  bool     `json:"enable_data_masking" yaml:"enable_data_masking"`
	EnableAuditLogging bool     `json:"enable_audit_logging" yaml:"enable_audit_logging"`

	LLM     LLMConfig     `json:"llm" yaml:"llm"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Hotels
	HotelProvider      string `json:"hotel_provider" yaml:"hotel_provider"`
	HotelAPIKey        string `json:"hotel_api_key" yaml:"hotel_api_key"`
	MakcorpsBaseURL    string `json:"makcorps_base_url" yaml:"makcorps_base_url"`
	MakcorpsUsername   string `json:"makcorps_username" yaml:"makcorps_username"`
	MakcorpsRatePerMin int    `json:"makcorps_rate_per_minute" yaml:"makcorps_rate_per_minute"`

	// Bookings
	BookingProvider string `json:"booking_provider" yaml:"booking_provider"`
	DatabaseURL     string `json:"database_url" yaml:"database_url"`

	// Elasticsearch hotel catalog
	ElasticsearchHost        string `json:"elasticsearch_host" yaml:"elasticsearch_host"`
	ElasticsearchPort        int    `json:"elasticsearch_port" yaml:"elasticsearch_port"`
	ElasticsearchScheme      string `json:"elasticsearch_scheme" yaml:"elasticsearch_scheme"`
	ElasticsearchUser        string `json:"elasticsearch_user" yaml:"elasticsearch_user"`
	ElasticsearchPassword    string `json:"elasticsearch_password" yaml:"elasticsearch_password"`
	ElasticsearchVerifyCerts bool   `json:"elasticsearch_verify_certs" yaml:"elasticsearch_verify_certs"`
	ElasticsearchMaxRetries  int    `json:"elasticsearch_max_retries" yaml:"elasticsearch_max_retries"`
	ElasticsearchIndex       string `json:"elasticsearch_index" yaml:"elasticsearch_index"`

	// BigQuery audit sink
	GCPProjectID                 string `json:"gcp_project_id" yaml:"gcp_project_id"`
	GoogleApplicationCredentials string `json:"google_application_credentials" yaml:"google_application_credentials"`
	BigQueryDataset              string `json:"bigquery_dataset" yaml:"bigquery_dataset"`
	BigQueryTable                string `json:"bigquery_table" yaml:"bigquery_table"`
	BigQueryLocation             string `json:"bigquery_location" yaml:"bigquery_location"`
}

// LLMConfig selects and tunes the language-model provider.
type LLMConfig struct {
	Provider         string `json:"provider" yaml:"provider"`
	Model            string `json:"model" yaml:"model"`
	MaxTokens        int    `json:"max_tokens" yaml:"max_tokens"`
	GeminiAPIKey     string `json:"gemini_api_key" yaml:"gemini_api_key"`
	AnthropicAPIKey  string `json:"anthropic_api_key" yaml:"anthropic_api_key"`
	AnthropicBaseURL string `json:"anthropic_base_url" yaml:"anthropic_base_url"` // override for compatible proxies
	OpenAIAPIKey     string `json:"openai_api_key" yaml:"openai_api_key"`
	OpenAIBaseURL    string `json:"openai_base_url" yaml:"openai_base_url"`

	BreakerMaxFailures int `json:"breaker_max_failures" yaml:"breaker_max_failures"`
	BreakerTimeoutSecs int `json:"breaker_timeout" yaml:"breaker_timeout"`

	// USD per million tokens, for cost logging.
	InputCostPerMillion  float64 `json:"input_cost_per_million" yaml:"input_cost_per_million"`
	OutputCostPerMillion float64 `json:"output_cost_per_million" yaml:"output_cost_per_million"`
}

func (c LLMConfig) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutSecs) * time.Second
}

type TracingConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Exporter string `json:"exporter" yaml:"exporter"` // "stdout" or "noop"
}

func Default() *Config {
	return &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        DefaultCORSOrigins,
		APIKeyHeader:       "X-API-Key",
		EnableAuth:         true,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		AgentTimeout:       DefaultAgentTimeout,
		MaxPromptLength:    DefaultMaxPromptLength,
		EnablePIIDetection: true,
		PIIKeywords:        DefaultPIIKeywords,
		EnableDataMasking:  true,
		EnableAuditLogging: true,
		LLM: LLMConfig{
			Provider:           ProviderGemini,
			MaxTokens:          DefaultLLMMaxTokens,
			BreakerMaxFailures: DefaultBreakerMaxFailures,
			BreakerTimeoutSecs: DefaultBreakerTimeout,

			InputCostPerMillion:  DefaultInputCostPerMillion,
			OutputCostPerMillion: DefaultOutputCostPerMillion,
		},
		HotelProvider:            DefaultHotelProvider,
		MakcorpsBaseURL:          DefaultMakcorpsBaseURL,
		MakcorpsUsername:         DefaultMakcorpsUsername,
		MakcorpsRatePerMin:       DefaultMakcorpsRatePerMin,
		BookingProvider:          DefaultBookingProvider,
		ElasticsearchPort:        DefaultElasticsearchPort,
		ElasticsearchScheme:      DefaultElasticsearchScheme,
		ElasticsearchVerifyCerts: true,
		ElasticsearchMaxRetries:  DefaultElasticsearchMaxRetries,
		ElasticsearchIndex:       DefaultElasticsearchIndex,
		BigQueryDataset:          DefaultBigQueryDataset,
		BigQueryTable:            DefaultBigQueryTable,
		BigQueryLocation:         DefaultBigQueryLocation,
	}
}

// Load builds the config from defaults, the optional file named by
// TOURNAIJA_CONFIG (.json, .yaml or .yml) and environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := getEnv("TOURNAIJA_CONFIG", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	switch c.HotelProvider {
	case HotelProviderStatic:
	case HotelProviderMakcorps:
		if c.HotelAPIKey == "" {
			errs = append(errs, errors.New("hotel provider makcorps requires HOTEL_API_KEY"))
		}
	case HotelProviderElasticsearch:
		if c.ElasticsearchHost == "" {
			errs = append(errs, errors.New("hotel provider elasticsearch requires ELASTICSEARCH_HOST"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown hotel provider %q", c.HotelProvider))
	}
	switch c.BookingProvider {
	case BookingProviderMemory:
	case BookingProviderPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("booking provider postgres requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown booking provider %q", c.BookingProvider))
	}
	if c.ResponseCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("invalid response cache ttl %d", c.ResponseCacheTTL))
	}
	if c.EnableAuth && len(c.APIKeys) == 0 && c.Environment == "production" {
		errs = append(errs, errors.New("auth is enabled but no API keys are configured"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return c.Environment == "production" }

func (c *Config) AgentTimeoutDuration() time.Duration {
	return time.Duration(c.AgentTimeout) * time.Second
}

func (c *Config) ResponseCacheDuration() time.Duration {
	return time.Duration(c.ResponseCacheTTL) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("TOURNAIJA_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("TOURNAIJA_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("TOURNAIJA_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("TOURNAIJA_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("TOURNAIJA_API_KEYS", ""); v != "" {
		cfg.APIKeys = strings.Split(v, ",")
	}
	if v := getEnv("ENABLE_AUTH", ""); v != "" {
		cfg.EnableAuth = v == "true" || v == "1"
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("AGENT_TIMEOUT", ""); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.AgentTimeout = s
		}
	}

	if v := getEnv("RESPONSE_CACHE_TTL", ""); v != "" {
		if s, err := strconv.Atoi(v); err == nil {
			cfg.ResponseCacheTTL = s
		}
	}

	if v := getEnv("LLM_PROVIDER", ""); v != "" {
		cfg.LLM.Provider = v
	}
	if v := getEnv("LLM_MODEL", ""); v != "" {
		cfg.LLM.Model = v
	}
	if v := getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", "")); v != "" {
		cfg.LLM.GeminiAPIKey = v
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.LLM.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.LLM.AnthropicBaseURL = v
	}
	if v := getEnv("OPENAI_API_KEY", ""); v != "" {
		cfg.LLM.OpenAIAPIKey = v
	}
	if v := getEnv("OPENAI_BASE_URL", ""); v != "" {
		cfg.LLM.OpenAIBaseURL = v
	}
	if v := getEnv("LLM_INPUT_COST_PER_MILLION", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.InputCostPerMillion = f
		}
	}
	if v := getEnv("LLM_OUTPUT_COST_PER_MILLION", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.OutputCostPerMillion = f
		}
	}
	if v := getEnv("TRACING_EXPORTER", ""); v != "" {
		cfg.Tracing.Enabled = v != "noop"
		cfg.Tracing.Exporter = v
	}

	if v := getEnv("HOTEL_PROVIDER", ""); v != "" {
		cfg.HotelProvider = v
	}
	if v := getEnv("HOTEL_API_KEY", ""); v != "" {
		cfg.HotelAPIKey = v
	}
	if v := getEnv("MAKCORPS_USERNAME", ""); v != "" {
		cfg.MakcorpsUsername = v
	}
	if v := getEnv("MAKCORPS_BASE_URL", ""); v != "" {
		cfg.MakcorpsBaseURL = v
	}
	if v := getEnv("BOOKING_PROVIDER", ""); v != "" {
		cfg.BookingProvider = v
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		cfg.DatabaseURL = v
	}

	if v := getEnv("ELASTICSEARCH_HOST", ""); v != "" {
		cfg.ElasticsearchHost = v
	}
	if v := getEnv("ELASTICSEARCH_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.ElasticsearchPort = p
		}
	}
	if v := getEnv("ELASTICSEARCH_SCHEME", ""); v != "" {
		cfg.ElasticsearchScheme = v
	}
	if v := getEnv("ELASTICSEARCH_USER", ""); v != "" {
		cfg.ElasticsearchUser = v
	}
	if v := getEnv("ELASTICSEARCH_PASSWORD", ""); v != "" {
		cfg.ElasticsearchPassword = v
	}
	if v := getEnv("ELASTICSEARCH_INDEX", ""); v != "" {
		cfg.ElasticsearchIndex = v
	}

	if v := getEnv("GCP_PROJECT_ID", ""); v != "" {
		cfg.GCPProjectID = v
	}
	if v := getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""); v != "" {
		cfg.GoogleApplicationCredentials = v
	}
	if v := getEnv("BIGQUERY_DATASET", ""); v != "" {
		cfg.BigQueryDataset = v
	}
	if v := getEnv("BIGQUERY_TABLE", ""); v != "" {
		cfg.BigQueryTable = v
	}
	if v := getEnv("BIGQUERY_LOCATION", ""); v != "" {
		cfg.BigQueryLocation = v
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

package config

import "time"

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 60

	DefaultAgentTimeout    = 120 // seconds
	DefaultMaxPromptLength = 2000
	DefaultLLMMaxTokens    = 4096

	DefaultBreakerMaxFailures = 5
	DefaultBreakerTimeout     = 30 // seconds

	DefaultInputCostPerMillion  = 0.30
	DefaultOutputCostPerMillion = 2.50

	DefaultHotelProvider   = HotelProviderStatic
	DefaultBookingProvider = BookingProviderMemory

	DefaultMakcorpsBaseURL     = "https://api.makcorps.com"
	DefaultMakcorpsUsername    = "mjavason"
	DefaultMakcorpsRatePerMin  = 30
	DefaultHotelRequestTimeout = 15 * time.Second

	DefaultElasticsearchPort       = 9200
	DefaultElasticsearchScheme     = "http"
	DefaultElasticsearchIndex      = "hotels"
	DefaultElasticsearchMaxRetries = 3

	DefaultBigQueryDataset  = "tournaija"
	DefaultBigQueryTable    = "agent_audit"
	DefaultBigQueryLocation = "US"

	DefaultCORSMaxAge = 300
)

// LLM providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Hotel search providers.
const (
	HotelProviderStatic        = "static"
	HotelProviderMakcorps      = "makcorps"
	HotelProviderElasticsearch = "elasticsearch"
)

// Booking providers.
const (
	BookingProviderMemory   = "memory"
	BookingProviderPostgres = "postgres"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:9002",
}

// DefaultPIIKeywords are payment and credential secrets a guest must never
// type into a chat box.
var DefaultPIIKeywords = []string{
	"password", "credit card", "card number", "cvv", "pin",
	"bvn", "bank account", "otp", "private key", "access token",
}

package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

const tokensPerMillion = 1_000_000.0

// CostTracker logs model token usage per flow with hashed caller identifiers.
type CostTracker struct {
	inputPerMillion  float64 // USD per million input tokens
	outputPerMillion float64
}

func NewCostTracker(inputPerMillion, outputPerMillion float64) *CostTracker {
	return &CostTracker{inputPerMillion: inputPerMillion, outputPerMillion: outputPerMillion}
}

// Estimate returns the USD cost of a call.
func (ct *CostTracker) Estimate(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/tokensPerMillion*ct.inputPerMillion +
		float64(outputTokens)/tokensPerMillion*ct.outputPerMillion
}

// LogUsage logs token usage and estimated cost for one flow invocation.
func (ct *CostTracker) LogUsage(flow, apiKey string, inputTokens, outputTokens int, durationMs int64) {
	cost := ct.Estimate(inputTokens, outputTokens)
	log.Info().
		Str("event", "llm_cost").
		Str("flow", flow).
		Str("api_key_hash", HashID(apiKey)).
		Int("input_tokens", inputTokens).
		Int("output_tokens", outputTokens).
		Float64("cost_usd", cost).
		Int64("duration_ms", durationMs).
		Msgf("LLM cost: %d in / %d out tokens ($%.5f) | Flow: %s", inputTokens, outputTokens, cost, flow)
}

// HashID returns the first 16 hex chars of the SHA-256 of s.
func HashID(s string) string {
	return hashStr(s)[:16]
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}

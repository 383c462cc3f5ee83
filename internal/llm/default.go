package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tournaija/tournaija/internal/config"
)

var (
	ErrNotInitialized     = errors.New("llm: default client not initialized")
	ErrAlreadyInitialized = errors.New("llm: default client already initialized")
)

var (
	defaultMu     sync.RWMutex
	defaultClient Client
)

// SetDefault installs the process-wide client. It may be called once; later
// calls fail with ErrAlreadyInitialized and leave the first client in place.
func SetDefault(c Client) error {
	if c == nil {
		return errors.New("llm: nil client")
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient != nil {
		return ErrAlreadyInitialized
	}
	defaultClient = c
	return nil
}

// Default returns the process-wide client installed by SetDefault.
func Default() (Client, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultClient == nil {
		return nil, ErrNotInitialized
	}
	return defaultClient, nil
}

// New builds the configured provider client wrapped in a circuit breaker.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	var inner Client
	switch cfg.Provider {
	case config.ProviderGemini, "":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("missing GEMINI_API_KEY or GOOGLE_API_KEY")
		}
		c, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		inner = c
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, errors.New("missing ANTHROPIC_API_KEY")
		}
		inner = NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL, cfg.MaxTokens)
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("missing OPENAI_API_KEY")
		}
		inner = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
	return NewBreakerClient(inner, BreakerConfig{
		MaxFailures: uint32(cfg.BreakerMaxFailures),
		Timeout:     cfg.BreakerTimeout(),
	}), nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultBreakerMaxFailures uint32 = 5
	defaultBreakerTimeout            = 30 * time.Second
	defaultBreakerInterval           = 60 * time.Second
)

// BreakerConfig tunes BreakerClient. Zero values select the defaults.
type BreakerConfig struct {
	MaxFailures uint32
	Timeout     time.Duration
	Interval    time.Duration
}

// BreakerClient fails fast once the wrapped provider keeps erroring, so a
// provider outage does not pile up slow requests.
type BreakerClient struct {
	inner   Client
	breaker *gobreaker.CircuitBreaker[*Response]
}

func NewBreakerClient(inner Client, cfg BreakerConfig) *BreakerClient {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a provider failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerClient{inner: inner, breaker: cb}
}

func (b *BreakerClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	resp, err := b.breaker.Execute(func() (*Response, error) {
		return b.inner.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("provider %q circuit open: %w", b.inner.Name(), err)
		}
		return nil, err
	}
	return resp, nil
}

func (b *BreakerClient) Name() string { return b.inner.Name() }

// State reports the breaker state for health checks.
func (b *BreakerClient) State() gobreaker.State { return b.breaker.State() }

// TestConnection reports an error while the breaker is open. It never calls
// the provider.
func (b *BreakerClient) TestConnection(ctx context.Context) error {
	if st := b.breaker.State(); st == gobreaker.StateOpen {
		return fmt.Errorf("provider %q circuit %s", b.inner.Name(), st)
	}
	return nil
}

// Close releases the wrapped client when it holds a connection.
func (b *BreakerClient) Close() error {
	if c, ok := b.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var (
	_ Client = (*BreakerClient)(nil)
	_ Client = (*GeminiClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*OpenAIClient)(nil)
)

package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/tournaija/tournaija/internal/security"
)

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

// responseCache holds structured flow outputs keyed by flow and input.
// Outputs are stored as JSON and decoded per caller, so no two invocations
// share a value. Concurrent misses for the same key share a single model
// call via singleflight. A nil cache is disabled.
type responseCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	store map[string]cacheEntry
	sf    singleflight.Group
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		return nil
	}
	return &responseCache{ttl: ttl, store: make(map[string]cacheEntry)}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.body, true
}

func (c *responseCache) set(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = cacheEntry{body: body, expiresAt: time.Now().Add(c.ttl)}
}

// sharedCall is the outcome of one model call shared by every caller waiting
// on the same key. Its usage is credited to the first caller that claims it.
type sharedCall struct {
	body    []byte
	stats   *invocation
	claimed atomic.Bool
}

func (sc *sharedCall) claimInto(inv *invocation) {
	if sc.stats == nil || !sc.claimed.CompareAndSwap(false, true) {
		return
	}
	inv.sessionID = sc.stats.sessionID
	inv.modelCalls = sc.stats.modelCalls
	inv.usage = sc.stats.usage
}

// cached returns a private copy of the output for key, computing it with fn
// on a miss. fn reports whether its output may be cached; fallbacks and
// failures are not. The shared call runs detached from any one caller's
// cancellation under the service timeout, while each caller stops waiting
// when its own ctx is done. A nil output means the caller gave up.
func cached[T any](ctx context.Context, s *Service, inv *invocation, key string,
	fn func(ctx context.Context, inv *invocation) (*T, bool, error)) (*T, error) {
	c := s.cache
	if c == nil {
		v, _, err := fn(ctx, inv)
		return v, err
	}
	if body, ok := c.get(key); ok {
		log.Debug().Str("key", key).Msg("response cache hit")
		return decodeCopy[T](body)
	}

	ch := c.sf.DoChan(key, func() (any, error) {
		if body, ok := c.get(key); ok {
			return &sharedCall{body: body}, nil
		}
		callCtx, cancel := s.withTimeout(context.WithoutCancel(ctx))
		defer cancel()

		stats := &invocation{flow: inv.flow}
		v, cacheable, err := fn(callCtx, stats)
		body, merr := json.Marshal(v)
		if merr != nil {
			return nil, fmt.Errorf("encode %s output: %w", inv.flow, merr)
		}
		if err == nil && cacheable {
			c.set(key, body)
		}
		return &sharedCall{body: body, stats: stats}, err
	})

	select {
	case <-ctx.Done():
		return nil, unavailable(inv.flow, ctx.Err())
	case res := <-ch:
		sc, ok := res.Val.(*sharedCall)
		if !ok {
			return nil, res.Err
		}
		sc.claimInto(inv)
		out, err := decodeCopy[T](sc.body)
		if err != nil {
			return nil, err
		}
		return out, res.Err
	}
}

func decodeCopy[T any](body []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("decode cached output: %w", err)
	}
	return out, nil
}

// cacheKey derives a key from the flow name and its validated input.
func cacheKey(flow string, input any) string {
	b, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	return flow + ":" + security.HashID(string(b))
}

package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tournaija/tournaija/internal/agent"
	"github.com/tournaija/tournaija/internal/schema"
)

// structured runs one structured model call and decodes the validated value
// into out. ok is false when out was left untouched: malformed output is
// logged and reported as ok=false with a nil error, a transport failure as a
// *Error of KindUnavailable.
func (s *Service) structured(ctx context.Context, inv *invocation, prompt string, sch *schema.Schema, out any) (ok bool, err error) {
	res, err := s.agent.Generate(ctx, agent.StructuredRequest{Name: inv.flow, Prompt: prompt, Schema: sch})
	inv.structured(res)
	if err != nil {
		if errors.Is(err, agent.ErrMalformedOutput) {
			malformed(inv.flow, err)
			return false, nil
		}
		return false, unavailable(inv.flow, err)
	}
	if err := schema.Decode(sch, res.Value, out); err != nil {
		malformed(inv.flow, fmt.Errorf("decode: %w", err))
		return false, nil
	}
	return true, nil
}

// listOr joins items for a prompt, or returns fallback when there are none.
func listOr(items []string, fallback string) string {
	var kept []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return fallback
	}
	return strings.Join(kept, ", ")
}

// Package flows exposes the travel features: each flow validates its input,
// screens free text, runs the model (with tools where the feature needs them)
// and adapts the result into a typed output with a safe fallback.
package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/agent"
	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/security"
	"github.com/tournaija/tournaija/internal/service"
	"github.com/tournaija/tournaija/internal/tools"
)

// Flow names, used in logs, audit events and cache keys.
const (
	FlowItinerary       = "itinerary"
	FlowHotelSearch     = "hotelSearch"
	FlowHotelBooking    = "hotelBooking"
	FlowRoute           = "routePlanning"
	FlowChat            = "chat"
	FlowRecommendations = "recommendations"
	FlowAssistant       = "assistant"
)

// UnavailableMessage is shown to users when the language model cannot be reached.
const UnavailableMessage = "Sorry, our travel assistant is temporarily unavailable. Please try again shortly."

// Kind classifies a flow failure.
type Kind string

const (
	// KindUnavailable: the language model could not be reached. The flow still
	// returns its fallback output alongside the error.
	KindUnavailable Kind = "unavailable"
	// KindRejected: free-text input failed security screening.
	KindRejected Kind = "rejected"
)

// Error is a user-safe flow failure. Message may be shown to the caller; Err
// carries the detail for logs.
type Error struct {
	Kind    Kind
	Flow    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Flow, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Flow, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError unwraps err into a *flows.Error.
func AsError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Deps are the collaborators a Service needs. Only Client is required.
type Deps struct {
	Client   llm.Client
	Hotels   service.HotelSearcher
	Bookings service.BookingStore

	Prompts *security.PromptValidator
	PII     *security.PIIDetector
	Masker  *security.DataMasker
	Audit   *security.AuditLogger
	Costs   *security.CostTracker
	Router  *service.IntentRouter

	// Timeout bounds each flow invocation; zero means no limit.
	Timeout time.Duration
	// CacheTTL enables response caching for the structured flows.
	CacheTTL time.Duration
	Clock    func() time.Time
}

// Service runs the flows. It is safe for concurrent use; no state is shared
// between invocations other than the immutable definitions and collaborators.
type Service struct {
	agent    *agent.Agent
	schemas  *schema.Registry
	search   *tools.Registry
	booking  *tools.Registry
	bookings service.BookingStore
	masker   *security.DataMasker
	prompts  *security.PromptValidator
	pii      *security.PIIDetector
	audit    *security.AuditLogger
	costs    *security.CostTracker
	router   *service.IntentRouter
	timeout  time.Duration
	cache    *responseCache
	provider string
}

// New builds the flow service. Missing hotel or booking providers fall back
// to the simulated implementations.
func New(d Deps) (*Service, error) {
	if d.Client == nil {
		return nil, errors.New("flows: language model client is required")
	}
	if d.Hotels == nil {
		d.Hotels = service.NewDefaultStaticHotels()
	}
	if d.Bookings == nil {
		d.Bookings = service.NewSimulatedBookings()
	}
	if d.Router == nil {
		d.Router = service.NewIntentRouter()
	}

	var opts []agent.Option
	if d.Clock != nil {
		opts = append(opts, agent.WithClock(d.Clock))
	}

	search, err := tools.NewRegistry(tools.SearchHotels(d.Hotels))
	if err != nil {
		return nil, fmt.Errorf("flows: %w", err)
	}
	booking, err := tools.NewRegistry(tools.BookHotel(d.Bookings, d.Masker), tools.BookingStatus(d.Bookings))
	if err != nil {
		return nil, fmt.Errorf("flows: %w", err)
	}
	schemas, err := newSchemaRegistry()
	if err != nil {
		return nil, fmt.Errorf("flows: %w", err)
	}

	return &Service{
		agent:    agent.New(d.Client, opts...),
		schemas:  schemas,
		search:   search,
		booking:  booking,
		bookings: d.Bookings,
		masker:   d.Masker,
		prompts:  d.Prompts,
		pii:      d.PII,
		audit:    d.Audit,
		costs:    d.Costs,
		router:   d.Router,
		timeout:  d.Timeout,
		cache:    newResponseCache(d.CacheTTL),
		provider: d.Client.Name(),
	}, nil
}

// Schemas returns the registry of every flow and tool schema.
func (s *Service) Schemas() *schema.Registry {
	return s.schemas
}

// validate checks in against sch and decodes the normalized value (defaults
// applied) back into out. Failures are *schema.ValidationError.
func validate(sch *schema.Schema, in, out any) error {
	return schema.Decode(sch, in, out)
}

// screen rejects free text that fails the prompt or PII checks.
func (s *Service) screen(flow, text string) error {
	if s.prompts != nil {
		if res := s.prompts.Validate(text); !res.Valid {
			return &Error{Kind: KindRejected, Flow: flow, Message: res.Message}
		}
	}
	if s.pii != nil {
		if found, kw := s.pii.Detect(text); found {
			return &Error{
				Kind:    KindRejected,
				Flow:    flow,
				Message: fmt.Sprintf("please do not share sensitive information (%s) in chat", kw),
			}
		}
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// unavailable logs a model transport failure and wraps it for the caller.
func unavailable(flow string, err error) *Error {
	log.Error().Err(err).Str("flow", flow).Msg("language model unavailable")
	return &Error{Kind: KindUnavailable, Flow: flow, Message: UnavailableMessage, Err: err}
}

// malformed logs model output that was replaced by a fallback.
func malformed(flow string, err error) {
	log.Warn().Err(err).Str("flow", flow).Msg("model output replaced by fallback")
}

// invocation accumulates what the audit and cost trackers need.
type invocation struct {
	flow       string
	text       string
	start      time.Time
	sessionID  string
	tools      []string
	modelCalls int
	usage      llm.Usage
}

func (s *Service) begin(flow, text string) *invocation {
	return &invocation{flow: flow, text: text, start: time.Now()}
}

func (inv *invocation) session(res *agent.Result) {
	if res == nil {
		return
	}
	inv.sessionID = res.SessionID
	inv.tools = res.ToolNames()
	inv.modelCalls = res.ModelCalls
	inv.usage = res.Usage
}

func (inv *invocation) structured(res *agent.StructuredResult) {
	inv.modelCalls = 1
	if res != nil {
		inv.usage = res.Usage
	}
}

// finish records the audit event and token cost of one invocation.
func (s *Service) finish(ctx context.Context, inv *invocation, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var fe *Error
		var ve *schema.ValidationError
		switch {
		case errors.As(err, &fe):
			outcome = string(fe.Kind)
		case errors.As(err, &ve):
			outcome = "invalid_input"
		}
	}
	elapsed := time.Since(inv.start).Milliseconds()
	caller := security.CallerFrom(ctx)
	// the flow's own deadline may already have fired
	ctx = context.WithoutCancel(ctx)

	if s.audit != nil {
		s.audit.LogAgentRequest(ctx, security.AgentRequest{
			RequestID:   caller.RequestID,
			SessionID:   inv.sessionID,
			Flow:        inv.flow,
			Prompt:      inv.text,
			APIKey:      caller.APIKey,
			ToolCalls:   inv.tools,
			ModelCalls:  inv.modelCalls,
			Outcome:     outcome,
			ExecutionMs: elapsed,
		})
	}
	if s.costs != nil && inv.modelCalls > 0 {
		s.costs.LogUsage(inv.flow, caller.APIKey, inv.usage.InputTokens, inv.usage.OutputTokens, elapsed)
	}
	log.Info().
		Str("flow", inv.flow).
		Str("provider", s.provider).
		Str("outcome", outcome).
		Int("model_calls", inv.modelCalls).
		Strs("tools", inv.tools).
		Int64("duration_ms", elapsed).
		Msg("flow completed")
}

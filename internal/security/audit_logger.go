package security

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// AuditEvent describes one flow invocation. Identifiers are hashed before they
// leave this package.
type AuditEvent struct {
	Timestamp   time.Time
	RequestID   string
	SessionID   string
	Flow        string
	PromptHash  string
	APIKeyHash  string
	ToolCalls   []string
	ModelCalls  int
	Outcome     string
	ExecutionMs int64
}

// AuditSink receives audit events for long-term storage.
type AuditSink interface {
	WriteAudit(ctx context.Context, evt AuditEvent) error
}

// AuditLogger logs security-relevant events with hashed identifiers
type AuditLogger struct {
	enabled bool
	sink    AuditSink
}

// NewAuditLogger returns a logger; sink may be nil.
func NewAuditLogger(enabled bool, sink AuditSink) *AuditLogger {
	return &AuditLogger{enabled: enabled, sink: sink}
}

// AgentRequest describes a flow invocation to be audited.
type AgentRequest struct {
	RequestID   string
	SessionID   string
	Flow        string
	Prompt      string
	APIKey      string
	ToolCalls   []string
	ModelCalls  int
	Outcome     string
	ExecutionMs int64
}

// LogAgentRequest records an agent request event and forwards it to the sink.
func (a *AuditLogger) LogAgentRequest(ctx context.Context, req AgentRequest) {
	if !a.enabled {
		return
	}
	evt := AuditEvent{
		Timestamp:   time.Now().UTC(),
		RequestID:   req.RequestID,
		SessionID:   req.SessionID,
		Flow:        req.Flow,
		PromptHash:  HashID(req.Prompt),
		ToolCalls:   req.ToolCalls,
		ModelCalls:  req.ModelCalls,
		Outcome:     req.Outcome,
		ExecutionMs: req.ExecutionMs,
	}
	if req.APIKey != "" {
		evt.APIKeyHash = HashID(req.APIKey)
	}

	log.Info().
		Str("event", "agent_audit").
		Str("request_id", evt.RequestID).
		Str("session_id", evt.SessionID).
		Str("flow", evt.Flow).
		Str("prompt_hash", evt.PromptHash).
		Str("api_key_hash", evt.APIKeyHash).
		Strs("tool_calls", evt.ToolCalls).
		Int("model_calls", evt.ModelCalls).
		Str("outcome", evt.Outcome).
		Int64("execution_time_ms", evt.ExecutionMs).
		Msg("agent audit")

	if a.sink != nil {
		if err := a.sink.WriteAudit(ctx, evt); err != nil {
			log.Warn().Err(err).Str("request_id", evt.RequestID).Msg("audit sink write failed")
		}
	}
}

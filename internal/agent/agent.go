// Package agent runs one bounded tool-calling session against a language
// model: a first call, optional sequential tool execution, and a second call
// that summarises the tool results.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/tools"
	"github.com/tournaija/tournaija/internal/tracer"
)

// State is a step of the session state machine.
type State string

const (
	StateAwaitingFirstResponse State = "awaiting_first_response"
	StateToolsRequested        State = "tools_requested"
	StateExecutingTools        State = "executing_tools"
	StateAwaitingFinalResponse State = "awaiting_final_response"
	StateDone                  State = "done"
)

var (
	// ErrModel wraps every language-model transport failure.
	ErrModel = errors.New("language model call failed")
	// ErrMalformedOutput wraps model output that failed to parse or validate.
	ErrMalformedOutput = errors.New("malformed model output")
)

// GroundingClause is appended to every summary instruction.
const GroundingClause = "Base your answer only on the tool results in this conversation. " +
	"Do not invent hotels, prices, confirmation IDs or any other data that is not present in them. " +
	"If a tool reported an error, explain the problem to the user instead."

// Agent runs sessions. It holds no per-request state and is safe for
// concurrent use.
type Agent struct {
	client llm.Client
	now    func() time.Time
}

type Option func(*Agent)

// WithClock overrides the clock used for the date context and session ids.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

func New(client llm.Client, opts ...Option) *Agent {
	a := &Agent{client: client, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Request describes one tool-calling session.
type Request struct {
	// Role frames the model, e.g. "You are a hotel booking assistant for TourNaija."
	Role string
	// Instructions are flow-specific rules placed after the role framing.
	Instructions string
	Query        string
	History      Conversation
	Tools        *tools.Registry
	// SummaryPrompt instructs the second call; GroundingClause is appended.
	SummaryPrompt string
	// PrimaryTool names the tool whose first successful output is surfaced.
	PrimaryTool string
	SessionID   string
	MaxTokens   int
}

// Result is the outcome of a session.
type Result struct {
	SessionID     string
	Text          string
	PrimaryOutput any
	ToolResults   []tools.Result
	Transitions   []State
	Conversation  Conversation
	ModelCalls    int
	Usage         llm.Usage
}

// ToolCalled reports whether the model invoked name during the session.
func (r *Result) ToolCalled(name string) bool {
	for _, tr := range r.ToolResults {
		if tr.ToolName == name {
			return true
		}
	}
	return false
}

// ToolNames lists invoked tools in execution order.
func (r *Result) ToolNames() []string {
	names := make([]string, len(r.ToolResults))
	for i, tr := range r.ToolResults {
		names[i] = tr.ToolName
	}
	return names
}

func (r *Result) transition(s State) {
	r.Transitions = append(r.Transitions, s)
}

func (r *Result) addUsage(u llm.Usage) {
	r.ModelCalls++
	r.Usage.InputTokens += u.InputTokens
	r.Usage.OutputTokens += u.OutputTokens
}

// Run executes the session. It makes at most two model calls. On a model
// transport error the partial Result is returned together with an error
// wrapping ErrModel.
func (a *Agent) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{SessionID: req.SessionID}
	if res.SessionID == "" {
		res.SessionID = a.newSessionID()
	}

	ctx, span := tracer.StartSpan(ctx, "agent.run")
	defer span.End()
	span.SetAttributes(
		tracer.StringAttr("agent.session_id", res.SessionID),
		tracer.StringAttr("llm.provider", a.client.Name()),
		tracer.IntAttr("agent.tools", req.Tools.Len()),
	)

	userTurn := llm.Message{Role: llm.RoleUser, Text: req.Query}

	res.transition(StateAwaitingFirstResponse)
	first, err := a.client.Generate(ctx, &llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Text: a.instruction(req)}},
		Tools:     req.Tools.Specs(),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return res, fmt.Errorf("%w: first call: %w", ErrModel, err)
	}
	res.addUsage(first.Usage)
	logIteration(res, 0, first)

	res.Conversation = req.History.Append(userTurn, first.Message())

	if len(first.ToolCalls) == 0 {
		res.Text = strings.TrimSpace(first.Text)
		res.transition(StateDone)
		tracer.SetOK(span)
		return res, nil
	}

	res.transition(StateToolsRequested)
	res.transition(StateExecutingTools)
	exec := tools.NewExecutor(req.Tools)
	toolTurn := llm.Message{Role: llm.RoleTool}
	for _, call := range first.ToolCalls {
		r := exec.Execute(ctx, call)
		res.ToolResults = append(res.ToolResults, r)
		toolTurn.ToolResults = append(toolTurn.ToolResults, r.ToolResult())
		if res.PrimaryOutput == nil && r.OK() && r.ToolName == req.PrimaryTool {
			res.PrimaryOutput = r.Output
		}
	}
	res.Conversation = res.Conversation.Append(toolTurn)

	res.transition(StateAwaitingFinalResponse)
	final, err := a.client.Generate(ctx, &llm.Request{
		System:    summaryInstruction(req.SummaryPrompt),
		Messages:  []llm.Message{userTurn, first.Message(), toolTurn},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return res, fmt.Errorf("%w: summary call: %w", ErrModel, err)
	}
	res.addUsage(final.Usage)
	logIteration(res, 1, final)

	res.Conversation = res.Conversation.Append(final.Message())
	res.Text = strings.TrimSpace(final.Text)
	res.transition(StateDone)
	tracer.SetOK(span)
	return res, nil
}

// instruction builds the single first-call prompt: role framing, date
// context, flow rules, serialized history and the raw query.
func (a *Agent) instruction(req Request) string {
	var sb strings.Builder
	if req.Role != "" {
		sb.WriteString(strings.TrimSpace(req.Role) + "\n\n")
	}
	sb.WriteString("Today's date is " + a.now().Format("Monday, 2 January 2006") + ".\n\n")
	if req.Instructions != "" {
		sb.WriteString(strings.TrimSpace(req.Instructions) + "\n\n")
	}
	sb.WriteString("Conversation History:\n" + req.History.String() + "\n\n")
	sb.WriteString("User Query: " + req.Query)
	return sb.String()
}

func summaryInstruction(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return GroundingClause
	}
	return prompt + "\n\n" + GroundingClause
}

// StructuredRequest is a single model call that must return JSON conforming
// to Schema. No tools are attached.
type StructuredRequest struct {
	Name      string
	Prompt    string
	Schema    *schema.Schema
	MaxTokens int
}

// StructuredResult holds the validated value, in schema-normalized form.
type StructuredResult struct {
	Value any
	Text  string
	Usage llm.Usage
}

// Generate runs a structured single call. Transport failures wrap ErrModel;
// output that does not parse or validate wraps ErrMalformedOutput together
// with the underlying *schema.ValidationError when there is one.
func (a *Agent) Generate(ctx context.Context, req StructuredRequest) (*StructuredResult, error) {
	ctx, span := tracer.StartSpan(ctx, "agent.generate")
	defer span.End()
	span.SetAttributes(tracer.StringAttr("flow", req.Name), tracer.StringAttr("llm.provider", a.client.Name()))

	prompt := "Today's date is " + a.now().Format("Monday, 2 January 2006") + ".\n\n" + strings.TrimSpace(req.Prompt)
	resp, err := a.client.Generate(ctx, &llm.Request{
		Messages:       []llm.Message{{Role: llm.RoleUser, Text: prompt}},
		ResponseSchema: req.Schema,
		MaxTokens:      req.MaxTokens,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("%w: %s: %w", ErrModel, req.Name, err)
	}
	out := &StructuredResult{Text: resp.Text, Usage: resp.Usage}

	raw, err := schema.ParseJSON(resp.Text)
	if err != nil {
		tracer.RecordError(span, err)
		return out, fmt.Errorf("%w: %s: %w", ErrMalformedOutput, req.Name, err)
	}
	v, err := schema.Validate(req.Schema, raw)
	if err != nil {
		tracer.RecordError(span, err)
		return out, fmt.Errorf("%w: %s: %w", ErrMalformedOutput, req.Name, err)
	}
	out.Value = v
	tracer.SetOK(span)
	log.Debug().
		Str("flow", req.Name).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Msg("structured generation")
	return out, nil
}

func (a *Agent) newSessionID() string {
	return ulid.MustNew(ulid.Timestamp(a.now()), ulid.DefaultEntropy()).String()
}

func logIteration(res *Result, iter int, resp *llm.Response) {
	preview := resp.Text
	if len(preview) > 80 {
		preview = preview[:80]
	}
	log.Debug().
		Str("session_id", res.SessionID).
		Int("iter", iter).
		Str("stop_reason", resp.StopReason).
		Str("text_preview", preview).
		Int("tool_calls", len(resp.ToolCalls)).
		Msg("agent iteration")
}

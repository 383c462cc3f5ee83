// Package llm is the provider-neutral language-model client used by agent
// sessions. Provider adapters translate Request/Response to the Gemini,
// Anthropic and OpenAI wire APIs.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tournaija/tournaija/internal/schema"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model. Arguments are the raw,
// unvalidated JSON the model produced.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult answers one ToolCall.
type ToolResult struct {
	CallID  string          `json:"callId"`
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content"`
	IsError bool            `json:"isError,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role        Role         `json:"role"`
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"toolCalls,omitempty"`
	ToolResults []ToolResult `json:"toolResults,omitempty"`

	// Raw is the provider-native form of an assistant turn, replayed verbatim
	// when the same provider is called again. Never serialized.
	Raw any `json:"-"`
}

// ToolSpec declares a tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  *schema.Schema
}

// Request is one model call.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec

	// ResponseSchema asks the model for a single JSON value of this shape.
	ResponseSchema *schema.Schema
	MaxTokens      int
}

type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Response is what the model returned: text, tool calls, or both.
type Response struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
	Raw        any
}

// Message returns the response as an assistant turn.
func (r *Response) Message() Message {
	return Message{Role: RoleAssistant, Text: r.Text, ToolCalls: r.ToolCalls, Raw: r.Raw}
}

// Client sends one request to a language model. Implementations must be safe
// for concurrent use.
type Client interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	Name() string
}

const defaultMaxTokens = 4096

func maxTokens(req *Request, fallback int) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if fallback > 0 {
		return fallback
	}
	return defaultMaxTokens
}

// jsonInstruction is appended to the system prompt for providers without a
// native response-schema option.
func jsonInstruction(s *schema.Schema) string {
	doc, err := schema.DescribeJSON(s)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n\nRespond with a single JSON value and nothing else. It must conform to this JSON Schema:\n%s", doc)
}

func withJSONInstruction(system string, s *schema.Schema) string {
	if s == nil {
		return system
	}
	return strings.TrimSpace(system + jsonInstruction(s))
}

// argumentsOrEmpty guarantees a JSON object for providers that omit empty
// tool arguments.
func argumentsOrEmpty(raw []byte) json.RawMessage {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(raw)
}

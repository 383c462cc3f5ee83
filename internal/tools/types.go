// Package tools defines the capabilities the model may invoke, the closed
// registry they are dispatched from and the executor that runs them behind
// schema validation.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/schema"
)

// Names of the tools the model may call.
const (
	NameSearchHotels  = "searchHotels"
	NameBookHotel     = "bookHotel"
	NameBookingStatus = "getBookingStatus"
)

// Tool represents a callable function the LLM can invoke. Execute receives the
// input already validated against InputSchema; its return value is validated
// against OutputSchema before anyone reads it.
type Tool struct {
	Name         string
	Description  string
	InputSchema  *schema.Schema
	OutputSchema *schema.Schema
	Execute      func(ctx context.Context, input any) (any, error)
}

// Spec is the model-facing declaration of t.
func (t Tool) Spec() llm.ToolSpec {
	return llm.ToolSpec{Name: t.Name, Description: t.Description, Parameters: t.InputSchema}
}

// New builds a Tool around a typed implementation.
func New[In, Out any](name, description string, in, out *schema.Schema, impl func(ctx context.Context, input In) (Out, error)) Tool {
	return Tool{
		Name:         name,
		Description:  description,
		InputSchema:  in,
		OutputSchema: out,
		Execute: func(ctx context.Context, input any) (any, error) {
			var typed In
			if err := remarshal(input, &typed); err != nil {
				return nil, fmt.Errorf("%w: %v", errDecodeInput, err)
			}
			return impl(ctx, typed)
		},
	}
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// Failure is an implementation error whose code and message are safe to show
// the model and, through it, the user.
type Failure struct {
	Code    string
	Message string
}

func (f *Failure) Error() string { return f.Code + ": " + f.Message }

// ErrorCode classifies an ErrorMarker.
type ErrorCode string

const (
	CodeUnknownTool   ErrorCode = "unknown_tool"
	CodeInvalidInput  ErrorCode = "invalid_input"
	CodeInvalidOutput ErrorCode = "invalid_output"
	CodeUnavailable   ErrorCode = "unavailable"
)

// UnavailableMessage is the only description of an infrastructure failure the
// model ever sees.
const UnavailableMessage = "The travel service is currently unavailable. Please try again later."

// ErrorMarker stands in for a tool output when the call could not produce a
// valid one.
type ErrorMarker struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Issues  []schema.Issue `json:"issues,omitempty"`
}

func (m *ErrorMarker) MarshalJSON() ([]byte, error) {
	out := map[string]any{"error": true, "code": m.Code, "message": m.Message}
	if len(m.Issues) > 0 {
		out["issues"] = m.Issues
	}
	return json.Marshal(out)
}

// Result is the outcome of one tool call: a validated output or an error marker.
type Result struct {
	CallID   string       `json:"callId"`
	ToolName string       `json:"toolName"`
	Output   any          `json:"output,omitempty"`
	Err      *ErrorMarker `json:"error,omitempty"`
}

func (r Result) OK() bool { return r.Err == nil }

// ToolResult converts r into the conversation form sent back to the model.
func (r Result) ToolResult() llm.ToolResult {
	var payload any = r.Output
	if r.Err != nil {
		payload = r.Err
	}
	content, err := json.Marshal(payload)
	if err != nil {
		content, _ = json.Marshal(&ErrorMarker{Code: CodeInvalidOutput, Message: "tool output could not be encoded"})
		return llm.ToolResult{CallID: r.CallID, Name: r.ToolName, Content: content, IsError: true}
	}
	return llm.ToolResult{CallID: r.CallID, Name: r.ToolName, Content: content, IsError: r.Err != nil}
}

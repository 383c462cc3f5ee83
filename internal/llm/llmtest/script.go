// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tournaija/tournaija/internal/llm"
)

// ErrExhausted is returned once every scripted step has been consumed.
var ErrExhausted = errors.New("llmtest: script exhausted")

// Step is one scripted model reply.
type Step struct {
	Response *llm.Response
	Err      error
	Func     func(req *llm.Request) (*llm.Response, error)
}

// Script replays its steps in order and records every request it receives.
type Script struct {
	mu       sync.Mutex
	steps    []Step
	requests []*llm.Request
}

func New(steps ...Step) *Script {
	return &Script{steps: steps}
}

func (s *Script) Name() string { return "llmtest" }

func (s *Script) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, cloneRequest(req))
	if len(s.steps) == 0 {
		s.mu.Unlock()
		return nil, ErrExhausted
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case step.Func != nil:
		return step.Func(req)
	case step.Err != nil:
		return nil, step.Err
	case step.Response != nil:
		resp := *step.Response
		return &resp, nil
	}
	return &llm.Response{}, nil
}

// Requests returns the requests received so far.
func (s *Script) Requests() []*llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*llm.Request(nil), s.requests...)
}

// Calls is the number of Generate calls made so far.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Remaining is the number of unconsumed steps.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

// Reply scripts a plain-text answer.
func Reply(text string) Step {
	return Step{Response: &llm.Response{Text: text, StopReason: "end_turn"}}
}

// JSON scripts a text answer holding v encoded as JSON. Strings are used
// verbatim so tests can script malformed output.
func JSON(v any) Step {
	if s, ok := v.(string); ok {
		return Reply(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("llmtest: encode scripted JSON: %v", err))
	}
	return Reply(string(b))
}

// CallTools scripts a reply requesting tool calls.
func CallTools(text string, calls ...llm.ToolCall) Step {
	return Step{Response: &llm.Response{Text: text, ToolCalls: calls, StopReason: "tool_use"}}
}

// Fail scripts a transport error.
func Fail(err error) Step {
	return Step{Err: err}
}

// Call builds a tool call with args encoded as JSON. A json.RawMessage or
// string is used verbatim.
func Call(id, name string, args any) llm.ToolCall {
	var raw json.RawMessage
	switch a := args.(type) {
	case json.RawMessage:
		raw = a
	case string:
		raw = json.RawMessage(a)
	default:
		b, err := json.Marshal(a)
		if err != nil {
			panic(fmt.Sprintf("llmtest: encode tool args: %v", err))
		}
		raw = b
	}
	return llm.ToolCall{ID: id, Name: name, Arguments: raw}
}

func cloneRequest(req *llm.Request) *llm.Request {
	if req == nil {
		return nil
	}
	c := *req
	c.Messages = append([]llm.Message(nil), req.Messages...)
	c.Tools = append([]llm.ToolSpec(nil), req.Tools...)
	return &c
}

var _ llm.Client = (*Script)(nil)

package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tournaija/tournaija/internal/schema"
)

const DefaultAnthropicModel = "claude-sonnet-4-6"

// AnthropicClient wraps the Anthropic Messages API (or a compatible provider
// reached through baseURL).
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

func NewAnthropicClient(apiKey, model, baseURL string, maxTokens int) *AnthropicClient {
	if model == "" {
		model = DefaultAnthropicModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (a *AnthropicClient) Name() string { return "anthropic:" + a.model }

func (a *AnthropicClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(a.model)),
		MaxTokens: anthropic.F(int64(maxTokens(req, a.maxTokens))),
		Messages:  anthropic.F(toAnthropicMessages(req.Messages)),
	}
	if len(req.Tools) > 0 {
		toolParams := make([]anthropic.ToolUnionUnionParam, len(req.Tools))
		for i, t := range req.Tools {
			toolParams[i] = anthropic.ToolParam{
				Name:        anthropic.String(t.Name),
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.F[interface{}](schema.Describe(t.Parameters)),
			}
		}
		params.Tools = anthropic.F(toolParams)
	}
	if system := withJSONInstruction(req.System, req.ResponseSchema); system != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(system),
		})
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	out := &Response{
		StopReason: string(resp.StopReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		Raw: resp.ToParam(),
	}
	for _, block := range resp.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			out.Text += b.Text
		case anthropic.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: argumentsOrEmpty(b.Input),
			})
		}
	}
	return out, nil
}

func toAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == RoleAssistant {
			if raw, ok := msg.Raw.(anthropic.MessageParam); ok {
				out = append(out, raw)
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(nonEmpty(msg.Text))))
			continue
		}

		var blocks []anthropic.ContentBlockParamUnion
		for _, tr := range msg.ToolResults {
			blocks = append(blocks, anthropic.NewToolResultBlock(tr.CallID, string(tr.Content), tr.IsError))
		}
		if msg.Text != "" || len(blocks) == 0 {
			blocks = append(blocks, anthropic.NewTextBlock(nonEmpty(msg.Text)))
		}
		out = append(out, anthropic.NewUserMessage(blocks...))
	}
	return out
}

func nonEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}

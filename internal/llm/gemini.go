package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tournaija/tournaija/internal/schema"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient talks to Google Gemini with native function calling and JSON
// response schemas.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiClient{client: client, model: model, maxTokens: maxTokens}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

func (g *GeminiClient) Close() error { return g.client.Close() }

func (g *GeminiClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("gemini: request has no messages")
	}

	m := g.client.GenerativeModel(g.model)
	m.SetMaxOutputTokens(int32(maxTokens(req, g.maxTokens)))
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toGenaiSchema(t.Parameters),
			}
		}
		m.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	if req.ResponseSchema != nil {
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = toGenaiSchema(req.ResponseSchema)
	}

	contents, err := toGenaiContents(req.Messages)
	if err != nil {
		return nil, err
	}
	cs := m.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}

	cand := resp.Candidates[0]
	out := &Response{StopReason: cand.FinishReason.String()}
	for _, part := range cand.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Text += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini: encode function call args: %w", err)
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("call_%d", len(out.ToolCalls)+1),
				Name:      p.Name,
				Arguments: argumentsOrEmpty(args),
			})
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func toGenaiContents(msgs []Message) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		c := &genai.Content{Role: "user"}
		if msg.Role == RoleAssistant {
			c.Role = "model"
		}
		if msg.Text != "" {
			c.Parts = append(c.Parts, genai.Text(msg.Text))
		}
		for _, tc := range msg.ToolCalls {
			args := map[string]any{}
			if len(tc.Arguments) > 0 {
				if err := json.Unmarshal(tc.Arguments, &args); err != nil {
					return nil, fmt.Errorf("gemini: decode args of %s: %w", tc.Name, err)
				}
			}
			c.Parts = append(c.Parts, genai.FunctionCall{Name: tc.Name, Args: args})
		}
		for _, tr := range msg.ToolResults {
			c.Parts = append(c.Parts, genai.FunctionResponse{Name: tr.Name, Response: functionResponse(tr)})
		}
		if len(c.Parts) == 0 {
			c.Parts = append(c.Parts, genai.Text(" "))
		}
		out = append(out, c)
	}
	return out, nil
}

// functionResponse wraps a tool result in the object Gemini expects.
func functionResponse(tr ToolResult) map[string]any {
	var v any
	if err := json.Unmarshal(tr.Content, &v); err != nil {
		v = string(tr.Content)
	}
	key := "output"
	if tr.IsError {
		key = "error"
	}
	return map[string]any{key: v}
}

func toGenaiSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}
	out := &genai.Schema{Description: s.Description, Nullable: s.Nullable}
	switch s.Type {
	case schema.TypeString:
		out.Type = genai.TypeString
		if len(s.Enum) > 0 {
			out.Format = "enum"
			out.Enum = s.Enum
		} else if s.Format == schema.FormatDateTime {
			out.Format = s.Format
		}
	case schema.TypeNumber:
		out.Type = genai.TypeNumber
	case schema.TypeInteger:
		out.Type = genai.TypeInteger
	case schema.TypeBoolean:
		out.Type = genai.TypeBoolean
	case schema.TypeArray:
		out.Type = genai.TypeArray
		out.Items = toGenaiSchema(s.Items)
	case schema.TypeObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Fields))
		for _, f := range s.Fields {
			out.Properties[f.Name] = toGenaiSchema(f.Schema)
		}
		out.Required = s.RequiredFields()
	}
	return out
}

package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/llm/llmtest"
	"github.com/tournaija/tournaija/internal/schema"
)

func searchSpec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "searchHotels",
		Description: "Search hotels by city.",
		Parameters: schema.Object("SearchHotelsInput", "",
			schema.Required("city", schema.String("City name.").NonEmpty()),
		),
	}
}

func TestDefaultIsInitOnce(t *testing.T) {
	llm.ResetDefault()
	t.Cleanup(llm.ResetDefault)

	_, err := llm.Default()
	require.ErrorIs(t, err, llm.ErrNotInitialized)

	first := llmtest.New()
	require.NoError(t, llm.SetDefault(first))
	require.ErrorIs(t, llm.SetDefault(llmtest.New()), llm.ErrAlreadyInitialized)

	got, err := llm.Default()
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("quota exceeded")
	script := llmtest.New(llmtest.Fail(boom), llmtest.Fail(boom), llmtest.Reply("never reached"))
	b := llm.NewBreakerClient(script, llm.BreakerConfig{MaxFailures: 2})

	for i := 0; i < 2; i++ {
		_, err := b.Generate(context.Background(), &llm.Request{})
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Generate(context.Background(), &llm.Request{})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, script.Calls(), "an open breaker must not reach the provider")
}

func TestToGenaiSchema(t *testing.T) {
	s := schema.Object("Input", "desc",
		schema.Required("city", schema.String("City.")),
		schema.Optional("budget", schema.String("").OneOf("low", "high")),
		schema.Optional("days", schema.Array(schema.Integer(""), "")),
	)
	g := llm.ToGenaiSchema(s)
	assert.Equal(t, genai.TypeObject, g.Type)
	assert.Equal(t, []string{"city"}, g.Required)
	assert.Equal(t, []string{"low", "high"}, g.Properties["budget"].Enum)
	assert.Equal(t, genai.TypeArray, g.Properties["days"].Type)
	assert.Equal(t, genai.TypeInteger, g.Properties["days"].Items.Type)
}

func TestOpenAIClientToolRoundTrip(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"searchHotels","arguments":"{\"city\":\"Lagos\"}"}}]}}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	}))
	defer srv.Close()

	c := llm.NewOpenAIClient("test-key", "", srv.URL+"/v1", 0)
	resp, err := c.Generate(context.Background(), &llm.Request{
		System:   "You are a hotel assistant.",
		Messages: []llm.Message{{Role: llm.RoleUser, Text: "Hotels in Lagos"}},
		Tools:    []llm.ToolSpec{searchSpec()},
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "searchHotels", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"city":"Lagos"}`, string(resp.ToolCalls[0].Arguments))
	assert.Equal(t, 10, resp.Usage.InputTokens)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	tools := got["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "searchHotels", fn["name"])
}

func TestOpenAIClientStructuredOutput(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c2","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"response\":\"Hello\"}"}}]}`)
	}))
	defer srv.Close()

	c := llm.NewOpenAIClient("test-key", "", srv.URL+"/v1", 0)
	resp, err := c.Generate(context.Background(), &llm.Request{
		Messages:       []llm.Message{{Role: llm.RoleUser, Text: "hi"}},
		ResponseSchema: schema.Object("ChatOutput", "", schema.Required("response", schema.String(""))),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"response":"Hello"}`, resp.Text)

	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	system := got["messages"].([]any)[0].(map[string]any)
	assert.Contains(t, system["content"], "JSON Schema")
}

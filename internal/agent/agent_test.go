package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournaija/tournaija/internal/agent"
	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/llm/llmtest"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/service"
	"github.com/tournaija/tournaija/internal/tools"
)

var today = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newAgent(client llm.Client) *agent.Agent {
	return agent.New(client, agent.WithClock(func() time.Time { return today }))
}

type countingSearcher struct {
	calls  int
	cities []string
	err    error
}

func (s *countingSearcher) SearchHotels(ctx context.Context, city string) ([]service.Hotel, error) {
	s.calls++
	s.cities = append(s.cities, city)
	if s.err != nil {
		return nil, s.err
	}
	return service.NewDefaultStaticHotels().SearchHotels(ctx, city)
}

func hotelRequest(searcher service.HotelSearcher, query string) agent.Request {
	return agent.Request{
		Role:          "You are an AI assistant for a travel website.",
		Instructions:  "Use searchHotels when the user wants hotels in a city.",
		Query:         query,
		Tools:         tools.MustRegistry(tools.SearchHotels(searcher)),
		SummaryPrompt: "Summarize the hotels.",
		PrimaryTool:   tools.NameSearchHotels,
	}
}

func TestRunWithoutTools(t *testing.T) {
	stub := llmtest.New(llmtest.Reply("Which city would you like to stay in?"))
	searcher := &countingSearcher{}

	res, err := newAgent(stub).Run(context.Background(), hotelRequest(searcher, "find me a hotel"))
	require.NoError(t, err)

	assert.Equal(t, "Which city would you like to stay in?", res.Text)
	assert.Equal(t, []agent.State{agent.StateAwaitingFirstResponse, agent.StateDone}, res.Transitions)
	assert.Equal(t, 1, res.ModelCalls)
	assert.Zero(t, searcher.calls)
	assert.Nil(t, res.PrimaryOutput)
	assert.NotEmpty(t, res.SessionID)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	prompt := reqs[0].Messages[0].Text
	assert.Contains(t, prompt, "You are an AI assistant for a travel website.")
	assert.Contains(t, prompt, "Today's date is Monday, 19 October 2026.")
	assert.Contains(t, prompt, "No history yet.")
	assert.Contains(t, prompt, "User Query: find me a hotel")
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, tools.NameSearchHotels, reqs[0].Tools[0].Name)
}

func TestRunWithToolCall(t *testing.T) {
	stub := llmtest.New(
		llmtest.CallTools("", llmtest.Call("call_1", tools.NameSearchHotels, map[string]any{"city": "Lagos"})),
		llmtest.Reply("Here are three great hotels in Lagos."),
	)
	searcher := &countingSearcher{}

	res, err := newAgent(stub).Run(context.Background(), hotelRequest(searcher, "hotels in Lagos"))
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, []string{"Lagos"}, searcher.cities)
	assert.Equal(t, "Here are three great hotels in Lagos.", res.Text)
	assert.Equal(t, []agent.State{
		agent.StateAwaitingFirstResponse,
		agent.StateToolsRequested,
		agent.StateExecutingTools,
		agent.StateAwaitingFinalResponse,
		agent.StateDone,
	}, res.Transitions)
	assert.Equal(t, 2, res.ModelCalls)
	assert.NotNil(t, res.PrimaryOutput)
	assert.True(t, res.ToolCalled(tools.NameSearchHotels))

	second := stub.Requests()[1]
	assert.Empty(t, second.Tools, "summary call must not offer tools")
	assert.Contains(t, second.System, "Summarize the hotels.")
	assert.Contains(t, second.System, agent.GroundingClause)
	require.Len(t, second.Messages, 3)
	assert.Equal(t, llm.RoleUser, second.Messages[0].Role)
	assert.Equal(t, "hotels in Lagos", second.Messages[0].Text)
	assert.Equal(t, llm.RoleAssistant, second.Messages[1].Role)
	require.Len(t, second.Messages[1].ToolCalls, 1)
	assert.Equal(t, llm.RoleTool, second.Messages[2].Role)
	require.Len(t, second.Messages[2].ToolResults, 1)
	assert.Equal(t, "call_1", second.Messages[2].ToolResults[0].CallID)
	assert.False(t, second.Messages[2].ToolResults[0].IsError)
}

func TestRunExecutesToolsSequentiallyInOrder(t *testing.T) {
	stub := llmtest.New(
		llmtest.CallTools("",
			llmtest.Call("a", tools.NameSearchHotels, map[string]any{"city": "Abuja"}),
			llmtest.Call("b", "flyToTheMoon", map[string]any{}),
			llmtest.Call("c", tools.NameSearchHotels, map[string]any{"city": "Kano"}),
		),
		llmtest.Reply("done"),
	)
	searcher := &countingSearcher{}

	res, err := newAgent(stub).Run(context.Background(), hotelRequest(searcher, "Abuja and Kano"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Abuja", "Kano"}, searcher.cities)
	require.Len(t, res.ToolResults, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{res.ToolResults[0].CallID, res.ToolResults[1].CallID, res.ToolResults[2].CallID})
	require.NotNil(t, res.ToolResults[1].Err)
	assert.Equal(t, tools.CodeUnknownTool, res.ToolResults[1].Err.Code)

	// primary output is the first successful searchHotels output
	out := res.PrimaryOutput.(map[string]any)["hotels"].([]any)
	assert.Contains(t, out[0].(map[string]any)["hotelId"], "ng-abv-")
}

func TestRunToolTransportErrorStillSummarizes(t *testing.T) {
	stub := llmtest.New(
		llmtest.CallTools("", llmtest.Call("call_1", tools.NameSearchHotels, map[string]any{"city": "Lagos"})),
		llmtest.Reply("Sorry, the hotel service is unavailable right now."),
	)
	searcher := &countingSearcher{err: errors.New("connection reset by peer")}

	res, err := newAgent(stub).Run(context.Background(), hotelRequest(searcher, "hotels in Lagos"))
	require.NoError(t, err)

	require.Len(t, res.ToolResults, 1)
	require.NotNil(t, res.ToolResults[0].Err)
	assert.Equal(t, tools.CodeUnavailable, res.ToolResults[0].Err.Code)
	assert.Nil(t, res.PrimaryOutput)
	assert.Equal(t, "Sorry, the hotel service is unavailable right now.", res.Text)

	toolTurn := stub.Requests()[1].Messages[2]
	assert.True(t, toolTurn.ToolResults[0].IsError)
	var marker map[string]any
	require.NoError(t, json.Unmarshal(toolTurn.ToolResults[0].Content, &marker))
	assert.Equal(t, tools.UnavailableMessage, marker["message"])
}

func TestRunModelErrors(t *testing.T) {
	boom := errors.New("quota exceeded")

	t.Run("first call", func(t *testing.T) {
		stub := llmtest.New(llmtest.Fail(boom))
		res, err := newAgent(stub).Run(context.Background(), hotelRequest(&countingSearcher{}, "hotels in Lagos"))
		require.Error(t, err)
		assert.ErrorIs(t, err, agent.ErrModel)
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, res)
		assert.Empty(t, res.Text)
	})

	t.Run("summary call keeps tool results", func(t *testing.T) {
		stub := llmtest.New(
			llmtest.CallTools("", llmtest.Call("call_1", tools.NameSearchHotels, map[string]any{"city": "Lagos"})),
			llmtest.Fail(boom),
		)
		res, err := newAgent(stub).Run(context.Background(), hotelRequest(&countingSearcher{}, "hotels in Lagos"))
		require.ErrorIs(t, err, agent.ErrModel)
		assert.NotNil(t, res.PrimaryOutput)
		assert.Equal(t, 2, stub.Calls())
	})
}

func TestRunNeverExceedsTwoModelCalls(t *testing.T) {
	// the summary reply asks for yet another tool; it must be ignored
	stub := llmtest.New(
		llmtest.CallTools("", llmtest.Call("1", tools.NameSearchHotels, map[string]any{"city": "Lagos"})),
		llmtest.CallTools("Let me search again", llmtest.Call("2", tools.NameSearchHotels, map[string]any{"city": "Ibadan"})),
		llmtest.Reply("unreachable"),
	)
	searcher := &countingSearcher{}
	res, err := newAgent(stub).Run(context.Background(), hotelRequest(searcher, "hotels"))
	require.NoError(t, err)
	assert.Equal(t, 2, stub.Calls())
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, "Let me search again", res.Text)
}

func TestRunIncludesHistory(t *testing.T) {
	stub := llmtest.New(llmtest.Reply("What is your email address?"))
	history := agent.Conversation{
		{Role: llm.RoleUser, Text: "I want to book Eko Hotel"},
		{Role: llm.RoleAssistant, Text: "Sure, what's your full name?"},
	}
	req := hotelRequest(&countingSearcher{}, "Ada Obi")
	req.History = history

	res, err := newAgent(stub).Run(context.Background(), req)
	require.NoError(t, err)

	prompt := stub.Requests()[0].Messages[0].Text
	assert.Contains(t, prompt, "user: I want to book Eko Hotel")
	assert.Contains(t, prompt, "assistant: Sure, what's your full name?")
	assert.NotContains(t, prompt, "No history yet.")
	assert.Len(t, res.Conversation, 4)
	assert.Len(t, history, 2, "caller history must not be modified")
}

var answerSchema = schema.Object("Answer", "",
	schema.Required("response", schema.String("").NonEmpty()),
	schema.Required("score", schema.Number("").Min(0)),
)

func TestGenerate(t *testing.T) {
	stub := llmtest.New(llmtest.JSON("```json\n{\"response\":\"Jollof is a rice dish.\",\"score\":12345678.91}\n```"))
	out, err := newAgent(stub).Generate(context.Background(), agent.StructuredRequest{
		Name:   "chat",
		Prompt: "what is jollof?",
		Schema: answerSchema,
	})
	require.NoError(t, err)

	var decoded struct {
		Response string  `json:"response"`
		Score    float64 `json:"score"`
	}
	require.NoError(t, schema.Decode(answerSchema, out.Value, &decoded))
	assert.Equal(t, "Jollof is a rice dish.", decoded.Response)
	assert.Equal(t, 12345678.91, decoded.Score)

	req := stub.Requests()[0]
	assert.Same(t, answerSchema, req.ResponseSchema)
	assert.Empty(t, req.Tools)
}

func TestGenerateMalformedOutput(t *testing.T) {
	for name, text := range map[string]string{
		"prose":         "I'm not sure, sorry!",
		"schema breach": `{"response":"","score":-1}`,
	} {
		t.Run(name, func(t *testing.T) {
			stub := llmtest.New(llmtest.JSON(text))
			out, err := newAgent(stub).Generate(context.Background(), agent.StructuredRequest{Name: "chat", Schema: answerSchema})
			require.Error(t, err)
			assert.ErrorIs(t, err, agent.ErrMalformedOutput)
			assert.NotErrorIs(t, err, agent.ErrModel)
			require.NotNil(t, out)
			assert.Nil(t, out.Value)
		})
	}
}

func TestGenerateTransportError(t *testing.T) {
	stub := llmtest.New(llmtest.Fail(errors.New("timeout")))
	_, err := newAgent(stub).Generate(context.Background(), agent.StructuredRequest{Name: "chat", Schema: answerSchema})
	assert.ErrorIs(t, err, agent.ErrModel)
}

func TestConversationString(t *testing.T) {
	assert.Equal(t, "No history yet.", agent.Conversation(nil).String())

	c := agent.Conversation{
		{Role: llm.RoleUser, Text: "hotels in Lagos"},
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "1", Name: "searchHotels"}}},
		{Role: llm.RoleTool, ToolResults: []llm.ToolResult{{CallID: "1", Name: "searchHotels", Content: json.RawMessage(`{"hotels":[]}`)}}},
	}
	assert.Equal(t,
		"user: hotels in Lagos\nassistant: [called searchHotels]\ntool (searchHotels): {\"hotels\":[]}",
		c.String())
}

package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournaija/tournaija/internal/llm/llmtest"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/security"
	"github.com/tournaija/tournaija/internal/service"
	"github.com/tournaija/tournaija/internal/tools"
)

type searcherFunc func(ctx context.Context, city string) ([]service.Hotel, error)

func (f searcherFunc) SearchHotels(ctx context.Context, city string) ([]service.Hotel, error) {
	return f(ctx, city)
}

func newExecutor(t *testing.T, ts ...tools.Tool) *tools.Executor {
	t.Helper()
	r, err := tools.NewRegistry(ts...)
	require.NoError(t, err)
	return tools.NewExecutor(r)
}

func TestSearchHotelsTool(t *testing.T) {
	var gotCity string
	calls := 0
	search := tools.SearchHotels(searcherFunc(func(_ context.Context, city string) ([]service.Hotel, error) {
		calls++
		gotCity = city
		return service.NewDefaultStaticHotels().SearchHotels(context.Background(), city)
	}))
	ex := newExecutor(t, search)

	res := ex.Execute(context.Background(), llmtest.Call("c1", tools.NameSearchHotels, map[string]any{"city": " Lagos "}))
	require.True(t, res.OK(), "%+v", res.Err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Lagos", gotCity)
	assert.Equal(t, "c1", res.CallID)

	var out tools.SearchHotelsOutput
	require.NoError(t, schema.Decode(tools.SearchHotelsOutputSchema, res.Output, &out))
	assert.NotEmpty(t, out.Hotels)
}

func TestSearchHotelsNilListBecomesEmpty(t *testing.T) {
	ex := newExecutor(t, tools.SearchHotels(searcherFunc(func(context.Context, string) ([]service.Hotel, error) {
		return nil, nil
	})))
	res := ex.Execute(context.Background(), llmtest.Call("c1", tools.NameSearchHotels, `{"city":"Atlantis"}`))
	require.True(t, res.OK(), "%+v", res.Err)
	content := res.ToolResult().Content
	assert.JSONEq(t, `{"hotels":[]}`, string(content))
}

func TestExecutorUnknownTool(t *testing.T) {
	ex := newExecutor(t, tools.SearchHotels(service.NewDefaultStaticHotels()))
	res := ex.Execute(context.Background(), llmtest.Call("c9", "deleteDatabase", `{}`))
	require.False(t, res.OK())
	assert.Equal(t, tools.CodeUnknownTool, res.Err.Code)

	tr := res.ToolResult()
	assert.True(t, tr.IsError)
	var marker map[string]any
	require.NoError(t, json.Unmarshal(tr.Content, &marker))
	assert.Equal(t, true, marker["error"])
	assert.Equal(t, "unknown_tool", marker["code"])
}

func TestExecutorInvalidInputSkipsImplementation(t *testing.T) {
	calls := 0
	ex := newExecutor(t, tools.SearchHotels(searcherFunc(func(context.Context, string) ([]service.Hotel, error) {
		calls++
		return nil, nil
	})))

	for _, args := range []string{`{}`, `{"city":""}`, `{"city":42}`, `not json`, ``} {
		res := ex.Execute(context.Background(), llmtest.Call("c1", tools.NameSearchHotels, args))
		require.False(t, res.OK(), args)
		assert.Equal(t, tools.CodeInvalidInput, res.Err.Code, args)
	}
	assert.Zero(t, calls, "implementation must not run on invalid input")

	res := ex.Execute(context.Background(), llmtest.Call("c1", tools.NameSearchHotels, `{}`))
	require.NotEmpty(t, res.Err.Issues)
	assert.Equal(t, "city", res.Err.Issues[0].Field)
}

func TestExecutorHidesInfrastructureErrors(t *testing.T) {
	ex := newExecutor(t, tools.SearchHotels(searcherFunc(func(context.Context, string) ([]service.Hotel, error) {
		return nil, errors.New("dial tcp 10.0.0.7:443: connection refused")
	})))
	res := ex.Execute(context.Background(), llmtest.Call("c1", tools.NameSearchHotels, `{"city":"Lagos"}`))
	require.False(t, res.OK())
	assert.Equal(t, tools.CodeUnavailable, res.Err.Code)
	assert.Equal(t, tools.UnavailableMessage, res.Err.Message)
	assert.NotContains(t, string(res.ToolResult().Content), "10.0.0.7")
}

func TestExecutorRecoversPanics(t *testing.T) {
	ex := newExecutor(t, tools.SearchHotels(searcherFunc(func(context.Context, string) ([]service.Hotel, error) {
		panic("boom")
	})))
	res := ex.Execute(context.Background(), llmtest.Call("c1", tools.NameSearchHotels, `{"city":"Lagos"}`))
	require.False(t, res.OK())
	assert.Equal(t, tools.CodeUnavailable, res.Err.Code)
}

func TestExecutorRejectsInvalidOutput(t *testing.T) {
	ex := newExecutor(t, tools.SearchHotels(searcherFunc(func(context.Context, string) ([]service.Hotel, error) {
		return []service.Hotel{{HotelName: "", HotelID: "x"}}, nil
	})))
	res := ex.Execute(context.Background(), llmtest.Call("c1", tools.NameSearchHotels, `{"city":"Lagos"}`))
	require.False(t, res.OK())
	assert.Equal(t, tools.CodeInvalidOutput, res.Err.Code)
	assert.Nil(t, res.Output)
}

func TestBookHotelTool(t *testing.T) {
	store := service.NewSimulatedBookings()
	ex := newExecutor(t,
		tools.BookHotel(store, security.NewDataMasker(true)),
		tools.BookingStatus(store),
	)
	ctx := context.Background()

	res := ex.Execute(ctx, llmtest.Call("b1", tools.NameBookHotel, map[string]any{
		"hotelId": "ng-lag-eko",
		"guestDetails": map[string]any{
			"fullName": "Ada Obi",
			"email":    "ada@example.com",
			"phone":    "08031234567",
		},
	}))
	require.True(t, res.OK(), "%+v", res.Err)

	var out tools.BookHotelOutput
	require.NoError(t, schema.Decode(tools.BookHotelOutputSchema, res.Output, &out))
	assert.True(t, out.Success)
	assert.Regexp(t, `^TOURNAIJA-[0-9A-F]{8}$`, out.ConfirmationID)
	assert.Equal(t, tools.BookingSuccessMessage, out.Message)

	status := ex.Execute(ctx, llmtest.Call("s1", tools.NameBookingStatus, map[string]any{"confirmationId": out.ConfirmationID}))
	require.True(t, status.OK(), "%+v", status.Err)
	var st tools.BookingStatusOutput
	require.NoError(t, schema.Decode(tools.BookingStatusOutputSchema, status.Output, &st))
	assert.Equal(t, "confirmed", st.Status)
	assert.Equal(t, "Ada Obi", st.GuestName)
	assert.Equal(t, "ng-lag-eko", st.HotelID)
}

func TestBookHotelForRejectsOtherHotel(t *testing.T) {
	store := service.NewSimulatedBookings()
	ex := newExecutor(t, tools.BookHotelFor(store, nil, "ng-lag-eko"), tools.BookingStatus(store))
	guest := map[string]any{"fullName": "Ada Obi", "email": "ada@example.com", "phone": "08031234567"}

	res := ex.Execute(context.Background(), llmtest.Call("b1", tools.NameBookHotel, map[string]any{
		"hotelId":      "ng-abj-transcorp",
		"guestDetails": guest,
	}))
	require.False(t, res.OK())
	assert.Equal(t, tools.ErrorCode(tools.CodeHotelMismatch), res.Err.Code)
	assert.Contains(t, res.Err.Message, "ng-lag-eko")
	assert.Nil(t, res.Output)

	res = ex.Execute(context.Background(), llmtest.Call("b2", tools.NameBookHotel, map[string]any{
		"hotelId":      "ng-lag-eko",
		"guestDetails": guest,
	}))
	require.True(t, res.OK(), "%+v", res.Err)
}
func TestBookHotelRejectsIncompleteGuest(t *testing.T) {
	store := service.NewSimulatedBookings()
	ex := newExecutor(t, tools.BookHotel(store, nil))

	res := ex.Execute(context.Background(), llmtest.Call("b1", tools.NameBookHotel, map[string]any{
		"hotelId":      "ng-lag-eko",
		"guestDetails": map[string]any{"fullName": "Ada Obi", "email": "not-an-email", "phone": "0803"},
	}))
	require.False(t, res.OK())
	assert.Equal(t, tools.CodeInvalidInput, res.Err.Code)
	fields := make([]string, len(res.Err.Issues))
	for i, is := range res.Err.Issues {
		fields[i] = is.Field
	}
	assert.Equal(t, []string{"guestDetails.email"}, fields)
}

func TestBookingStatusNotFound(t *testing.T) {
	ex := newExecutor(t, tools.BookingStatus(service.NewSimulatedBookings()))
	res := ex.Execute(context.Background(), llmtest.Call("s1", tools.NameBookingStatus, `{"confirmationId":"TOURNAIJA-DEADBEEF"}`))
	require.False(t, res.OK())
	assert.Equal(t, tools.ErrorCode("not_found"), res.Err.Code)
	assert.Contains(t, res.Err.Message, "TOURNAIJA-DEADBEEF")
}

func TestRegistry(t *testing.T) {
	search := tools.SearchHotels(service.NewDefaultStaticHotels())
	_, err := tools.NewRegistry(search, search)
	require.Error(t, err, "duplicate names must be rejected")

	_, err = tools.NewRegistry(tools.Tool{Name: "bare"})
	require.Error(t, err)

	store := service.NewSimulatedBookings()
	r := tools.MustRegistry(search, tools.BookHotel(store, nil), tools.BookingStatus(store))
	assert.Equal(t, []string{"searchHotels", "bookHotel", "getBookingStatus"}, r.Names())
	specs := r.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, tools.SearchHotelsInputSchema, specs[0].Parameters)

	var nilRegistry *tools.Registry
	_, ok := nilRegistry.Lookup("searchHotels")
	assert.False(t, ok)
}

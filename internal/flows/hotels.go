package flows

import (
	"context"
	"fmt"

	"github.com/tournaija/tournaija/internal/agent"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/service"
	"github.com/tournaija/tournaija/internal/tools"
)

const hotelSearchRole = `You are a helpful hotel search assistant for TourNaija, a tourism website for Nigeria.`

const hotelSearchInstructions = `Your job is to find hotels for the user.

- If the user's query names a city, call the searchHotels tool exactly once with that city.
- If the query does not name a city, do NOT call any tool. Instead ask the user which city they would like to stay in.
- Never make up hotels. Only hotels returned by the tool may be presented.`

const hotelSearchSummary = `Summarise the hotel search results for the user in a friendly way.
Mention how many hotels were found and highlight a few with their prices when available.
If no hotels were found, say so and suggest trying a nearby city.
If the search failed, apologise and suggest trying again later.`

const (
	hotelSearchEmptyText = "Which city would you like to find hotels in?"
	hotelSearchErrorText = "We couldn't search for hotels right now. Please try again in a moment."
)

// SearchHotels runs a tool-calling session with the hotel search tool. When
// the query names no city the model asks for one and Hotels stays absent; once
// the search tool has run Hotels is always present, empty if the search failed.
func (s *Service) SearchHotels(ctx context.Context, in HotelSearchInput) (out *HotelSearchOutput, err error) {
	var input HotelSearchInput
	if err := validate(HotelSearchInputSchema, in, &input); err != nil {
		return nil, err
	}
	inv := s.begin(FlowHotelSearch, input.Query)
	defer func() { s.finish(ctx, inv, err) }()

	if err := s.screen(FlowHotelSearch, input.Query); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.searchSession(ctx, inv, input.Query, conversation(input.History))
}

// searchSession runs the search tool session and adapts its result.
func (s *Service) searchSession(ctx context.Context, inv *invocation, query string, history agent.Conversation) (*HotelSearchOutput, error) {
	res, runErr := s.agent.Run(ctx, agent.Request{
		Role:          hotelSearchRole,
		Instructions:  hotelSearchInstructions,
		Query:         query,
		History:       history,
		Tools:         s.search,
		SummaryPrompt: hotelSearchSummary,
		PrimaryTool:   tools.NameSearchHotels,
	})
	inv.session(res)

	out := &HotelSearchOutput{SessionID: res.SessionID}
	if hotels, ok := searchResults(res); ok {
		out.Hotels = hotels
	}
	if runErr != nil {
		out.SearchSummary = hotelSearchErrorText
		return out, unavailable(inv.flow, runErr)
	}

	out.SearchSummary = res.Text
	if out.SearchSummary == "" {
		out.SearchSummary = hotelSearchEmptyText
		if out.Hotels != nil {
			out.SearchSummary = defaultSearchSummary(len(out.Hotels))
		}
	}
	if err := schema.Decode(HotelSearchOutputSchema, out, &HotelSearchOutput{}); err != nil {
		malformed(inv.flow, err)
		return &HotelSearchOutput{SearchSummary: hotelSearchErrorText, SessionID: res.SessionID}, nil
	}
	return out, nil
}

// searchResults extracts the hotel list from the session's primary tool
// output. ok is false only when the search tool never ran; a search that
// failed yields an empty list.
func searchResults(res *agent.Result) ([]service.Hotel, bool) {
	if res == nil || !res.ToolCalled(tools.NameSearchHotels) {
		return nil, false
	}
	if res.PrimaryOutput == nil {
		return []service.Hotel{}, true
	}
	var found tools.SearchHotelsOutput
	if err := schema.Decode(tools.SearchHotelsOutputSchema, res.PrimaryOutput, &found); err != nil {
		malformed(FlowHotelSearch, err)
		return []service.Hotel{}, true
	}
	if found.Hotels == nil {
		found.Hotels = []service.Hotel{}
	}
	return found.Hotels, true
}

func defaultSearchSummary(n int) string {
	switch n {
	case 0:
		return "No hotels were found for that city. Try a nearby city instead."
	case 1:
		return "Found 1 hotel."
	default:
		return fmt.Sprintf("Found %d hotels.", n)
	}
}

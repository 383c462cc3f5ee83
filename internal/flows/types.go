package flows

import (
	"github.com/tournaija/tournaija/internal/agent"
	"github.com/tournaija/tournaija/internal/llm"
	"github.com/tournaija/tournaija/internal/service"
	"github.com/tournaija/tournaija/internal/tools"
)

// Turn is one prior conversation turn supplied by the caller.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

func conversation(turns []Turn) agent.Conversation {
	c := make(agent.Conversation, 0, len(turns))
	for _, t := range turns {
		c = append(c, llm.Message{Role: llm.Role(t.Role), Text: t.Text})
	}
	return c
}

type ItineraryInput struct {
	Destination  string   `json:"destination"`
	DurationDays int      `json:"durationDays"`
	Interests    []string `json:"interests,omitempty"`
}

type Activity struct {
	Time         string `json:"time"`
	ActivityName string `json:"activityName"`
	Description  string `json:"description"`
}

type DailyPlan struct {
	Day        int        `json:"day"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
}

type ItineraryOutput struct {
	ItineraryTitle string      `json:"itineraryTitle"`
	Summary        string      `json:"summary"`
	DailyPlans     []DailyPlan `json:"dailyPlans"`
}

type HotelSearchInput struct {
	Query   string `json:"query"`
	History []Turn `json:"history,omitempty"`
}

// HotelSearchOutput omits Hotels when no search ran (for example while the
// assistant is still asking for a city).
type HotelSearchOutput struct {
	Hotels        []service.Hotel `json:"hotels,omitzero"`
	SearchSummary string          `json:"searchSummary"`
	SessionID     string          `json:"sessionId,omitempty"`
}

type HotelBookingInput struct {
	HotelID string `json:"hotelId"`
	Query   string `json:"query"`
	History []Turn `json:"history,omitempty"`
}

// HotelBookingOutput carries BookingConfirmation only when the booking tool
// produced a validated output.
type HotelBookingOutput struct {
	BookingConfirmation *tools.BookHotelOutput     `json:"bookingConfirmation,omitempty"`
	BookingStatus       *tools.BookingStatusOutput `json:"bookingStatus,omitempty"`
	ResponseText        string                     `json:"responseText"`
	SessionID           string                     `json:"sessionId,omitempty"`
}

type RouteInput struct {
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	TransportModes []string `json:"transportModes,omitempty"`
	Budget         *float64 `json:"budget,omitempty"`
	DepartureTime  string   `json:"departureTime,omitempty"`
}

type Route struct {
	Mode            string  `json:"mode"`
	Provider        string  `json:"provider"`
	DeparturePoint  string  `json:"departurePoint"`
	ArrivalPoint    string  `json:"arrivalPoint"`
	RouteDetail     string  `json:"routeDetail,omitempty"`
	DurationMinutes float64 `json:"durationMinutes"`
	PriceEstimate   float64 `json:"priceEstimate"`
	Schedule        string  `json:"schedule,omitempty"`
	Contact         string  `json:"contact,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type RouteOutput struct {
	Routes  []Route `json:"routes"`
	Message string  `json:"message,omitempty"`
}

type ChatInput struct {
	Query              string `json:"query"`
	DestinationContext string `json:"destinationContext,omitempty"`
	History            []Turn `json:"history,omitempty"`
}

type ChatOutput struct {
	Response string `json:"response"`
}

type RecommendationInput struct {
	City        string   `json:"city"`
	Budget      string   `json:"budget,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

type Destination struct {
	DestinationName     string  `json:"destinationName"`
	State               string  `json:"state"`
	Type                string  `json:"type"`
	Description         string  `json:"description"`
	CityTown            string  `json:"cityTown"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	RecommendedStayDays int     `json:"recommendedStayDays"`
	PopularityRank      int     `json:"popularityRank"`
}

type RecommendationOutput struct {
	Recommendations       []Destination `json:"recommendations"`
	RecommendationSummary string        `json:"recommendationSummary"`
}

type AssistantInput struct {
	Query   string `json:"query"`
	HotelID string `json:"hotelId,omitempty"`
	History []Turn `json:"history,omitempty"`
}

// AssistantOutput is the answer to a free-form request together with the
// intent it was routed to.
type AssistantOutput struct {
	Intent              service.Intent         `json:"intent"`
	Confidence          float64                `json:"confidence"`
	Response            string                 `json:"response"`
	Hotels              []service.Hotel        `json:"hotels,omitzero"`
	BookingConfirmation *tools.BookHotelOutput `json:"bookingConfirmation,omitempty"`
	SessionID           string                 `json:"sessionId,omitempty"`
}

package flows

import (
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/tools"
)

// Itinerary
var (
	ItineraryInputSchema = schema.Object("ItineraryInput", "A request for a day-by-day itinerary.",
		schema.Required("destination", schema.String("The travel destination, e.g. a city or region.").NonEmpty()),
		schema.Required("durationDays", schema.Integer("The duration of the trip in days.").Min(1)),
		schema.Optional("interests", schema.Array(schema.String("An interest."),
			`Interests to tailor the itinerary, e.g. "history", "nature", "foodie".`).WithDefault([]any{})),
	)

	ActivitySchema = schema.Object("Activity", "One planned activity.",
		schema.Required("time", schema.String("Suggested time, e.g. 'Morning' or '9:00 AM - 11:00 AM'.")),
		schema.Required("activityName", schema.String("A short, descriptive name for the activity.").NonEmpty()),
		schema.Required("description", schema.String("A detailed description of the activity or sight.")),
	)

	DailyPlanSchema = schema.Object("DailyPlan", "The plan for one day.",
		schema.Required("day", schema.Integer("The day number, starting at 1.").Min(1)),
		schema.Required("theme", schema.String(`A theme for the day, e.g. "Historical Exploration".`).NonEmpty()),
		schema.Required("activities", schema.Array(ActivitySchema, "Activities planned for the day.").NonEmpty()),
	)

	ItineraryOutputSchema = schema.Object("ItineraryOutput", "A personalised itinerary.",
		schema.Required("itineraryTitle", schema.String("A catchy title for the itinerary.").NonEmpty()),
		schema.Required("summary", schema.String("A brief, encouraging summary of the trip ahead.")),
		schema.Required("dailyPlans", schema.Array(DailyPlanSchema, "Day-by-day plans.")),
	)
)

// Hotel search
var (
	HotelSearchInputSchema = schema.Object("HotelSearchInput", "A natural language hotel search.",
		schema.Required("query", schema.String("The user's query, e.g. 'Find hotels in Lagos'.").NonEmpty()),
		schema.Optional("history", schema.Array(TurnSchema, "Earlier turns of the conversation.")),
	)

	HotelSearchOutputSchema = schema.Object("HotelSearchOutput", "Hotel search results.",
		schema.Optional("hotels", schema.Array(tools.HotelSchema, "Hotels found. Absent when no search has run yet.")),
		schema.Required("searchSummary", schema.String("A friendly summary of the results, or a clarifying question.")),
		schema.Optional("sessionId", schema.String("Agent session identifier.")),
	)
)

// TurnSchema is one prior conversation turn supplied by the caller.
var TurnSchema = schema.Object("Turn", "A prior conversation turn.",
	schema.Required("role", schema.String("Who wrote the turn.").OneOf("user", "assistant")),
	schema.Required("text", schema.String("What was said.")),
)

// Hotel booking
var (
	HotelBookingInputSchema = schema.Object("HotelBookingInput", "A booking conversation turn.",
		schema.Required("hotelId", schema.String("The ID of the hotel to be booked.").NonEmpty()),
		schema.Required("query", schema.String("The user's latest message.").NonEmpty()),
		schema.Optional("history", schema.Array(TurnSchema, "Earlier turns of the conversation.")),
	)

	HotelBookingOutputSchema = schema.Object("HotelBookingOutput", "Booking progress.",
		schema.Optional("bookingConfirmation", tools.BookHotelOutputSchema),
		schema.Optional("bookingStatus", tools.BookingStatusOutputSchema),
		schema.Required("responseText", schema.String("A summary of the booking status or a question to the user.")),
		schema.Optional("sessionId", schema.String("Agent session identifier.")),
	)
)

// Route planning
var (
	RouteInputSchema = schema.Object("RouteInput", "A route planning request within Nigeria.",
		schema.Required("origin", schema.String("Where the trip starts.").NonEmpty()),
		schema.Required("destination", schema.String("Where the trip ends.").NonEmpty()),
		schema.Optional("transportModes", schema.Array(schema.String("A transport mode."),
			"Preferred transport modes, e.g. driving, bus, train, flight.")),
		schema.Optional("budget", schema.Number("The maximum budget for the trip in Naira.").Min(0)),
		schema.Optional("departureTime", schema.String("The desired departure time in ISO format.")),
	)

	RouteSchema = schema.Object("Route", "One way to make the trip.",
		schema.Required("mode", schema.String("The transport mode for this route.").NonEmpty()),
		schema.Required("provider", schema.String("The transport provider.")),
		schema.Required("departurePoint", schema.String("The departure point.")),
		schema.Required("arrivalPoint", schema.String("The arrival point.")),
		schema.Optional("routeDetail", schema.String("Detailed route information.")),
		schema.Required("durationMinutes", schema.Number("The duration of the route in minutes.").Min(1)),
		schema.Required("priceEstimate", schema.Number("The estimated price for this route in Naira.").Min(0)),
		schema.Optional("schedule", schema.String("The schedule for this route, if applicable.")),
		schema.Optional("contact", schema.String("Contact information for the transport provider.")),
		schema.Optional("notes", schema.String("Additional notes about the route.")),
	)

	RouteOutputSchema = schema.Object("RouteOutput", "Route options.",
		schema.Required("routes", schema.Array(RouteSchema, "Possible routes, best first.")),
		schema.Optional("message", schema.String("Explanation when no routes could be planned.")),
	)
)

// Chat
var (
	ChatInputSchema = schema.Object("ChatInput", "A travel question.",
		schema.Required("query", schema.String("The user query.").NonEmpty()),
		schema.Optional("destinationContext", schema.String("The destination the user is currently viewing, if any.")),
		schema.Optional("history", schema.Array(TurnSchema, "Earlier turns of the conversation.")),
	)

	ChatOutputSchema = schema.Object("ChatOutput", "The chatbot's answer.",
		schema.Required("response", schema.String("The chatbot response to the user query.").NonEmpty()),
	)
)

// Recommendations
var (
	RecommendationInputSchema = schema.Object("RecommendationInput", "A request for destination recommendations.",
		schema.Required("city", schema.String("The user's city of origin.").NonEmpty()),
		schema.Optional("budget", schema.String("The user's budget for the trip.").OneOf("low", "medium", "high").WithDefault("medium")),
		schema.Optional("preferences", schema.Array(schema.String("An interest."),
			"Interests, e.g. 'historical sites', 'natural beauty'.").WithDefault([]any{})),
	)

	DestinationSchema = schema.Object("Destination", "A recommended destination.",
		schema.Required("destinationName", schema.String("The name of the destination.").NonEmpty()),
		schema.Required("state", schema.String("The Nigerian state the destination is in.")),
		schema.Required("type", schema.String("The type of destination, e.g. Natural, Historical, Cultural.")),
		schema.Required("description", schema.String("A brief description of the destination.")),
		schema.Required("cityTown", schema.String("The nearest city or town.")),
		schema.Required("latitude", schema.Number("Latitude of the destination.").Min(-90).Max(90)),
		schema.Required("longitude", schema.Number("Longitude of the destination.").Min(-180).Max(180)),
		schema.Required("recommendedStayDays", schema.Integer("Recommended stay in days.").Min(1)),
		schema.Required("popularityRank", schema.Integer("Popularity on a scale of 1 to 10.").Min(1).Max(10)),
	)

	RecommendationOutputSchema = schema.Object("RecommendationOutput", "Personalised destination recommendations.",
		schema.Required("recommendations", schema.Array(DestinationSchema, "The recommendations.")),
		schema.Required("recommendationSummary", schema.String("A friendly one-sentence summary of the recommendations.")),
	)
)

// Assistant
var (
	AssistantInputSchema = schema.Object("AssistantInput", "A free-form travel request.",
		schema.Required("query", schema.String("What the user wants.").NonEmpty()),
		schema.Optional("hotelId", schema.String("The hotel being booked, if the user is on a booking page.")),
		schema.Optional("history", schema.Array(TurnSchema, "Earlier turns of the conversation.")),
	)
)

func newSchemaRegistry() (*schema.Registry, error) {
	r := schema.NewRegistry()
	err := r.Register(
		ItineraryInputSchema, ActivitySchema, DailyPlanSchema, ItineraryOutputSchema,
		HotelSearchInputSchema, HotelSearchOutputSchema, TurnSchema,
		HotelBookingInputSchema, HotelBookingOutputSchema,
		RouteInputSchema, RouteSchema, RouteOutputSchema,
		ChatInputSchema, ChatOutputSchema,
		RecommendationInputSchema, DestinationSchema, RecommendationOutputSchema,
		AssistantInputSchema,
		tools.HotelSchema, tools.VendorPriceSchema,
		tools.SearchHotelsInputSchema, tools.SearchHotelsOutputSchema,
		tools.GuestDetailsSchema, tools.BookHotelInputSchema, tools.BookHotelOutputSchema,
		tools.BookingStatusInputSchema, tools.BookingStatusOutputSchema,
	)
	return r, err
}

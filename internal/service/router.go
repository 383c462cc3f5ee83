package service

import (
	"sort"
	"strings"
)

// Intent names the flow that should answer a free-form query.
type Intent string

const (
	IntentHotelSearch     Intent = "hotels"
	IntentBooking         Intent = "booking"
	IntentRoute           Intent = "route"
	IntentItinerary       Intent = "itinerary"
	IntentRecommendations Intent = "recommendations"
	IntentChat            Intent = "chat"
)

var intentKeywords = map[Intent][]string{
	IntentHotelSearch: {
		"hotel", "hotels", "stay", "accommodation", "lodge", "resort",
		"room", "rooms", "where to sleep", "guest house",
	},
	IntentBooking: {
		"book", "booking", "reserve", "reservation", "confirm",
		"confirmation", "tournaija-", "check in", "check-in",
	},
	IntentRoute: {
		"route", "from", "drive", "flight", "fly", "bus", "how do i get",
		"how to get", "travel time", "distance", "journey", "transport",
	},
	IntentItinerary: {
		"itinerary", "plan my", "day trip", "days in", "schedule",
		"weekend in", "trip plan", "what to do each day",
	},
	IntentRecommendations: {
		"recommend", "suggest", "best places", "where should i go",
		"attractions", "places to visit", "must see", "tourist",
	},
}

// intentOrder breaks score ties; earlier wins.
var intentOrder = []Intent{
	IntentBooking, IntentHotelSearch, IntentItinerary, IntentRoute, IntentRecommendations,
}

// RoutingResult contains intent routing info
type RoutingResult struct {
	Intent     Intent
	Confidence float64
	Scores     map[Intent]int
	Reasoning  string
}

// IntentRouter routes free-form travel queries to the flow that should answer them.
type IntentRouter struct{}

func NewIntentRouter() *IntentRouter {
	return &IntentRouter{}
}

// Route analyses the query and returns the best matching intent. Queries with
// no keyword hits go to the general chat flow.
func (r *IntentRouter) Route(query string) RoutingResult {
	lower := " " + strings.ToLower(query) + " "

	scores := make(map[Intent]int, len(intentKeywords))
	total := 0
	for intent, kws := range intentKeywords {
		for _, kw := range kws {
			if containsWord(lower, kw) {
				scores[intent]++
				total++
			}
		}
	}

	if total == 0 {
		return RoutingResult{
			Intent:     IntentChat,
			Confidence: 0.5,
			Scores:     scores,
			Reasoning:  "no strong keywords, defaulting to chat",
		}
	}

	ranked := append([]Intent(nil), intentOrder...)
	sort.SliceStable(ranked, func(i, j int) bool { return scores[ranked[i]] > scores[ranked[j]] })
	best := ranked[0]

	return RoutingResult{
		Intent:     best,
		Confidence: float64(scores[best]) / float64(total),
		Scores:     scores,
		Reasoning:  "query contains " + string(best) + "-related keywords",
	}
}

// containsWord matches kw at word boundaries; keywords ending in '-' match as prefixes.
func containsWord(padded, kw string) bool {
	idx := 0
	for {
		i := strings.Index(padded[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		before := padded[start-1]
		after := padded[end]
		if !isWordByte(before) && (strings.HasSuffix(kw, "-") || !isWordByte(after)) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}

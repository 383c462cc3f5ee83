package flows

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const itineraryPrompt = `You are an expert travel planner for TourNaija, specialising in personalised itineraries for tourists visiting Nigeria.

Create a detailed day-by-day itinerary based on the traveller's destination, trip duration and interests.

Destination: %s
Duration: %d days
Interests: %s

For each day provide a theme and a list of activities. Each activity needs a suggested time, a short name and a detailed description.
Make the itinerary practical, enjoyable and true to the traveller's interests, mixing popular attractions with hidden gems.
Return exactly %d entries in dailyPlans, numbered from 1.

Respond with a JSON object containing a catchy "itineraryTitle", a "summary" of the trip and the "dailyPlans" array.`

// PlanItinerary builds a day-by-day itinerary with a single structured model
// call. durationDays below 1 is rejected before the model is called.
func (s *Service) PlanItinerary(ctx context.Context, in ItineraryInput) (out *ItineraryOutput, err error) {
	var input ItineraryInput
	if err := validate(ItineraryInputSchema, in, &input); err != nil {
		return nil, err
	}
	inv := s.begin(FlowItinerary, input.Destination)
	defer func() { s.finish(ctx, inv, err) }()

	if err := s.screen(FlowItinerary, input.Destination+"\n"+listOr(input.Interests, "")); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	plan, err := cached(ctx, s, inv, cacheKey(FlowItinerary, input), func(ctx context.Context, inv *invocation) (*ItineraryOutput, bool, error) {
		prompt := fmt.Sprintf(itineraryPrompt,
			input.Destination, input.DurationDays, listOr(input.Interests, "General sightseeing"), input.DurationDays)
		var plan ItineraryOutput
		ok, err := s.structured(ctx, inv, prompt, ItineraryOutputSchema, &plan)
		if !ok {
			return itineraryFallback(input), false, err
		}
		if len(plan.DailyPlans) != input.DurationDays {
			log.Warn().
				Int("requested_days", input.DurationDays).
				Int("planned_days", len(plan.DailyPlans)).
				Msg("itinerary day count differs from request")
		}
		return &plan, true, nil
	})
	if plan == nil {
		return itineraryFallback(input), err
	}
	return plan, err
}

func itineraryFallback(in ItineraryInput) *ItineraryOutput {
	return &ItineraryOutput{
		ItineraryTitle: fmt.Sprintf("Your trip to %s", in.Destination),
		Summary:        "We couldn't put together an itinerary right now. Please try again in a moment.",
		DailyPlans:     []DailyPlan{},
	}
}

package flows

import (
	"context"
	"fmt"
)

const recommendationPrompt = `You are an AI travel assistant specialising in Nigerian tourism.

Based on the traveller's city of origin, budget and interests, recommend 3 destinations in Nigeria.
Consider each destination's popularity, the travel distance from the origin city and how well it fits the traveller's interests and budget.

Traveller's City: %s
Traveller's Budget: %s
Traveller's Interests: %s

Each destination must include destinationName, state, type, description, cityTown, latitude, longitude, recommendedStayDays and a popularityRank from 1 to 10.
Also include a "recommendationSummary": one friendly, encouraging sentence describing the recommendations.
Keep the recommendations diverse across regions and types of attraction.

Respond with a JSON object.`

// RecommendDestinations suggests destinations for a traveller.
func (s *Service) RecommendDestinations(ctx context.Context, in RecommendationInput) (out *RecommendationOutput, err error) {
	var input RecommendationInput
	if err := validate(RecommendationInputSchema, in, &input); err != nil {
		return nil, err
	}
	inv := s.begin(FlowRecommendations, input.City)
	defer func() { s.finish(ctx, inv, err) }()

	if err := s.screen(FlowRecommendations, input.City+"\n"+listOr(input.Preferences, "")); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out, err = cached(ctx, s, inv, cacheKey(FlowRecommendations, input), func(ctx context.Context, inv *invocation) (*RecommendationOutput, bool, error) {
		prompt := fmt.Sprintf(recommendationPrompt, input.City, input.Budget, listOr(input.Preferences, "Anything"))
		var recs RecommendationOutput
		ok, err := s.structured(ctx, inv, prompt, RecommendationOutputSchema, &recs)
		if !ok {
			return recommendationFallback(), false, err
		}
		if recs.Recommendations == nil {
			recs.Recommendations = []Destination{}
		}
		return &recs, true, nil
	})
	if out == nil {
		return recommendationFallback(), err
	}
	return out, err
}

func recommendationFallback() *RecommendationOutput {
	return &RecommendationOutput{
		Recommendations:       []Destination{},
		RecommendationSummary: "We couldn't find recommendations right now. Please try again in a moment.",
	}
}

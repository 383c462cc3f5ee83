package flows

import (
	"context"
	"fmt"
	"strconv"
)

const routePrompt = `You are a travel planning expert specialising in routes within Nigeria.

Based on the traveller's origin, destination, preferred transport modes, budget and desired departure time, provide a detailed route plan.

Origin: %s
Destination: %s
Preferred Transport Modes: %s
Budget: %s
Departure Time: %s

List the possible routes. For each give the transport mode, provider, departure and arrival points, route details, duration in minutes, price estimate in Naira, schedule, contact information and any relevant notes.
durationMinutes and priceEstimate must be plain numbers.
Optimise the routes for both cost and time, taking the traveller's preferences into account.

Respond with a JSON object with a "routes" array.`

const routeFallbackMessage = "We couldn't plan a route right now. Please try again in a moment."

// PlanRoute returns route options between two places with a single structured
// model call. No tools are involved.
func (s *Service) PlanRoute(ctx context.Context, in RouteInput) (out *RouteOutput, err error) {
	var input RouteInput
	if err := validate(RouteInputSchema, in, &input); err != nil {
		return nil, err
	}
	inv := s.begin(FlowRoute, input.Origin+" -> "+input.Destination)
	defer func() { s.finish(ctx, inv, err) }()

	if err := s.screen(FlowRoute, input.Origin+"\n"+input.Destination+"\n"+listOr(input.TransportModes, "")); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	routes, err := cached(ctx, s, inv, cacheKey(FlowRoute, input), func(ctx context.Context, inv *invocation) (*RouteOutput, bool, error) {
		budget := "No budget specified"
		if input.Budget != nil {
			budget = "₦" + strconv.FormatFloat(*input.Budget, 'f', -1, 64)
		}
		departure := input.DepartureTime
		if departure == "" {
			departure = "Any"
		}
		prompt := fmt.Sprintf(routePrompt,
			input.Origin, input.Destination, listOr(input.TransportModes, "Any"), budget, departure)

		var plan RouteOutput
		ok, err := s.structured(ctx, inv, prompt, RouteOutputSchema, &plan)
		if !ok {
			return routeFallback(), false, err
		}
		if plan.Routes == nil {
			plan.Routes = []Route{}
		}
		return &plan, true, nil
	})
	if routes == nil {
		return routeFallback(), err
	}
	return routes, err
}

func routeFallback() *RouteOutput {
	return &RouteOutput{Routes: []Route{}, Message: routeFallbackMessage}
}

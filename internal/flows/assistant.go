package flows

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/service"
)

// Assist answers a free-form request. The query is routed by keyword to the
// hotel search session, the booking session or a chat answer.
func (s *Service) Assist(ctx context.Context, in AssistantInput) (out *AssistantOutput, err error) {
	var input AssistantInput
	if err := validate(AssistantInputSchema, in, &input); err != nil {
		return nil, err
	}
	inv := s.begin(FlowAssistant, input.Query)
	defer func() { s.finish(ctx, inv, err) }()

	if err := s.screen(FlowAssistant, input.Query); err != nil {
		return nil, err
	}

	routing := s.router.Route(input.Query)
	log.Info().
		Str("intent", string(routing.Intent)).
		Float64("confidence", routing.Confidence).
		Str("reasoning", routing.Reasoning).
		Msg("assistant routed query")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out = &AssistantOutput{Intent: routing.Intent, Confidence: routing.Confidence}
	history := conversation(input.History)

	switch routing.Intent {
	case service.IntentHotelSearch:
		res, err := s.searchSession(ctx, inv, input.Query, history)
		out.Response, out.Hotels, out.SessionID = res.SearchSummary, res.Hotels, res.SessionID
		return out, err
	case service.IntentBooking:
		res, err := s.bookingSession(ctx, inv, input.HotelID, input.Query, history)
		out.Response, out.BookingConfirmation, out.SessionID = res.ResponseText, res.BookingConfirmation, res.SessionID
		return out, err
	default:
		var answer ChatOutput
		ok, err := s.structured(ctx, inv, chatPrompt(ChatInput{Query: input.Query, History: input.History}), ChatOutputSchema, &answer)
		switch {
		case err != nil:
			out.Response = UnavailableMessage
		case !ok:
			out.Response = chatFallback
		default:
			out.Response = answer.Response
		}
		return out, err
	}
}

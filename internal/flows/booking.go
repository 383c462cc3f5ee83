package flows

import (
	"context"
	"fmt"

	"github.com/tournaija/tournaija/internal/agent"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/tools"
)

const bookingRole = `You are a hotel booking assistant for TourNaija, a tourism website for Nigeria.`

const bookingInstructions = `%s

To book, you need ALL of the following guest details:
- full name
- email address
- phone number
An address is optional.

Rules:
- Collect the details from the user's query and the conversation history.
- If ANY required detail is missing, do NOT call any tool. Ask the user for the missing details in a single friendly question.
- Only when every required detail is known, call the bookHotel tool with the hotel ID and the guest details.
- If the user asks about an existing booking and gives a confirmation ID, call getBookingStatus.
- Never invent guest details or confirmation IDs.`

const bookingSummary = `Tell the user the outcome of their booking request.
If the booking succeeded, include the confirmation ID and thank them.
If the booking failed, explain what went wrong and what they can do next.
If a booking status was looked up, report the status.`

const (
	bookingErrorText = "We couldn't process your booking right now. Please try again in a moment."
	bookingAskText   = "To complete your booking, please share your full name, email address and phone number."
)

const bookingNoHotelRule = `- The hotel has not been chosen yet. Before calling bookHotel, ask the user which hotel (by ID) they want to book.`

// BookHotel runs a booking session. The booking tool is only invoked once
// the guest's name, email and phone are known; until then the response is a
// question and BookingConfirmation stays absent.
func (s *Service) BookHotel(ctx context.Context, in HotelBookingInput) (out *HotelBookingOutput, err error) {
	var input HotelBookingInput
	if err := validate(HotelBookingInputSchema, in, &input); err != nil {
		return nil, err
	}
	inv := s.begin(FlowHotelBooking, input.Query)
	defer func() { s.finish(ctx, inv, err) }()

	if err := s.screen(FlowHotelBooking, input.Query); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.bookingSession(ctx, inv, input.HotelID, input.Query, conversation(input.History))
}

// bookingSession runs the booking tool session. An empty hotelID means the
// user has not picked a hotel yet; the model then asks for one before booking.
func (s *Service) bookingSession(ctx context.Context, inv *invocation, hotelID, query string, history agent.Conversation) (*HotelBookingOutput, error) {
	instructions := fmt.Sprintf(bookingInstructions, "The user wants to book the hotel with ID "+hotelID+".")
	registry := s.booking
	if hotelID == "" {
		instructions = fmt.Sprintf(bookingInstructions, "The user has not chosen a hotel yet.") + "\n" + bookingNoHotelRule
	} else {
		bound, err := s.boundBooking(hotelID)
		if err != nil {
			return &HotelBookingOutput{ResponseText: bookingErrorText}, err
		}
		registry = bound
	}
	res, runErr := s.agent.Run(ctx, agent.Request{
		Role:          bookingRole,
		Instructions:  instructions,
		Query:         query,
		History:       history,
		Tools:         registry,
		SummaryPrompt: bookingSummary,
		PrimaryTool:   tools.NameBookHotel,
	})
	inv.session(res)

	out := &HotelBookingOutput{
		BookingConfirmation: bookingConfirmation(inv.flow, res),
		BookingStatus:       bookingStatus(inv.flow, res),
		SessionID:           res.SessionID,
	}
	if runErr != nil {
		// a booking that already went through is still reported
		out.ResponseText = bookingErrorText
		if out.BookingConfirmation != nil {
			out.ResponseText = out.BookingConfirmation.Message
		}
		return out, unavailable(inv.flow, runErr)
	}

	out.ResponseText = res.Text
	if out.ResponseText == "" {
		out.ResponseText = bookingAskText
		if out.BookingConfirmation != nil {
			out.ResponseText = out.BookingConfirmation.Message
		}
	}
	return out, nil
}

func bookingConfirmation(flow string, res *agent.Result) *tools.BookHotelOutput {
	if res == nil || res.PrimaryOutput == nil {
		return nil
	}
	var c tools.BookHotelOutput
	if err := schema.Decode(tools.BookHotelOutputSchema, res.PrimaryOutput, &c); err != nil {
		malformed(flow, err)
		return nil
	}
	return &c
}

// bookingStatus returns the first successful status lookup of the session.
func bookingStatus(flow string, res *agent.Result) *tools.BookingStatusOutput {
	if res == nil {
		return nil
	}
	for _, r := range res.ToolResults {
		if r.ToolName != tools.NameBookingStatus || !r.OK() {
			continue
		}
		var st tools.BookingStatusOutput
		if err := schema.Decode(tools.BookingStatusOutputSchema, r.Output, &st); err != nil {
			malformed(flow, err)
			return nil
		}
		return &st
	}
	return nil
}

// boundBooking returns a booking registry whose bookHotel tool only books
// hotelID.
func (s *Service) boundBooking(hotelID string) (*tools.Registry, error) {
	r, err := tools.NewRegistry(tools.BookHotelFor(s.bookings, s.masker, hotelID), tools.BookingStatus(s.bookings))
	if err != nil {
		return nil, fmt.Errorf("booking tools: %w", err)
	}
	return r, nil
}

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/security"
	"github.com/tournaija/tournaija/internal/service"
)

// BookingSuccessMessage is returned with every confirmed booking.
const BookingSuccessMessage = "Your hotel booking has been successfully confirmed!"

// Booking schemas shared with the hotel booking flow.
var (
	GuestDetailsSchema = schema.Object("GuestDetails", "Guest details required to book a hotel.",
		schema.Required("fullName", schema.String("The full name of the guest.").NonEmpty()),
		schema.Required("email", schema.String("The email address of the guest.").WithFormat(schema.FormatEmail)),
		schema.Required("phone", schema.String("The guest's phone number.").NonEmpty()),
		schema.Optional("address", schema.String("The guest's home address.")),
	)

	BookHotelInputSchema = schema.Object("BookHotelInput", "Arguments for bookHotel.",
		schema.Required("hotelId", schema.String("The ID of the hotel to book.").NonEmpty()),
		schema.Required("guestDetails", GuestDetailsSchema),
	)

	BookHotelOutputSchema = schema.Object("BookingConfirmation", "Outcome of a booking attempt.",
		schema.Required("success", schema.Boolean("Whether the booking was confirmed.")),
		schema.Optional("confirmationId", schema.String("Booking reference, e.g. TOURNAIJA-1A2B3C4D.")),
		schema.Required("message", schema.String("Status message for the guest.")),
	)

	BookingStatusInputSchema = schema.Object("BookingStatusInput", "Arguments for getBookingStatus.",
		schema.Required("confirmationId", schema.String("The booking reference to look up.").NonEmpty()),
	)

	BookingStatusOutputSchema = schema.Object("BookingStatus", "Current state of a booking.",
		schema.Required("confirmationId", schema.String("Booking reference.").NonEmpty()),
		schema.Required("hotelId", schema.String("The booked hotel.")),
		schema.Required("status", schema.String("Booking state.").OneOf(string(service.BookingConfirmed), string(service.BookingCancelled))),
		schema.Required("guestName", schema.String("Name on the booking.")),
		schema.Required("createdAt", schema.String("When the booking was made.").WithFormat(schema.FormatDateTime)),
	)
)

type BookHotelInput struct {
	HotelID      string               `json:"hotelId"`
	GuestDetails service.GuestDetails `json:"guestDetails"`
}

type BookHotelOutput struct {
	Success        bool   `json:"success"`
	ConfirmationID string `json:"confirmationId,omitempty"`
	Message        string `json:"message"`
}

// CodeHotelMismatch is the failure code for a booking aimed at a hotel other
// than the one the session is bound to.
const CodeHotelMismatch = "hotel_mismatch"

// BookHotel returns the bookHotel tool. Guest contact details are masked in logs.
func BookHotel(store service.BookingStore, masker *security.DataMasker) Tool {
	return BookHotelFor(store, masker, "")
}

// BookHotelFor returns a bookHotel tool bound to hotelID: a call naming any
// other hotel fails with CodeHotelMismatch and books nothing. An empty
// hotelID accepts any hotel.
func BookHotelFor(store service.BookingStore, masker *security.DataMasker, hotelID string) Tool {
	bound := strings.TrimSpace(hotelID)
	return New(NameBookHotel,
		"Books a hotel for the given hotel ID and guest details.",
		BookHotelInputSchema, BookHotelOutputSchema,
		func(ctx context.Context, in BookHotelInput) (BookHotelOutput, error) {
			if bound != "" && strings.TrimSpace(in.HotelID) != bound {
				return BookHotelOutput{}, &Failure{
					Code:    CodeHotelMismatch,
					Message: fmt.Sprintf("This booking is for hotel %s. Use that hotel ID.", bound),
				}
			}
			guest := in.GuestDetails
			guest.FullName = strings.TrimSpace(guest.FullName)
			guest.Phone = strings.TrimSpace(guest.Phone)
			if guest.FullName == "" || guest.Phone == "" {
				return BookHotelOutput{Success: false, Message: "Booking failed. Missing required information."}, nil
			}

			b, err := store.CreateBooking(ctx, strings.TrimSpace(in.HotelID), guest)
			if err != nil {
				return BookHotelOutput{}, fmt.Errorf("create booking: %w", err)
			}
			log.Info().
				Str("hotel_id", b.HotelID).
				Str("confirmation_id", b.ConfirmationID).
				Str("email", masker.Email(guest.Email)).
				Str("phone", masker.Phone(guest.Phone)).
				Msg("hotel booked")
			return BookHotelOutput{Success: true, ConfirmationID: b.ConfirmationID, Message: BookingSuccessMessage}, nil
		})
}

type BookingStatusInput struct {
	ConfirmationID string `json:"confirmationId"`
}

type BookingStatusOutput struct {
	ConfirmationID string `json:"confirmationId"`
	HotelID        string `json:"hotelId"`
	Status         string `json:"status"`
	GuestName      string `json:"guestName"`
	CreatedAt      string `json:"createdAt"`
}

// BookingStatus returns the getBookingStatus tool.
func BookingStatus(store service.BookingStore) Tool {
	return New(NameBookingStatus,
		"Looks up the status of an existing booking by its confirmation ID.",
		BookingStatusInputSchema, BookingStatusOutputSchema,
		func(ctx context.Context, in BookingStatusInput) (BookingStatusOutput, error) {
			b, err := store.GetBooking(ctx, in.ConfirmationID)
			if errors.Is(err, service.ErrNotFound) {
				return BookingStatusOutput{}, &Failure{
					Code:    "not_found",
					Message: fmt.Sprintf("No booking found with confirmation ID %s.", strings.TrimSpace(in.ConfirmationID)),
				}
			}
			if err != nil {
				return BookingStatusOutput{}, fmt.Errorf("get booking: %w", err)
			}
			return BookingStatusOutput{
				ConfirmationID: b.ConfirmationID,
				HotelID:        b.HotelID,
				Status:         string(b.Status),
				GuestName:      b.Guest.FullName,
				CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
			}, nil
		})
}

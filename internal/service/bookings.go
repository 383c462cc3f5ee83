package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GuestDetails is the minimum guest information a booking needs.
type GuestDetails struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ConfirmationID string        `json:"confirmationId"`
	HotelID        string        `json:"hotelId"`
	Guest          GuestDetails  `json:"guest"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// BookingStore creates and looks up hotel bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, hotelID string, guest GuestDetails) (*Booking, error)
	GetBooking(ctx context.Context, confirmationID string) (*Booking, error)
}

// NewConfirmationID returns an id like TOURNAIJA-1A2B3C4D.
func NewConfirmationID() string {
	return "TOURNAIJA-" + strings.ToUpper(uuid.NewString()[:8])
}

// SimulatedBookings confirms every booking and keeps it in memory.
type SimulatedBookings struct {
	mu       sync.RWMutex
	bookings map[string]Booking
	now      func() time.Time
}

func NewSimulatedBookings() *SimulatedBookings {
	return &SimulatedBookings{bookings: make(map[string]Booking), now: time.Now}
}

func (s *SimulatedBookings) CreateBooking(ctx context.Context, hotelID string, guest GuestDetails) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := Booking{
		ConfirmationID: NewConfirmationID(),
		HotelID:        hotelID,
		Guest:          guest,
		Status:         BookingConfirmed,
		CreatedAt:      s.now().UTC(),
	}
	s.mu.Lock()
	s.bookings[b.ConfirmationID] = b
	s.mu.Unlock()
	return &b, nil
}

func (s *SimulatedBookings) GetBooking(ctx context.Context, confirmationID string) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	b, ok := s.bookings[strings.ToUpper(strings.TrimSpace(confirmationID))]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

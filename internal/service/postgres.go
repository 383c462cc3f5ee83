package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingsTableDDL = `
CREATE TABLE IF NOT EXISTS hotel_bookings (
	confirmation_id TEXT PRIMARY KEY,
	hotel_id        TEXT NOT NULL,
	full_name       TEXT NOT NULL,
	email           TEXT NOT NULL,
	phone           TEXT NOT NULL,
	address         TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);`

// PostgresBookings persists bookings in Postgres.
type PostgresBookings struct {
	DB  *pgxpool.Pool
	now func() time.Time
}

func NewPostgresBookings(ctx context.Context, connStr string) (*PostgresBookings, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresBookings{DB: db, now: time.Now}, nil
}

// Migrate creates the bookings table if it does not exist.
func (p *PostgresBookings) Migrate(ctx context.Context) error {
	if _, err := p.DB.Exec(ctx, bookingsTableDDL); err != nil {
		return fmt.Errorf("create hotel_bookings: %w", err)
	}
	return nil
}

func (p *PostgresBookings) TestConnection(ctx context.Context) error {
	return p.DB.Ping(ctx)
}

func (p *PostgresBookings) Close() {
	p.DB.Close()
}

func (p *PostgresBookings) CreateBooking(ctx context.Context, hotelID string, guest GuestDetails) (*Booking, error) {
	b := &Booking{
		ConfirmationID: NewConfirmationID(),
		HotelID:        hotelID,
		Guest:          guest,
		Status:         BookingConfirmed,
		CreatedAt:      p.now().UTC(),
	}
	_, err := p.DB.Exec(ctx, `
		INSERT INTO hotel_bookings (confirmation_id, hotel_id, full_name, email, phone, address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ConfirmationID, b.HotelID, guest.FullName, guest.Email, guest.Phone, guest.Address, string(b.Status), b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert booking: %v", ErrUnavailable, err)
	}
	return b, nil
}

func (p *PostgresBookings) GetBooking(ctx context.Context, confirmationID string) (*Booking, error) {
	var (
		b      Booking
		status string
	)
	err := p.DB.QueryRow(ctx, `
		SELECT confirmation_id, hotel_id, full_name, email, phone, address, status, created_at
		FROM hotel_bookings WHERE confirmation_id = $1`,
		strings.ToUpper(strings.TrimSpace(confirmationID)),
	).Scan(&b.ConfirmationID, &b.HotelID, &b.Guest.FullName, &b.Guest.Email, &b.Guest.Phone, &b.Guest.Address, &status, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select booking: %v", ErrUnavailable, err)
	}
	b.Status = BookingStatus(status)
	return &b, nil
}

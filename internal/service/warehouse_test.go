package service_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournaija/tournaija/internal/security"
	"github.com/tournaija/tournaija/internal/service"
)

func TestNewAuditRow(t *testing.T) {
	ts := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	row := service.NewAuditRow(security.AuditEvent{
		Timestamp:   ts,
		RequestID:   "req-1",
		SessionID:   "01JAB",
		Flow:        "hotelSearch",
		APIKeyHash:  security.HashID("secret"),
		ToolCalls:   []string{"searchHotels"},
		ModelCalls:  2,
		Outcome:     "ok",
		ExecutionMs: 812,
	})
	assert.Equal(t, ts, row.Timestamp)
	assert.Equal(t, "hotelSearch", row.Flow)
	assert.Equal(t, int64(2), row.ModelCalls)
	assert.Equal(t, []string{"searchHotels"}, row.ToolCalls)
	assert.NotEqual(t, "secret", row.APIKeyHash)
}

// TestPostgresBookings runs against a real database when
// TOURNAIJA_TEST_DATABASE_URL is set.
func TestPostgresBookings(t *testing.T) {
	url := os.Getenv("TOURNAIJA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TOURNAIJA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pg, err := service.NewPostgresBookings(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pg.Close)
	require.NoError(t, pg.Migrate(ctx))
	require.NoError(t, pg.Migrate(ctx), "migration is idempotent")
	require.NoError(t, pg.TestConnection(ctx))

	b, err := pg.CreateBooking(ctx, "abuja-transcorp-hilton", service.GuestDetails{
		FullName: "Chidi Okeke",
		Email:    "chidi@example.com",
		Phone:    "+2348098765432",
	})
	require.NoError(t, err)

	got, err := pg.GetBooking(ctx, b.ConfirmationID)
	require.NoError(t, err)
	assert.Equal(t, b.HotelID, got.HotelID)
	assert.Equal(t, "Chidi Okeke", got.Guest.FullName)
	assert.Equal(t, service.BookingConfirmed, got.Status)

	_, err = pg.GetBooking(ctx, "TOURNAIJA-MISSING0")
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

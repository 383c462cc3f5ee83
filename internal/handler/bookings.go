package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tournaija/tournaija/internal/models"
	"github.com/tournaija/tournaija/internal/security"
	"github.com/tournaija/tournaija/internal/service"
)

// BookingsHandler looks up stored bookings
type BookingsHandler struct {
	store  service.BookingStore
	masker *security.DataMasker
}

func NewBookingsHandler(store service.BookingStore, masker *security.DataMasker) *BookingsHandler {
	return &BookingsHandler{store: store, masker: masker}
}

// GetBooking handles GET /api/v1/bookings/{confirmation_id}
func (h *BookingsHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "confirmation_id")
	b, err := h.store.GetBooking(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		models.WriteError(w, http.StatusNotFound, "booking not found: "+id)
		return
	}
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "failed to get booking: "+err.Error())
		return
	}

	masked := *b
	masked.Guest.Email = h.masker.Email(b.Guest.Email)
	masked.Guest.Phone = h.masker.Phone(b.Guest.Phone)
	models.WriteJSON(w, http.StatusOK, models.BookingResponse{Status: "success", Booking: &masked})
}

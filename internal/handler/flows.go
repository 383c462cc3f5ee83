package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tournaija/tournaija/internal/flows"
	"github.com/tournaija/tournaija/internal/models"
	"github.com/tournaija/tournaija/internal/schema"
)

// maxBodyBytes bounds flow request bodies.
const maxBodyBytes = 1 << 20

// FlowHandler exposes the travel flows over HTTP.
type FlowHandler struct {
	flows *flows.Service
}

func NewFlowHandler(svc *flows.Service) *FlowHandler {
	return &FlowHandler{flows: svc}
}

// Itinerary handles POST /api/v1/itinerary
func (h *FlowHandler) Itinerary(w http.ResponseWriter, r *http.Request) {
	serveFlow(w, r, flows.FlowItinerary, flows.ItineraryInputSchema, h.flows.PlanItinerary)
}

// SearchHotels handles POST /api/v1/hotels/search
func (h *FlowHandler) SearchHotels(w http.ResponseWriter, r *http.Request) {
	serveFlow(w, r, flows.FlowHotelSearch, flows.HotelSearchInputSchema, h.flows.SearchHotels)
}

// BookHotel handles POST /api/v1/hotels/book
func (h *FlowHandler) BookHotel(w http.ResponseWriter, r *http.Request) {
	serveFlow(w, r, flows.FlowHotelBooking, flows.HotelBookingInputSchema, h.flows.BookHotel)
}

// PlanRoute handles POST /api/v1/routes
func (h *FlowHandler) PlanRoute(w http.ResponseWriter, r *http.Request) {
	serveFlow(w, r, flows.FlowRoute, flows.RouteInputSchema, h.flows.PlanRoute)
}

// Chat handles POST /api/v1/chat
func (h *FlowHandler) Chat(w http.ResponseWriter, r *http.Request) {
	serveFlow(w, r, flows.FlowChat, flows.ChatInputSchema, h.flows.Chat)
}

// Recommendations handles POST /api/v1/recommendations
func (h *FlowHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	serveFlow(w, r, flows.FlowRecommendations, flows.RecommendationInputSchema, h.flows.RecommendDestinations)
}

// Assistant handles POST /api/v1/assistant
func (h *FlowHandler) Assistant(w http.ResponseWriter, r *http.Request) {
	serveFlow(w, r, flows.FlowAssistant, flows.AssistantInputSchema, h.flows.Assist)
}

// serveFlow validates the request body against the flow's input schema,
// decodes it into In, runs the flow and maps its error to a status code: 400
// for invalid input, 422 for screened input and 503 (with the fallback body)
// when the language model is unavailable.
func serveFlow[In, Out any](w http.ResponseWriter, r *http.Request, flow string, sch *schema.Schema, run func(context.Context, In) (*Out, error)) {
	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	var in In
	if err := schema.Decode(sch, raw, &in); err != nil {
		if ve, ok := schema.AsValidationError(err); ok {
			models.WriteValidationError(w, ve)
			return
		}
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := run(r.Context(), in)
	if err == nil {
		models.WriteJSON(w, http.StatusOK, models.FlowResponse{Status: "success", Flow: flow, Data: out})
		return
	}

	if ve, ok := schema.AsValidationError(err); ok {
		models.WriteValidationError(w, ve)
		return
	}
	if fe, ok := flows.AsError(err); ok {
		switch fe.Kind {
		case flows.KindRejected:
			models.WriteError(w, http.StatusUnprocessableEntity, fe.Message)
			return
		case flows.KindUnavailable:
			resp := models.FlowResponse{Status: "error", Flow: flow, Message: fe.Message}
			if out != nil {
				resp.Data = out
			}
			models.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	log.Error().Err(err).Str("flow", flow).Msg("flow failed")
	models.WriteError(w, http.StatusInternalServerError, "internal error")
}

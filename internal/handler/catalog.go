package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tournaija/tournaija/internal/models"
	"github.com/tournaija/tournaija/internal/schema"
	"github.com/tournaija/tournaija/internal/service"
	"github.com/tournaija/tournaija/internal/tools"
)

// HotelIndexer loads hotels into the searchable catalog.
type HotelIndexer interface {
	IndexHotels(ctx context.Context, hotels []service.Hotel) error
}

// CatalogHandler manages the Elasticsearch hotel catalog
type CatalogHandler struct {
	index HotelIndexer
}

func NewCatalogHandler(index HotelIndexer) *CatalogHandler {
	return &CatalogHandler{index: index}
}

// IndexHotels handles POST /api/v1/hotels/catalog
func (h *CatalogHandler) IndexHotels(w http.ResponseWriter, r *http.Request) {
	var req models.IndexHotelsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Hotels) == 0 {
		models.WriteError(w, http.StatusBadRequest, "hotels is required")
		return
	}
	for _, hotel := range req.Hotels {
		if _, err := schema.Validate(tools.HotelSchema, hotel); err != nil {
			if ve, ok := schema.AsValidationError(err); ok {
				models.WriteValidationError(w, ve)
				return
			}
			models.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := h.index.IndexHotels(r.Context(), req.Hotels); err != nil {
		models.WriteError(w, http.StatusInternalServerError, "failed to index hotels: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"indexed": len(req.Hotels),
	})
}

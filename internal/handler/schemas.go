package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tournaija/tournaija/internal/models"
	"github.com/tournaija/tournaija/internal/schema"
)

// SchemasHandler describes the registered flow and tool schemas
type SchemasHandler struct {
	registry *schema.Registry
}

func NewSchemasHandler(registry *schema.Registry) *SchemasHandler {
	return &SchemasHandler{registry: registry}
}

// ListSchemas handles GET /api/v1/schemas
func (h *SchemasHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	models.WriteJSON(w, http.StatusOK, models.SchemaListResponse{
		Status:  "success",
		Schemas: names,
		Count:   len(names),
	})
}

// GetSchema handles GET /api/v1/schemas/{name}
func (h *SchemasHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, ok := h.registry.Lookup(name)
	if !ok {
		models.WriteError(w, http.StatusNotFound, "schema not found: "+name)
		return
	}
	doc, err := schema.DescribeJSON(s)
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "failed to describe schema: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, models.SchemaResponse{Status: "success", Name: name, Schema: doc})
}

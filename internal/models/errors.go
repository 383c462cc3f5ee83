package models

import (
	"encoding/json"
	"net/http"

	"github.com/tournaija/tournaija/internal/schema"
)

type ErrorResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Code    int            `json:"code,omitempty"`
	Issues  []schema.Issue `json:"issues,omitempty"`
}

func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

// WriteValidationError writes a 400 listing every offending field.
func WriteValidationError(w http.ResponseWriter, ve *schema.ValidationError) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Status:  "error",
		Message: "invalid " + ve.Schema,
		Code:    http.StatusBadRequest,
		Issues:  ve.Issues,
	})
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

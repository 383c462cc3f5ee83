package models

import (
	"encoding/json"

	"github.com/tournaija/tournaija/internal/service"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// FlowResponse wraps every flow result. Data is present on success and,
// when the language model is unavailable, carries the fallback output.
type FlowResponse struct {
	Status  string `json:"status"`
	Flow    string `json:"flow"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// SchemaListResponse is returned by GET /api/v1/schemas
type SchemaListResponse struct {
	Status  string   `json:"status"`
	Schemas []string `json:"schemas"`
	Count   int      `json:"count"`
}

// SchemaResponse is returned by GET /api/v1/schemas/{name}
type SchemaResponse struct {
	Status string          `json:"status"`
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

// BookingResponse is returned by GET /api/v1/bookings/{confirmation_id}
type BookingResponse struct {
	Status  string           `json:"status"`
	Booking *service.Booking `json:"booking"`
}

// AuditSummaryResponse is returned by GET /api/v1/audit/summary
type AuditSummaryResponse struct {
	Status  string                 `json:"status"`
	Hours   int                    `json:"hours"`
	Summary []service.AuditSummary `json:"summary"`
}

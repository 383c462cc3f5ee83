package models

import "github.com/tournaija/tournaija/internal/service"

// IndexHotelsRequest for POST /api/v1/hotels/catalog
type IndexHotelsRequest struct {
	Hotels []service.Hotel `json:"hotels"`
}

// AuditSummaryRequest holds the query parameters of GET /api/v1/audit/summary
type AuditSummaryRequest struct {
	Hours int
}

func (r *AuditSummaryRequest) SetDefaults() {
	if r.Hours == 0 {
		r.Hours = 24
	}
	if r.Hours < 1 {
		r.Hours = 1
	}
	if r.Hours > 24*30 {
		r.Hours = 24 * 30
	}
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tournaija/tournaija/internal/models"
	"github.com/tournaija/tournaija/internal/service"
)

// AuditSummarizer reports per-flow audit statistics.
type AuditSummarizer interface {
	SummarizeAudit(ctx context.Context, since time.Duration) ([]service.AuditSummary, error)
}

// AuditHandler serves audit statistics from the audit warehouse
type AuditHandler struct {
	audit AuditSummarizer
}

func NewAuditHandler(audit AuditSummarizer) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Summary handles GET /api/v1/audit/summary?hours=24
func (h *AuditHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req models.AuditSummaryRequest
	if v := r.URL.Query().Get("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			models.WriteError(w, http.StatusBadRequest, "hours must be an integer")
			return
		}
		req.Hours = n
	}
	req.SetDefaults()

	summary, err := h.audit.SummarizeAudit(r.Context(), time.Duration(req.Hours)*time.Hour)
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "audit summary failed: "+err.Error())
		return
	}
	if summary == nil {
		summary = []service.AuditSummary{}
	}
	models.WriteJSON(w, http.StatusOK, models.AuditSummaryResponse{Status: "success", Hours: req.Hours, Summary: summary})
}

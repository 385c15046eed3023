package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndthanh/storefront/internal/stats"
)

type StatsHandler struct {
	svc stats.Service
}

func NewStatsHandler(svc stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/stats/summary", h.summary)
}

// summary reports revenue and order counts for the half-open period
// [from, to). Both bounds are RFC 3339 query parameters; from defaults to 30
// days ago and to defaults to now.
func (h *StatsHandler) summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid from parameter, want RFC 3339")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid to parameter, want RFC 3339")
			return
		}
		to = parsed
	}

	summary, err := h.svc.Summarize(r.Context(), from, to)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ndthanh/storefront/internal/review"
)

type ReviewHandler struct {
	svc      review.Service
	validate *validator.Validate
}

func NewReviewHandler(svc review.Service) *ReviewHandler {
	return &ReviewHandler{svc: svc, validate: validator.New()}
}

type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// RegisterRoutes mounts the customer-facing review endpoints.
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products/{id}/reviews", h.listByProduct)
	r.Post("/orders/{id}/lines/{lineID}/review", h.add)
	r.Post("/reviews/{id}/report", h.report)
}

// RegisterAdminRoutes mounts the moderation endpoints.
func (h *ReviewHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/reviews/reported", h.listReported)
	r.Post("/reviews/{id}/dismiss", h.dismiss)
	r.Delete("/reviews/{id}", h.delete)
}

func (h *ReviewHandler) listByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	reviews, err := h.svc.ListByProduct(r.Context(), productID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) add(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "missing or invalid user identity")
		return
	}

	orderID, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	lineID, err := parseIDParam(r, "lineID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order line id")
		return
	}

	var req AddReviewRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rev, err := h.svc.Add(r.Context(), userID, orderID, lineID, req.Rating, req.Comment)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, rev)
}

func (h *ReviewHandler) report(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	if err := h.svc.Report(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reported"})
}

func (h *ReviewHandler) listReported(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.ListReported(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	if err := h.svc.Dismiss(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func (h *ReviewHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

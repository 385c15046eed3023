package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/ndthanh/storefront/internal/order"
)

// AdminOrderHandler drives the fulfillment workflow from the back office.
type AdminOrderHandler struct {
	svc order.Service
}

func NewAdminOrderHandler(svc order.Service) *AdminOrderHandler {
	return &AdminOrderHandler{svc: svc}
}

func (h *AdminOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/advance", h.advance)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Post("/orders/{id}/approve-cancellation", h.approveCancellation)
	r.Post("/orders/{id}/reject-cancellation", h.rejectCancellation)
	r.Post("/orders/{id}/accept-return", h.acceptReturn)
	r.Post("/orders/{id}/confirm-payment", h.confirmPayment)
}

func (h *AdminOrderHandler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}

	respondWithJSON(w, http.StatusOK, views)
}

func (h *AdminOrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderView(*o))
}

// apply runs one single-step admin action and renders the resulting order.
func (h *AdminOrderHandler) apply(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := op(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderView(*o))
}

func (h *AdminOrderHandler) advance(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.svc.Advance)
}

func (h *AdminOrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.svc.Cancel)
}

func (h *AdminOrderHandler) approveCancellation(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.svc.ApproveCancellation)
}

func (h *AdminOrderHandler) rejectCancellation(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.svc.RejectCancellation)
}

func (h *AdminOrderHandler) acceptReturn(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.svc.AcceptReturn)
}

func (h *AdminOrderHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.svc.ConfirmPayment)
}

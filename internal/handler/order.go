package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ndthanh/storefront/internal/order"
)

type CancellationRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type ReturnRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// OrderView decorates an order with its presentation lookups, so UI clients
// don't reimplement the status tables.
type OrderView struct {
	order.Order
	StatusLabel string `json:"status_label"`
	StatusColor string `json:"status_color"`
}

func newOrderView(o order.Order) OrderView {
	return OrderView{
		Order:       o,
		StatusLabel: o.Status.Label(),
		StatusColor: o.Status.BadgeColor(),
	}
}

// OrderHandler handles the customer-facing order routes: history, detail,
// cancellation requests and return requests.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.history)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/cancel-request", h.requestCancellation)
	r.Post("/orders/{id}/return-request", h.requestReturn)
}

func (h *OrderHandler) history(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	orders, err := h.svc.ListByUser(r.Context(), userID)
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

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

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
	if o.UserID != userID {
		respondWithError(w, http.StatusNotFound, order.ErrNotOwner.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderView(*o))
}

func (h *OrderHandler) requestCancellation(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var payload CancellationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		respondValidationError(w, err)
		return
	}

	o, err := h.svc.RequestCancellation(r.Context(), id, userID, payload.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderView(*o))
}

func (h *OrderHandler) requestReturn(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var payload ReturnRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		respondValidationError(w, err)
		return
	}

	o, err := h.svc.RequestReturn(r.Context(), id, userID, payload.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderView(*o))
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/ndthanh/storefront/internal/cart"
	"github.com/ndthanh/storefront/internal/order"
)

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=1000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=1000"`
}

type CheckoutRequest struct {
	ItemIDs       []string `json:"item_ids" validate:"dive,uuid4"`
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=COD BANK_TRANSFER"`
}

// CartHandler handles the shopping cart and checkout.
type CartHandler struct {
	svc      cart.Service
	validate *validator.Validate
}

func NewCartHandler(svc cart.Service) *CartHandler {
	return &CartHandler{svc: svc, validate: validator.New()}
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.list)
	r.Post("/cart", h.add)
	r.Put("/cart/{id}", h.updateQuantity)
	r.Delete("/cart/{id}", h.remove)
	r.Post("/cart/checkout", h.checkout)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	var payload AddCartItemRequest
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

	productID, err := uuid.FromString(payload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.svc.Add(r.Context(), userID, productID, payload.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	views, err := h.svc.List(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, views)
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	itemID, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	var payload UpdateCartItemRequest
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

	if err := h.svc.UpdateQuantity(r.Context(), userID, itemID, payload.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	itemID, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	if err := h.svc.Remove(r.Context(), userID, itemID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	var payload CheckoutRequest
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

	itemIDs := make([]uuid.UUID, 0, len(payload.ItemIDs))
	for _, raw := range payload.ItemIDs {
		id, err := uuid.FromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid cart item id")
			return
		}
		itemIDs = append(itemIDs, id)
	}

	o, err := h.svc.Checkout(r.Context(), userID, itemIDs, order.PaymentMethod(payload.PaymentMethod))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, o)
}

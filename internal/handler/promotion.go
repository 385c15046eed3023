package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/ndthanh/storefront/internal/catalog"
	"github.com/ndthanh/storefront/internal/promotion"
)

type PromotionRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	DiscountKind  string   `json:"discount_kind" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	DiscountValue float64  `json:"discount_value" validate:"gte=0"`
	Scope         string   `json:"scope" validate:"required,oneof=ALL_PRODUCTS CATEGORIES INDIVIDUAL_PRODUCTS"`
	CategoryIDs   []string `json:"category_ids" validate:"dive,uuid4"`
	ProductIDs    []string `json:"product_ids" validate:"dive,uuid4"`
	StartsAt      string   `json:"starts_at" validate:"required"`
	EndsAt        string   `json:"ends_at" validate:"required"`
	Active        *bool    `json:"active"`
}

// PromotionHandler handles the admin CRUD over discount campaigns and the
// public price quote endpoint.
type PromotionHandler struct {
	svc      promotion.Service
	products catalog.Service
	validate *validator.Validate
}

func NewPromotionHandler(svc promotion.Service, products catalog.Service) *PromotionHandler {
	return &PromotionHandler{svc: svc, products: products, validate: validator.New()}
}

func (h *PromotionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products/{id}/price", h.quote)
}

func (h *PromotionHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/promotions", h.list)
	r.Post("/promotions", h.create)
	r.Get("/promotions/{id}", h.get)
	r.Put("/promotions/{id}", h.update)
	r.Post("/promotions/{id}/toggle", h.toggle)
	r.Delete("/promotions/{id}", h.delete)
}

// PriceQuoteResponse is the promotional price of one product right now.
type PriceQuoteResponse struct {
	ProductID     string               `json:"product_id"`
	OriginalPrice float64              `json:"original_price"`
	FinalPrice    float64              `json:"final_price"`
	Promotion     *promotion.Promotion `json:"promotion,omitempty"`
}

func (h *PromotionHandler) quote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.GetProductByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	q, err := h.svc.QuoteFor(r.Context(), *product)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, PriceQuoteResponse{
		ProductID:     product.ID.String(),
		OriginalPrice: product.Price,
		FinalPrice:    q.FinalPrice,
		Promotion:     q.Applied,
	})
}

func (h *PromotionHandler) decode(r *http.Request) (*promotion.Promotion, error) {
	var payload PromotionRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}
	if err := h.validate.Struct(payload); err != nil {
		return nil, err
	}

	startsAt, err := time.Parse(time.RFC3339, payload.StartsAt)
	if err != nil {
		return nil, err
	}
	endsAt, err := time.Parse(time.RFC3339, payload.EndsAt)
	if err != nil {
		return nil, err
	}

	p := &promotion.Promotion{
		Name:          payload.Name,
		Description:   payload.Description,
		DiscountKind:  promotion.DiscountKind(payload.DiscountKind),
		DiscountValue: payload.DiscountValue,
		Scope:         promotion.TargetScope(payload.Scope),
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		Active:        true,
	}
	if payload.Active != nil {
		p.Active = *payload.Active
	}

	for _, raw := range payload.CategoryIDs {
		id, err := uuid.FromString(raw)
		if err != nil {
			return nil, err
		}
		p.CategoryIDs = append(p.CategoryIDs, id)
	}
	for _, raw := range payload.ProductIDs {
		id, err := uuid.FromString(raw)
		if err != nil {
			return nil, err
		}
		p.ProductIDs = append(p.ProductIDs, id)
	}

	return p, nil
}

func (h *PromotionHandler) create(w http.ResponseWriter, r *http.Request) {
	p, err := h.decode(r)
	if err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			respondValidationError(w, err)
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Create(r.Context(), p); err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *PromotionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *PromotionHandler) list(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.svc.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, promotions)
}

func (h *PromotionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}

	p, err := h.decode(r)
	if err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			respondValidationError(w, err)
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = id

	if err := h.svc.Update(r.Context(), p); err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *PromotionHandler) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}

	p, err := h.svc.Toggle(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *PromotionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

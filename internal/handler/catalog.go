package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndthanh/storefront/internal/catalog"
)

type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" validate:"gte=0"`
	CategoryID    string  `json:"category_id" validate:"required,uuid4"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	ImageURL      string  `json:"image_url"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CatalogHandler handles HTTP requests for products and categories.
type CatalogHandler struct {
	svc      catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc, validate: validator.New()}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.listCategories)
}

func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Post("/categories", h.createCategory)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload CreateProductRequest

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

	categoryID, err := uuid.FromString(payload.CategoryID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	p := catalog.Product{
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		CategoryID:    categoryID,
		StockQuantity: payload.StockQuantity,
		ImageURL:      payload.ImageURL,
	}
	if err := h.svc.CreateProduct(r.Context(), &p); err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := uuid.Nil
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		parsed, err := uuid.FromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		categoryID = parsed
	}

	products, err := h.svc.ListProducts(r.Context(), categoryID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var payload CreateProductRequest
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

	categoryID, err := uuid.FromString(payload.CategoryID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	existing, err := h.svc.GetProductByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	existing.Name = payload.Name
	existing.Description = payload.Description
	existing.Price = payload.Price
	existing.CategoryID = categoryID
	existing.StockQuantity = payload.StockQuantity
	existing.Available = payload.StockQuantity > 0
	existing.ImageURL = payload.ImageURL

	if err := h.svc.UpdateProduct(r.Context(), existing); err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, existing)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var payload CreateCategoryRequest

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

	c := catalog.Category{Name: payload.Name}
	if err := h.svc.CreateCategory(r.Context(), &c); err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

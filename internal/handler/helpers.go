package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndthanh/storefront/internal/cart"
	"github.com/ndthanh/storefront/internal/catalog"
	"github.com/ndthanh/storefront/internal/notification"
	"github.com/ndthanh/storefront/internal/order"
	"github.com/ndthanh/storefront/internal/promotion"
	"github.com/ndthanh/storefront/internal/review"
	"github.com/ndthanh/storefront/internal/stats"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return
	}
	log.Error().Err(err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fmt.Sprintf("failed on %q validation", fieldErr.Tag())
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrNotOwner),
		errors.Is(err, promotion.ErrPromotionNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, review.ErrReviewNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, order.ErrNotBankTransfer),
		errors.Is(err, order.ErrStaleOrder),
		errors.Is(err, review.ErrAlreadyReviewed),
		errors.Is(err, promotion.ErrExpiredWindow):
		return http.StatusConflict
	case errors.Is(err, order.ErrPreconditionFailed),
		errors.Is(err, review.ErrNotReviewable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrValidation),
		errors.Is(err, promotion.ErrValidation),
		errors.Is(err, cart.ErrValidation),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrItemUnavailable),
		errors.Is(err, review.ErrValidation),
		errors.Is(err, stats.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondDomainError(w http.ResponseWriter, err error) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unhandled error in handler")
		respondWithError(w, code, "internal server error")
		return
	}
	respondWithError(w, code, err.Error())
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.FromString(chi.URLParam(r, name))
}

// requestUserID reads the authenticated user's ID, which the auth gateway in
// front of this service puts on every request.
func requestUserID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, errors.New("missing X-User-ID header")
	}
	return uuid.FromString(raw)
}

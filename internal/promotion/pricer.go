package promotion

import (
	"errors"
	"fmt"
	"time"

	"github.com/ndthanh/storefront/internal/catalog"
)

var ErrValidation = errors.New("invalid pricing input")

// Quote is the outcome of resolving a product's price against the promotions
// in force. Applied is nil when no promotion beat the list price.
type Quote struct {
	FinalPrice float64
	Applied    *Promotion
}

// ResolvePrice picks the lowest valid price for the product across the given
// promotions. The candidate set may contain inactive, expired or inapplicable
// promotions; filtering is done here, not by the caller. Ties keep the
// first-seen promotion, so iteration order of the input slice is the
// tie-break. The result never drops below zero and never exceeds the list
// price.
func ResolvePrice(product catalog.Product, promotions []Promotion, now time.Time) (Quote, error) {
	if product.Price < 0 {
		return Quote{}, fmt.Errorf("%w: product price must be non-negative, got %f", ErrValidation, product.Price)
	}
	for _, promo := range promotions {
		if promo.DiscountValue < 0 {
			return Quote{}, fmt.Errorf("%w: discount value of promotion %s must be non-negative, got %f", ErrValidation, promo.ID, promo.DiscountValue)
		}
	}

	quote := Quote{FinalPrice: product.Price}

	for i := range promotions {
		promo := promotions[i]

		if !promo.ValidAt(now) || !promo.AppliesTo(product) {
			continue
		}

		var candidate float64
		switch promo.DiscountKind {
		case DiscountPercentage:
			candidate = product.Price * (1 - promo.DiscountValue/100)
		case DiscountFixed:
			candidate = product.Price - promo.DiscountValue
		default:
			continue
		}

		if candidate < quote.FinalPrice {
			quote.FinalPrice = candidate
			quote.Applied = &promo
		}
	}

	if quote.FinalPrice < 0 {
		quote.FinalPrice = 0
	}

	return quote, nil
}

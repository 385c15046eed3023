package promotion

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/ndthanh/storefront/internal/catalog"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "PERCENTAGE"
	DiscountFixed      DiscountKind = "FIXED_AMOUNT"
)

func (k DiscountKind) String() string {
	return string(k)
}

type TargetScope string

const (
	ScopeAllProducts        TargetScope = "ALL_PRODUCTS"
	ScopeCategories         TargetScope = "CATEGORIES"
	ScopeIndividualProducts TargetScope = "INDIVIDUAL_PRODUCTS"
)

func (t TargetScope) String() string {
	return string(t)
}

// Promotion is a time-windowed discount campaign. CategoryIDs and ProductIDs
// are only meaningful for the matching scope and are ignored otherwise.
type Promotion struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	Description   string       `json:"description,omitempty" db:"description"`
	DiscountKind  DiscountKind `json:"discount_kind" db:"discount_kind"`
	DiscountValue float64      `json:"discount_value" db:"discount_value"`
	Scope         TargetScope  `json:"scope" db:"scope"`
	CategoryIDs   []uuid.UUID  `json:"category_ids,omitempty" db:"-"`
	ProductIDs    []uuid.UUID  `json:"product_ids,omitempty" db:"-"`
	StartsAt      time.Time    `json:"starts_at" db:"starts_at"`
	EndsAt        time.Time    `json:"ends_at" db:"ends_at"`
	Active        bool         `json:"active" db:"active"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// ValidAt reports whether the promotion may be applied at the given instant.
func (p Promotion) ValidAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	return !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// AppliesTo reports whether the promotion targets the given product.
func (p Promotion) AppliesTo(product catalog.Product) bool {
	switch p.Scope {
	case ScopeAllProducts:
		return true
	case ScopeCategories:
		for _, id := range p.CategoryIDs {
			if id == product.CategoryID {
				return true
			}
		}
	case ScopeIndividualProducts:
		for _, id := range p.ProductIDs {
			if id == product.ID {
				return true
			}
		}
	}
	return false
}

package promotion_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndthanh/storefront/internal/catalog"
	"github.com/ndthanh/storefront/internal/promotion"
)

var (
	testNow        = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	testCategoryID = uuid.Must(uuid.FromString("4b4a4ff4-09bb-4aff-b72f-ecb8c50c9a4c"))
	testProductID  = uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))
)

func testProduct(price float64) catalog.Product {
	return catalog.Product{
		ID:         testProductID,
		Name:       "Mechanical keyboard",
		Price:      price,
		CategoryID: testCategoryID,
	}
}

func activePromo(kind promotion.DiscountKind, value float64) promotion.Promotion {
	return promotion.Promotion{
		ID:            uuid.Must(uuid.NewV4()),
		Name:          "Spring sale",
		DiscountKind:  kind,
		DiscountValue: value,
		Scope:         promotion.ScopeAllProducts,
		StartsAt:      testNow.Add(-24 * time.Hour),
		EndsAt:        testNow.Add(24 * time.Hour),
		Active:        true,
	}
}

func TestResolvePrice(t *testing.T) {
	tests := []struct {
		name        string
		product     catalog.Product
		promotions  func() []promotion.Promotion
		wantPrice   float64
		wantApplied bool
	}{
		{
			name:        "no_promotions_keeps_list_price",
			product:     testProduct(100),
			promotions:  func() []promotion.Promotion { return nil },
			wantPrice:   100,
			wantApplied: false,
		},
		{
			name:    "percentage_discount",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				return []promotion.Promotion{activePromo(promotion.DiscountPercentage, 20)}
			},
			wantPrice:   80,
			wantApplied: true,
		},
		{
			name:    "fixed_discount",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				return []promotion.Promotion{activePromo(promotion.DiscountFixed, 35)}
			},
			wantPrice:   65,
			wantApplied: true,
		},
		{
			name:    "inactive_promotion_ignored",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				p := activePromo(promotion.DiscountPercentage, 50)
				p.Active = false
				return []promotion.Promotion{p}
			},
			wantPrice:   100,
			wantApplied: false,
		},
		{
			name:    "expired_promotion_ignored",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				p := activePromo(promotion.DiscountPercentage, 50)
				p.StartsAt = testNow.Add(-48 * time.Hour)
				p.EndsAt = testNow.Add(-24 * time.Hour)
				return []promotion.Promotion{p}
			},
			wantPrice:   100,
			wantApplied: false,
		},
		{
			name:    "not_yet_started_promotion_ignored",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				p := activePromo(promotion.DiscountPercentage, 50)
				p.StartsAt = testNow.Add(24 * time.Hour)
				p.EndsAt = testNow.Add(48 * time.Hour)
				return []promotion.Promotion{p}
			},
			wantPrice:   100,
			wantApplied: false,
		},
		{
			name:    "window_bounds_are_inclusive",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				p := activePromo(promotion.DiscountPercentage, 10)
				p.StartsAt = testNow
				p.EndsAt = testNow
				return []promotion.Promotion{p}
			},
			wantPrice:   90,
			wantApplied: true,
		},
		{
			name:    "category_scope_mismatch_ignored",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				p := activePromo(promotion.DiscountPercentage, 50)
				p.Scope = promotion.ScopeCategories
				p.CategoryIDs = []uuid.UUID{uuid.Must(uuid.NewV4())}
				return []promotion.Promotion{p}
			},
			wantPrice:   100,
			wantApplied: false,
		},
		{
			name:    "category_scope_match_applies",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				p := activePromo(promotion.DiscountPercentage, 30)
				p.Scope = promotion.ScopeCategories
				p.CategoryIDs = []uuid.UUID{testCategoryID}
				return []promotion.Promotion{p}
			},
			wantPrice:   70,
			wantApplied: true,
		},
		{
			name:    "product_scope_match_applies",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				p := activePromo(promotion.DiscountFixed, 15)
				p.Scope = promotion.ScopeIndividualProducts
				p.ProductIDs = []uuid.UUID{testProductID}
				return []promotion.Promotion{p}
			},
			wantPrice:   85,
			wantApplied: true,
		},
		{
			name:    "fixed_discount_clamped_at_zero",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				return []promotion.Promotion{activePromo(promotion.DiscountFixed, 150)}
			},
			wantPrice:   0,
			wantApplied: true,
		},
		{
			name:    "unknown_discount_kind_skipped",
			product: testProduct(100),
			promotions: func() []promotion.Promotion {
				return []promotion.Promotion{activePromo(promotion.DiscountKind("BOGOF"), 50)}
			},
			wantPrice:   100,
			wantApplied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := promotion.ResolvePrice(tt.product, tt.promotions(), testNow)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPrice, quote.FinalPrice, 1e-9)
			if tt.wantApplied {
				assert.NotNil(t, quote.Applied)
			} else {
				assert.Nil(t, quote.Applied)
			}
		})
	}
}

func TestResolvePrice_BestPriceWinsRegardlessOfOrder(t *testing.T) {
	better := activePromo(promotion.DiscountPercentage, 20)
	worse := activePromo(promotion.DiscountPercentage, 10)

	for _, promotions := range [][]promotion.Promotion{
		{better, worse},
		{worse, better},
	} {
		quote, err := promotion.ResolvePrice(testProduct(100), promotions, testNow)
		require.NoError(t, err)
		assert.InDelta(t, 80.0, quote.FinalPrice, 1e-9)
		require.NotNil(t, quote.Applied)
		assert.Equal(t, better.ID, quote.Applied.ID)
	}
}

func TestResolvePrice_TieKeepsFirstSeen(t *testing.T) {
	first := activePromo(promotion.DiscountPercentage, 25)
	second := activePromo(promotion.DiscountFixed, 25)

	quote, err := promotion.ResolvePrice(testProduct(100), []promotion.Promotion{first, second}, testNow)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, quote.FinalPrice, 1e-9)
	require.NotNil(t, quote.Applied)
	assert.Equal(t, first.ID, quote.Applied.ID)
}

func TestResolvePrice_RejectsNegativeInputs(t *testing.T) {
	_, err := promotion.ResolvePrice(testProduct(-1), nil, testNow)
	assert.True(t, errors.Is(err, promotion.ErrValidation))

	bad := activePromo(promotion.DiscountFixed, -5)
	_, err = promotion.ResolvePrice(testProduct(100), []promotion.Promotion{bad}, testNow)
	assert.True(t, errors.Is(err, promotion.ErrValidation))
}

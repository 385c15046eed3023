package cart_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndthanh/storefront/internal/cart"
	"github.com/ndthanh/storefront/internal/catalog"
	"github.com/ndthanh/storefront/internal/order"
	"github.com/ndthanh/storefront/internal/promotion"
)

var (
	checkoutNow = time.Date(2026, time.May, 10, 14, 0, 0, 0, time.UTC)
	buyerID     = uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	keyboardID  = uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))
	mouseID     = uuid.Must(uuid.FromString("6fa459ea-ee8a-3ca4-894e-db77e160355e"))
)

type mockCartRepository struct {
	upsertFunc         func(ctx context.Context, item *cart.Item) error
	getByIDFunc        func(ctx context.Context, id uuid.UUID) (*cart.Item, error)
	listByUserFunc     func(ctx context.Context, userID uuid.UUID) ([]cart.Item, error)
	updateQuantityFunc func(ctx context.Context, id uuid.UUID, quantity int) error
	deleteFunc         func(ctx context.Context, id uuid.UUID) error
	deleteByIDsFunc    func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

func (m *mockCartRepository) Upsert(ctx context.Context, item *cart.Item) error {
	return m.upsertFunc(ctx, item)
}

func (m *mockCartRepository) GetByID(ctx context.Context, id uuid.UUID) (*cart.Item, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockCartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return m.updateQuantityFunc(ctx, id, quantity)
}

func (m *mockCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockCartRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return m.deleteByIDsFunc(ctx, userID, ids)
}

type mockProductRepository struct {
	catalog.Repository
	getProductByIDFunc   func(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	getProductsByIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

func (m *mockProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return m.getProductByIDFunc(ctx, id)
}

func (m *mockProductRepository) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	return m.getProductsByIDsFunc(ctx, ids)
}

type mockPromotionRepository struct {
	promotion.Repository
	listActiveFunc func(ctx context.Context, now time.Time) ([]promotion.Promotion, error)
}

func (m *mockPromotionRepository) ListActive(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
	return m.listActiveFunc(ctx, now)
}

type mockOrderRepository struct {
	order.Repository
	createFunc func(ctx context.Context, o *order.Order, stock []catalog.Product) error
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order, stock []catalog.Product) error {
	return m.createFunc(ctx, o, stock)
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, message string, at time.Time) error {
	m.messages = append(m.messages, message)
	return nil
}

func fixedNow() time.Time {
	return checkoutNow
}

func cartItems() []cart.Item {
	return []cart.Item{
		{ID: uuid.Must(uuid.NewV4()), UserID: buyerID, ProductID: keyboardID, Quantity: 2},
		{ID: uuid.Must(uuid.NewV4()), UserID: buyerID, ProductID: mouseID, Quantity: 1},
	}
}

func stockedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: keyboardID, Name: "Mechanical keyboard", Price: 100, StockQuantity: 2, Available: true},
		{ID: mouseID, Name: "Wireless mouse", Price: 40, StockQuantity: 10, Available: true},
	}
}

func TestCartService_Add(t *testing.T) {
	product := stockedProducts()[0]

	t.Run("quantity_out_of_range", func(t *testing.T) {
		svc := cart.NewService(&mockCartRepository{}, &mockProductRepository{}, &mockPromotionRepository{}, &mockOrderRepository{}, &mockNotifier{}, fixedNow)
		err := svc.Add(context.Background(), buyerID, keyboardID, 0)
		assert.True(t, errors.Is(err, cart.ErrValidation))
	})

	t.Run("insufficient_stock", func(t *testing.T) {
		products := &mockProductRepository{
			getProductByIDFunc: func(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
				copied := product
				return &copied, nil
			},
		}
		svc := cart.NewService(&mockCartRepository{}, products, &mockPromotionRepository{}, &mockOrderRepository{}, &mockNotifier{}, fixedNow)

		err := svc.Add(context.Background(), buyerID, keyboardID, 5)
		assert.True(t, errors.Is(err, cart.ErrItemUnavailable))
	})

	t.Run("ok", func(t *testing.T) {
		var upserted *cart.Item
		repo := &mockCartRepository{
			upsertFunc: func(ctx context.Context, item *cart.Item) error {
				upserted = item
				return nil
			},
		}
		products := &mockProductRepository{
			getProductByIDFunc: func(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
				copied := product
				return &copied, nil
			},
		}
		svc := cart.NewService(repo, products, &mockPromotionRepository{}, &mockOrderRepository{}, &mockNotifier{}, fixedNow)

		require.NoError(t, svc.Add(context.Background(), buyerID, keyboardID, 2))
		require.NotNil(t, upserted)
		assert.Equal(t, 2, upserted.Quantity)
	})
}

func TestCartService_List_PricesAgainstActivePromotions(t *testing.T) {
	repo := &mockCartRepository{
		listByUserFunc: func(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
			return cartItems(), nil
		},
	}
	products := &mockProductRepository{
		getProductsByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
			return stockedProducts(), nil
		},
	}
	promotions := &mockPromotionRepository{
		listActiveFunc: func(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
			return []promotion.Promotion{{
				ID:            uuid.Must(uuid.NewV4()),
				Name:          "Everything off",
				DiscountKind:  promotion.DiscountPercentage,
				DiscountValue: 10,
				Scope:         promotion.ScopeAllProducts,
				StartsAt:      checkoutNow.Add(-time.Hour),
				EndsAt:        checkoutNow.Add(time.Hour),
				Active:        true,
			}}, nil
		},
	}
	svc := cart.NewService(repo, products, promotions, &mockOrderRepository{}, &mockNotifier{}, fixedNow)

	views, err := svc.List(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.InDelta(t, 90.0, views[0].FinalPrice, 1e-9)
	assert.InDelta(t, 36.0, views[1].FinalPrice, 1e-9)
}

func TestCartService_Checkout(t *testing.T) {
	t.Run("unknown_payment_method", func(t *testing.T) {
		svc := cart.NewService(&mockCartRepository{}, &mockProductRepository{}, &mockPromotionRepository{}, &mockOrderRepository{}, &mockNotifier{}, fixedNow)
		_, err := svc.Checkout(context.Background(), buyerID, nil, "CHEQUE")
		assert.True(t, errors.Is(err, cart.ErrValidation))
	})

	t.Run("empty_cart", func(t *testing.T) {
		repo := &mockCartRepository{
			listByUserFunc: func(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
				return nil, nil
			},
		}
		svc := cart.NewService(repo, &mockProductRepository{}, &mockPromotionRepository{}, &mockOrderRepository{}, &mockNotifier{}, fixedNow)

		_, err := svc.Checkout(context.Background(), buyerID, nil, order.PaymentCOD)
		assert.True(t, errors.Is(err, cart.ErrEmptyCart))
	})

	t.Run("unavailable_item_names_the_product", func(t *testing.T) {
		repo := &mockCartRepository{
			listByUserFunc: func(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
				return cartItems(), nil
			},
		}
		products := &mockProductRepository{
			getProductsByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
				stocked := stockedProducts()
				stocked[0].StockQuantity = 1
				return stocked, nil
			},
		}
		svc := cart.NewService(repo, products, &mockPromotionRepository{}, &mockOrderRepository{}, &mockNotifier{}, fixedNow)

		_, err := svc.Checkout(context.Background(), buyerID, nil, order.PaymentCOD)
		assert.True(t, errors.Is(err, cart.ErrItemUnavailable))
		assert.Contains(t, err.Error(), "Mechanical keyboard")
	})

	t.Run("cod_checkout_is_paid_and_decrements_stock", func(t *testing.T) {
		items := cartItems()
		repo := &mockCartRepository{
			listByUserFunc: func(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
				return items, nil
			},
			deleteByIDsFunc: func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
				assert.Len(t, ids, 2)
				return nil
			},
		}
		products := &mockProductRepository{
			getProductsByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
				return stockedProducts(), nil
			},
		}
		promotions := &mockPromotionRepository{
			listActiveFunc: func(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
				return nil, nil
			},
		}

		var createdStock []catalog.Product
		orders := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order, stock []catalog.Product) error {
				createdStock = stock
				return nil
			},
		}
		notifier := &mockNotifier{}
		svc := cart.NewService(repo, products, promotions, orders, notifier, fixedNow)

		o, err := svc.Checkout(context.Background(), buyerID, nil, order.PaymentCOD)
		require.NoError(t, err)

		assert.Equal(t, order.StatusAwaitingConfirmation, o.Status)
		assert.True(t, o.Paid)
		assert.Regexp(t, `^DH\d{5}$`, o.Code)
		require.Len(t, o.Lines, 2)
		assert.InDelta(t, 100.0, o.Lines[0].UnitPrice, 1e-9)
		assert.InDelta(t, 240.0, o.TotalAmount, 1e-9)

		require.Len(t, createdStock, 2)
		assert.Equal(t, 0, createdStock[0].StockQuantity)
		assert.False(t, createdStock[0].Available)
		assert.Equal(t, 9, createdStock[1].StockQuantity)
		assert.True(t, createdStock[1].Available)

		require.Len(t, notifier.messages, 1)
	})

	t.Run("bank_transfer_checkout_is_unpaid", func(t *testing.T) {
		items := cartItems()[:1]
		repo := &mockCartRepository{
			listByUserFunc: func(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
				return items, nil
			},
			deleteByIDsFunc: func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
				return nil
			},
		}
		products := &mockProductRepository{
			getProductsByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
				return stockedProducts()[:1], nil
			},
		}
		promotions := &mockPromotionRepository{
			listActiveFunc: func(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
				return nil, nil
			},
		}
		orders := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order, stock []catalog.Product) error {
				return nil
			},
		}
		svc := cart.NewService(repo, products, promotions, orders, &mockNotifier{}, fixedNow)

		o, err := svc.Checkout(context.Background(), buyerID, nil, order.PaymentBankTransfer)
		require.NoError(t, err)
		assert.False(t, o.Paid)
	})

	t.Run("selection_filters_the_cart", func(t *testing.T) {
		items := cartItems()
		repo := &mockCartRepository{
			listByUserFunc: func(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
				return items, nil
			},
			deleteByIDsFunc: func(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
				assert.Equal(t, []uuid.UUID{items[1].ID}, ids)
				return nil
			},
		}
		products := &mockProductRepository{
			getProductsByIDsFunc: func(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
				return stockedProducts(), nil
			},
		}
		promotions := &mockPromotionRepository{
			listActiveFunc: func(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
				return nil, nil
			},
		}
		orders := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order, stock []catalog.Product) error {
				return nil
			},
		}
		svc := cart.NewService(repo, products, promotions, orders, &mockNotifier{}, fixedNow)

		o, err := svc.Checkout(context.Background(), buyerID, []uuid.UUID{items[1].ID}, order.PaymentCOD)
		require.NoError(t, err)
		require.Len(t, o.Lines, 1)
		assert.Equal(t, mouseID, o.Lines[0].ProductID)
	})
}

func TestCartService_UpdateQuantity_OwnershipIsChecked(t *testing.T) {
	item := cartItems()[0]
	repo := &mockCartRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*cart.Item, error) {
			copied := item
			return &copied, nil
		},
	}
	svc := cart.NewService(repo, &mockProductRepository{}, &mockPromotionRepository{}, &mockOrderRepository{}, &mockNotifier{}, fixedNow)

	err := svc.UpdateQuantity(context.Background(), uuid.Must(uuid.NewV4()), item.ID, 3)
	assert.True(t, errors.Is(err, cart.ErrItemNotFound))
}

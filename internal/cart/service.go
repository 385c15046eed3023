package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndthanh/storefront/internal/catalog"
	"github.com/ndthanh/storefront/internal/order"
	"github.com/ndthanh/storefront/internal/promotion"
)

const maxQuantity = 1000

var (
	ErrValidation      = errors.New("invalid cart input")
	ErrEmptyCart       = errors.New("no cart items selected for checkout")
	ErrItemUnavailable = errors.New("some items are unavailable or out of stock")
)

type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	List(ctx context.Context, userID uuid.UUID) ([]View, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Checkout(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, method order.PaymentMethod) (*order.Order, error)
}

type service struct {
	repo       Repository
	products   catalog.Repository
	promotions promotion.Repository
	orders     order.Repository
	notifier   order.Notifier
	now        func() time.Time
}

func NewService(repo Repository, products catalog.Repository, promotions promotion.Repository, orders order.Repository, notifier order.Notifier, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       repo,
		products:   products,
		promotions: promotions,
		orders:     orders,
		notifier:   notifier,
		now:        now,
	}
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity < 1 || quantity > maxQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d, got %d", ErrValidation, maxQuantity, quantity)
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("service: failed to fetch product for cart: %w", err)
	}

	if !product.Available || product.StockQuantity < quantity {
		return fmt.Errorf("%w: %s", ErrItemUnavailable, product.Name)
	}

	item := &Item{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("service: failed to add cart item: %w", err)
	}

	return nil
}

// List returns the user's cart with each product priced against the
// promotions in force right now.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]View, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list cart items: %w", err)
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch cart products: %w", err)
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	now := s.now()
	promotions, err := s.promotions.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load promotions for cart pricing: %w", err)
	}

	views := make([]View, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Product was removed from the catalog; drop the stale row from view.
			continue
		}

		quote, err := promotion.ResolvePrice(product, promotions, now)
		if err != nil {
			return nil, fmt.Errorf("service: failed to price cart item %s: %w", item.ID, err)
		}

		views = append(views, View{Item: item, Product: product, FinalPrice: quote.FinalPrice})
	}

	return views, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity < 1 || quantity > maxQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d, got %d", ErrValidation, maxQuantity, quantity)
	}

	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("service: failed to fetch cart item: %w", err)
	}
	if item.UserID != userID {
		return ErrItemNotFound
	}

	if err := s.repo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return fmt.Errorf("service: failed to update cart item quantity: %w", err)
	}

	return nil
}

func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("service: failed to fetch cart item: %w", err)
	}
	if item.UserID != userID {
		return ErrItemNotFound
	}

	if err := s.repo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("service: failed to remove cart item: %w", err)
	}

	return nil
}

func newOrderCode() string {
	return fmt.Sprintf("DH%05d", rand.Intn(90000)+10000)
}

// Checkout turns the selected cart rows into an order. Each line's unit price
// is resolved through the promotion pricer and captured on the line; stock is
// decremented (and availability dropped at zero) in the same transaction that
// inserts the order. An empty itemIDs selects the whole cart.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, method order.PaymentMethod) (*order.Order, error) {
	switch method {
	case order.PaymentCOD, order.PaymentBankTransfer:
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list cart items for checkout: %w", err)
	}

	if len(itemIDs) > 0 {
		selected := make(map[uuid.UUID]bool, len(itemIDs))
		for _, id := range itemIDs {
			selected[id] = true
		}
		filtered := items[:0]
		for _, item := range items {
			if selected[item.ID] {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch products for checkout: %w", err)
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var unavailable []string
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			unavailable = append(unavailable, item.ProductID.String())
			continue
		}
		if !product.Available || product.StockQuantity < item.Quantity {
			unavailable = append(unavailable, product.Name)
		}
	}
	if len(unavailable) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, strings.Join(unavailable, ", "))
	}

	now := s.now()
	promotions, err := s.promotions.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load promotions for checkout: %w", err)
	}

	o := &order.Order{
		Code:          newOrderCode(),
		UserID:        userID,
		Status:        order.StatusAwaitingConfirmation,
		PaymentMethod: method,
		Paid:          method == order.PaymentCOD,
	}

	stock := make([]catalog.Product, 0, len(items))
	for _, item := range items {
		product := byID[item.ProductID]

		quote, err := promotion.ResolvePrice(product, promotions, now)
		if err != nil {
			return nil, fmt.Errorf("service: failed to price product %s: %w", product.ID, err)
		}

		o.Lines = append(o.Lines, order.Line{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: quote.FinalPrice,
		})
		o.TotalAmount += quote.FinalPrice * float64(item.Quantity)

		product.StockQuantity -= item.Quantity
		if product.StockQuantity <= 0 {
			product.StockQuantity = 0
			product.Available = false
		}
		stock = append(stock, product)
	}

	if err := s.orders.Create(ctx, o, stock); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create order from checkout")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	purchased := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		purchased = append(purchased, item.ID)
	}
	if err := s.repo.DeleteByIDs(ctx, userID, purchased); err != nil {
		// The order exists; a stale cart row is an annoyance, not a failure.
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear purchased cart items")
	}

	if err := s.notifier.Notify(ctx, userID, o.Status.NotificationMessage(o.Code), now); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to emit checkout notification")
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).Str("code", o.Code).Msg("service: checkout completed")
	return o, nil
}

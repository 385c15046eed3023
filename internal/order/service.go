package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndthanh/storefront/internal/catalog"
)

// Notifier is the sink lifecycle notifications are handed to once a
// transition has been persisted. Delivery beyond recording the message
// (email, realtime push) is the sink's business.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message string, at time.Time) error
}

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	Advance(ctx context.Context, orderID uuid.UUID) (*Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*Order, error)
	RequestCancellation(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*Order, error)
	ApproveCancellation(ctx context.Context, orderID uuid.UUID) (*Order, error)
	RejectCancellation(ctx context.Context, orderID uuid.UUID) (*Order, error)
	RequestReturn(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*Order, error)
	AcceptReturn(ctx context.Context, orderID uuid.UUID) (*Order, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*Order, error)
}

type service struct {
	repo     Repository
	products catalog.Repository
	notifier Notifier
	now      func() time.Time
}

// NewService wires the order repository, the product catalog (for stock
// restoration snapshots) and the notification sink. now may be nil, in which
// case time.Now is used.
func NewService(repo Repository, products catalog.Repository, notifier Notifier, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, products: products, notifier: notifier, now: now}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list user orders: %w", err)
	}
	return orders, nil
}

// loadSnapshot fetches the order and the products its lines reference, the
// full input a lifecycle operation works over.
func (s *service) loadSnapshot(ctx context.Context, orderID uuid.UUID) (*Order, []catalog.Product, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("service: failed to fetch order for transition: %w", err)
	}

	productIDs := make([]uuid.UUID, 0, len(o.Lines))
	for _, line := range o.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to fetch products for transition: %w", err)
	}

	return o, products, nil
}

// commit persists the transition and fans out its notifications. A failed
// notification is logged, not returned: the state change already happened.
func (s *service) commit(ctx context.Context, t Transition) (*Order, error) {
	if err := s.repo.ApplyTransition(ctx, t); err != nil {
		if errors.Is(err, ErrStaleOrder) || errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to persist transition: %w", err)
	}

	for _, n := range t.Notifications {
		if err := s.notifier.Notify(ctx, n.UserID, n.Message, n.CreatedAt); err != nil {
			log.Error().Err(err).Stringer("order_id", t.Order.ID).Stringer("user_id", n.UserID).Msg("service: failed to emit order notification")
		}
	}

	log.Info().
		Stringer("order_id", t.Order.ID).
		Stringer("old_status", t.PrevStatus).
		Stringer("new_status", t.Order.Status).
		Msg("service: order transition applied")

	result := t.Order
	return &result, nil
}

func (s *service) Advance(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for advance: %w", err)
	}

	t, err := Advance(*o, s.now())
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Stringer("status", o.Status).Msg("service: advance rejected")
		return nil, err
	}

	return s.commit(ctx, t)
}

func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, products, err := s.loadSnapshot(ctx, orderID)
	if err != nil {
		return nil, err
	}

	t, err := Cancel(*o, products, s.now())
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Stringer("status", o.Status).Msg("service: cancel rejected")
		return nil, err
	}

	return s.commit(ctx, t)
}

func (s *service) RequestCancellation(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*Order, error) {
	o, products, err := s.loadSnapshot(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			// Indistinguishable from not-owned on purpose: the requester
			// learns nothing about other users' orders.
			return nil, ErrNotOwner
		}
		return nil, err
	}

	t, err := RequestCancellation(*o, products, requesterID, reason, s.now())
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Stringer("requester_id", requesterID).Msg("service: cancellation request rejected")
		return nil, err
	}

	return s.commit(ctx, t)
}

func (s *service) ApproveCancellation(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, products, err := s.loadSnapshot(ctx, orderID)
	if err != nil {
		return nil, err
	}

	t, err := ApproveCancellation(*o, products, s.now())
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, t)
}

func (s *service) RejectCancellation(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for cancellation rejection: %w", err)
	}

	t, err := RejectCancellation(*o, s.now())
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, t)
}

func (s *service) RequestReturn(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrNotOwner
		}
		return nil, fmt.Errorf("service: failed to fetch order for return request: %w", err)
	}
	if o.UserID != requesterID {
		return nil, ErrNotOwner
	}

	t, err := RequestReturn(*o, reason, s.now())
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, t)
}

func (s *service) AcceptReturn(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for return acceptance: %w", err)
	}

	t, err := AcceptReturn(*o, s.now())
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, t)
}

func (s *service) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for payment confirmation: %w", err)
	}

	t, err := ConfirmPayment(*o, s.now())
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: payment confirmation rejected")
		return nil, err
	}

	return s.commit(ctx, t)
}

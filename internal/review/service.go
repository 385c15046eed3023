package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ndthanh/storefront/internal/order"
)

var (
	ErrValidation      = errors.New("invalid review input")
	ErrAlreadyReviewed = errors.New("order line has already been reviewed")
	ErrNotReviewable   = errors.New("order is not in a reviewable state")
)

type Service interface {
	Add(ctx context.Context, userID, orderID, lineID uuid.UUID, rating int, comment string) (*Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
	ListReported(ctx context.Context) ([]Review, error)
	Report(ctx context.Context, id uuid.UUID) error
	Dismiss(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	orders order.Repository
}

func NewService(repo Repository, orders order.Repository) Service {
	return &service{repo: repo, orders: orders}
}

// Add records a review for one line of a delivered or completed order owned
// by the reviewer. At most one review per line.
func (s *service) Add(ctx context.Context, userID, orderID, lineID uuid.UUID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrValidation, rating)
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, order.ErrNotOwner
		}
		return nil, fmt.Errorf("service: failed to fetch order for review: %w", err)
	}
	if o.UserID != userID {
		return nil, order.ErrNotOwner
	}

	if o.Status != order.StatusDelivered && o.Status != order.StatusCompleted {
		return nil, fmt.Errorf("%w: order %s is %s", ErrNotReviewable, o.Code, o.Status)
	}

	var line *order.Line
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			line = &o.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, fmt.Errorf("%w: order %s has no such line", ErrValidation, o.Code)
	}
	if line.Reviewed {
		return nil, ErrAlreadyReviewed
	}

	rev := &Review{
		ProductID: line.ProductID,
		OrderID:   orderID,
		LineID:    lineID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("line_id", lineID).Msg("service: failed to create review")
		return nil, fmt.Errorf("service: failed to create review: %w", err)
	}

	return rev, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *service) ListReported(ctx context.Context) ([]Review, error) {
	reviews, err := s.repo.ListReported(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list reported reviews: %w", err)
	}
	return reviews, nil
}

func (s *service) Report(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetReported(ctx, id, true); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("service: failed to report review: %w", err)
	}
	return nil
}

func (s *service) Dismiss(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetReported(ctx, id, false); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("service: failed to dismiss review report: %w", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("service: failed to delete review: %w", err)
	}
	log.Info().Stringer("review_id", id).Msg("service: review deleted")
	return nil
}

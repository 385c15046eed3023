package review_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndthanh/storefront/internal/order"
	"github.com/ndthanh/storefront/internal/review"
)

var (
	reviewerID = uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	strangerID = uuid.Must(uuid.FromString("9f8a1c44-2f61-4a10-8cce-2e9be1b4d0a3"))
)

type mockReviewRepository struct {
	review.Repository
	createFunc func(ctx context.Context, rev *review.Review) error
}

func (m *mockReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	return m.createFunc(ctx, rev)
}

type mockOrderRepository struct {
	order.Repository
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func deliveredOrder() order.Order {
	return order.Order{
		ID:     uuid.Must(uuid.NewV4()),
		Code:   "DH00042",
		UserID: reviewerID,
		Status: order.StatusDelivered,
		Lines: []order.Line{
			{ID: uuid.Must(uuid.NewV4()), ProductID: uuid.Must(uuid.NewV4()), Quantity: 1, UnitPrice: 80},
		},
	}
}

func TestReviewService_Add(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		o := deliveredOrder()
		orders := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				copied := o
				return &copied, nil
			},
		}
		var created *review.Review
		repo := &mockReviewRepository{
			createFunc: func(ctx context.Context, rev *review.Review) error {
				created = rev
				return nil
			},
		}
		svc := review.NewService(repo, orders)

		rev, err := svc.Add(context.Background(), reviewerID, o.ID, o.Lines[0].ID, 5, "great keyboard")
		require.NoError(t, err)
		assert.Equal(t, o.Lines[0].ProductID, rev.ProductID)
		assert.Equal(t, 5, rev.Rating)
		require.NotNil(t, created)
	})

	t.Run("rating_out_of_range", func(t *testing.T) {
		svc := review.NewService(&mockReviewRepository{}, &mockOrderRepository{})

		for _, rating := range []int{0, 6, -1} {
			_, err := svc.Add(context.Background(), reviewerID, uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), rating, "")
			assert.True(t, errors.Is(err, review.ErrValidation))
		}
	})

	t.Run("stranger_is_rejected", func(t *testing.T) {
		o := deliveredOrder()
		orders := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				copied := o
				return &copied, nil
			},
		}
		svc := review.NewService(&mockReviewRepository{}, orders)

		_, err := svc.Add(context.Background(), strangerID, o.ID, o.Lines[0].ID, 4, "")
		assert.True(t, errors.Is(err, order.ErrNotOwner))
	})

	t.Run("missing_order_masked_as_not_owner", func(t *testing.T) {
		orders := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
		}
		svc := review.NewService(&mockReviewRepository{}, orders)

		_, err := svc.Add(context.Background(), reviewerID, uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), 4, "")
		assert.True(t, errors.Is(err, order.ErrNotOwner))
	})

	t.Run("order_not_reviewable_yet", func(t *testing.T) {
		o := deliveredOrder()
		o.Status = order.StatusShipping
		orders := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				copied := o
				return &copied, nil
			},
		}
		svc := review.NewService(&mockReviewRepository{}, orders)

		_, err := svc.Add(context.Background(), reviewerID, o.ID, o.Lines[0].ID, 4, "")
		assert.True(t, errors.Is(err, review.ErrNotReviewable))
	})

	t.Run("unknown_line", func(t *testing.T) {
		o := deliveredOrder()
		orders := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				copied := o
				return &copied, nil
			},
		}
		svc := review.NewService(&mockReviewRepository{}, orders)

		_, err := svc.Add(context.Background(), reviewerID, o.ID, uuid.Must(uuid.NewV4()), 4, "")
		assert.True(t, errors.Is(err, review.ErrValidation))
	})

	t.Run("already_reviewed_line", func(t *testing.T) {
		o := deliveredOrder()
		o.Lines[0].Reviewed = true
		orders := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				copied := o
				return &copied, nil
			},
		}
		svc := review.NewService(&mockReviewRepository{}, orders)

		_, err := svc.Add(context.Background(), reviewerID, o.ID, o.Lines[0].ID, 4, "")
		assert.True(t, errors.Is(err, review.ErrAlreadyReviewed))
	})

	t.Run("completed_order_is_reviewable", func(t *testing.T) {
		o := deliveredOrder()
		o.Status = order.StatusCompleted
		orders := &mockOrderRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				copied := o
				return &copied, nil
			},
		}
		repo := &mockReviewRepository{
			createFunc: func(ctx context.Context, rev *review.Review) error { return nil },
		}
		svc := review.NewService(repo, orders)

		_, err := svc.Add(context.Background(), reviewerID, o.ID, o.Lines[0].ID, 3, "fine")
		require.NoError(t, err)
	})
}

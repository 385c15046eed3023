package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrReviewNotFound = errors.New("review not found")

type Repository interface {
	Create(ctx context.Context, rev *Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
	ListReported(ctx context.Context) ([]Review, error)
	SetReported(ctx context.Context, id uuid.UUID, reported bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the review and flips the order line's reviewed flag in one
// transaction, so the one-review-per-line guard cannot be raced past.
func (r *postgresRepository) Create(ctx context.Context, rev *Review) (err error) {
	if rev.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate review ID: %w", genErr)
		}
		rev.ID = id
	}
	rev.CreatedAt = time.Now().UTC()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("review_id", rev.ID).Msg("repository: failed to rollback review insert")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		INSERT INTO reviews (id, product_id, order_id, line_id, user_id, rating, comment, reported, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		rev.ID, rev.ProductID, rev.OrderID, rev.LineID, rev.UserID, rev.Rating, rev.Comment, rev.Reported, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert review: %w", err)
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE order_lines SET reviewed = TRUE, updated_at = $1 WHERE id = $2 AND NOT reviewed`,
		time.Now().UTC(), rev.LineID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to mark order line reviewed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		err = errors.New("repository: order line already reviewed or missing")
		return err
	}

	return nil
}

func (r *postgresRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	query := `
		SELECT id, product_id, order_id, line_id, user_id, rating, comment, reported, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`
	return r.queryReviews(ctx, query, productID)
}

func (r *postgresRepository) ListReported(ctx context.Context) ([]Review, error) {
	query := `
		SELECT id, product_id, order_id, line_id, user_id, rating, comment, reported, created_at
		FROM reviews
		WHERE reported
		ORDER BY created_at DESC
	`
	return r.queryReviews(ctx, query)
}

func (r *postgresRepository) queryReviews(ctx context.Context, query string, args ...any) ([]Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		var rev Review
		err := rows.Scan(
			&rev.ID, &rev.ProductID, &rev.OrderID, &rev.LineID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.Reported, &rev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating reviews: %w", err)
	}

	return reviews, nil
}

func (r *postgresRepository) SetReported(ctx context.Context, id uuid.UUID, reported bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE reviews SET reported = $1 WHERE id = $2`, reported, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update review report flag %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete review %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

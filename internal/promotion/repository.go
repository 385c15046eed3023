package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrPromotionNotFound = errors.New("promotion not found")

type Repository interface {
	Create(ctx context.Context, p *Promotion) error
	GetByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	List(ctx context.Context) ([]Promotion, error)
	ListActive(ctx context.Context, now time.Time) ([]Promotion, error)
	Update(ctx context.Context, p *Promotion) error
	UpdateActivation(ctx context.Context, id uuid.UUID, active bool, startsAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, p *Promotion) (err error) {
	if p.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate promotion ID: %w", genErr)
		}
		p.ID = id
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("promotion_id", p.ID).Msg("repository: failed to rollback promotion insert")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		INSERT INTO promotions (id, name, description, discount_kind, discount_value, scope, starts_at, ends_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, query,
		p.ID, p.Name, p.Description, string(p.DiscountKind), p.DiscountValue, string(p.Scope),
		p.StartsAt, p.EndsAt, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert promotion: %w", err)
	}

	if err = insertTargets(ctx, tx, p); err != nil {
		return err
	}

	return nil
}

func insertTargets(ctx context.Context, tx pgx.Tx, p *Promotion) error {
	for _, categoryID := range p.CategoryIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO promotion_categories (promotion_id, category_id) VALUES ($1, $2)`,
			p.ID, categoryID,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert promotion category target: %w", err)
		}
	}
	for _, productID := range p.ProductIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO promotion_products (promotion_id, product_id) VALUES ($1, $2)`,
			p.ID, productID,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert promotion product target: %w", err)
		}
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Promotion, error) {
	query := `
		SELECT id, name, description, discount_kind, discount_value, scope, starts_at, ends_at, active, created_at, updated_at
		FROM promotions
		WHERE id = $1
	`

	var p Promotion
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.DiscountKind, &p.DiscountValue, &p.Scope,
		&p.StartsAt, &p.EndsAt, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("repository: failed to select promotion by id %s: %w", id, err)
	}

	if err := r.loadTargets(ctx, []*Promotion{&p}); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Promotion, error) {
	query := `
		SELECT id, name, description, discount_kind, discount_value, scope, starts_at, ends_at, active, created_at, updated_at
		FROM promotions
		ORDER BY created_at DESC
	`
	return r.queryPromotions(ctx, query)
}

func (r *postgresRepository) ListActive(ctx context.Context, now time.Time) ([]Promotion, error) {
	query := `
		SELECT id, name, description, discount_kind, discount_value, scope, starts_at, ends_at, active, created_at, updated_at
		FROM promotions
		WHERE active AND starts_at <= $1 AND ends_at >= $1
		ORDER BY created_at
	`
	return r.queryPromotions(ctx, query, now)
}

func (r *postgresRepository) queryPromotions(ctx context.Context, query string, args ...any) ([]Promotion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query promotions: %w", err)
	}
	defer rows.Close()

	promotions := make([]Promotion, 0)
	for rows.Next() {
		var p Promotion
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.DiscountKind, &p.DiscountValue, &p.Scope,
			&p.StartsAt, &p.EndsAt, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan promotion: %w", err)
		}
		promotions = append(promotions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating promotions: %w", err)
	}

	refs := make([]*Promotion, len(promotions))
	for i := range promotions {
		refs[i] = &promotions[i]
	}
	if err := r.loadTargets(ctx, refs); err != nil {
		return nil, err
	}

	return promotions, nil
}

// loadTargets fills CategoryIDs and ProductIDs for the given promotions in
// two queries, one per join table.
func (r *postgresRepository) loadTargets(ctx context.Context, promotions []*Promotion) error {
	if len(promotions) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*Promotion, len(promotions))
	ids := make([]uuid.UUID, 0, len(promotions))
	for _, p := range promotions {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.db.Query(ctx,
		`SELECT promotion_id, category_id FROM promotion_categories WHERE promotion_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to query promotion category targets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var promotionID, categoryID uuid.UUID
		if err := rows.Scan(&promotionID, &categoryID); err != nil {
			return fmt.Errorf("repository: failed to scan promotion category target: %w", err)
		}
		if p, ok := byID[promotionID]; ok {
			p.CategoryIDs = append(p.CategoryIDs, categoryID)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating promotion category targets: %w", err)
	}

	productRows, err := r.db.Query(ctx,
		`SELECT promotion_id, product_id FROM promotion_products WHERE promotion_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to query promotion product targets: %w", err)
	}
	defer productRows.Close()

	for productRows.Next() {
		var promotionID, productID uuid.UUID
		if err := productRows.Scan(&promotionID, &productID); err != nil {
			return fmt.Errorf("repository: failed to scan promotion product target: %w", err)
		}
		if p, ok := byID[promotionID]; ok {
			p.ProductIDs = append(p.ProductIDs, productID)
		}
	}
	if err = productRows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating promotion product targets: %w", err)
	}

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Promotion) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("promotion_id", p.ID).Msg("repository: failed to rollback promotion update")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		UPDATE promotions
		SET name = $1, description = $2, discount_kind = $3, discount_value = $4, scope = $5, starts_at = $6, ends_at = $7, active = $8, updated_at = $9
		WHERE id = $10
	`
	cmdTag, err := tx.Exec(ctx, query,
		p.Name, p.Description, string(p.DiscountKind), p.DiscountValue, string(p.Scope),
		p.StartsAt, p.EndsAt, p.Active, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update promotion %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		err = ErrPromotionNotFound
		return err
	}

	// Target sets are replaced wholesale on every edit.
	if _, err = tx.Exec(ctx, `DELETE FROM promotion_categories WHERE promotion_id = $1`, p.ID); err != nil {
		return fmt.Errorf("repository: failed to clear promotion category targets: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM promotion_products WHERE promotion_id = $1`, p.ID); err != nil {
		return fmt.Errorf("repository: failed to clear promotion product targets: %w", err)
	}
	if err = insertTargets(ctx, tx, p); err != nil {
		return err
	}

	return nil
}

func (r *postgresRepository) UpdateActivation(ctx context.Context, id uuid.UUID, active bool, startsAt time.Time) error {
	query := `
		UPDATE promotions
		SET active = $1, starts_at = $2, updated_at = $3
		WHERE id = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, active, startsAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update promotion activation %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete promotion %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPromotionNotFound
	}
	return nil
}

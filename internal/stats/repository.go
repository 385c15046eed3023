package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

type ProductRevenue struct {
	ProductID    uuid.UUID `db:"product_id" json:"product_id"`
	ProductName  string    `db:"product_name" json:"product_name"`
	QuantitySold int       `db:"quantity_sold" json:"quantity_sold"`
	TotalRevenue float64   `db:"total_revenue" json:"total_revenue"`
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

type Repository interface {
	Revenue(ctx context.Context, from, to time.Time) (float64, error)
	RevenueByProduct(ctx context.Context, from, to time.Time) ([]ProductRevenue, error)
	OrdersByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error)
}

type sqlRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &sqlRepository{db: db}
}

// Revenue sums completed order lines over the period. Cancelled and returned
// orders never count.
func (r *sqlRepository) Revenue(ctx context.Context, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(l.quantity * l.unit_price), 0)
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE o.status = 'COMPLETED' AND o.created_at >= $1 AND o.created_at < $2
	`

	var revenue float64
	if err := r.db.GetContext(ctx, &revenue, query, from, to); err != nil {
		return 0, fmt.Errorf("repository: failed to compute revenue: %w", err)
	}

	return revenue, nil
}

func (r *sqlRepository) RevenueByProduct(ctx context.Context, from, to time.Time) ([]ProductRevenue, error) {
	query := `
		SELECT l.product_id AS product_id,
		       COALESCE(p.name, '(deleted product)') AS product_name,
		       SUM(l.quantity) AS quantity_sold,
		       SUM(l.quantity * l.unit_price) AS total_revenue
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		LEFT JOIN products p ON p.id = l.product_id
		WHERE o.status = 'COMPLETED' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY l.product_id, p.name
		ORDER BY total_revenue DESC
	`

	revenues := make([]ProductRevenue, 0)
	if err := r.db.SelectContext(ctx, &revenues, query, from, to); err != nil {
		return nil, fmt.Errorf("repository: failed to compute product revenue: %w", err)
	}

	return revenues, nil
}

func (r *sqlRepository) OrdersByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY status
		ORDER BY count DESC
	`

	counts := make([]StatusCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query, from, to); err != nil {
		return nil, fmt.Errorf("repository: failed to count orders by status: %w", err)
	}

	return counts, nil
}

package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/ndthanh/storefront/internal/catalog"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStaleOrder means the order changed state between the snapshot read
	// and the write; the caller should reload and retry the operation.
	ErrStaleOrder = errors.New("order was modified concurrently")
)

type Repository interface {
	Create(ctx context.Context, o *Order, stock []catalog.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ApplyTransition(ctx context.Context, t Transition) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the order with its lines and writes the post-checkout stock
// levels in the same transaction, so a failed insert cannot leak reserved
// stock.
func (r *postgresRepository) Create(ctx context.Context, o *Order, stock []catalog.Product) (err error) {
	if o.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			log.Error().Err(genErr).Msg("repository: failed to generate order ID")
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		o.ID = id
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Stringer("order_id", o.ID).Msg("repository: order insert failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (id, code, user_id, status, payment_method, paid, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID, o.Code, o.UserID, string(o.Status), string(o.PaymentMethod), o.Paid, o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryLine := `
		INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, reviewed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range o.Lines {
		line := &o.Lines[i]

		lineID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order line ID: %w", genErr)
			return err
		}
		line.ID = lineID
		line.OrderID = o.ID
		line.CreatedAt = now
		line.UpdatedAt = now

		_, err = tx.Exec(ctx, queryLine,
			line.ID, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.Reviewed, line.CreatedAt, line.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order line for order %s: %w", o.ID, err)
		}
	}

	if err = updateStock(ctx, tx, stock); err != nil {
		return err
	}

	return nil
}

func updateStock(ctx context.Context, tx pgx.Tx, products []catalog.Product) error {
	query := `
		UPDATE products
		SET stock_quantity = $1, available = $2, updated_at = $3
		WHERE id = $4
	`
	for _, p := range products {
		if _, err := tx.Exec(ctx, query, p.StockQuantity, p.Available, time.Now().UTC(), p.ID); err != nil {
			return fmt.Errorf("repository: failed to update stock for product %s: %w", p.ID, err)
		}
	}
	return nil
}

const orderColumns = `id, code, user_id, status, payment_method, paid, total_amount,
		cancel_reason, cancel_requested_by, cancel_requested_at,
		return_reason, return_requested_at, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.Code, &o.UserID, &o.Status, &o.PaymentMethod, &o.Paid, &o.TotalAmount,
		&o.CancelReason, &o.CancelRequestedBy, &o.CancelRequestedAt,
		&o.ReturnReason, &o.ReturnRequestedAt, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o Order
	err := scanOrder(r.db.QueryRow(ctx, query, id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	lines, err := r.loadLines(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	if o.Lines == nil {
		o.Lines = []Line{}
	}

	return &o, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	var ids []uuid.UUID
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Lines = []Line{}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orderLines, ok := lines[orders[i].ID]; ok {
			orders[i].Lines = orderLines
		}
	}

	return orders, nil
}

func (r *postgresRepository) loadLines(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]Line, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, reviewed, created_at, updated_at
		FROM order_lines
		WHERE order_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[uuid.UUID][]Line)
	for rows.Next() {
		var line Line
		err := rows.Scan(
			&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice, &line.Reviewed, &line.CreatedAt, &line.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order line: %w", err)
		}
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order lines: %w", err)
	}

	return lines, nil
}

// ApplyTransition persists the outcome of a lifecycle operation: the order
// row and any stock restorations go in one transaction. The status guard on
// the order update is the optimistic-concurrency token: if another request
// moved the order since the snapshot was read, zero rows match and the whole
// transition rolls back with ErrStaleOrder.
func (r *postgresRepository) ApplyTransition(ctx context.Context, t Transition) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", t.Order.ID).Msg("repository: failed to rollback transition")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		UPDATE orders
		SET status = $1, paid = $2,
		    cancel_reason = $3, cancel_requested_by = $4, cancel_requested_at = $5,
		    return_reason = $6, return_requested_at = $7, updated_at = $8
		WHERE id = $9 AND status = $10
	`
	cmdTag, err := tx.Exec(ctx, query,
		string(t.Order.Status), t.Order.Paid,
		t.Order.CancelReason, t.Order.CancelRequestedBy, t.Order.CancelRequestedAt,
		t.Order.ReturnReason, t.Order.ReturnRequestedAt, t.Order.UpdatedAt,
		t.Order.ID, string(t.PrevStatus),
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %s: %w", t.Order.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the order vanished or its status moved under us.
		var exists bool
		if checkErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, t.Order.ID).Scan(&exists); checkErr != nil {
			err = fmt.Errorf("repository: failed to check order %s: %w", t.Order.ID, checkErr)
			return err
		}
		if !exists {
			err = ErrOrderNotFound
			return err
		}
		err = ErrStaleOrder
		return err
	}

	if err = updateStock(ctx, tx, t.Products); err != nil {
		return err
	}

	return nil
}

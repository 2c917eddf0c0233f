package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyurt/orderdesk/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (number, customer_id, order_date, delivery_date, discount_pct, vat_pct, subtotal, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	createLineSQL = `INSERT INTO order_lines (order_id, product_id, quantity, unit_price, discount_pct, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getOrderSQL = `SELECT id, number, customer_id, order_date, delivery_date, discount_pct, vat_pct, subtotal, grand_total, created_at
		FROM orders WHERE number = $1`

	getLinesSQL = `SELECT id, product_id, quantity, unit_price, discount_pct, line_total
		FROM order_lines WHERE order_id = $1 ORDER BY id`

	// Per-customer history row: order joined with the customer's contact
	// fields and a flattened listing of the ordered products.
	listForCustomerSQL = `SELECT o.number, o.order_date, o.delivery_date, o.grand_total,
			c.first_name, c.last_name, c.phone, c.address,
			string_agg(p.code || ' - ' || p.name || ' (' || ol.quantity || ' pcs)', ', ' ORDER BY ol.id)
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		JOIN order_lines ol ON ol.order_id = o.id
		JOIN products p ON ol.product_id = p.id
		WHERE o.customer_id = $1
		GROUP BY o.id, c.first_name, c.last_name, c.phone, c.address
		ORDER BY o.order_date DESC, o.id DESC`

	listAllSQL = `SELECT o.number, o.order_date, c.first_name || ' ' || c.last_name, o.grand_total, o.delivery_date
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		ORDER BY o.order_date DESC, o.id DESC`

	// Business-key ordering is numeric, not lexical.
	lastNumberSQL = `SELECT number FROM orders ORDER BY CAST(number AS BIGINT) DESC LIMIT 1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all lines in one transaction. The
// foreign keys are the final authority on referential integrity: a missing
// customer or product aborts the whole write.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin create order %q: %w", o.Number, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, createOrderSQL,
		o.Number, o.CustomerID, o.OrderDate, o.DeliveryDate,
		o.DiscountPct, o.VATPct, o.Subtotal, o.GrandTotal,
	).Scan(&id)
	if err != nil {
		return 0, mapOrderWriteError(err, o.Number)
	}

	for i := range o.Lines {
		l := &o.Lines[i]
		_, err := tx.Exec(ctx, createLineSQL,
			id, l.ProductID, l.Quantity, l.UnitPrice, l.DiscountPct, l.LineTotal,
		)
		if err != nil {
			return 0, mapOrderWriteError(err, o.Number)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit order %q: %w", o.Number, err)
	}
	return id, nil
}

func mapOrderWriteError(err error, number string) error {
	switch {
	case uniqueViolation(err, "orders_number_key"):
		return order.ErrDuplicateNumber
	case fkViolation(err, "orders_customer_id_fkey"):
		return order.ErrCustomerMissing
	case fkViolation(err, "order_lines_product_id_fkey"):
		return order.ErrProductMissing
	}
	return fmt.Errorf("creating order %q: %w", number, err)
}

// Get returns the full order with its line snapshots.
func (r *OrderRepository) Get(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderSQL, number).Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.OrderDate, &o.DeliveryDate,
		&o.DiscountPct, &o.VATPct, &o.Subtotal, &o.GrandTotal, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", number, err)
	}

	rows, err := r.pool.Query(ctx, getLinesSQL, o.ID)
	if err != nil {
		return nil, fmt.Errorf("getting lines for order %q: %w", number, err)
	}
	o.Lines, err = pgx.CollectRows(rows, scanLine)
	if err != nil {
		return nil, fmt.Errorf("getting lines for order %q: %w", number, err)
	}
	return &o, nil
}

// ListForCustomer returns the customer's order history, most recent first.
func (r *OrderRepository) ListForCustomer(ctx context.Context, customerID int64) ([]order.CustomerOrder, error) {
	rows, err := r.pool.Query(ctx, listForCustomerSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for customer %d: %w", customerID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.CustomerOrder, error) {
		var co order.CustomerOrder
		err := row.Scan(
			&co.Number, &co.OrderDate, &co.DeliveryDate, &co.GrandTotal,
			&co.FirstName, &co.LastName, &co.Phone, &co.Address, &co.Products,
		)
		return co, err
	})
}

// ListAll returns summaries of every order, most recent first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Summary, error) {
	rows, err := r.pool.Query(ctx, listAllSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Summary, error) {
		var s order.Summary
		err := row.Scan(&s.Number, &s.OrderDate, &s.CustomerName, &s.GrandTotal, &s.DeliveryDate)
		return s, err
	})
}

// Delete removes the order's lines and then the order itself, in that order
// to respect the foreign-key direction, inside one transaction. Deleting an
// unknown number is benign.
func (r *OrderRepository) Delete(ctx context.Context, number string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete order %q: %w", number, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`DELETE FROM order_lines WHERE order_id IN (SELECT id FROM orders WHERE number = $1)`,
		number,
	)
	if err != nil {
		return fmt.Errorf("deleting lines of order %q: %w", number, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE number = $1`, number); err != nil {
		return fmt.Errorf("deleting order %q: %w", number, err)
	}

	return tx.Commit(ctx)
}

// LastNumber returns the numerically greatest order number, or "" when the
// store holds no orders.
func (r *OrderRepository) LastNumber(ctx context.Context) (string, error) {
	var number string
	err := r.pool.QueryRow(ctx, lastNumberSQL).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("getting last order number: %w", err)
	}
	return number, nil
}

func scanLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(&l.ID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.DiscountPct, &l.LineTotal)
	return l, err
}

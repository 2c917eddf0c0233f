package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
	"github.com/kyurt/orderdesk/internal/domain/customer"
)

const (
	// A second override for the same pair updates the price in place,
	// keeping the composite uniqueness invariant.
	upsertOverrideSQL = `INSERT INTO customer_prices (customer_id, product_id, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, product_id) DO UPDATE SET price = EXCLUDED.price`

	findOverrideSQL = `SELECT customer_id, product_id, price
		FROM customer_prices WHERE customer_id = $1 AND product_id = $2`

	listOverridesSQL = `SELECT customer_id, product_id, price
		FROM customer_prices WHERE customer_id = $1 ORDER BY product_id`
)

var _ catalog.PriceRepository = (*PriceRepository)(nil)

// PriceRepository implements catalog.PriceRepository backed by PostgreSQL.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository returns a PriceRepository that uses the given pool.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// Upsert stores the negotiated price for the pair. The foreign keys are the
// authority on existence: a missing customer or product rejects the write.
func (r *PriceRepository) Upsert(ctx context.Context, o catalog.PriceOverride) error {
	_, err := r.pool.Exec(ctx, upsertOverrideSQL, o.CustomerID, o.ProductID, o.Price)
	if err != nil {
		switch {
		case fkViolation(err, "customer_prices_customer_id_fkey"):
			return customer.ErrNotFound
		case fkViolation(err, "customer_prices_product_id_fkey"):
			return catalog.ErrNotFound
		}
		return fmt.Errorf("upserting override (%d, %d): %w", o.CustomerID, o.ProductID, err)
	}
	return nil
}

// Delete removes the override for the pair. Missing pairs are benign.
func (r *PriceRepository) Delete(ctx context.Context, customerID, productID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM customer_prices WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID,
	)
	if err != nil {
		return fmt.Errorf("deleting override (%d, %d): %w", customerID, productID, err)
	}
	return nil
}

// Find returns the override for the pair, or catalog.ErrNoOverride.
func (r *PriceRepository) Find(ctx context.Context, customerID, productID int64) (*catalog.PriceOverride, error) {
	rows, err := r.pool.Query(ctx, findOverrideSQL, customerID, productID)
	if err != nil {
		return nil, fmt.Errorf("finding override (%d, %d): %w", customerID, productID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOverride)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNoOverride
		}
		return nil, fmt.Errorf("finding override (%d, %d): %w", customerID, productID, err)
	}
	return &o, nil
}

// ListForCustomer returns all overrides for one customer.
func (r *PriceRepository) ListForCustomer(ctx context.Context, customerID int64) ([]catalog.PriceOverride, error) {
	rows, err := r.pool.Query(ctx, listOverridesSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing overrides for customer %d: %w", customerID, err)
	}
	return pgx.CollectRows(rows, scanOverride)
}

func scanOverride(row pgx.CollectableRow) (catalog.PriceOverride, error) {
	var o catalog.PriceOverride
	err := row.Scan(&o.CustomerID, &o.ProductID, &o.Price)
	return o, err
}

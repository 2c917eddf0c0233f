package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyurt/orderdesk/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (first_name, last_name, phone, address, email, customer_group, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	updateCustomerSQL = `UPDATE customers
		SET first_name = $1, last_name = $2, phone = $3, address = $4, email = $5, customer_group = $6, notes = $7
		WHERE id = $8`

	selectCustomerSQL = `SELECT id, first_name, last_name, phone, address, email, customer_group, notes, created_at
		FROM customers`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create persists a new customer and returns its id.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, createCustomerSQL,
		c.FirstName, c.LastName, c.Phone, c.Address, c.Email, c.Group, c.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating customer: %w", err)
	}
	return id, nil
}

// Update rewrites all mutable fields of a customer.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	tag, err := r.pool.Exec(ctx, updateCustomerSQL,
		c.FirstName, c.LastName, c.Phone, c.Address, c.Email, c.Group, c.Notes, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes a customer and, via cascade, their price overrides. It
// refuses to delete a customer that existing orders still reference so no
// order is left pointing at a missing customer.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete customer %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var referenced bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE customer_id = $1)`, id).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("checking orders for customer %d: %w", id, err)
	}
	if referenced {
		return customer.ErrHasOrders
	}

	if _, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting customer %d: %w", id, err)
	}

	return tx.Commit(ctx)
}

// GetByID returns a single customer by id.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, selectCustomerSQL+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

// List returns all customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, selectCustomerSQL+` ORDER BY first_name, last_name`)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Address,
		&c.Email, &c.Group, &c.Notes, &c.CreatedAt,
	)
	return c, err
}

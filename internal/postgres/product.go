package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
)

const (
	createProductSQL = `INSERT INTO products (code, name, price) VALUES ($1, $2, $3) RETURNING id`

	updateProductSQL = `UPDATE products SET code = $1, name = $2, price = $3 WHERE id = $4`

	upsertProductSQL = `INSERT INTO products (code, name, price) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`

	selectProductSQL = `SELECT id, code, name, price, created_at FROM products`
)

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new product. A taken code surfaces as
// catalog.ErrDuplicateCode so the caller can show a targeted conflict
// message.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, createProductSQL, p.Code, p.Name, p.Price).Scan(&id)
	if err != nil {
		if uniqueViolation(err, "products_code_key") {
			return 0, catalog.ErrDuplicateCode
		}
		return 0, fmt.Errorf("creating product %q: %w", p.Code, err)
	}
	return id, nil
}

// Update rewrites a product's code, name and price.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL, p.Code, p.Name, p.Price, p.ID)
	if err != nil {
		if uniqueViolation(err, "products_code_key") {
			return catalog.ErrDuplicateCode
		}
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Upsert inserts the product or updates name and price of the existing row
// with the same code.
func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	if _, err := r.pool.Exec(ctx, upsertProductSQL, p.Code, p.Name, p.Price); err != nil {
		return fmt.Errorf("upserting product %q: %w", p.Code, err)
	}
	return nil
}

// Delete removes a product and, via cascade, its price overrides. Products
// referenced by order lines stay: historical orders keep their snapshots and
// the catalog row they point to.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		if fkViolation(err, "order_lines_product_id_fkey") {
			return catalog.ErrInUse
		}
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	return nil
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, selectProductSQL+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, selectProductSQL+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// List returns all products ordered by code.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, selectProductSQL+` ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p     catalog.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Code, &p.Name, &price, &p.CreatedAt)
	p.Price = price
	return p, err
}

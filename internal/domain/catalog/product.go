package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateCode is returned when creating or updating a product with
	// a code already used by another product.
	ErrDuplicateCode = errors.New("product code already exists")
	// ErrNegativePrice is returned when a product price is below zero.
	ErrNegativePrice = errors.New("product price must not be negative")
	// ErrInUse is returned when deleting a product that order lines still
	// reference.
	ErrInUse = errors.New("product is referenced by existing orders")
)

// Product is a catalog item. Code is the business key shown on documents;
// Price is the default unit price before any customer-specific override.
type Product struct {
	ID        int64
	Code      string
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Validate checks field constraints before a write.
func (p *Product) Validate() error {
	if p.Code == "" {
		return errors.New("product code required")
	}
	if p.Name == "" {
		return errors.New("product name required")
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ProductRepository defines persistence operations for the product catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) (int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	// List returns all products ordered by code.
	List(ctx context.Context) ([]Product, error)
	// Upsert inserts a product or, when the code already exists, updates
	// its name and price in place. Used by bulk imports.
	Upsert(ctx context.Context, p *Product) error
}

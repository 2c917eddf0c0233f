package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNoOverride is returned when no negotiated price exists for a
// (customer, product) pair.
var ErrNoOverride = errors.New("no price override for pair")

// PriceOverride is a negotiated unit price that supersedes the catalog
// price of one product for one customer. At most one override exists per
// (customer, product) pair.
type PriceOverride struct {
	CustomerID int64
	ProductID  int64
	Price      decimal.Decimal
}

// PriceRepository defines persistence operations for customer price
// overrides.
type PriceRepository interface {
	// Upsert stores the override, replacing any existing price for the
	// same (customer, product) pair.
	Upsert(ctx context.Context, o PriceOverride) error
	// Delete removes the override for the pair. Deleting a missing pair
	// is benign.
	Delete(ctx context.Context, customerID, productID int64) error
	// Find returns the override for the pair, or ErrNoOverride.
	Find(ctx context.Context, customerID, productID int64) (*PriceOverride, error)
	// ListForCustomer returns all overrides for one customer, ordered by
	// product id.
	ListForCustomer(ctx context.Context, customerID int64) ([]PriceOverride, error)
}

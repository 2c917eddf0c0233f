// Package pricing resolves the unit price that applies to a (customer,
// product) pair: a negotiated override when one exists, the catalog price
// otherwise.
package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
	"github.com/kyurt/orderdesk/internal/domain/order"
)

// Resolver looks up applicable unit prices. It has no side effects.
type Resolver struct {
	products  catalog.ProductRepository
	overrides catalog.PriceRepository
}

// NewResolver creates a Resolver over the catalog repositories.
func NewResolver(products catalog.ProductRepository, overrides catalog.PriceRepository) *Resolver {
	return &Resolver{products: products, overrides: overrides}
}

// UnitPrice returns the price for the pair: the customer's override when one
// exists, otherwise the product's catalog price. A missing product yields
// zero with no error; during interactive editing the caller treats zero as
// "no price available" rather than a failure.
func (r *Resolver) UnitPrice(ctx context.Context, customerID, productID int64) (decimal.Decimal, error) {
	if customerID != 0 {
		o, err := r.overrides.Find(ctx, customerID, productID)
		switch {
		case err == nil:
			return o.Price, nil
		case !errors.Is(err, catalog.ErrNoOverride):
			return decimal.Zero, errors.Wrap(err, "find override")
		}
	}

	p, err := r.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.Wrap(err, "get product")
	}
	return p.Price, nil
}

// RefreshDraft re-resolves the unit price of every line in the draft for a
// newly selected customer. Lines whose price was hand-edited keep it; only
// auto-resolved prices follow the new customer's price list.
func (r *Resolver) RefreshDraft(ctx context.Context, d *order.Draft, customerID int64) error {
	d.CustomerID = customerID
	for i, line := range d.Lines() {
		if line.Manual {
			continue
		}
		price, err := r.UnitPrice(ctx, customerID, line.ProductID)
		if err != nil {
			return errors.Wrapf(err, "resolve price for product %d", line.ProductID)
		}
		if err := d.RefreshUnitPrice(i, price); err != nil {
			return err
		}
	}
	return nil
}

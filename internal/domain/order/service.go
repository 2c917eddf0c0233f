package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// numberAttempts bounds the allocate-on-insert retry loop. Two writers can
// compute the same next number from a stale read; the store's uniqueness
// constraint arbitrates and the loser re-reads and retries.
const numberAttempts = 3

// PriceResolver supplies the unit price for a (customer, product) pair.
// Implemented by pricing.Resolver.
type PriceResolver interface {
	UnitPrice(ctx context.Context, customerID, productID int64) (decimal.Decimal, error)
}

// PlaceLine is one requested order line. UnitPrice, when set, is a manual
// price override; otherwise the price is resolved from the customer's price
// list and the catalog.
type PlaceLine struct {
	ProductID   int64
	Quantity    int
	DiscountPct int
	UnitPrice   *decimal.Decimal
}

// PlaceRequest holds the input for committing an order.
type PlaceRequest struct {
	CustomerID   int64
	OrderDate    time.Time
	DeliveryDate time.Time
	DiscountPct  int
	VATPct       int
	Lines        []PlaceLine
}

// Service turns order requests into committed orders: it builds and prices
// a draft, validates it, allocates an order number, and persists the result
// atomically.
type Service struct {
	orders   Repository
	resolver PriceResolver
}

// NewService creates an order Service.
func NewService(orders Repository, resolver PriceResolver) *Service {
	return &Service{orders: orders, resolver: resolver}
}

// Place validates and persists an order. Validation failures surface before
// any write; referential failures come back from the store, which is the
// final authority on customer and product existence.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if req.CustomerID == 0 {
		return nil, ErrNoCustomer
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}

	d := NewDraft()
	d.CustomerID = req.CustomerID
	d.OrderDate = req.OrderDate
	d.DeliveryDate = req.DeliveryDate
	if err := d.SetOrderDiscount(req.DiscountPct); err != nil {
		return nil, err
	}
	if err := d.SetVAT(req.VATPct); err != nil {
		return nil, err
	}

	for _, l := range req.Lines {
		price, err := s.linePrice(ctx, req.CustomerID, l)
		if err != nil {
			return nil, err
		}
		i, err := d.AddLine(l.ProductID, price, l.Quantity, l.DiscountPct)
		if err != nil {
			return nil, err
		}
		if l.UnitPrice != nil {
			if err := d.SetUnitPrice(i, *l.UnitPrice); err != nil {
				return nil, err
			}
		}
	}

	return s.commit(ctx, d)
}

func (s *Service) linePrice(ctx context.Context, customerID int64, l PlaceLine) (decimal.Decimal, error) {
	if l.UnitPrice != nil {
		return *l.UnitPrice, nil
	}
	price, err := s.resolver.UnitPrice(ctx, customerID, l.ProductID)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "resolve price for product %d", l.ProductID)
	}
	return price, nil
}

// commit allocates an order number and creates the order, retrying on a
// number collision.
func (s *Service) commit(ctx context.Context, d *Draft) (*Order, error) {
	var lastErr error
	for range numberAttempts {
		last, err := s.orders.LastNumber(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "last order number")
		}
		number, err := NextNumber(last)
		if err != nil {
			return nil, err
		}

		o, err := d.Build(number)
		if err != nil {
			return nil, err
		}

		id, err := s.orders.Create(ctx, o)
		if err == nil {
			o.ID = id
			return o, nil
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return nil, errors.Wrap(err, "create order")
		}
		lastErr = err
	}
	return nil, errors.Wrap(lastErr, "allocate order number")
}

// Delete removes an order and its lines. Unknown numbers are benign.
func (s *Service) Delete(ctx context.Context, number string) error {
	return s.orders.Delete(ctx, number)
}

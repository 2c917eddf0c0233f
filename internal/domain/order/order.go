package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateNumber is returned by the store when an order number is
	// already taken. Place retries allocation on this error.
	ErrDuplicateNumber = errors.New("order number already exists")
	// ErrCustomerMissing is returned when the referenced customer does not
	// exist at save time.
	ErrCustomerMissing = errors.New("order references missing customer")
	// ErrProductMissing is returned when a line references a product that
	// does not exist at save time.
	ErrProductMissing = errors.New("order line references missing product")
)

// Line is one persisted order line. UnitPrice and LineTotal are snapshots
// taken at save time; later catalog price changes never affect them.
type Line struct {
	ID          int64
	ProductID   int64
	Quantity    int
	UnitPrice   decimal.Decimal
	DiscountPct int
	LineTotal   decimal.Decimal
}

// Order is a committed customer order. Number is the external business key;
// GrandTotal stores the amount computed by the draft at save time and is
// never recomputed on read.
type Order struct {
	ID           int64
	Number       string
	CustomerID   int64
	OrderDate    time.Time
	DeliveryDate time.Time
	DiscountPct  int
	VATPct       int
	Subtotal     decimal.Decimal
	GrandTotal   decimal.Decimal
	Lines        []Line
	CreatedAt    time.Time
}

// Summary is one row of the all-orders listing, joined with the customer
// display name.
type Summary struct {
	Number       string
	OrderDate    time.Time
	CustomerName string
	GrandTotal   decimal.Decimal
	DeliveryDate time.Time
}

// CustomerOrder is one row of a per-customer order history listing: the
// order joined with the customer's contact fields and a flattened,
// human-readable listing of the ordered products.
type CustomerOrder struct {
	Number       string
	OrderDate    time.Time
	DeliveryDate time.Time
	GrandTotal   decimal.Decimal
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	Products     string
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and all lines as one atomic write.
	// Referential failures abort the whole write: ErrCustomerMissing,
	// ErrProductMissing, or ErrDuplicateNumber for a taken number.
	Create(ctx context.Context, o *Order) (int64, error)
	// Get returns the full order with lines by its number.
	Get(ctx context.Context, number string) (*Order, error)
	// ListForCustomer returns the customer's orders, most recent first.
	ListForCustomer(ctx context.Context, customerID int64) ([]CustomerOrder, error)
	// ListAll returns summaries of every order, most recent first.
	ListAll(ctx context.Context) ([]Summary, error)
	// Delete removes the order and its lines in one transaction. Deleting
	// an unknown number is benign.
	Delete(ctx context.Context, number string) error
	// LastNumber returns the numerically greatest order number, or ""
	// when no orders exist.
	LastNumber(ctx context.Context) (string, error)
}

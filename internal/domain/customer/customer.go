package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Group classifies a customer for reporting and pricing purposes.
type Group string

const (
	GroupStandard  Group = "standard"
	GroupVIP       Group = "vip"
	GroupPotential Group = "potential"
)

// Valid reports whether g is one of the known customer groups.
func (g Group) Valid() bool {
	switch g {
	case GroupStandard, GroupVIP, GroupPotential:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrHasOrders is returned when deleting a customer that is still
	// referenced by existing orders.
	ErrHasOrders = errors.New("customer has existing orders")
)

// Customer is a retail customer with contact details and an optional
// negotiated price list (see catalog.PriceOverride).
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Email     string
	Group     Group
	Notes     string
	CreatedAt time.Time
}

// DisplayName returns the customer's full name as shown in order listings.
func (c *Customer) DisplayName() string {
	return c.FirstName + " " + c.LastName
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) (int64, error)
	Update(ctx context.Context, c *Customer) error
	// Delete removes a customer. It returns ErrHasOrders when orders still
	// reference the customer; price overrides are removed with it.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Customer, error)
	// List returns all customers ordered by first then last name.
	List(ctx context.Context) ([]Customer, error)
}

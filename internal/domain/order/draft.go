package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultVATPct is the VAT rate a new draft starts with.
const DefaultVATPct = 20

var (
	// ErrNoCustomer is returned when committing a draft without a customer.
	ErrNoCustomer = errors.New("no customer selected")
	// ErrEmptyLines is returned when committing a draft with no lines.
	ErrEmptyLines = errors.New("order has no lines")
	// ErrInvalidQuantity is returned for a non-positive line quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrInvalidPercent is returned for a percentage outside 0-100.
	ErrInvalidPercent = errors.New("percentage must be between 0 and 100")
	// ErrLineIndex is returned when a line index is out of range.
	ErrLineIndex = errors.New("line index out of range")
)

var hundred = decimal.NewFromInt(100)

// DraftLine is one mutable line of an order draft. Manual is set once the
// unit price has been hand-edited; a manual price is never overwritten by a
// later price refresh (customer switch).
type DraftLine struct {
	ProductID   int64
	Quantity    int
	DiscountPct int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	Manual      bool
}

// Totals holds the four published amounts of a draft. They are always the
// outputs of a single recompute pass, never individually stale.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	VATAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Draft is the mutable order-in-progress aggregate. It is the single source
// of truth for pricing: the presentation layer reads from it and writes
// through the mutation methods, never the other way around.
//
// Draft is not safe for concurrent use.
type Draft struct {
	CustomerID   int64
	OrderDate    time.Time
	DeliveryDate time.Time

	discountPct int
	vatPct      int
	lines       []DraftLine
	totals      Totals
}

// NewDraft returns an empty draft with the default VAT rate.
func NewDraft() *Draft {
	d := &Draft{vatPct: DefaultVATPct}
	d.recompute()
	return d
}

// AddLine appends a line priced at unitPrice and returns its index.
func (d *Draft) AddLine(productID int64, unitPrice decimal.Decimal, quantity, discountPct int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	if discountPct < 0 || discountPct > 100 {
		return 0, ErrInvalidPercent
	}

	// Prices are normalized to cent precision on the way in so the stored
	// line total always equals the discount formula over the stored price.
	unitPrice = unitPrice.Round(2)
	line := DraftLine{
		ProductID:   productID,
		Quantity:    quantity,
		DiscountPct: discountPct,
		UnitPrice:   unitPrice,
	}
	line.LineTotal = lineTotal(unitPrice, quantity, discountPct)
	d.lines = append(d.lines, line)
	d.recompute()
	return len(d.lines) - 1, nil
}

// EditLine updates a line's quantity and discount. The stored unit price is
// kept as-is: quantity and discount edits are independent of price edits.
func (d *Draft) EditLine(i, quantity, discountPct int) error {
	if i < 0 || i >= len(d.lines) {
		return ErrLineIndex
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if discountPct < 0 || discountPct > 100 {
		return ErrInvalidPercent
	}

	line := &d.lines[i]
	line.Quantity = quantity
	line.DiscountPct = discountPct
	line.LineTotal = lineTotal(line.UnitPrice, quantity, discountPct)
	d.recompute()
	return nil
}

// SetUnitPrice overrides a line's unit price and marks the line as manually
// priced. Manual lines keep their price across customer switches.
func (d *Draft) SetUnitPrice(i int, price decimal.Decimal) error {
	if i < 0 || i >= len(d.lines) {
		return ErrLineIndex
	}
	if price.IsNegative() {
		return errors.New("unit price must not be negative")
	}

	price = price.Round(2)
	line := &d.lines[i]
	line.UnitPrice = price
	line.Manual = true
	line.LineTotal = lineTotal(price, line.Quantity, line.DiscountPct)
	d.recompute()
	return nil
}

// RefreshUnitPrice replaces a line's unit price with a freshly resolved one
// unless the price was manually edited. Used when the draft's customer
// changes and line prices must follow the new customer's price list.
func (d *Draft) RefreshUnitPrice(i int, price decimal.Decimal) error {
	if i < 0 || i >= len(d.lines) {
		return ErrLineIndex
	}

	line := &d.lines[i]
	if line.Manual {
		return nil
	}
	price = price.Round(2)
	line.UnitPrice = price
	line.LineTotal = lineTotal(price, line.Quantity, line.DiscountPct)
	d.recompute()
	return nil
}

// RemoveLine deletes the line at index i.
func (d *Draft) RemoveLine(i int) error {
	if i < 0 || i >= len(d.lines) {
		return ErrLineIndex
	}
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
	d.recompute()
	return nil
}

// SetOrderDiscount sets the order-level discount percentage.
func (d *Draft) SetOrderDiscount(pct int) error {
	if pct < 0 || pct > 100 {
		return ErrInvalidPercent
	}
	d.discountPct = pct
	d.recompute()
	return nil
}

// SetVAT sets the VAT percentage.
func (d *Draft) SetVAT(pct int) error {
	if pct < 0 || pct > 100 {
		return ErrInvalidPercent
	}
	d.vatPct = pct
	d.recompute()
	return nil
}

// OrderDiscountPct returns the current order-level discount percentage.
func (d *Draft) OrderDiscountPct() int { return d.discountPct }

// VATPct returns the current VAT percentage.
func (d *Draft) VATPct() int { return d.vatPct }

// Lines returns a copy of the current line set.
func (d *Draft) Lines() []DraftLine {
	out := make([]DraftLine, len(d.lines))
	copy(out, d.lines)
	return out
}

// Len returns the number of lines.
func (d *Draft) Len() int { return len(d.lines) }

// Totals returns the amounts from the latest recompute pass.
func (d *Draft) Totals() Totals { return d.totals }

// Validate checks that the draft can be committed.
func (d *Draft) Validate() error {
	if d.CustomerID == 0 {
		return ErrNoCustomer
	}
	if len(d.lines) == 0 {
		return ErrEmptyLines
	}
	return nil
}

// Build converts the validated draft into a persistable Order carrying the
// line snapshots and committed totals.
func (d *Draft) Build(number string) (*Order, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	lines := make([]Line, len(d.lines))
	for i, l := range d.lines {
		lines[i] = Line{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			LineTotal:   l.LineTotal,
		}
	}

	return &Order{
		Number:       number,
		CustomerID:   d.CustomerID,
		OrderDate:    d.OrderDate,
		DeliveryDate: d.DeliveryDate,
		DiscountPct:  d.discountPct,
		VATPct:       d.vatPct,
		Subtotal:     d.totals.Subtotal,
		GrandTotal:   d.totals.GrandTotal,
		Lines:        lines,
	}, nil
}

// recompute derives all published totals from the current line set in one
// pass. Called after every mutation.
func (d *Draft) recompute() {
	subtotal := decimal.Zero
	for _, l := range d.lines {
		subtotal = subtotal.Add(l.LineTotal)
	}

	discountAmount := subtotal.Mul(decimal.NewFromInt(int64(d.discountPct))).Div(hundred).Round(2)
	afterDiscount := subtotal.Sub(discountAmount)
	vatAmount := afterDiscount.Mul(decimal.NewFromInt(int64(d.vatPct))).Div(hundred).Round(2)

	d.totals = Totals{
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discountAmount,
		VATAmount:      vatAmount,
		GrandTotal:     afterDiscount.Add(vatAmount).Round(2),
	}
}

// lineTotal computes unit * qty * (1 - discount/100) rounded to 2 decimal
// places, the precision stored and displayed.
func lineTotal(unit decimal.Decimal, quantity, discountPct int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	keep := hundred.Sub(decimal.NewFromInt(int64(discountPct)))
	return unit.Mul(qty).Mul(keep).Div(hundred).Round(2)
}

package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	lastNumber  string
	lastNumErr  error
	created     []*Order
	createErr   error
	failCreates int
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	if m.failCreates > 0 {
		m.failCreates--
		// Another writer won the number; it is taken on the next read.
		m.lastNumber = o.Number
		return 0, ErrDuplicateNumber
	}
	m.created = append(m.created, o)
	m.lastNumber = o.Number
	return int64(len(m.created)), nil
}

func (m *mockOrderRepo) Get(_ context.Context, number string) (*Order, error) {
	for _, o := range m.created {
		if o.Number == number {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) ListForCustomer(_ context.Context, _ int64) ([]CustomerOrder, error) {
	return nil, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]Summary, error) {
	return nil, nil
}

func (m *mockOrderRepo) Delete(_ context.Context, number string) error {
	for i, o := range m.created {
		if o.Number == number {
			m.created = append(m.created[:i], m.created[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockOrderRepo) LastNumber(_ context.Context) (string, error) {
	return m.lastNumber, m.lastNumErr
}

type mockResolver struct {
	prices map[int64]decimal.Decimal
	err    error
}

func (m *mockResolver) UnitPrice(_ context.Context, _, productID int64) (decimal.Decimal, error) {
	if m.err != nil {
		return decimal.Zero, m.err
	}
	p, ok := m.prices[productID]
	if !ok {
		return decimal.Zero, nil
	}
	return p, nil
}

func newResolver(prices map[int64]decimal.Decimal) *mockResolver {
	return &mockResolver{prices: prices}
}

func placeRequest(lines ...PlaceLine) PlaceRequest {
	return PlaceRequest{
		CustomerID:   7,
		OrderDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		DeliveryDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		VATPct:       DefaultVATPct,
		Lines:        lines,
	}
}

// --- Tests ---

func TestPlace_NoCustomer(t *testing.T) {
	svc := NewService(&mockOrderRepo{}, newResolver(nil))

	_, err := svc.Place(context.Background(), PlaceRequest{
		Lines: []PlaceLine{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrNoCustomer)
}

func TestPlace_EmptyLines(t *testing.T) {
	svc := NewService(&mockOrderRepo{}, newResolver(nil))

	_, err := svc.Place(context.Background(), PlaceRequest{CustomerID: 7})
	require.ErrorIs(t, err, ErrEmptyLines)
}

func TestPlace_InvalidQuantity(t *testing.T) {
	svc := NewService(&mockOrderRepo{}, newResolver(nil))

	_, err := svc.Place(context.Background(), placeRequest(
		PlaceLine{ProductID: 1, Quantity: 0},
	))
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPlace_ResolvedPrices(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo, newResolver(map[int64]decimal.Decimal{
		1: dec("45.00"),
	}))

	o, err := svc.Place(context.Background(), placeRequest(
		PlaceLine{ProductID: 1, Quantity: 3, DiscountPct: 10},
	))
	require.NoError(t, err)

	assert.Equal(t, "000001", o.Number)
	assert.Equal(t, int64(1), o.ID)
	assertDecEqual(t, "121.50", o.Subtotal)
	assertDecEqual(t, "145.80", o.GrandTotal)
	require.Len(t, repo.created, 1)
}

func TestPlace_ManualPriceHonored(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo, newResolver(map[int64]decimal.Decimal{
		1: dec("45.00"),
	}))

	manual := dec("40.00")
	o, err := svc.Place(context.Background(), placeRequest(
		PlaceLine{ProductID: 1, Quantity: 2, UnitPrice: &manual},
	))
	require.NoError(t, err)

	require.Len(t, o.Lines, 1)
	assertDecEqual(t, "40.00", o.Lines[0].UnitPrice)
	assertDecEqual(t, "80.00", o.Lines[0].LineTotal)
}

func TestPlace_SequentialNumbers(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(repo, newResolver(map[int64]decimal.Decimal{
		1: dec("10.00"),
	}))

	for i := range 3 {
		_, err := svc.Place(context.Background(), placeRequest(
			PlaceLine{ProductID: 1, Quantity: 1},
		))
		require.NoError(t, err, "order %d", i)
	}

	require.Len(t, repo.created, 3)
	assert.Equal(t, "000001", repo.created[0].Number)
	assert.Equal(t, "000002", repo.created[1].Number)
	assert.Equal(t, "000003", repo.created[2].Number)
}

func TestPlace_RetriesOnNumberCollision(t *testing.T) {
	repo := &mockOrderRepo{lastNumber: "000009", failCreates: 2}
	svc := NewService(repo, newResolver(map[int64]decimal.Decimal{
		1: dec("10.00"),
	}))

	o, err := svc.Place(context.Background(), placeRequest(
		PlaceLine{ProductID: 1, Quantity: 1},
	))
	require.NoError(t, err)

	// Two collisions consumed 000010 and 000011.
	assert.Equal(t, "000012", o.Number)
}

func TestPlace_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := &mockOrderRepo{failCreates: numberAttempts}
	svc := NewService(repo, newResolver(map[int64]decimal.Decimal{
		1: dec("10.00"),
	}))

	_, err := svc.Place(context.Background(), placeRequest(
		PlaceLine{ProductID: 1, Quantity: 1},
	))
	require.ErrorIs(t, err, ErrDuplicateNumber)
}

func TestPlace_CreateError(t *testing.T) {
	repo := &mockOrderRepo{createErr: errors.New("db write failed")}
	svc := NewService(repo, newResolver(map[int64]decimal.Decimal{
		1: dec("10.00"),
	}))

	_, err := svc.Place(context.Background(), placeRequest(
		PlaceLine{ProductID: 1, Quantity: 1},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestPlace_ResolverError(t *testing.T) {
	svc := NewService(&mockOrderRepo{}, &mockResolver{err: errors.New("db read failed")})

	_, err := svc.Place(context.Background(), placeRequest(
		PlaceLine{ProductID: 1, Quantity: 1},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve price")
}

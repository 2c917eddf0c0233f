//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func vat(pct int) *int { return &pct }

func TestPlaceOrder_RoundTrip(t *testing.T) {
	customerID := createCustomer(t, "Iris", "Vance")
	p := firstProduct(t)

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		VATPct:       vat(20),
		Lines: []orderLineRequest{
			{ProductID: p.ID, Quantity: 3, DiscountPct: 10},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	placed := decodeJSON[orderResponse](t, resp)

	// Read it back: every stored amount must be byte-identical to what the
	// placement response reported.
	getResp := doGet(t, "/api/orders/"+placed.Number)
	defer getResp.Body.Close()

	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}
	got := decodeJSON[orderResponse](t, getResp)

	if got.Subtotal != placed.Subtotal {
		t.Errorf("subtotal: got %s, want %s", got.Subtotal, placed.Subtotal)
	}
	if got.GrandTotal != placed.GrandTotal {
		t.Errorf("grand total: got %s, want %s", got.GrandTotal, placed.GrandTotal)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(got.Lines))
	}
	if got.Lines[0] != placed.Lines[0] {
		t.Errorf("line snapshot: got %+v, want %+v", got.Lines[0], placed.Lines[0])
	}
	if got.Lines[0].ProductID != p.ID || got.Lines[0].Quantity != 3 || got.Lines[0].DiscountPct != 10 {
		t.Errorf("line fields: got %+v", got.Lines[0])
	}
	if got.Lines[0].UnitPrice != p.Price {
		t.Errorf("unit price: got %s, want %s", got.Lines[0].UnitPrice, p.Price)
	}
	if got.OrderDate != "2026-03-02" || got.DeliveryDate != "2026-03-09" {
		t.Errorf("dates: got %s / %s", got.OrderDate, got.DeliveryDate)
	}
}

func TestPlaceOrder_KnownTotals(t *testing.T) {
	customerID := createCustomer(t, "Theo", "Marsh")
	p := firstProduct(t)

	// Pin the unit price so the expected amounts are exact.
	unitPrice := "45.00"
	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		VATPct:       vat(20),
		Lines: []orderLineRequest{
			{ProductID: p.ID, Quantity: 3, DiscountPct: 10, UnitPrice: unitPrice},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	placed := decodeJSON[orderResponse](t, resp)

	// 45.00 * 3 * 0.9 = 121.50; VAT 20% on top = 145.80.
	if placed.Subtotal != "121.5" && placed.Subtotal != "121.50" {
		t.Errorf("subtotal: got %s, want 121.50", placed.Subtotal)
	}
	if placed.GrandTotal != "145.8" && placed.GrandTotal != "145.80" {
		t.Errorf("grand total: got %s, want 145.80", placed.GrandTotal)
	}
}

func TestPlaceOrder_OverridePriceApplies(t *testing.T) {
	customerID := createCustomer(t, "Mara", "Quinn")
	p := firstProduct(t)

	putResp := doPut(t, fmt.Sprintf("/api/customers/%d/prices/%d", customerID, p.ID),
		priceOverrideRequest{Price: "40.00"})
	putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("put override: expected 200, got %d", putResp.StatusCode)
	}

	// The resolver must prefer the override.
	resolveResp := doGet(t, fmt.Sprintf("/api/prices/resolve?customer_id=%d&product_id=%d", customerID, p.ID))
	defer resolveResp.Body.Close()
	resolved := decodeJSON[resolveResponse](t, resolveResp)
	if resolved.UnitPrice != "40" && resolved.UnitPrice != "40.00" {
		t.Fatalf("resolved price: got %s, want 40.00", resolved.UnitPrice)
	}

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		Lines: []orderLineRequest{
			{ProductID: p.ID, Quantity: 2},
		},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	placed := decodeJSON[orderResponse](t, resp)
	if placed.Lines[0].UnitPrice != "40" && placed.Lines[0].UnitPrice != "40.00" {
		t.Errorf("unit price: got %s, want 40.00", placed.Lines[0].UnitPrice)
	}
}

func TestPlaceOrder_SequentialNumbers(t *testing.T) {
	customerID := createCustomer(t, "Ruth", "Calder")
	p := firstProduct(t)

	req := orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		Lines:        []orderLineRequest{{ProductID: p.ID, Quantity: 1}},
	}

	resp1 := doPost(t, "/api/orders", req)
	defer resp1.Body.Close()
	first := decodeJSON[orderResponse](t, resp1)

	resp2 := doPost(t, "/api/orders", req)
	defer resp2.Body.Close()
	second := decodeJSON[orderResponse](t, resp2)

	if len(first.Number) != 6 && len(first.Number) != 7 {
		t.Errorf("number width: got %q", first.Number)
	}
	if second.Number <= first.Number && len(second.Number) == len(first.Number) {
		t.Errorf("numbers not increasing: %s then %s", first.Number, second.Number)
	}
}

func TestPlaceOrder_UnknownCustomer(t *testing.T) {
	p := firstProduct(t)

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   999999,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		Lines:        []orderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_EmptyLines(t *testing.T) {
	customerID := createCustomer(t, "Omar", "Reyes")

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		Lines:        []orderLineRequest{},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestDeleteOrder_RemovesOrder(t *testing.T) {
	customerID := createCustomer(t, "Lena", "Ostrowski")
	p := firstProduct(t)

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		Lines:        []orderLineRequest{{ProductID: p.ID, Quantity: 2}},
	})
	defer resp.Body.Close()
	placed := decodeJSON[orderResponse](t, resp)

	delResp := doDelete(t, "/api/orders/"+placed.Number)
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", delResp.StatusCode)
	}

	getResp := doGet(t, "/api/orders/"+placed.Number)
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", getResp.StatusCode)
	}
}

// Two orders placed on the same calendar day must list newest placement
// first; order_date alone cannot break that tie.
func TestListOrders_SameDayNewestFirst(t *testing.T) {
	customerID := createCustomer(t, "Sana", "Virtanen")
	p := firstProduct(t)

	req := orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-04-01",
		DeliveryDate: "2026-04-08",
		Lines:        []orderLineRequest{{ProductID: p.ID, Quantity: 1}},
	}

	resp1 := doPost(t, "/api/orders", req)
	defer resp1.Body.Close()
	first := decodeJSON[orderResponse](t, resp1)

	resp2 := doPost(t, "/api/orders", req)
	defer resp2.Body.Close()
	second := decodeJSON[orderResponse](t, resp2)

	listResp := doGet(t, "/api/orders")
	defer listResp.Body.Close()
	summaries := decodeJSON[[]orderSummaryResponse](t, listResp)

	firstIdx, secondIdx := -1, -1
	for i, s := range summaries {
		switch s.Number {
		case first.Number:
			firstIdx = i
		case second.Number:
			secondIdx = i
		}
	}
	if firstIdx < 0 || secondIdx < 0 {
		t.Fatalf("orders %s/%s not in listing", first.Number, second.Number)
	}
	if secondIdx >= firstIdx {
		t.Errorf("same-day ordering: %s at %d should precede %s at %d",
			second.Number, secondIdx, first.Number, firstIdx)
	}
}

func TestListOrders_ContainsPlacedOrder(t *testing.T) {
	customerID := createCustomer(t, "Petra", "Lindqvist")
	p := firstProduct(t)

	resp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		Lines:        []orderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	defer resp.Body.Close()
	placed := decodeJSON[orderResponse](t, resp)

	listResp := doGet(t, "/api/orders")
	defer listResp.Body.Close()
	summaries := decodeJSON[[]orderSummaryResponse](t, listResp)

	found := false
	for _, s := range summaries {
		if s.Number == placed.Number {
			found = true
			if s.CustomerName != "Petra Lindqvist" {
				t.Errorf("customer name: got %q", s.CustomerName)
			}
		}
	}
	if !found {
		t.Errorf("order %s not in listing", placed.Number)
	}
}

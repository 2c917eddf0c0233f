//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCustomer_CRUD(t *testing.T) {
	resp := doPost(t, "/api/customers", customerRequest{
		FirstName: "Sana",
		LastName:  "Farooq",
		Phone:     "+1-555-0199",
		Address:   "9 Birch Road",
		Group:     "vip",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[customerResponse](t, resp)
	if created.Group != "vip" {
		t.Errorf("group: got %q, want vip", created.Group)
	}

	getResp := doGet(t, fmt.Sprintf("/api/customers/%d", created.ID))
	defer getResp.Body.Close()
	got := decodeJSON[customerResponse](t, getResp)
	if got.FirstName != "Sana" || got.LastName != "Farooq" {
		t.Errorf("get: got %s %s", got.FirstName, got.LastName)
	}

	putResp := doPut(t, fmt.Sprintf("/api/customers/%d", created.ID), customerRequest{
		FirstName: "Sana",
		LastName:  "Farooq",
		Phone:     "+1-555-0200",
		Address:   "9 Birch Road",
		Group:     "vip",
	})
	defer putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", putResp.StatusCode)
	}
	updated := decodeJSON[customerResponse](t, putResp)
	if updated.Phone != "+1-555-0200" {
		t.Errorf("phone: got %q", updated.Phone)
	}

	delResp := doDelete(t, fmt.Sprintf("/api/customers/%d", created.ID))
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", delResp.StatusCode)
	}

	goneResp := doGet(t, fmt.Sprintf("/api/customers/%d", created.ID))
	defer goneResp.Body.Close()
	if goneResp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", goneResp.StatusCode)
	}
}

func TestCustomer_DeleteBlockedByOrders(t *testing.T) {
	customerID := createCustomer(t, "Bruno", "Keller")
	p := firstProduct(t)

	orderResp := doPost(t, "/api/orders", orderRequest{
		CustomerID:   customerID,
		OrderDate:    "2026-03-02",
		DeliveryDate: "2026-03-09",
		Lines:        []orderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	orderResp.Body.Close()
	if orderResp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", orderResp.StatusCode)
	}

	delResp := doDelete(t, fmt.Sprintf("/api/customers/%d", customerID))
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusConflict {
		t.Fatalf("delete: expected 409, got %d", delResp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, delResp)
	if body.Code != http.StatusConflict {
		t.Errorf("error code: got %d", body.Code)
	}
}

func TestCustomer_DeleteRemovesOverrides(t *testing.T) {
	customerID := createCustomer(t, "Nils", "Berg")
	p := firstProduct(t)

	putResp := doPut(t, fmt.Sprintf("/api/customers/%d/prices/%d", customerID, p.ID),
		priceOverrideRequest{Price: "33.00"})
	putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("put override: expected 200, got %d", putResp.StatusCode)
	}

	delResp := doDelete(t, fmt.Sprintf("/api/customers/%d", customerID))
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", delResp.StatusCode)
	}
}

func TestCustomer_ValidationErrors(t *testing.T) {
	resp := doPost(t, "/api/customers", customerRequest{FirstName: "OnlyFirst"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

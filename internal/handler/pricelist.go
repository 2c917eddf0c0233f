package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
	"github.com/kyurt/orderdesk/internal/domain/customer"
)

type priceOverrideResponse struct {
	CustomerID int64           `json:"customer_id"`
	ProductID  int64           `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
}

func (h *Handler) listPrices(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	overrides, err := h.prices.ListForCustomer(r.Context(), customerID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]priceOverrideResponse, len(overrides))
	for i, o := range overrides {
		out[i] = priceOverrideResponse{
			CustomerID: o.CustomerID,
			ProductID:  o.ProductID,
			Price:      o.Price,
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) putPrice(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Price.IsNegative() {
		writeError(w, r, http.StatusUnprocessableEntity, "price must not be negative")
		return
	}

	o := catalog.PriceOverride{CustomerID: customerID, ProductID: productID, Price: req.Price}
	if err := h.prices.Upsert(r.Context(), o); err != nil {
		switch {
		case errors.Is(err, customer.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "customer not found")
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "product not found")
		default:
			internalError(w, r, err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, priceOverrideResponse(o))
}

func (h *Handler) deletePrice(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.prices.Delete(r.Context(), customerID, productID); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolvePrice answers "what would this customer pay per unit": the
// customer's override when one exists, the catalog price otherwise.
func (h *Handler) resolvePrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, err := strconv.ParseInt(q.Get("customer_id"), 10, 64)
	if err != nil || customerID < 0 {
		writeError(w, r, http.StatusBadRequest, "invalid customer_id")
		return
	}
	productID, err := strconv.ParseInt(q.Get("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid product_id")
		return
	}

	// Unknown products resolve to zero rather than failing, so the caller
	// can still quote a line and fix the price by hand.
	price, err := h.resolver.UnitPrice(r.Context(), customerID, productID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		CustomerID int64           `json:"customer_id"`
		ProductID  int64           `json:"product_id"`
		UnitPrice  decimal.Decimal `json:"unit_price"`
	}{CustomerID: customerID, ProductID: productID, UnitPrice: price})
}

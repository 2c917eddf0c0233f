package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kyurt/orderdesk/internal/domain/order"
)

const dateLayout = "2006-01-02"

type placeLineRequest struct {
	ProductID   int64            `json:"product_id"`
	Quantity    int              `json:"quantity"`
	DiscountPct int              `json:"discount_pct"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

type placeOrderRequest struct {
	CustomerID   int64              `json:"customer_id"`
	OrderDate    string             `json:"order_date"`
	DeliveryDate string             `json:"delivery_date"`
	DiscountPct  int                `json:"discount_pct"`
	VATPct       *int               `json:"vat_pct,omitempty"`
	Lines        []placeLineRequest `json:"lines"`
}

type orderLineResponse struct {
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct int             `json:"discount_pct"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type orderResponse struct {
	Number       string              `json:"number"`
	CustomerID   int64               `json:"customer_id"`
	OrderDate    string              `json:"order_date"`
	DeliveryDate string              `json:"delivery_date"`
	DiscountPct  int                 `json:"discount_pct"`
	VATPct       int                 `json:"vat_pct"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	GrandTotal   decimal.Decimal     `json:"grand_total"`
	Lines        []orderLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
}

type orderSummaryResponse struct {
	Number       string          `json:"number"`
	OrderDate    string          `json:"order_date"`
	CustomerName string          `json:"customer_name"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	DeliveryDate string          `json:"delivery_date"`
}

type customerOrderResponse struct {
	Number       string          `json:"number"`
	OrderDate    string          `json:"order_date"`
	DeliveryDate string          `json:"delivery_date"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	Products     string          `json:"products"`
}

func toOrderResponse(o *order.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineResponse{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			LineTotal:   l.LineTotal,
		}
	}
	return orderResponse{
		Number:       o.Number,
		CustomerID:   o.CustomerID,
		OrderDate:    o.OrderDate.Format(dateLayout),
		DeliveryDate: o.DeliveryDate.Format(dateLayout),
		DiscountPct:  o.DiscountPct,
		VATPct:       o.VATPct,
		Subtotal:     o.Subtotal,
		GrandTotal:   o.GrandTotal,
		Lines:        lines,
		CreatedAt:    o.CreatedAt,
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	orderDate, err := time.Parse(dateLayout, req.OrderDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid order_date, want YYYY-MM-DD")
		return
	}
	deliveryDate, err := time.Parse(dateLayout, req.DeliveryDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid delivery_date, want YYYY-MM-DD")
		return
	}

	vat := order.DefaultVATPct
	if req.VATPct != nil {
		vat = *req.VATPct
	}

	place := order.PlaceRequest{
		CustomerID:   req.CustomerID,
		OrderDate:    orderDate,
		DeliveryDate: deliveryDate,
		DiscountPct:  req.DiscountPct,
		VATPct:       vat,
		Lines:        make([]order.PlaceLine, len(req.Lines)),
	}
	for i, l := range req.Lines {
		place.Lines[i] = order.PlaceLine{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			DiscountPct: l.DiscountPct,
			UnitPrice:   l.UnitPrice,
		}
	}

	o, err := h.placer.Place(r.Context(), place)
	if err != nil {
		mapOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toOrderResponse(o))
}

// mapOrderError translates domain errors from order placement into HTTP
// statuses. Anything unexpected is a 500.
func mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrNoCustomer),
		errors.Is(err, order.ErrEmptyLines),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidPercent),
		errors.Is(err, order.ErrCustomerMissing),
		errors.Is(err, order.ErrProductMissing):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrDuplicateNumber):
		writeError(w, r, http.StatusConflict, "order number allocation contention, retry")
	default:
		internalError(w, r, err)
	}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	o, err := h.orders.Get(r.Context(), number)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.orders.ListAll(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]orderSummaryResponse, len(summaries))
	for i, s := range summaries {
		out[i] = orderSummaryResponse{
			Number:       s.Number,
			OrderDate:    s.OrderDate.Format(dateLayout),
			CustomerName: s.CustomerName,
			GrandTotal:   s.GrandTotal,
			DeliveryDate: s.DeliveryDate.Format(dateLayout),
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rows, err := h.orders.ListForCustomer(r.Context(), customerID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]customerOrderResponse, len(rows))
	for i, c := range rows {
		out[i] = customerOrderResponse{
			Number:       c.Number,
			OrderDate:    c.OrderDate.Format(dateLayout),
			DeliveryDate: c.DeliveryDate.Format(dateLayout),
			GrandTotal:   c.GrandTotal,
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			Phone:        c.Phone,
			Address:      c.Address,
			Products:     c.Products,
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	if err := h.placer.Delete(r.Context(), number); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

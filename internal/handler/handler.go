// Package handler exposes the domain over a thin JSON/HTTP facade. It holds
// no pricing logic: drafts and totals are computed by the order domain, and
// the store is the final authority on integrity.
package handler

import (
	"net/http"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
	"github.com/kyurt/orderdesk/internal/domain/customer"
	"github.com/kyurt/orderdesk/internal/domain/order"
	"github.com/kyurt/orderdesk/internal/domain/pricing"
)

// Handler serves the API routes, delegating to the domain services and
// repositories.
type Handler struct {
	customers customer.Repository
	products  catalog.ProductRepository
	prices    catalog.PriceRepository
	orders    order.Repository
	placer    *order.Service
	resolver  *pricing.Resolver
}

// New constructs a Handler with the required domain dependencies.
func New(
	customers customer.Repository,
	products catalog.ProductRepository,
	prices catalog.PriceRepository,
	orders order.Repository,
	placer *order.Service,
	resolver *pricing.Resolver,
) *Handler {
	return &Handler{
		customers: customers,
		products:  products,
		prices:    prices,
		orders:    orders,
		placer:    placer,
		resolver:  resolver,
	}
}

// Routes registers all API routes on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/customers", h.listCustomers)
	mux.HandleFunc("POST /api/customers", h.createCustomer)
	mux.HandleFunc("GET /api/customers/{id}", h.getCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", h.updateCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", h.deleteCustomer)
	mux.HandleFunc("GET /api/customers/{id}/orders", h.listCustomerOrders)
	mux.HandleFunc("GET /api/customers/{id}/prices", h.listPrices)
	mux.HandleFunc("PUT /api/customers/{id}/prices/{productID}", h.putPrice)
	mux.HandleFunc("DELETE /api/customers/{id}/prices/{productID}", h.deletePrice)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)

	mux.HandleFunc("GET /api/prices/resolve", h.resolvePrice)

	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders/{number}", h.getOrder)
	mux.HandleFunc("DELETE /api/orders/{number}", h.deleteOrder)
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/kyurt/orderdesk/internal/domain/customer"
)

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email,omitempty"`
	Group     string `json:"group"`
	Notes     string `json:"notes,omitempty"`
}

type customerResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Email     string    `json:"email,omitempty"`
	Group     string    `json:"group"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (req *customerRequest) toDomain() (*customer.Customer, string) {
	if req.FirstName == "" || req.LastName == "" {
		return nil, "first and last name are required"
	}
	if req.Phone == "" {
		return nil, "phone is required"
	}
	if req.Address == "" {
		return nil, "address is required"
	}
	group := customer.Group(req.Group)
	if group == "" {
		group = customer.GroupStandard
	}
	if !group.Valid() {
		return nil, "unknown customer group"
	}
	return &customer.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Email:     req.Email,
		Group:     group,
		Notes:     req.Notes,
	}, ""
}

func toCustomerResponse(c customer.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Address:   c.Address,
		Email:     c.Email,
		Group:     string(c.Group),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]customerResponse, len(customers))
	for i, c := range customers {
		out[i] = toCustomerResponse(c)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "customer not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCustomerResponse(*c))
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, msg := req.toDomain()
	if msg != "" {
		writeError(w, r, http.StatusUnprocessableEntity, msg)
		return
	}

	id, err := h.customers.Create(r.Context(), c)
	if err != nil {
		internalError(w, r, err)
		return
	}
	c.ID = id
	writeJSON(w, r, http.StatusCreated, toCustomerResponse(*c))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, msg := req.toDomain()
	if msg != "" {
		writeError(w, r, http.StatusUnprocessableEntity, msg)
		return
	}
	c.ID = id

	if err := h.customers.Update(r.Context(), c); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "customer not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCustomerResponse(*c))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, customer.ErrHasOrders) {
			writeError(w, r, http.StatusConflict, "customer has existing orders")
			return
		}
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/kyurt/orderdesk/internal/domain/catalog"
)

type productRequest struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type productResponse struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p := &catalog.Product{Code: req.Code, Name: req.Name, Price: req.Price}
	if err := p.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := h.products.Create(r.Context(), p)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateCode) {
			writeError(w, r, http.StatusConflict, "product code already exists")
			return
		}
		internalError(w, r, err)
		return
	}
	p.ID = id
	writeJSON(w, r, http.StatusCreated, toProductResponse(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p := &catalog.Product{ID: id, Code: req.Code, Name: req.Name, Price: req.Price}
	if err := p.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "product not found")
		case errors.Is(err, catalog.ErrDuplicateCode):
			writeError(w, r, http.StatusConflict, "product code already exists")
		default:
			internalError(w, r, err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrInUse) {
			writeError(w, r, http.StatusConflict, "product is referenced by existing orders")
			return
		}
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

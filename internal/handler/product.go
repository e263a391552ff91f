package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/wire"
)

// ListProducts serves GET /api/products?query=&sort=&favorite=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort, err := product.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := product.Filter{Query: q.Get("query"), Sort: sort}
	if v := q.Get("favorite"); v != "" {
		if f.FavoriteOnly, err = strconv.ParseBool(v); err != nil {
			writeError(w, r, badRequest(errors.Wrap(err, "parse favorite")))
			return
		}
	}

	items, err := h.products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.Envelope("Products fetched", func(e *jx.Encoder) {
		wire.EncodeItems(e, items)
	}))
}

// GetProduct serves GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	it, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.Envelope("Product fetched", func(e *jx.Encoder) {
		wire.EncodeItem(e, *it)
	}))
}

// CreateProduct serves POST /api/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.Item
	if err := decodeBody(w, r, func(d *jx.Decoder) (err error) {
		in, err = wire.DecodeItem(d)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/products/"+created.ID)
	writeJSON(w, http.StatusCreated, wire.Envelope("Product created", func(e *jx.Encoder) {
		wire.EncodeItem(e, *created)
	}))
}

// UpdateProduct serves PUT /api/products/{id}. Only members present in the
// body are changed.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch product.Patch
	if err := decodeBody(w, r, func(d *jx.Decoder) (err error) {
		patch, err = wire.DecodePatch(d)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.products.Update(r.Context(), r.PathValue("id"), patch); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProduct serves DELETE /api/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/wire"
)

// ListCategories serves GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.Envelope("Categories fetched", func(e *jx.Encoder) {
		wire.EncodeCategories(e, cs)
	}))
}

// GetCategory serves GET /api/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.Envelope("Category fetched", func(e *jx.Encoder) {
		wire.EncodeCategory(e, *c)
	}))
}

// CreateCategory serves POST /api/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCategory(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.categories.Create(r.Context(), in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/categories/"+c.ID)
	writeJSON(w, http.StatusCreated, wire.Envelope("Category created", func(e *jx.Encoder) {
		wire.EncodeCategory(e, *c)
	}))
}

// UpdateCategory serves PUT /api/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCategory(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.categories.Rename(r.Context(), r.PathValue("id"), in.Name); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory serves DELETE /api/categories/{id}. Products keep their
// category reference.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeCategory(w http.ResponseWriter, r *http.Request) (category.Category, error) {
	var c category.Category
	err := decodeBody(w, r, func(d *jx.Decoder) (err error) {
		c, err = wire.DecodeCategory(d)
		return err
	})
	return c, err
}

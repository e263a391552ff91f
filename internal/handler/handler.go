// Package handler serves the catalog REST API on a net/http ServeMux.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/domain/validate"
	"github.com/xenking/steezy-shop/internal/wire"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Products is the product use-case surface the API exposes.
type Products interface {
	List(ctx context.Context, f product.Filter) ([]product.Item, error)
	Get(ctx context.Context, id string) (*product.Item, error)
	Create(ctx context.Context, it product.Item) (*product.Item, error)
	Update(ctx context.Context, id string, patch product.Patch) (*product.Item, error)
	Delete(ctx context.Context, id string) error
}

// Categories is the category use-case surface the API exposes.
type Categories interface {
	List(ctx context.Context) ([]category.Category, error)
	Get(ctx context.Context, id string) (*category.Category, error)
	Create(ctx context.Context, name string) (*category.Category, error)
	Rename(ctx context.Context, id, name string) (*category.Category, error)
	Delete(ctx context.Context, id string) error
}

// Compile-time checks that the domain services satisfy the API surface.
var (
	_ Products   = (*product.Service)(nil)
	_ Categories = (*category.Service)(nil)
)

// Handler routes API requests to the domain services.
type Handler struct {
	products   Products
	categories Categories
}

// NewHandler constructs a Handler.
func NewHandler(products Products, categories Categories) *Handler {
	return &Handler{
		products:   products,
		categories: categories,
	}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.CreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", h.GetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", h.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.DeleteCategory)
}

// badRequestError marks malformed input that never reached the domain.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &badRequestError{err: err}
}

// decodeBody hands a decoder over the size-limited request body to fn.
func decodeBody(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder) error) error {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest(errors.Wrap(err, "read body"))
	}
	if len(b) == 0 {
		return badRequest(errors.New("empty body"))
	}
	if err := fn(jx.DecodeBytes(b)); err != nil {
		return badRequest(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognised is
// logged and reported as 500 without leaking details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := wire.Error{Code: http.StatusInternalServerError, Message: "internal server error"}

	var (
		verr   *validate.Error
		badReq *badRequestError
		unkCat *product.UnknownCategoryError
	)
	switch {
	case errors.As(err, &verr):
		body = wire.Error{Code: http.StatusBadRequest, Message: verr.Error(), Fields: verr.Fields}
	case errors.As(err, &badReq), errors.Is(err, product.ErrInvalidSort):
		body = wire.Error{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, product.ErrNotFound), errors.Is(err, category.ErrNotFound):
		body = wire.Error{Code: http.StatusNotFound, Message: err.Error()}
	case errors.As(err, &unkCat):
		body = wire.Error{
			Code:    http.StatusUnprocessableEntity,
			Message: unkCat.Error(),
			Fields:  map[string]string{"category": "does not exist"},
		}
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, body.Code, wire.EncodeError(body))
}

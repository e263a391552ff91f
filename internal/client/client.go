// Package client is the HTTP client for the catalog REST API. It backs both
// the storefront services and the admin console.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/wire"
)

// ErrNotFound is matched by a *StatusError carrying 404.
var ErrNotFound = errors.New("not found")

// StatusError reports a response whose status differs from the one the
// operation expects.
type StatusError struct {
	Code    int
	Message string
	Fields  map[string]string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client talks to the catalog API.
type Client struct {
	base *url.URL
	http *http.Client
	lg   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request debug output.
func WithLogger(lg *zap.Logger) Option {
	return func(c *Client) { c.lg = lg }
}

// New creates a Client for the API rooted at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		lg: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// do sends a request and returns the response body when the status equals
// want. path must already be escaped.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, want int) ([]byte, error) {
	u := c.base.JoinPath(path)
	u.RawQuery = query.Encode()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, u.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	c.lg.Debug("API call",
		zap.String("method", method),
		zap.String("url", u.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != want {
		serr := &StatusError{Code: resp.StatusCode}
		if apiErr, err := wire.DecodeError(data); err == nil {
			serr.Message = apiErr.Message
			serr.Fields = apiErr.Fields
		}
		return nil, serr
	}
	return data, nil
}

func encode(fn func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	fn(&e)
	return e.Bytes()
}

func productPath(id string) string {
	return "/api/products/" + url.PathEscape(id)
}

func categoryPath(id string) string {
	return "/api/categories/" + url.PathEscape(id)
}

// ListProducts fetches the items matching f.
func (c *Client) ListProducts(ctx context.Context, f product.Filter) ([]product.Item, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("query", f.Query)
	}
	if f.Sort != "" {
		q.Set("sort", string(f.Sort))
	}
	if f.FavoriteOnly {
		q.Set("favorite", "true")
	}
	data, err := c.do(ctx, http.MethodGet, "/api/products", q, nil, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	var items []product.Item
	if err := wire.DecodeData(data, func(d *jx.Decoder) (err error) {
		items, err = wire.DecodeItems(d)
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return items, nil
}

// GetProduct fetches one item.
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Item, error) {
	data, err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, http.StatusOK)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	return decodeItem(data)
}

// CreateProduct posts a new item and returns it as stored.
func (c *Client) CreateProduct(ctx context.Context, it product.Item) (*product.Item, error) {
	body := encode(func(e *jx.Encoder) { wire.EncodeItem(e, it) })
	data, err := c.do(ctx, http.MethodPost, "/api/products", nil, body, http.StatusCreated)
	if err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return decodeItem(data)
}

// UpdateProduct sends a partial update. Only the fields set in patch change.
func (c *Client) UpdateProduct(ctx context.Context, id string, patch product.Patch) error {
	body := encode(func(e *jx.Encoder) { wire.EncodePatch(e, patch) })
	if _, err := c.do(ctx, http.MethodPut, productPath(id), nil, body, http.StatusNoContent); err != nil {
		return errors.Wrapf(err, "update product %q", id)
	}
	return nil
}

// DeleteProduct removes an item.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, productPath(id), nil, nil, http.StatusNoContent); err != nil {
		return errors.Wrapf(err, "delete product %q", id)
	}
	return nil
}

// ListCategories fetches every category.
func (c *Client) ListCategories(ctx context.Context) ([]category.Category, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	var cs []category.Category
	if err := wire.DecodeData(data, func(d *jx.Decoder) (err error) {
		cs, err = wire.DecodeCategories(d)
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return cs, nil
}

// GetCategory fetches one category.
func (c *Client) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	data, err := c.do(ctx, http.MethodGet, categoryPath(id), nil, nil, http.StatusOK)
	if err != nil {
		return nil, errors.Wrapf(err, "get category %q", id)
	}
	return decodeCategory(data)
}

// CreateCategory creates a category named name.
func (c *Client) CreateCategory(ctx context.Context, name string) (*category.Category, error) {
	body := encode(func(e *jx.Encoder) { wire.EncodeCategory(e, category.Category{Name: name}) })
	data, err := c.do(ctx, http.MethodPost, "/api/categories", nil, body, http.StatusCreated)
	if err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return decodeCategory(data)
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id, name string) error {
	body := encode(func(e *jx.Encoder) { wire.EncodeCategory(e, category.Category{ID: id, Name: name}) })
	if _, err := c.do(ctx, http.MethodPut, categoryPath(id), nil, body, http.StatusNoContent); err != nil {
		return errors.Wrapf(err, "update category %q", id)
	}
	return nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, categoryPath(id), nil, nil, http.StatusNoContent); err != nil {
		return errors.Wrapf(err, "delete category %q", id)
	}
	return nil
}

func decodeItem(data []byte) (*product.Item, error) {
	var it product.Item
	if err := wire.DecodeData(data, func(d *jx.Decoder) (err error) {
		it, err = wire.DecodeItem(d)
		return err
	}); err != nil {
		return nil, err
	}
	return &it, nil
}

func decodeCategory(data []byte) (*category.Category, error) {
	var c category.Category
	if err := wire.DecodeData(data, func(d *jx.Decoder) (err error) {
		c, err = wire.DecodeCategory(d)
		return err
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

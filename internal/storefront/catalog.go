// Package storefront holds the shopper-facing services: catalog queries, the
// wishlist toggle and the list presentation controller that drives them.
package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/steezy-shop/internal/domain/product"
)

// Wildcard is the search text that lists the whole catalog.
const Wildcard = "*"

// ErrFetchFailed is matched by every *FetchFailedError.
var ErrFetchFailed = errors.New("fetch failed")

// FetchFailedError wraps a remote failure while listing items.
type FetchFailedError struct {
	Query string
	Err   error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch items %q: %v", e.Query, e.Err)
}

// Is matches ErrFetchFailed.
func (e *FetchFailedError) Is(target error) bool {
	return target == ErrFetchFailed
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Collection is the remote product collection.
type Collection interface {
	ListProducts(ctx context.Context, f product.Filter) ([]product.Item, error)
	UpdateProduct(ctx context.Context, id string, patch product.Patch) error
}

// Catalog answers search and wishlist listing queries.
type Catalog struct {
	remote Collection
}

// NewCatalog creates a Catalog over c.
func NewCatalog(c Collection) *Catalog {
	return &Catalog{remote: c}
}

// FetchItems lists items whose title contains searchText, ordered by sort.
// Blank text yields no items without contacting the remote; only Wildcard
// lists everything.
func (c *Catalog) FetchItems(ctx context.Context, searchText string, sort product.SortKey) ([]product.Item, error) {
	query := strings.TrimSpace(searchText)
	switch query {
	case "":
		return []product.Item{}, nil
	case Wildcard:
		query = ""
	}
	return c.list(ctx, searchText, product.Filter{Query: query, Sort: sort})
}

// FetchFavorites lists the wishlisted items ordered by sort.
func (c *Catalog) FetchFavorites(ctx context.Context, sort product.SortKey) ([]product.Item, error) {
	return c.list(ctx, "", product.Filter{Sort: sort, FavoriteOnly: true})
}

func (c *Catalog) list(ctx context.Context, label string, f product.Filter) ([]product.Item, error) {
	items, err := c.remote.ListProducts(ctx, f)
	if err != nil {
		return nil, &FetchFailedError{Query: label, Err: err}
	}
	if items == nil {
		items = []product.Item{}
	}
	return items, nil
}

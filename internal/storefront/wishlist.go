package storefront

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/domain/product"
)

// Outcome is the result of a wishlist toggle.
type Outcome int

const (
	Favorited Outcome = iota + 1
	FavoriteFailed
)

func (o Outcome) String() string {
	switch o {
	case Favorited:
		return "favorited"
	case FavoriteFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ErrFavoriteFailed is matched by every *FavoriteFailedError.
var ErrFavoriteFailed = errors.New("favorite failed")

// FavoriteFailedError wraps a remote failure while marking an item.
type FavoriteFailedError struct {
	ID  string
	Err error
}

func (e *FavoriteFailedError) Error() string {
	return fmt.Sprintf("favorite %q: %v", e.ID, e.Err)
}

// Is matches ErrFavoriteFailed.
func (e *FavoriteFailedError) Is(target error) bool {
	return target == ErrFavoriteFailed
}

func (e *FavoriteFailedError) Unwrap() error {
	return e.Err
}

// Wishlist marks items as favorites on the remote collection.
type Wishlist struct {
	remote   Collection
	lg       *zap.Logger
	requests metric.Int64Counter
}

// WishlistOption configures a Wishlist.
type WishlistOption func(*wishlistOptions)

type wishlistOptions struct {
	lg *zap.Logger
	mp metric.MeterProvider
}

// WithWishlistLogger sets the Wishlist logger.
func WithWishlistLogger(lg *zap.Logger) WishlistOption {
	return func(o *wishlistOptions) { o.lg = lg }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) WishlistOption {
	return func(o *wishlistOptions) { o.mp = mp }
}

// NewWishlist creates a Wishlist over c.
func NewWishlist(c Collection, opts ...WishlistOption) *Wishlist {
	o := wishlistOptions{lg: zap.NewNop(), mp: otel.GetMeterProvider()}
	for _, fn := range opts {
		fn(&o)
	}
	w := &Wishlist{remote: c, lg: o.lg}

	counter, err := o.mp.Meter("github.com/xenking/steezy-shop/internal/storefront").Int64Counter(
		"storefront.favorite.requests",
		metric.WithDescription("Wishlist toggle requests by outcome"),
	)
	if err != nil {
		o.lg.Warn("Failed to create favorite counter", zap.Error(err))
	}
	w.requests = counter
	return w
}

// ToggleFavorite marks item as a favorite. The category travels as a bare id
// so the remote never receives a populated category object. There is no
// unfavorite.
func (w *Wishlist) ToggleFavorite(ctx context.Context, item product.Item) (Outcome, error) {
	if item.ID == "" {
		w.record(ctx, FavoriteFailed)
		return FavoriteFailed, product.ErrEmptyID
	}

	fav := true
	patch := product.Patch{IsFavorite: &fav}
	if item.CategoryID != "" {
		categoryID := item.CategoryID
		patch.CategoryID = &categoryID
	}
	if err := w.remote.UpdateProduct(ctx, item.ID, patch); err != nil {
		w.lg.Warn("Favorite failed", zap.String("id", item.ID), zap.Error(err))
		w.record(ctx, FavoriteFailed)
		return FavoriteFailed, &FavoriteFailedError{ID: item.ID, Err: err}
	}
	w.record(ctx, Favorited)
	return Favorited, nil
}

func (w *Wishlist) record(ctx context.Context, o Outcome) {
	if w.requests == nil {
		return
	}
	w.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", o.String())))
}

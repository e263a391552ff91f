package storefront

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/recent"
)

// DetailsPath is the route prefix of the product details page.
const DetailsPath = "/products/details/"

// Messages shown to the shopper after a wishlist toggle.
const (
	MsgFavorited      = "Added to wishlist"
	MsgFavoriteFailed = "Could not add to wishlist"
)

// State is the lifecycle of the current listing.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ViewModel is what a list page renders.
type ViewModel struct {
	Items      []product.Item
	IsLoading  bool
	IsError    bool
	SortKey    product.SortKey
	SearchText string
	State      State
	Err        error
}

// Navigator moves the shopper to another page.
type Navigator interface {
	Navigate(path string)
}

// Notifier shows transient messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type listing int

const (
	searchListing listing = iota
	wishlistListing
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the Controller logger.
func WithControllerLogger(lg *zap.Logger) ControllerOption {
	return func(c *Controller) { c.lg = lg }
}

// Controller turns shopper events into catalog calls and keeps the view model.
// Every fetch takes a token; a result is applied only if its token is still
// the latest, so a slow stale response never overwrites a newer one.
type Controller struct {
	catalog  *Catalog
	wishlist *Wishlist
	recent   *recent.Log
	nav      Navigator
	notify   Notifier
	lg       *zap.Logger

	mu      sync.Mutex
	vm      ViewModel
	token   uint64
	listing listing
}

// NewController creates an idle Controller sorted by SortDefault.
func NewController(cat *Catalog, wl *Wishlist, log *recent.Log, nav Navigator, n Notifier, opts ...ControllerOption) *Controller {
	c := &Controller{
		catalog:  cat,
		wishlist: wl,
		recent:   log,
		nav:      nav,
		notify:   n,
		lg:       zap.NewNop(),
		vm: ViewModel{
			Items:   []product.Item{},
			SortKey: product.SortDefault,
			State:   Idle,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SearchChanged runs a search for text with the current sort key.
func (c *Controller) SearchChanged(ctx context.Context, text string) error {
	c.mu.Lock()
	c.vm.SearchText = text
	c.listing = searchListing
	tok, sort := c.begin(), c.vm.SortKey
	c.mu.Unlock()

	items, err := c.catalog.FetchItems(ctx, text, sort)
	c.finish(tok, items, err)
	return err
}

// SortChanged switches the sort key and re-runs the current listing.
func (c *Controller) SortChanged(ctx context.Context, key product.SortKey) error {
	key, err := product.ParseSortKey(string(key))
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.vm.SortKey = key
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// LoadWishlist lists the favorites with the current sort key.
func (c *Controller) LoadWishlist(ctx context.Context) error {
	c.mu.Lock()
	c.listing = wishlistListing
	tok, sort := c.begin(), c.vm.SortKey
	c.mu.Unlock()

	items, err := c.catalog.FetchFavorites(ctx, sort)
	c.finish(tok, items, err)
	return err
}

// Refresh re-runs the current listing.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	l, text := c.listing, c.vm.SearchText
	c.mu.Unlock()

	if l == wishlistListing {
		return c.LoadWishlist(ctx)
	}
	return c.SearchChanged(ctx, text)
}

// ItemOpened records the view and navigates to the details page.
func (c *Controller) ItemOpened(item product.Item) error {
	if err := c.recent.RecordView(item); err != nil {
		return err
	}
	c.nav.Navigate(DetailsPath + item.ID)
	return nil
}

// FavoriteClicked adds item to the wishlist. Success notifies and refreshes
// the listing once; failure notifies and leaves the items untouched.
func (c *Controller) FavoriteClicked(ctx context.Context, item product.Item) (Outcome, error) {
	outcome, err := c.wishlist.ToggleFavorite(ctx, item)
	if outcome != Favorited {
		c.notify.Error(MsgFavoriteFailed)
		return outcome, err
	}
	c.notify.Success(MsgFavorited)
	if err := c.Refresh(ctx); err != nil {
		c.lg.Debug("Refresh after favorite failed", zap.Error(err))
	}
	return outcome, nil
}

// View returns a snapshot of the view model.
func (c *Controller) View() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	vm := c.vm
	vm.Items = make([]product.Item, len(c.vm.Items))
	for i, it := range c.vm.Items {
		vm.Items[i] = it.Clone()
	}
	return vm
}

// begin issues a new token and enters Loading. Callers hold c.mu.
func (c *Controller) begin() uint64 {
	c.token++
	c.vm.State = Loading
	c.vm.IsLoading = true
	return c.token
}

func (c *Controller) finish(tok uint64, items []product.Item, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok != c.token {
		c.lg.Debug("Discarding stale result", zap.Uint64("token", tok), zap.Uint64("latest", c.token))
		return
	}
	c.vm.IsLoading = false
	if err != nil {
		c.vm.State = Errored
		c.vm.IsError = true
		c.vm.Err = err
		return
	}
	c.vm.State = Loaded
	c.vm.IsError = false
	c.vm.Err = nil
	c.vm.Items = items
}

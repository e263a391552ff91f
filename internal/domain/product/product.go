package product

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrEmptyID is returned for items without an identifier.
var ErrEmptyID = errors.New("item has no id")

// ErrInvalidSort is returned for sort keys outside the supported set.
var ErrInvalidSort = errors.New("invalid sort key")

// Item is a catalog entry. IsFavorite is owned by the server; clients change
// it only through a partial update.
type Item struct {
	ID            string
	Title         string
	Price         decimal.Decimal
	DiscountPrice decimal.Decimal
	Description   string
	Stock         int
	ThumbnailURL  string
	ImageURLs     []string
	CategoryID    string
	// CategoryName is filled when the category was resolved alongside the item.
	CategoryName string
	IsFavorite   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a copy that shares no mutable state with it.
func (it Item) Clone() Item {
	it.ImageURLs = slices.Clone(it.ImageURLs)
	return it
}

// DisplayImage picks the image shown on listing cards: the thumbnail, else the
// first gallery image, else nothing.
func (it Item) DisplayImage() string {
	if it.ThumbnailURL != "" {
		return it.ThumbnailURL
	}
	if len(it.ImageURLs) > 0 {
		return it.ImageURLs[0]
	}
	return ""
}

// SortKey selects the listing order.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
)

// ParseSortKey maps a request value to a SortKey. Empty means SortDefault.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortDefault, nil
	case SortDefault, SortPriceAsc, SortPriceDesc:
		return k, nil
	default:
		return "", errors.Wrapf(ErrInvalidSort, "%q", s)
	}
}

// Filter narrows a catalog listing. An empty Query matches every title.
type Filter struct {
	Query        string
	Sort         SortKey
	FavoriteOnly bool
}

// Patch is a partial update: nil fields are left untouched.
type Patch struct {
	Title         *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	Description   *string
	Stock         *int
	ThumbnailURL  *string
	ImageURLs     *[]string
	CategoryID    *string
	IsFavorite    *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply returns a copy of it with the patch applied.
func (p Patch) Apply(it Item) Item {
	it = it.Clone()
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Price != nil {
		it.Price = *p.Price
	}
	if p.DiscountPrice != nil {
		it.DiscountPrice = *p.DiscountPrice
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Stock != nil {
		it.Stock = *p.Stock
	}
	if p.ThumbnailURL != nil {
		it.ThumbnailURL = *p.ThumbnailURL
	}
	if p.ImageURLs != nil {
		it.ImageURLs = slices.Clone(*p.ImageURLs)
	}
	if p.CategoryID != nil && *p.CategoryID != it.CategoryID {
		it.CategoryID = *p.CategoryID
		it.CategoryName = ""
	}
	if p.IsFavorite != nil {
		it.IsFavorite = *p.IsFavorite
	}
	return it
}

// Repository defines persistence for the catalog.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
}

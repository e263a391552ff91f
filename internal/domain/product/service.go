package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnknownCategoryError indicates a product references a category that does
// not exist.
type UnknownCategoryError struct {
	CategoryID string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("category %s not found", e.CategoryID)
}

// Categories reports whether a category exists.
type Categories interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service encapsulates catalog business rules on top of a Repository.
type Service struct {
	products   Repository
	categories Categories
	now        func() time.Time
}

// NewService creates a product Service.
func NewService(products Repository, categories Categories) *Service {
	return &Service{
		products:   products,
		categories: categories,
		now:        time.Now,
	}
}

// List returns the items matching f in the order f.Sort selects.
func (s *Service) List(ctx context.Context, f Filter) ([]Item, error) {
	if _, err := ParseSortKey(string(f.Sort)); err != nil {
		return nil, err
	}
	if f.Sort == "" {
		f.Sort = SortDefault
	}
	f.Query = strings.TrimSpace(f.Query)

	items, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// Get returns a single item or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.products.GetByID(ctx, id)
}

// Create validates it, assigns an identifier and timestamps, and stores it.
func (s *Service) Create(ctx context.Context, it Item) (*Item, error) {
	it = it.Clone()
	it.Title = strings.TrimSpace(it.Title)
	if err := Validate(it); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, it.CategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	it.ID = uuid.New().String()
	it.CategoryName = ""
	it.CreatedAt = now
	it.UpdatedAt = now
	if it.ImageURLs == nil {
		it.ImageURLs = []string{}
	}

	if err := s.products.Create(ctx, &it); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &it, nil
}

// Update applies patch to the stored item. The merged item must pass the same
// validation as a new one.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Item, error) {
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	next := patch.Apply(*current)
	next.Title = strings.TrimSpace(next.Title)
	if err := Validate(next); err != nil {
		return nil, err
	}
	if next.CategoryID != current.CategoryID {
		if err := s.checkCategory(ctx, next.CategoryID); err != nil {
			return nil, err
		}
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.products.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("update product %q: %w", id, err)
	}
	return &next, nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

func (s *Service) checkCategory(ctx context.Context, id string) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return &UnknownCategoryError{CategoryID: id}
	}
	return nil
}

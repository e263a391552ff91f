// Package category models the named groupings products belong to.
package category

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/steezy-shop/internal/domain/validate"
)

// ErrNotFound is returned when a requested category does not exist.
var ErrNotFound = errors.New("category not found")

// MaxNameLen is the longest accepted category name, in characters.
const MaxNameLen = 50

// Category groups products. Products reference it by ID.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence for categories.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}

// Validate requires a name of 1 to MaxNameLen characters.
func Validate(name string) error {
	errs := validate.Errors{}
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		errs.Add("name", "is required")
	case utf8.RuneCountInString(name) > MaxNameLen:
		errs.Add("name", "must be at most 50 characters")
	}
	return errs.Err("category")
}

// Service wraps a Repository with validation and identity assignment.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a category Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns every category ordered by name.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get returns a category or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether id names a stored category.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Create stores a new category named name.
func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := &Category{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Rename changes the name of an existing category.
func (s *Service) Rename(ctx context.Context, id, name string) (*Category, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(name)
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update category %q: %w", id, err)
	}
	return c, nil
}

// Delete removes a category. Products that reference it keep the dangling ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

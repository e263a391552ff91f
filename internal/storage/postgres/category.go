package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/steezy-shop/internal/domain/category"
)

const (
	listCategoriesSQL  = `SELECT id, name, created_at, updated_at FROM categories ORDER BY name, id`
	getCategoryByIDSQL = `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`
	categoryExistsSQL  = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
	insertCategorySQL  = `INSERT INTO categories (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	upsertCategorySQL  = insertCategorySQL + ` ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`
	updateCategorySQL  = `UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1`
	deleteCategorySQL  = `DELETE FROM categories WHERE id = $1`
)

var _ category.Repository = (*CategoryRepository)(nil)

// CategoryRepository implements category.Repository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns every category ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetByID returns a single category or category.ErrNotFound.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	rows, err := r.pool.Query(ctx, getCategoryByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrNotFound
		}
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}
	return &c, nil
}

// Exists reports whether a category with the given id is stored.
func (r *CategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, categoryExistsSQL, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking category %q: %w", id, err)
	}
	return ok, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	if _, err := r.pool.Exec(ctx, insertCategorySQL, c.ID, c.Name, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("creating category %q: %w", c.ID, err)
	}
	return nil
}

// Upsert inserts a category or renames an existing one.
func (r *CategoryRepository) Upsert(ctx context.Context, c *category.Category) error {
	if _, err := r.pool.Exec(ctx, upsertCategorySQL, c.ID, c.Name, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("upserting category %q: %w", c.ID, err)
	}
	return nil
}

// Update renames an existing category.
func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.ID, c.Name, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

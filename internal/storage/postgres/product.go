package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/steezy-shop/internal/domain/product"
)

const productColumns = `p.id, p.title, p.price, p.discount_price, p.description, p.stock,
	p.thumbnail_url, p.image_urls, p.category_id, COALESCE(c.name, ''), p.is_favorite,
	p.created_at, p.updated_at`

const (
	listProductsSQL = `SELECT ` + productColumns + `
		FROM products p LEFT JOIN categories c ON c.id = p.category_id
		WHERE ($1::text = '' OR p.title ILIKE '%' || $1::text || '%' ESCAPE '\')
		  AND (NOT $2::boolean OR p.is_favorite)`

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products p LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	insertProductSQL = `INSERT INTO products (id, title, price, discount_price, description, stock,
		thumbnail_url, image_urls, category_id, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	upsertProductSQL = insertProductSQL + `
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, price = EXCLUDED.price,
		discount_price = EXCLUDED.discount_price, description = EXCLUDED.description,
		stock = EXCLUDED.stock, thumbnail_url = EXCLUDED.thumbnail_url,
		image_urls = EXCLUDED.image_urls, category_id = EXCLUDED.category_id,
		updated_at = EXCLUDED.updated_at`

	updateProductSQL = `UPDATE products SET title = $2, price = $3, discount_price = $4,
		description = $5, stock = $6, thumbnail_url = $7, image_urls = $8, category_id = $9,
		is_favorite = $10, updated_at = $11
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

// orderBy maps each sort key to a fixed ORDER BY clause. Price ordering uses
// the discounted price, which is what listing cards display.
var orderBy = map[product.SortKey]string{
	product.SortDefault:   ` ORDER BY p.created_at, p.id`,
	product.SortPriceAsc:  ` ORDER BY p.discount_price ASC, p.id`,
	product.SortPriceDesc: ` ORDER BY p.discount_price DESC, p.id`,
}

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns products whose title contains f.Query (case-insensitive).
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Item, error) {
	order, ok := orderBy[f.Sort]
	if !ok {
		order = orderBy[product.SortDefault]
	}

	rows, err := r.pool.Query(ctx, listProductsSQL+order, escapeLike(f.Query), f.FavoriteOnly)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product or product.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Item, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &it, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, it *product.Item) error {
	if _, err := r.pool.Exec(ctx, insertProductSQL, insertArgs(it)...); err != nil {
		return fmt.Errorf("creating product %q: %w", it.ID, err)
	}
	return nil
}

// Upsert inserts a product or overwrites the catalog fields of an existing
// one. The favorite flag of an existing row is preserved.
func (r *ProductRepository) Upsert(ctx context.Context, it *product.Item) error {
	if _, err := r.pool.Exec(ctx, upsertProductSQL, insertArgs(it)...); err != nil {
		return fmt.Errorf("upserting product %q: %w", it.ID, err)
	}
	return nil
}

// Update overwrites every mutable column of an existing product.
func (r *ProductRepository) Update(ctx context.Context, it *product.Item) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		it.ID, it.Title, it.Price, it.DiscountPrice, it.Description, it.Stock,
		it.ThumbnailURL, nonNil(it.ImageURLs), it.CategoryID, it.IsFavorite, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", it.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func insertArgs(it *product.Item) []any {
	return []any{
		it.ID, it.Title, it.Price, it.DiscountPrice, it.Description, it.Stock,
		it.ThumbnailURL, nonNil(it.ImageURLs), it.CategoryID, it.IsFavorite,
		it.CreatedAt, it.UpdatedAt,
	}
}

func scanProduct(row pgx.CollectableRow) (product.Item, error) {
	var it product.Item
	err := row.Scan(
		&it.ID, &it.Title, &it.Price, &it.DiscountPrice, &it.Description, &it.Stock,
		&it.ThumbnailURL, &it.ImageURLs, &it.CategoryID, &it.CategoryName, &it.IsFavorite,
		&it.CreatedAt, &it.UpdatedAt,
	)
	return it, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards so the query matches literally.
func escapeLike(q string) string {
	return likeEscaper.Replace(q)
}

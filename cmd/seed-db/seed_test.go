package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/domain/product"
)

const sampleCatalog = `{
  "version": 1,
  "categories": [{"_id": "c1", "name": "Sneakers"}],
  "products": [
    {"_id": "p1", "title": "Canvas shoe", "price": 60, "discount": "50.5", "stock": 3, "category": "c1"},
    {"_id": "p2", "title": "Tote", "price": 20, "discount": 20, "images": ["a.jpg"], "category": {"_id": "c1", "name": "Sneakers"}}
  ]
}`

type fakeStore struct {
	mu    sync.Mutex
	cats  []category.Category
	items map[string]product.Item
	err   error
}

func (f *fakeStore) Upsert(_ context.Context, c *category.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.cats = append(f.cats, *c)
	return nil
}

type fakeProducts struct{ *fakeStore }

func (f fakeProducts) Upsert(_ context.Context, it *product.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items == nil {
		f.items = map[string]product.Item{}
	}
	f.items[it.ID] = *it
	return nil
}

func newSeeder(st *fakeStore, now time.Time) *seeder {
	return &seeder{
		categories:  st,
		products:    fakeProducts{st},
		concurrency: 4,
		now:         func() time.Time { return now },
		lg:          zap.NewNop(),
	}
}

func TestDecodeCatalog(t *testing.T) {
	c, err := decodeCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	require.Len(t, c.Categories, 1)
	assert.Equal(t, "Sneakers", c.Categories[0].Name)
	require.Len(t, c.Products, 2)
	assert.Equal(t, "50.5", c.Products[0].DiscountPrice.String())
	assert.Equal(t, "c1", c.Products[1].CategoryID)
	assert.Equal(t, []string{"a.jpg"}, c.Products[1].ImageURLs)
}

func TestDecodeCatalog_Malformed(t *testing.T) {
	_, err := decodeCatalog(strings.NewReader(`{"products": [{"_id": 1}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "products")
}

func TestOpenCatalog_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := pgzip.NewWriter(f)
	_, err = zw.Write([]byte(sampleCatalog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	c, err := openCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.Products, 2)
}

func TestOpenCatalog_BundledSeed(t *testing.T) {
	c, err := openCatalog(filepath.Join("..", "..", "db", "seed", "catalog.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, c.Categories)
	assert.NotEmpty(t, c.Products)

	st := &fakeStore{}
	require.NoError(t, newSeeder(st, time.Now()).seed(context.Background(), c))
	assert.Len(t, st.items, len(c.Products))
}

func TestSeed(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c, err := decodeCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	st := &fakeStore{}
	require.NoError(t, newSeeder(st, now).seed(context.Background(), c))

	require.Len(t, st.cats, 1)
	assert.Equal(t, now, st.cats[0].CreatedAt)

	require.Len(t, st.items, 2)
	p1, p2 := st.items["p1"], st.items["p2"]
	assert.True(t, p1.CreatedAt.Before(p2.CreatedAt), "file order is kept")
	assert.Equal(t, p2.CreatedAt, p2.UpdatedAt)
	assert.Empty(t, p2.CategoryName)
}

func TestSeed_InvalidProductWritesNothing(t *testing.T) {
	c := &catalog{
		Categories: []category.Category{{ID: "c1", Name: "Sneakers"}},
		Products:   []product.Item{{ID: "p1", Title: "", CategoryID: "c1"}},
	}
	st := &fakeStore{}
	err := newSeeder(st, time.Now()).seed(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `product "p1"`)
	assert.Empty(t, st.cats)
	assert.Empty(t, st.items)
}

func TestSeed_StoreError(t *testing.T) {
	c := &catalog{Categories: []category.Category{{ID: "c1", Name: "Sneakers"}}}
	st := &fakeStore{err: errors.New("connection reset")}

	err := newSeeder(st, time.Now()).seed(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

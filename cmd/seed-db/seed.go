package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/wire"
)

// catalog is the content of a seed file:
// {"categories": [...], "products": [...]} in the API wire format.
type catalog struct {
	Categories []category.Category
	Products   []product.Item
}

type categoryStore interface {
	Upsert(ctx context.Context, c *category.Category) error
}

type productStore interface {
	Upsert(ctx context.Context, it *product.Item) error
}

// openCatalog reads path, transparently gunzipping files ending in ".gz".
func openCatalog(path string) (*catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open seed file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	return decodeCatalog(r)
}

func decodeCatalog(r io.Reader) (*catalog, error) {
	var c catalog
	d := jx.Decode(r, 64*1024)
	err := d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "categories":
			c.Categories, err = wire.DecodeCategories(d)
		case "products":
			c.Products, err = wire.DecodeItems(d)
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "%q", key)
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode seed file")
	}
	return &c, nil
}

// seeder upserts a catalog. Products are written after every category, so a
// product never lands before the category it references.
type seeder struct {
	categories  categoryStore
	products    productStore
	concurrency int
	now         func() time.Time
	lg          *zap.Logger
}

func (s *seeder) seed(ctx context.Context, c *catalog) error {
	base := s.now().UTC()

	for _, cat := range c.Categories {
		if err := category.Validate(cat.Name); err != nil {
			return errors.Wrapf(err, "category %q", cat.ID)
		}
		if cat.ID == "" {
			return errors.Errorf("category %q: missing _id", cat.Name)
		}
	}
	for _, it := range c.Products {
		if err := product.Validate(it); err != nil {
			return errors.Wrapf(err, "product %q", it.ID)
		}
		if it.ID == "" {
			return errors.Errorf("product %q: missing _id", it.Title)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, cat := range c.Categories {
		cat.Name = strings.TrimSpace(cat.Name)
		stamp(&cat.CreatedAt, &cat.UpdatedAt, base)
		g.Go(func() error {
			if err := s.categories.Upsert(gctx, &cat); err != nil {
				return errors.Wrapf(err, "upsert category %q", cat.ID)
			}
			s.lg.Debug("Upserted category", zap.String("id", cat.ID), zap.String("name", cat.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.lg.Info("Categories seeded", zap.Int("count", len(c.Categories)))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, it := range c.Products {
		// File order becomes the default listing order.
		stamp(&it.CreatedAt, &it.UpdatedAt, base.Add(time.Duration(i)*time.Millisecond))
		it.Title = strings.TrimSpace(it.Title)
		it.CategoryName = ""
		g.Go(func() error {
			if err := s.products.Upsert(gctx, &it); err != nil {
				return errors.Wrapf(err, "upsert product %q", it.ID)
			}
			s.lg.Debug("Upserted product", zap.String("id", it.ID), zap.String("title", it.Title))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.lg.Info("Products seeded", zap.Int("count", len(c.Products)))
	return nil
}

func stamp(created, updated *time.Time, t time.Time) {
	if created.IsZero() {
		*created = t
	}
	if updated.IsZero() {
		*updated = *created
	}
}

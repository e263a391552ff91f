// Package admin implements the catalog administration forms on top of the
// REST client: category and product submission with the same validation the
// backend applies, so field errors surface before a request is sent.
package admin

import (
	"context"
	"slices"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/steezy-shop/internal/client"
	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/domain/product"
)

// Messages reported after a successful submission.
const (
	MsgCategoryCreated = "Category created"
	MsgCategoryUpdated = "Category updated"
	MsgProductCreated  = "Product created"
	MsgProductUpdated  = "Product updated"
)

// UploadDone is the status of a finished image upload.
const UploadDone = "done"

// Backend is the subset of the REST client the console drives.
type Backend interface {
	ListCategories(ctx context.Context) ([]category.Category, error)
	GetCategory(ctx context.Context, id string) (*category.Category, error)
	CreateCategory(ctx context.Context, name string) (*category.Category, error)
	UpdateCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error

	GetProduct(ctx context.Context, id string) (*product.Item, error)
	CreateProduct(ctx context.Context, it product.Item) (*product.Item, error)
	UpdateProduct(ctx context.Context, id string, patch product.Patch) error
	DeleteProduct(ctx context.Context, id string) error
}

var _ Backend = (*client.Client)(nil)

// CategoryForm holds the category editor fields. An empty ID creates.
type CategoryForm struct {
	ID   string
	Name string
}

// Upload is one entry of the image uploader.
type Upload struct {
	Status    string
	URL       string
	SecureURL string
}

// ProductForm holds the product editor fields. An empty ID creates.
type ProductForm struct {
	ID            string
	Title         string
	CategoryID    string
	Price         decimal.Decimal
	DiscountPrice decimal.Decimal
	Description   string
	Stock         int
	Uploads       []Upload
}

// ImageURLs returns the URLs of finished uploads, preferring the secure one.
func (f ProductForm) ImageURLs() []string {
	urls := make([]string, 0, len(f.Uploads))
	for _, u := range f.Uploads {
		if u.Status != UploadDone {
			continue
		}
		switch {
		case u.SecureURL != "":
			urls = append(urls, u.SecureURL)
		case u.URL != "":
			urls = append(urls, u.URL)
		}
	}
	return urls
}

func (f ProductForm) item() product.Item {
	return product.Item{
		ID:            f.ID,
		Title:         strings.TrimSpace(f.Title),
		CategoryID:    strings.TrimSpace(f.CategoryID),
		Price:         f.Price,
		DiscountPrice: f.DiscountPrice,
		Description:   f.Description,
		Stock:         f.Stock,
		ImageURLs:     f.ImageURLs(),
	}
}

// FormFromItem fills a ProductForm from a stored item. Existing images become
// finished uploads.
func FormFromItem(it product.Item) ProductForm {
	f := ProductForm{
		ID:            it.ID,
		Title:         it.Title,
		CategoryID:    it.CategoryID,
		Price:         it.Price,
		DiscountPrice: it.DiscountPrice,
		Description:   it.Description,
		Stock:         it.Stock,
	}
	for _, u := range it.ImageURLs {
		f.Uploads = append(f.Uploads, Upload{Status: UploadDone, SecureURL: u})
	}
	return f
}

// SubmitResult describes a successful submission. Category or Product is set
// when the backend returned the stored entity.
type SubmitResult struct {
	Created  bool
	Message  string
	Category *category.Category
	Product  *product.Item
}

// ProductFormData is what the product editor needs to render.
type ProductFormData struct {
	Form       ProductForm
	Categories []category.Category
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the Console logger.
func WithLogger(lg *zap.Logger) Option {
	return func(c *Console) { c.lg = lg }
}

// Console submits admin forms to a Backend.
type Console struct {
	backend Backend
	lg      *zap.Logger
}

// NewConsole creates a Console.
func NewConsole(b Backend, opts ...Option) *Console {
	c := &Console{backend: b, lg: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Categories lists the category options.
func (c *Console) Categories(ctx context.Context) ([]category.Category, error) {
	return c.backend.ListCategories(ctx)
}

// LoadCategoryForm returns the editor fields for id, or an empty form when id
// is empty.
func (c *Console) LoadCategoryForm(ctx context.Context, id string) (CategoryForm, error) {
	if id == "" {
		return CategoryForm{}, nil
	}
	cat, err := c.backend.GetCategory(ctx, id)
	if err != nil {
		return CategoryForm{}, errors.Wrap(err, "load category")
	}
	return CategoryForm{ID: cat.ID, Name: cat.Name}, nil
}

// SubmitCategory validates the form and creates or renames the category.
func (c *Console) SubmitCategory(ctx context.Context, form CategoryForm) (*SubmitResult, error) {
	if err := category.Validate(form.Name); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(form.Name)

	if form.ID == "" {
		created, err := c.backend.CreateCategory(ctx, name)
		if err != nil {
			return nil, err
		}
		c.lg.Info("Category created", zap.String("category_id", created.ID))
		return &SubmitResult{Created: true, Message: MsgCategoryCreated, Category: created}, nil
	}

	if err := c.backend.UpdateCategory(ctx, form.ID, name); err != nil {
		return nil, err
	}
	c.lg.Info("Category updated", zap.String("category_id", form.ID))
	return &SubmitResult{
		Message:  MsgCategoryUpdated,
		Category: &category.Category{ID: form.ID, Name: name},
	}, nil
}

// DeleteCategory removes a category.
func (c *Console) DeleteCategory(ctx context.Context, id string) error {
	return c.backend.DeleteCategory(ctx, id)
}

// LoadProductForm fetches the product (when id is set) and the category
// options concurrently.
func (c *Console) LoadProductForm(ctx context.Context, id string) (*ProductFormData, error) {
	var data ProductFormData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cs, err := c.backend.ListCategories(gctx)
		if err != nil {
			return errors.Wrap(err, "load categories")
		}
		data.Categories = cs
		return nil
	})
	if id != "" {
		g.Go(func() error {
			it, err := c.backend.GetProduct(gctx, id)
			if err != nil {
				return errors.Wrap(err, "load product")
			}
			data.Form = FormFromItem(*it)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// SubmitProduct validates the form and creates the product or replaces the
// editable fields of an existing one.
func (c *Console) SubmitProduct(ctx context.Context, form ProductForm) (*SubmitResult, error) {
	it := form.item()
	if err := product.Validate(it); err != nil {
		return nil, err
	}

	if form.ID == "" {
		created, err := c.backend.CreateProduct(ctx, it)
		if err != nil {
			return nil, err
		}
		c.lg.Info("Product created", zap.String("product_id", created.ID))
		return &SubmitResult{Created: true, Message: MsgProductCreated, Product: created}, nil
	}

	if err := c.backend.UpdateProduct(ctx, form.ID, formPatch(it)); err != nil {
		return nil, err
	}
	c.lg.Info("Product updated", zap.String("product_id", form.ID))
	return &SubmitResult{Message: MsgProductUpdated, Product: &it}, nil
}

// DeleteProduct removes a product.
func (c *Console) DeleteProduct(ctx context.Context, id string) error {
	return c.backend.DeleteProduct(ctx, id)
}

// formPatch sets every field the editor owns. Favorite state is left alone.
func formPatch(it product.Item) product.Patch {
	images := slices.Clone(it.ImageURLs)
	return product.Patch{
		Title:         &it.Title,
		Price:         &it.Price,
		DiscountPrice: &it.DiscountPrice,
		Description:   &it.Description,
		Stock:         &it.Stock,
		ImageURLs:     &images,
		CategoryID:    &it.CategoryID,
	}
}

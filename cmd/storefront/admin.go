package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/steezy-shop/internal/admin"
	"github.com/xenking/steezy-shop/internal/domain/category"
)

const adminUsage = `Usage: storefront admin <subcommand> [flags]

Subcommands:
  categories
  category-save [-id ID] -name NAME
  category-delete <category-id>
  product-save [-id ID] -title T -category ID -price P [-discount D]
               [-description TEXT] [-stock N] [-image URL]...
  product-delete <product-id>

product-save with -id loads the product and changes only the given flags.`

var adminCommands = map[string]func(ctx context.Context, s *session, args []string) error{
	"categories":      adminCategories,
	"category-save":   adminCategorySave,
	"category-delete": adminCategoryDelete,
	"product-save":    adminProductSave,
	"product-delete":  adminProductDelete,
}

func adminCommand(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 || args[0] == "help" {
		fmt.Fprintln(s.term.out, adminUsage)
		if len(args) == 0 {
			return errors.New("admin: no subcommand specified")
		}
		return nil
	}
	fn, ok := adminCommands[args[0]]
	if !ok {
		fmt.Fprintln(s.term.out, adminUsage)
		return errors.Errorf("admin: unknown subcommand %q", args[0])
	}
	return fn(ctx, s, args[1:])
}

func adminCategories(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("categories")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cs, err := s.console.Categories(ctx)
	if err != nil {
		return err
	}
	s.term.categories(cs)
	return nil
}

func adminCategorySave(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("category-save")
	var form admin.CategoryForm
	fs.StringVar(&form.ID, "id", "", "Category to rename; empty creates")
	fs.StringVar(&form.Name, "name", "", "Category name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := s.console.SubmitCategory(ctx, form)
	if err != nil {
		return s.submitFailed(err)
	}
	s.term.Success(res.Message)
	if res.Category != nil {
		s.term.categories([]category.Category{*res.Category})
	}
	return nil
}

func adminCategoryDelete(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("category-delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneID(fs, "category")
	if err != nil {
		return err
	}
	if err := s.console.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.term.Success("Category deleted")
	return nil
}

func adminProductSave(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("product-save")
	var (
		id          = fs.String("id", "", "Product to update; empty creates")
		title       = fs.String("title", "", "Title")
		categoryID  = fs.String("category", "", "Category id")
		price       = fs.String("price", "0", "Price")
		discount    = fs.String("discount", "0", "Discount price")
		description = fs.String("description", "", "Description")
		stock       = fs.Int("stock", 0, "Units in stock")
	)
	var images stringsFlag
	fs.Var(&images, "image", "Image URL, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form := admin.ProductForm{ID: *id}
	if *id != "" {
		data, err := s.console.LoadProductForm(ctx, *id)
		if err != nil {
			return err
		}
		form = data.Form
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			form.Title = *title
		case "category":
			form.CategoryID = *categoryID
		case "price":
			form.Price, parseErr = parseMoney("price", *price, parseErr)
		case "discount":
			form.DiscountPrice, parseErr = parseMoney("discount", *discount, parseErr)
		case "description":
			form.Description = *description
		case "stock":
			form.Stock = *stock
		case "image":
			form.Uploads = form.Uploads[:0]
			for _, u := range images {
				form.Uploads = append(form.Uploads, admin.Upload{Status: admin.UploadDone, URL: u})
			}
		}
	})
	if parseErr != nil {
		return parseErr
	}

	res, err := s.console.SubmitProduct(ctx, form)
	if err != nil {
		return s.submitFailed(err)
	}
	s.term.Success(res.Message)
	if res.Product != nil {
		s.term.item(*res.Product)
	}
	return nil
}

func adminProductDelete(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("product-delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneID(fs, "product")
	if err != nil {
		return err
	}
	if err := s.console.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.term.Success("Product deleted")
	return nil
}

// submitFailed prints the invalid fields of a rejected form.
func (s *session) submitFailed(err error) error {
	if s.term.fieldErrors(err) {
		return errors.New("form has invalid fields")
	}
	return err
}

// parseMoney keeps the first parse error seen.
func parseMoney(field, v string, prev error) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil && prev == nil {
		return decimal.Zero, errors.Wrapf(err, "-%s", field)
	}
	return d, prev
}

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"

	"github.com/xenking/steezy-shop/internal/domain/category"
	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/domain/validate"
)

// terminal is the Navigator and Notifier of the command line storefront.
type terminal struct {
	out io.Writer
}

func (t terminal) Navigate(path string) {
	fmt.Fprintf(t.out, "-> %s\n", path)
}

func (t terminal) Success(msg string) {
	fmt.Fprintf(t.out, "ok: %s\n", msg)
}

func (t terminal) Error(msg string) {
	fmt.Fprintf(t.out, "error: %s\n", msg)
}

func (t terminal) items(items []product.Item) {
	if len(items) == 0 {
		fmt.Fprintln(t.out, "No products.")
		return
	}
	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tDISCOUNT\tCATEGORY\tWISHLIST")
	for _, it := range items {
		fav := ""
		if it.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Title, it.Price.StringFixed(2), it.DiscountPrice.StringFixed(2), categoryLabel(it), fav)
	}
	_ = tw.Flush()
}

func (t terminal) item(it product.Item) {
	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", it.ID)
	fmt.Fprintf(tw, "Title\t%s\n", it.Title)
	fmt.Fprintf(tw, "Price\t%s\n", it.Price.StringFixed(2))
	fmt.Fprintf(tw, "Discount\t%s\n", it.DiscountPrice.StringFixed(2))
	fmt.Fprintf(tw, "Category\t%s\n", categoryLabel(it))
	fmt.Fprintf(tw, "Stock\t%d\n", it.Stock)
	fmt.Fprintf(tw, "Wishlist\t%t\n", it.IsFavorite)
	if img := it.DisplayImage(); img != "" {
		fmt.Fprintf(tw, "Image\t%s\n", img)
	}
	if it.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", it.Description)
	}
	_ = tw.Flush()
}

func (t terminal) categories(cs []category.Category) {
	if len(cs) == 0 {
		fmt.Fprintln(t.out, "No categories.")
		return
	}
	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range cs {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	_ = tw.Flush()
}

// fieldErrors prints validation failures one field per line and reports
// whether err was one.
func (t terminal) fieldErrors(err error) bool {
	var vErr *validate.Error
	if !errors.As(err, &vErr) {
		return false
	}
	keys := make([]string, 0, len(vErr.Fields))
	for k := range vErr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(t.out, "  %s: %s\n", k, vErr.Fields[k])
	}
	return true
}

func categoryLabel(it product.Item) string {
	if it.CategoryName != "" {
		return it.CategoryName
	}
	return it.CategoryID
}

// stringsFlag collects a repeatable flag.
type stringsFlag []string

func (s *stringsFlag) String() string { return strings.Join(*s, ",") }

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

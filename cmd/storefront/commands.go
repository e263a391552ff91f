package main

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/steezy-shop/internal/domain/product"
	"github.com/xenking/steezy-shop/internal/storefront"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func oneID(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", errors.Errorf("%s: expected exactly one %s id", fs.Name(), what)
	}
	return fs.Arg(0), nil
}

// searchCommand lists the products whose title contains the text. "*" lists
// the whole catalog.
func searchCommand(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("search")
	sortKey := fs.String("sort", string(product.SortDefault), "Sort order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("search: text is required, use * to list everything")
	}

	if err := s.ctrl.SortChanged(ctx, product.SortKey(*sortKey)); err != nil {
		return err
	}
	if err := s.ctrl.SearchChanged(ctx, text); err != nil {
		return err
	}
	s.term.items(s.ctrl.View().Items)
	return nil
}

func wishlistCommand(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("wishlist")
	sortKey := fs.String("sort", string(product.SortDefault), "Sort order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := s.ctrl.SortChanged(ctx, product.SortKey(*sortKey)); err != nil {
		return err
	}
	if err := s.ctrl.LoadWishlist(ctx); err != nil {
		return err
	}
	s.term.items(s.ctrl.View().Items)
	return nil
}

// openCommand shows a product and remembers it as recently viewed.
func openCommand(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("open")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneID(fs, "product")
	if err != nil {
		return err
	}
	it, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ctrl.ItemOpened(*it); err != nil {
		return err
	}
	s.term.item(*it)
	return nil
}

func favoriteCommand(ctx context.Context, s *session, args []string) error {
	fs := newFlagSet("favorite")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := oneID(fs, "product")
	if err != nil {
		return err
	}
	it, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if outcome, err := s.ctrl.FavoriteClicked(ctx, *it); outcome != storefront.Favorited {
		return err
	}
	return nil
}

func recentCommand(_ context.Context, s *session, args []string) error {
	fs := newFlagSet("recent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s.term.items(s.views.ListViews())
	return nil
}

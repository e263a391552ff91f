// Command storefront is the shopper and admin command line for the
// steezy-shop catalog API. Recently viewed products are kept in a local
// bbolt file between runs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/admin"
	"github.com/xenking/steezy-shop/internal/client"
	"github.com/xenking/steezy-shop/internal/recent"
	"github.com/xenking/steezy-shop/internal/storage/bolt"
	"github.com/xenking/steezy-shop/internal/storefront"
)

type command struct {
	usage string
	run   func(ctx context.Context, s *session, args []string) error
}

var commands = map[string]command{
	"search":   {"search [-sort default|price-asc|price-desc] <text>|*", searchCommand},
	"wishlist": {"wishlist", wishlistCommand},
	"open":     {"open <product-id>", openCommand},
	"favorite": {"favorite <product-id>", favoriteCommand},
	"recent":   {"recent", recentCommand},
	"admin":    {"admin <subcommand> ...  (admin help for details)", adminCommand},
}

// session holds what a single command invocation works with.
type session struct {
	term    terminal
	lg      *zap.Logger
	api     *client.Client
	views   *recent.Log
	ctrl    *storefront.Controller
	console *admin.Console
}

func newSession(cfg *config, st recent.Storage, out io.Writer, lg *zap.Logger) (*session, error) {
	api, err := client.New(cfg.APIURL, client.WithLogger(lg.Named("client")))
	if err != nil {
		return nil, err
	}
	term := terminal{out: out}
	views := recent.NewLog(st, recent.WithLogger(lg.Named("recent")))
	ctrl := storefront.NewController(
		storefront.NewCatalog(api),
		storefront.NewWishlist(api, storefront.WithWishlistLogger(lg.Named("wishlist"))),
		views,
		term,
		term,
		storefront.WithControllerLogger(lg.Named("controller")),
	)
	return &session{
		term:    term,
		lg:      lg,
		api:     api,
		views:   views,
		ctrl:    ctrl,
		console: admin.NewConsole(api, admin.WithLogger(lg.Named("admin"))),
	}, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: storefront <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment: STEEZY_API_URL, STEEZY_STATE_PATH, STEEZY_TIMEOUT, STEEZY_LOG_LEVEL")
}

// execute runs one command against an already opened local store.
func execute(ctx context.Context, cfg *config, st recent.Storage, args []string, out io.Writer, lg *zap.Logger) error {
	if len(args) == 0 {
		printUsage(out)
		return errors.New("no command specified")
	}
	name, args := args[0], args[1:]
	switch name {
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		printUsage(out)
		return errors.Errorf("unknown command %q", name)
	}

	s, err := newSession(cfg, st, out, lg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	return cmd.run(ctx, s, args)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	st, err := bolt.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			lg.Warn("Failed to close state file", zap.Error(err))
		}
	}()

	return execute(ctx, cfg, st, args, out, lg)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		cancel()
		os.Exit(1)
	}
}

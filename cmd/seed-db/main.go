// Command seed-db applies the schema and upserts a seed catalog of categories
// and products.
package main

import (
	"context"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/steezy-shop/internal/storage/postgres"
)

type config struct {
	DatabaseURL string `usage:"PostgreSQL connection URL (STEEZY_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	File        string `default:"db/seed/catalog.json" usage:"Seed catalog, JSON or gzipped JSON (.gz)"`
	Concurrency int    `default:"8" usage:"Parallel upserts"`
}

func loadConfig() (*config, error) {
	var cfg config
	if err := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:        "STEEZY",
		AllowUnknownEnvs: true,
		SkipFiles:        true,
	}).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set --database-url or DATABASE_URL")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &cfg, nil
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := openCatalog(cfg.File)
		if err != nil {
			return err
		}
		lg.Info("Seed file loaded",
			zap.String("path", cfg.File),
			zap.Int("categories", len(c.Categories)),
			zap.Int("products", len(c.Products)),
		)

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return err
		}

		s := &seeder{
			categories:  postgres.NewCategoryRepository(pool),
			products:    postgres.NewProductRepository(pool),
			concurrency: cfg.Concurrency,
			now:         time.Now,
			lg:          lg,
		}
		if err := s.seed(ctx, c); err != nil {
			return errors.Wrap(err, "seed")
		}
		lg.Info("Seed completed")
		return nil
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/repository/sqlite"
	"github.com/nikolayk812/storefront/internal/server"
	"github.com/nikolayk812/storefront/internal/session"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	upstream := catalog.NewUpstream(cfg.ProductsURL, cfg.MoreProductsURL, httpClient)

	var products port.ProductSource = upstream
	if cfg.CatalogBaseURL != "" {
		products = catalog.NewClient(cfg.CatalogBaseURL,
			catalog.WithHTTPClient(httpClient),
			catalog.WithLogger(logger))
	}

	resolver := pricing.NewResolver(products,
		pricing.WithLogger(logger),
		pricing.WithTimeout(cfg.FetchTimeout))

	registry := session.NewRegistry(storage, resolver,
		session.WithLogger(logger),
		session.WithIdleTTL(cfg.SessionIdleTTL))

	srv := server.New(cfg.Addr, server.Deps{
		Upstream: upstream,
		Products: products,
		Registry: registry,
		Logger:   logger,
	})

	runErr := srv.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), server.Shutdown)
	defer cancel()
	closeErr := registry.Close(closeCtx)

	return errors.Join(runErr, closeErr)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("zapCfg.Build: %w", err)
	}
	return logger, nil
}

func openStorage(ctx context.Context, cfg config.Config) (port.CartStorage, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repository.Migrate: %w", err)
		}
		return repository.NewCart(pool), pool.Close, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite.Open: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}

	return repository.NewMemory(), func() {}, nil
}

// Package pricing re-localizes cart prices against the catalog of the active
// locale.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"
)

const DefaultTimeout = 10 * time.Second

// CurrencyFor returns USD for en-US and GBP for every other locale.
func CurrencyFor(locale domain.Locale) currency.Unit {
	return locale.Currency()
}

// CatalogKeyFor returns the upstream catalog key for locale.
func CatalogKeyFor(locale domain.Locale) domain.CatalogKey {
	return locale.CatalogKey()
}

// PriceBook maps product names to their price in one locale.
type PriceBook struct {
	locale domain.Locale
	prices map[string]domain.Money
}

// NewPriceBook merges catalogs in order; later entries win on name collisions.
// Every price is tagged with the locale currency.
func NewPriceBook(locale domain.Locale, catalogs ...[]domain.Product) PriceBook {
	unit := CurrencyFor(locale)
	prices := make(map[string]domain.Money)
	for _, products := range catalogs {
		for _, p := range products {
			prices[p.Name] = domain.Money{Amount: p.Price, Currency: unit}
		}
	}
	return PriceBook{locale: locale, prices: prices}
}

func (b PriceBook) Locale() domain.Locale {
	return b.locale
}

func (b PriceBook) Len() int {
	return len(b.prices)
}

// Lookup returns the localized price of name. Unknown names keep the captured
// price, or zero when none was captured, in the locale currency.
func (b PriceBook) Lookup(name string, captured decimal.NullDecimal) domain.Money {
	if m, ok := b.prices[name]; ok {
		return m
	}

	amount := decimal.Zero
	if captured.Valid {
		amount = captured.Decimal
	}
	return domain.Money{Amount: amount, Currency: CurrencyFor(b.locale)}
}

type Resolver struct {
	source  port.ProductSource
	logger  *zap.Logger
	timeout time.Duration
}

type ResolverOption func(*Resolver)

func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewResolver(source port.ProductSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:  source,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the primary and supplementary catalogs for locale
// concurrently. If either fetch fails the book is empty and every lookup
// falls back to captured prices.
func (r *Resolver) Resolve(ctx context.Context, locale domain.Locale) PriceBook {
	products, more, err := r.fetchBoth(ctx, CatalogKeyFor(locale))
	if err != nil {
		r.logger.Warn("catalog unavailable, using captured prices",
			zap.String("locale", locale.String()), zap.Error(err))
		return NewPriceBook(locale)
	}
	return NewPriceBook(locale, products, more)
}

func (r *Resolver) fetchBoth(ctx context.Context, key domain.CatalogKey) (products, more []domain.Product, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = r.source.Fetch(gctx, key, domain.KindProducts)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", domain.KindProducts, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		more, err = r.source.Fetch(gctx, key, domain.KindMoreProducts)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", domain.KindMoreProducts, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return products, more, nil
}

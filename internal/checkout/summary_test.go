package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type staticSource struct {
	products map[domain.CatalogKey][]domain.Product
	err      error
}

func (s staticSource) Fetch(_ context.Context, key domain.CatalogKey, kind domain.CatalogKind) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if kind != domain.KindProducts {
		return nil, nil
	}
	return s.products[key], nil
}

func newStore(t *testing.T) *cart.Store {
	t.Helper()

	store := cart.New(repository.NewMemory(), "cart-store:checkout")
	store.Hydrate(t.Context())
	t.Cleanup(func() {
		require.NoError(t, store.Close(context.Background()))
	})
	return store
}

func widgetCatalog() staticSource {
	return staticSource{products: map[domain.CatalogKey][]domain.Product{
		domain.CatalogUS: {{Name: "Widget", Price: decimal.RequireFromString("9.99")}},
		domain.CatalogUK: {{Name: "Widget", Price: decimal.NewFromInt(10)}},
	}}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		source    staticSource
		locale    domain.Locale
		wantPrice string
		wantTotal string
		wantUnit  currency.Unit
	}{
		{
			name:      "en-US relocalizes captured price",
			source:    widgetCatalog(),
			locale:    domain.LocaleUS,
			wantPrice: "$9.99",
			wantTotal: "$19.98",
			wantUnit:  currency.USD,
		},
		{
			name:      "en-GB",
			source:    widgetCatalog(),
			locale:    domain.LocaleGB,
			wantPrice: "£10.00",
			wantTotal: "£20.00",
			wantUnit:  currency.GBP,
		},
		{
			name:      "fetch failure keeps captured amount in locale currency",
			source:    staticSource{err: errors.New("upstream down")},
			locale:    domain.LocaleUS,
			wantPrice: "$10.00",
			wantTotal: "$20.00",
			wantUnit:  currency.USD,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			store.AddItem("Widget", decimal.NewNullDecimal(decimal.NewFromInt(10)), currency.GBP)
			store.AddItem("Widget", decimal.NewNullDecimal(decimal.NewFromInt(10)), currency.GBP)

			book := pricing.NewResolver(tt.source).Resolve(t.Context(), tt.locale)
			summary := checkout.Summarize(store.Snapshot(), book, tt.locale)

			require.Len(t, summary.Lines, 1)
			line := summary.Lines[0]
			assert.Equal(t, tt.wantPrice, line.PriceText)
			assert.Equal(t, tt.wantTotal, line.SubtotalText)
			assert.Equal(t, tt.wantUnit, line.Price.Currency)
			assert.Equal(t, tt.wantUnit.String(), line.Currency)

			assert.Equal(t, tt.wantTotal, summary.TotalText)
			assert.Equal(t, 2, summary.TotalQuantity)
			assert.False(t, summary.Loading)
			assert.False(t, summary.Empty)
		})
	}
}

func TestSummarizeMixedLines(t *testing.T) {
	store := newStore(t)
	store.AddItem("Widget", decimal.NewNullDecimal(decimal.NewFromInt(10)), currency.GBP)
	store.AddItem("Mystery", decimal.NullDecimal{}, currency.Unit{})
	store.SetQuantity("Mystery", 3)

	book := pricing.NewResolver(widgetCatalog()).Resolve(t.Context(), domain.LocaleGB)
	summary := checkout.Summarize(store.Snapshot(), book, domain.LocaleGB)

	require.Len(t, summary.Lines, 2)
	assert.Equal(t, "£0.00", summary.Lines[1].SubtotalText)
	assert.True(t, summary.Total.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 4, summary.TotalQuantity)
}

func TestSummarizeEmptyAndLoading(t *testing.T) {
	book := pricing.NewPriceBook(domain.LocaleGB)

	t.Run("empty", func(t *testing.T) {
		summary := checkout.Summarize(newStore(t).Snapshot(), book, domain.LocaleGB)

		assert.True(t, summary.Empty)
		assert.False(t, summary.Loading)
		assert.Equal(t, "£0.00", summary.TotalText)
	})

	t.Run("loading", func(t *testing.T) {
		store := cart.New(nil, "cart-store:loading")
		summary := checkout.Summarize(store.Snapshot(), book, domain.LocaleGB)

		assert.True(t, summary.Loading)
		assert.Empty(t, summary.Lines)
		assert.Equal(t, 0, summary.TotalQuantity)
		require.NoError(t, store.Close(context.Background()))
	})
}

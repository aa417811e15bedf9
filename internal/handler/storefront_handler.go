package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/currencyfmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/i18n"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/pricing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const countedProducts = 4

// StorefrontHandler serves the product listing and checkout pages.
type StorefrontHandler struct {
	source port.ProductSource
	logger *zap.Logger
}

func NewStorefrontHandler(source port.ProductSource, logger *zap.Logger) *StorefrontHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontHandler{source: source, logger: logger}
}

type ProductView struct {
	ID          domain.ProductID `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       json.Number      `json:"price"`
	Currency    string           `json:"currency"`
	PriceText   string           `json:"priceText"`
}

type ProductCount struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type ListingResponse struct {
	Locale      domain.Locale  `json:"locale"`
	Currency    string         `json:"currency"`
	Labels      i18n.Labels    `json:"labels"`
	BasketLabel string         `json:"basketLabel"`
	Loading     bool           `json:"loading"`
	Products    []ProductView  `json:"products"`
	Counts      []ProductCount `json:"counts"`
}

type CheckoutResponse struct {
	Labels  i18n.Labels      `json:"labels"`
	Summary checkout.Summary `json:"summary"`
}

func (h *StorefrontHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.listing)
	g.GET("/checkout", h.checkout)
}

// listing shows products of both catalogs. Basket counts stay zero until the
// session store is hydrated.
func (h *StorefrontHandler) listing(c echo.Context) error {
	s := sessionFrom(c)
	if s == nil {
		return writeError(c, errNoSession)
	}
	locale := localeFrom(c)

	products := h.products(c.Request().Context(), locale.CatalogKey())
	snap := s.Store.Snapshot()

	out := ListingResponse{
		Locale:      locale,
		Currency:    pricing.CurrencyFor(locale).String(),
		Labels:      i18n.LabelsFor(locale),
		BasketLabel: i18n.BasketLabel(locale, snap.TotalUniqueItems),
		Loading:     snap.State != cart.Ready,
		Products:    make([]ProductView, 0, len(products)),
		Counts:      make([]ProductCount, 0, countedProducts),
	}

	unit := pricing.CurrencyFor(locale)
	for i, p := range products {
		out.Products = append(out.Products, ProductView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       json.Number(p.Price.String()),
			Currency:    unit.String(),
			PriceText:   currencyfmt.FormatMoney(domain.Money{Amount: p.Price, Currency: unit}, locale),
		})
		if i < countedProducts {
			out.Counts = append(out.Counts, ProductCount{Name: p.Name, Quantity: quantityIn(snap.Lines, p.Name)})
		}
	}

	setCartCookie(c, s)
	return c.JSON(http.StatusOK, out)
}

// products fetches the primary list followed by the supplementary one. Each
// list degrades to empty on its own.
func (h *StorefrontHandler) products(ctx context.Context, key domain.CatalogKey) []domain.Product {
	var primary, more []domain.Product

	var g errgroup.Group
	g.Go(func() error {
		primary = h.fetch(ctx, key, domain.KindProducts)
		return nil
	})
	g.Go(func() error {
		more = h.fetch(ctx, key, domain.KindMoreProducts)
		return nil
	})
	_ = g.Wait()

	return append(primary, more...)
}

func (h *StorefrontHandler) fetch(ctx context.Context, key domain.CatalogKey, kind domain.CatalogKind) []domain.Product {
	products, err := h.source.Fetch(ctx, key, kind)
	if err != nil {
		h.logger.Warn("products unavailable",
			zap.String("locale", string(key)), zap.String("type", string(kind)), zap.Error(err))
		return nil
	}
	return products
}

// checkout re-prices the basket for the page locale.
func (h *StorefrontHandler) checkout(c echo.Context) error {
	s := sessionFrom(c)
	if s == nil {
		return writeError(c, errNoSession)
	}
	locale := localeFrom(c)

	// concurrent checkouts of the session share one resolution per locale
	book, ok := s.Prices.Load(c.Request().Context(), locale)
	if !ok {
		book = pricing.NewPriceBook(locale)
	}

	setCartCookie(c, s)
	return c.JSON(http.StatusOK, CheckoutResponse{
		Labels:  i18n.LabelsFor(locale),
		Summary: checkout.Summarize(s.Store.Snapshot(), book, locale),
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

// ProductsHandler proxies the upstream catalog as GET /api/products.
type ProductsHandler struct {
	source port.ProductSource
	logger *zap.Logger
}

func NewProductsHandler(source port.ProductSource, logger *zap.Logger) *ProductsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductsHandler{source: source, logger: logger}
}

func (h *ProductsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/products", h.getProducts)
	e.OPTIONS("/api/products", h.options)
}

func setCORS(c echo.Context) {
	header := c.Response().Header()
	header.Set(echo.HeaderAccessControlAllowOrigin, "*")
	header.Set(echo.HeaderAccessControlAllowMethods, "GET, OPTIONS")
	header.Set(echo.HeaderAccessControlAllowHeaders, "Content-Type")
}

func (h *ProductsHandler) getProducts(c echo.Context) error {
	setCORS(c)

	key := domain.ParseCatalogKey(c.QueryParam("locale"))
	kind, ok := domain.ParseCatalogKind(c.QueryParam("type"))
	if !ok {
		h.logger.Warn("unknown product type", zap.String("type", c.QueryParam("type")))
		return c.JSON(http.StatusInternalServerError, []domain.Product{})
	}

	products, err := h.source.Fetch(c.Request().Context(), key, kind)
	if err != nil {
		h.logger.Warn("upstream products failed",
			zap.String("locale", string(key)), zap.String("type", string(kind)), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, []domain.Product{})
	}
	if products == nil {
		products = []domain.Product{}
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductsHandler) options(c echo.Context) error {
	setCORS(c)
	return c.NoContent(http.StatusNoContent)
}

package server

import (
	"github.com/labstack/echo/v4"
	"github.com/nikolayk812/storefront/internal/i18n"
)

// localeRedirect sends paths without a locale prefix to a localized path.
// It runs before routing so unprefixed paths never hit the router.
func localeRedirect(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		d := i18n.Route(req.URL.Path, req.Header.Get("Accept-Language"))
		if d.Action != i18n.Redirect {
			return next(c)
		}

		location := d.Location
		if req.URL.RawQuery != "" {
			location += "?" + req.URL.RawQuery
		}
		return c.Redirect(d.Status, location)
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/session"
	"go.uber.org/zap"
)

const (
	localeKey  = "locale"
	sessionKey = "session"
)

// LocaleGroup mounts /:locale with locale validation and session lookup.
func LocaleGroup(e *echo.Echo, registry *session.Registry, logger *zap.Logger) *echo.Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	return e.Group("/:locale", requireLocale, withSession(registry, logger))
}

func requireLocale(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		locale, ok := domain.ParseLocale(c.Param("locale"))
		if !ok {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown locale"})
		}
		c.Set(localeKey, locale)
		return next(c)
	}
}

// withSession resolves the session from the sid cookie, issuing a new id when
// the cookie is missing or does not hold a UUID.
func withSession(registry *session.Registry, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := "", false
			if ck, err := c.Cookie(session.CookieName); err == nil {
				id, ok = session.ParseID(ck.Value)
			}
			if !ok {
				id = session.NewID()
				c.SetCookie(session.Cookie(id))
			}

			s, err := registry.Get(c.Request().Context(), id)
			if err != nil {
				logger.Warn("session unavailable", zap.Error(err))
				return writeError(c, errNoSession)
			}
			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

func localeFrom(c echo.Context) domain.Locale {
	if l, ok := c.Get(localeKey).(domain.Locale); ok {
		return l
	}
	return domain.DefaultLocale
}

func sessionFrom(c echo.Context) *session.Session {
	s, _ := c.Get(sessionKey).(*session.Session)
	return s
}

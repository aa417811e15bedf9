// Package server wires the storefront handlers into an echo instance.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nikolayk812/storefront/internal/handler"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/session"
	"go.uber.org/zap"
)

type Deps struct {
	// Upstream backs the /api/products proxy.
	Upstream port.ProductSource
	// Products backs the listing page. Nil falls back to Upstream.
	Products port.ProductSource
	Registry *session.Registry
	Logger   *zap.Logger
}

type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

func New(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	products := deps.Products
	if products == nil {
		products = deps.Upstream
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = ReadHeader

	e.Pre(localeRedirect)
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	handler.NewProductsHandler(deps.Upstream, logger).RegisterRoutes(e)

	g := handler.LocaleGroup(e, deps.Registry, logger)
	handler.NewStorefrontHandler(products, logger).RegisterRoutes(g)
	handler.NewCartHandler(logger).RegisterRoutes(g)

	return &Server{echo: e, addr: addr, logger: logger}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("storefront listening", zap.String("addr", s.addr))
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("echo.Start: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), Shutdown)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("echo.Shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("echo.Start: %w", err)
	}
	return nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("request", fields...)
			return nil
		},
	})
}

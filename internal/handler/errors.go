// Package handler exposes the storefront over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	errNoSession = errors.New("session is not available")
	errNotReady  = errors.New("basket is still loading")
)

func writeError(c echo.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errNotReady):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errNoSession):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

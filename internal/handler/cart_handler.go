package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

// CartHandler serves /:locale/cart for the session's store.
type CartHandler struct {
	logger *zap.Logger
}

func NewCartHandler(logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{logger: logger}
}

type AddItemRequest struct {
	Name     string              `json:"name"`
	Price    decimal.NullDecimal `json:"price"`
	Currency string              `json:"currency"`
}

type SetQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

type CartLineResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type CartResponse struct {
	Loading          bool               `json:"loading"`
	Lines            []CartLineResponse `json:"lines"`
	TotalUniqueItems int                `json:"totalUniqueItems"`
	TotalQuantity    int                `json:"totalQuantity"`
}

func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart", h.getCart)
	g.POST("/cart/items", h.addItem)
	g.POST("/cart/items/:name/decrement", h.decrementItem)
	g.PUT("/cart/items/:name", h.setQuantity)
	g.DELETE("/cart/items/:name", h.removeItem)
	g.DELETE("/cart", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	s := sessionFrom(c)
	if s == nil {
		return writeError(c, errNoSession)
	}
	return h.respond(c, s)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
	}

	var unit currency.Unit
	if req.Currency != "" {
		parsed, err := currency.ParseISO(req.Currency)
		if err != nil {
			h.logger.Debug("ignoring invalid currency", zap.String("currency", req.Currency))
		} else {
			unit = parsed
		}
	}

	return h.mutate(c, func(store *cart.Store) {
		store.AddItem(name, req.Price, unit)
	})
}

func (h *CartHandler) decrementItem(c echo.Context) error {
	name := itemName(c)
	return h.mutate(c, func(store *cart.Store) {
		store.DecrementItem(name)
	})
}

// setQuantity ignores a quantity that is not a JSON number.
func (h *CartHandler) setQuantity(c echo.Context) error {
	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	name := itemName(c)
	var quantity float64
	valid := json.Unmarshal(req.Quantity, &quantity) == nil

	return h.mutate(c, func(store *cart.Store) {
		if valid {
			store.SetQuantity(name, quantity)
		}
	})
}

func (h *CartHandler) removeItem(c echo.Context) error {
	name := itemName(c)
	return h.mutate(c, func(store *cart.Store) {
		store.RemoveItem(name)
	})
}

func (h *CartHandler) clear(c echo.Context) error {
	return h.mutate(c, func(store *cart.Store) {
		store.Clear()
	})
}

// mutate applies fn once the session store is hydrated.
func (h *CartHandler) mutate(c echo.Context, fn func(*cart.Store)) error {
	s := sessionFrom(c)
	if s == nil {
		return writeError(c, errNoSession)
	}

	if err := s.Store.Hydration().Wait(c.Request().Context()); err != nil {
		h.logger.Debug("hydration wait aborted", zap.String("session", s.ID), zap.Error(err))
		return writeError(c, errNotReady)
	}

	fn(s.Store)
	return h.respond(c, s)
}

func (h *CartHandler) respond(c echo.Context, s *session.Session) error {
	setCartCookie(c, s)
	return c.JSON(http.StatusOK, toCartResponse(s.Store.Snapshot()))
}

func setCartCookie(c echo.Context, s *session.Session) {
	if ck := s.Mirror.Cookie(); ck != nil {
		c.SetCookie(ck)
	}
}

func toCartResponse(snap cart.Snapshot) CartResponse {
	out := CartResponse{
		Loading:          snap.State != cart.Ready,
		Lines:            make([]CartLineResponse, 0, len(snap.Lines)),
		TotalUniqueItems: snap.TotalUniqueItems,
		TotalQuantity:    snap.TotalQuantity,
	}
	for _, l := range snap.Lines {
		out.Lines = append(out.Lines, CartLineResponse{Name: l.Name, Quantity: l.Quantity})
	}
	return out
}

func itemName(c echo.Context) string {
	raw := c.Param("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func quantityIn(lines []domain.CartLine, name string) int {
	for _, l := range lines {
		if l.Name == name {
			return l.Quantity
		}
	}
	return 0
}

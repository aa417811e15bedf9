package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

// Client reads the storefront products endpoint, GET /api/products.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ port.ProductSource = (*Client)(nil)

// Fetch returns an error on transport failure, non-2xx status or a body that
// is not a JSON product array.
func (c *Client) Fetch(ctx context.Context, key domain.CatalogKey, kind domain.CatalogKind) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("locale", string(key))
	query.Set("type", string(kind))
	endpoint := c.baseURL + "/api/products?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("products status %d", resp.StatusCode)
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Products is Fetch that degrades every failure to an empty list.
func (c *Client) Products(ctx context.Context, key domain.CatalogKey, kind domain.CatalogKind) []domain.Product {
	products, err := c.Fetch(ctx, key, kind)
	if err != nil {
		c.logger.Warn("products unavailable",
			zap.String("locale", string(key)),
			zap.String("type", string(kind)),
			zap.Error(err))
		return []domain.Product{}
	}
	return products
}

// Package catalog fetches product lists from the upstream origin and from the
// storefront's own products endpoint.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

const (
	DefaultProductsURL     = "https://v0-api-endpoint-request.vercel.app/api/products"
	DefaultMoreProductsURL = "https://v0-api-endpoint-request.vercel.app/api/more-products"
)

// Upstream reads the origin catalog and flattens it for one locale.
type Upstream struct {
	urls       map[domain.CatalogKind]string
	httpClient *http.Client
}

func NewUpstream(productsURL, moreProductsURL string, httpClient *http.Client) *Upstream {
	if productsURL == "" {
		productsURL = DefaultProductsURL
	}
	if moreProductsURL == "" {
		moreProductsURL = DefaultMoreProductsURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Upstream{
		urls: map[domain.CatalogKind]string{
			domain.KindProducts:     productsURL,
			domain.KindMoreProducts: moreProductsURL,
		},
		httpClient: httpClient,
	}
}

var _ port.ProductSource = (*Upstream)(nil)

func (u *Upstream) Fetch(ctx context.Context, key domain.CatalogKey, kind domain.CatalogKind) ([]domain.Product, error) {
	endpoint, ok := u.urls[kind]
	if !ok {
		return nil, fmt.Errorf("kind[%s] is not valid", kind)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	var payload UpstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}

	return Transform(payload, kind, key), nil
}

package catalog_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestClientFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1,"name":"Widget","price":9.99,"currency":"USD"},{"id":"more-2","name":"Lamp","price":20,"currency":"USD"}]`)
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL + "/")

	products, err := client.Fetch(t.Context(), domain.CatalogUS, domain.KindMoreProducts)
	require.NoError(t, err)
	assert.Equal(t, "locale=us&type=more-products", gotQuery)

	require.Len(t, products, 2)
	assert.Equal(t, "Widget", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, currency.USD, products[0].Currency)
	assert.Equal(t, "more-2", products[1].ID.String())
}

func TestClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"not":"an array"}`)
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := catalog.NewClient(srv.URL,
				catalog.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

			_, err := client.Fetch(t.Context(), domain.CatalogUK, domain.KindProducts)
			assert.Error(t, err)

			products := client.Products(t.Context(), domain.CatalogUK, domain.KindProducts)
			assert.NotNil(t, products)
			assert.Empty(t, products)
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	products := catalog.NewClient(url).Products(t.Context(), domain.CatalogUK, domain.KindProducts)
	assert.Empty(t, products)
}

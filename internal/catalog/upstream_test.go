package catalog_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"success":true,"products":[{"id":1,"name":{"uk":"Jumper","us":"Sweater"},"price":{"gbp":20,"usd":25},"stock":2}]}`)
	})
	mux.HandleFunc("/api/more-products", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":true,"products":[{"id":9,"name":{"uk":"Lamp"},"price":{"gbp":15}}]}`)
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	upstream := catalog.NewUpstream(srv.URL+"/api/products", srv.URL+"/api/more-products", srv.Client())

	products, err := upstream.Fetch(t.Context(), domain.CatalogUS, domain.KindProducts)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Sweater", products[0].Name)

	more, err := upstream.Fetch(t.Context(), domain.CatalogUS, domain.KindMoreProducts)
	require.NoError(t, err)
	require.Len(t, more, 1)
	assert.Equal(t, "more-9", more[0].ID.String())
	assert.Equal(t, "Lamp", more[0].Name)

	broken := catalog.NewUpstream(srv.URL+"/broken/", "", srv.Client())
	_, err = broken.Fetch(t.Context(), domain.CatalogUK, domain.KindProducts)
	assert.Error(t, err)

	_, err = upstream.Fetch(t.Context(), domain.CatalogUK, domain.CatalogKind("bogus"))
	assert.Error(t, err)
}

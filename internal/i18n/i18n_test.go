package i18n_test

import (
	"net/http"
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/i18n"
	"github.com/stretchr/testify/assert"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   domain.Locale
	}{
		{name: "empty", header: "", want: domain.LocaleGB},
		{name: "en-US", header: "en-US,en;q=0.9", want: domain.LocaleUS},
		{name: "en-GB", header: "en-GB", want: domain.LocaleGB},
		{name: "preference order", header: "en-US;q=0.5,en-GB;q=0.8", want: domain.LocaleGB},
		{name: "first supported wins", header: "fr-FR,en-US;q=0.7,en-GB;q=0.6", want: domain.LocaleUS},
		{name: "unsupported only", header: "de-DE,fr;q=0.8", want: domain.LocaleGB},
		{name: "bare english", header: "en", want: domain.LocaleGB},
		{name: "malformed", header: "en-US;q=abc", want: domain.LocaleGB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, i18n.Negotiate(tt.header))
		})
	}
}

func TestLocaleFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   domain.Locale
		wantOK bool
	}{
		{path: "/en-US", want: domain.LocaleUS, wantOK: true},
		{path: "/en-GB/checkout", want: domain.LocaleGB, wantOK: true},
		{path: "/en-USA", wantOK: false},
		{path: "/fr-FR", wantOK: false},
		{path: "/", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := i18n.LocaleFromPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		wantAction i18n.Action
		wantStatus int
		wantTarget string
	}{
		{name: "api passes", path: "/api/products", wantAction: i18n.Pass},
		{name: "static file passes", path: "/logo.svg", wantAction: i18n.Pass},
		{name: "favicon passes", path: "/favicon.ico", wantAction: i18n.Pass},
		{name: "legacy us", path: "/us", wantAction: i18n.Redirect, wantStatus: http.StatusMovedPermanently, wantTarget: "/en-US"},
		{name: "legacy us subpath", path: "/us/checkout", wantAction: i18n.Redirect, wantStatus: http.StatusMovedPermanently, wantTarget: "/en-US/checkout"},
		{name: "locale prefixed", path: "/en-GB/checkout", wantAction: i18n.Pass},
		{name: "root uses header", path: "/", header: "en-US", wantAction: i18n.Redirect, wantStatus: http.StatusTemporaryRedirect, wantTarget: "/en-US"},
		{name: "unprefixed path defaults", path: "/checkout", wantAction: i18n.Redirect, wantStatus: http.StatusTemporaryRedirect, wantTarget: "/en-GB/checkout"},
		{name: "usa is not legacy", path: "/usa", wantAction: i18n.Redirect, wantStatus: http.StatusTemporaryRedirect, wantTarget: "/en-GB/usa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := i18n.Route(tt.path, tt.header)
			assert.Equal(t, tt.wantAction, d.Action)
			assert.Equal(t, tt.wantStatus, d.Status)
			assert.Equal(t, tt.wantTarget, d.Location)
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Michael's Amazing Web Store", i18n.Title(domain.LocaleGB))
	assert.Equal(t, "Michael's Awesome Web Store", i18n.Title(domain.LocaleUS))

	assert.Equal(t, "Basket: 0 items", i18n.BasketLabel(domain.LocaleGB, 0))
	assert.Equal(t, "Basket: 1 item", i18n.BasketLabel(domain.LocaleUS, 1))
	assert.Equal(t, "Basket: 3 items", i18n.BasketLabel(domain.LocaleGB, 3))

	labels := i18n.LabelsFor(domain.LocaleUS)
	assert.Equal(t, "Michael's Awesome Web Store", labels.Title)
	assert.Equal(t, "Your basket is empty", labels.EmptyBasket)

	var tags []string
	for _, tag := range i18n.Tags() {
		tags = append(tags, tag.String())
	}
	assert.ElementsMatch(t, []string{"en-GB", "en-US"}, tags)
}

package domain

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Locale is a storefront URL locale segment.
type Locale string

const (
	LocaleGB Locale = "en-GB"
	LocaleUS Locale = "en-US"

	DefaultLocale = LocaleGB
)

// Locales lists the supported locales, default first.
var Locales = []Locale{LocaleGB, LocaleUS}

func ParseLocale(s string) (Locale, bool) {
	for _, l := range Locales {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

func (l Locale) Tag() language.Tag {
	if l == LocaleUS {
		return language.AmericanEnglish
	}
	return language.BritishEnglish
}

// Currency maps en-US to USD and every other locale to GBP.
func (l Locale) Currency() currency.Unit {
	if l == LocaleUS {
		return currency.USD
	}
	return currency.GBP
}

func (l Locale) CatalogKey() CatalogKey {
	if l == LocaleUS {
		return CatalogUS
	}
	return CatalogUK
}

func (l Locale) String() string {
	return string(l)
}

// CatalogKey selects the upstream name and price fields.
type CatalogKey string

const (
	CatalogUK CatalogKey = "uk"
	CatalogUS CatalogKey = "us"
)

// ParseCatalogKey treats anything but "us" as "uk".
func ParseCatalogKey(s string) CatalogKey {
	if s == string(CatalogUS) {
		return CatalogUS
	}
	return CatalogUK
}

func (k CatalogKey) Currency() currency.Unit {
	if k == CatalogUS {
		return currency.USD
	}
	return currency.GBP
}

// CatalogKind selects the primary or supplementary product list.
type CatalogKind string

const (
	KindProducts     CatalogKind = "products"
	KindMoreProducts CatalogKind = "more-products"
)

// ParseCatalogKind defaults an empty value to products and rejects unknown kinds.
func ParseCatalogKind(s string) (CatalogKind, bool) {
	switch s {
	case "", string(KindProducts):
		return KindProducts, true
	case string(KindMoreProducts):
		return KindMoreProducts, true
	}
	return "", false
}

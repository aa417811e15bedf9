package i18n

import (
	"github.com/nikolayk812/storefront/internal/domain"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	KeyTitle         = "title"
	KeyBasketLabel   = "basket.label"
	KeyAddToBasket   = "basket.add"
	KeyCheckout      = "checkout"
	KeyLoadingBasket = "basket.loading"
	KeyEmptyBasket   = "basket.empty"
	KeyTotalItems    = "summary.total_items"
	KeyGrandTotal    = "summary.grand_total"
)

var messages = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(domain.DefaultLocale.Tag()))

	shared := map[string]string{
		KeyAddToBasket:   "Add to basket",
		KeyCheckout:      "Checkout",
		KeyLoadingBasket: "Loading basket...",
		KeyEmptyBasket:   "Your basket is empty",
		KeyTotalItems:    "Total items",
		KeyGrandTotal:    "Grand total",
	}

	titles := map[domain.Locale]string{
		domain.LocaleGB: "Michael's Amazing Web Store",
		domain.LocaleUS: "Michael's Awesome Web Store",
	}

	for _, locale := range domain.Locales {
		tag := locale.Tag()
		mustSet(b.SetString(tag, KeyTitle, titles[locale]))
		mustSet(b.Set(tag, KeyBasketLabel, plural.Selectf(1, "%d",
			plural.One, "Basket: %d item",
			plural.Other, "Basket: %d items",
		)))
		for key, msg := range shared {
			mustSet(b.SetString(tag, key, msg))
		}
	}
	return b
}

func mustSet(err error) {
	if err != nil {
		panic(err)
	}
}

// Printer returns a printer bound to the storefront catalog for locale.
func Printer(locale domain.Locale) *message.Printer {
	return message.NewPrinter(locale.Tag(), message.Catalog(messages))
}

// Labels are the UI strings of one locale.
type Labels struct {
	Title         string `json:"title"`
	AddToBasket   string `json:"addToBasket"`
	Checkout      string `json:"checkout"`
	LoadingBasket string `json:"loadingBasket"`
	EmptyBasket   string `json:"emptyBasket"`
	TotalItems    string `json:"totalItems"`
	GrandTotal    string `json:"grandTotal"`
}

func LabelsFor(locale domain.Locale) Labels {
	p := Printer(locale)
	return Labels{
		Title:         p.Sprintf(KeyTitle),
		AddToBasket:   p.Sprintf(KeyAddToBasket),
		Checkout:      p.Sprintf(KeyCheckout),
		LoadingBasket: p.Sprintf(KeyLoadingBasket),
		EmptyBasket:   p.Sprintf(KeyEmptyBasket),
		TotalItems:    p.Sprintf(KeyTotalItems),
		GrandTotal:    p.Sprintf(KeyGrandTotal),
	}
}

func Title(locale domain.Locale) string {
	return Printer(locale).Sprintf(KeyTitle)
}

// BasketLabel renders the basket button, e.g. "Basket: 1 item".
func BasketLabel(locale domain.Locale, count int) string {
	return Printer(locale).Sprintf(KeyBasketLabel, count)
}

// Tags lists the tags that have messages.
func Tags() []language.Tag {
	return messages.Languages()
}

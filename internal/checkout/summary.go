// Package checkout builds the localized order summary shown before payment.
package checkout

import (
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/currencyfmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

type Line struct {
	Name         string       `json:"name"`
	Quantity     int          `json:"quantity"`
	Price        domain.Money `json:"-"`
	Subtotal     domain.Money `json:"-"`
	PriceText    string       `json:"price"`
	SubtotalText string       `json:"subtotal"`
	Currency     string       `json:"currency"`
}

type Summary struct {
	Locale        domain.Locale `json:"locale"`
	Loading       bool          `json:"loading"`
	Empty         bool          `json:"empty"`
	Lines         []Line        `json:"lines"`
	TotalQuantity int           `json:"totalQuantity"`
	Total         domain.Money  `json:"-"`
	TotalText     string        `json:"total"`
}

// Summarize prices every line of snap with book. Lines whose product is not in
// the book keep their captured amount but are shown in the locale currency.
func Summarize(snap cart.Snapshot, book pricing.PriceBook, locale domain.Locale) Summary {
	unit := pricing.CurrencyFor(locale)
	total := domain.Money{Amount: decimal.Zero, Currency: unit}

	summary := Summary{
		Locale:  locale,
		Loading: snap.State != cart.Ready,
		Lines:   make([]Line, 0, len(snap.Lines)),
	}

	if summary.Loading {
		summary.Empty = true
		summary.Total = total
		summary.TotalText = currencyfmt.FormatMoney(total, locale)
		return summary
	}

	for _, l := range snap.Lines {
		price := book.Lookup(l.Name, l.Price)
		subtotal := price.Mul(l.Quantity)
		total.Amount = total.Amount.Add(subtotal.Amount)

		summary.Lines = append(summary.Lines, Line{
			Name:         l.Name,
			Quantity:     l.Quantity,
			Price:        price,
			Subtotal:     subtotal,
			PriceText:    currencyfmt.FormatMoney(price, locale),
			SubtotalText: currencyfmt.FormatMoney(subtotal, locale),
			Currency:     price.Currency.String(),
		})
		summary.TotalQuantity += l.Quantity
	}

	summary.Empty = len(summary.Lines) == 0
	summary.Total = total
	summary.TotalText = currencyfmt.FormatMoney(total, locale)
	return summary
}

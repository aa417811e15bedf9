// Package currencyfmt renders money amounts for display.
package currencyfmt

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	fallbackTag      = language.BritishEnglish
	fallbackCurrency = currency.GBP

	// symbol placement and separators are only laid out for these
	supportedTags = []language.Tag{language.BritishEnglish, language.AmericanEnglish}
	supported     = language.NewMatcher(supportedTags)

	maxGrouped = decimal.NewFromInt(math.MaxInt64)

	errNoCurrency = errors.New("currency is not set")
)

// Format renders amount with a locale-aware currency symbol, digit grouping and
// exactly two fraction digits. An empty locale picks the locale native to the
// currency, as does a locale other than en-GB or en-US. When the locale or
// currency cannot be used the amount is rendered as en-GB pounds.
func Format(amount decimal.Decimal, currencyCode, locale string) string {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return fallback(amount)
	}

	tag, err := tagFor(locale, unit)
	if err != nil {
		return fallback(amount)
	}

	out, err := format(amount, unit, tag)
	if err != nil {
		return fallback(amount)
	}
	return out
}

// FormatMoney is Format for a typed amount and locale.
func FormatMoney(m domain.Money, locale domain.Locale) string {
	out, err := format(m.Amount, m.Currency, locale.Tag())
	if err != nil {
		return fallback(m.Amount)
	}
	return out
}

func tagFor(locale string, unit currency.Unit) (language.Tag, error) {
	if locale == "" {
		return nativeTag(unit), nil
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("language.Parse: %w", err)
	}
	return tag, nil
}

func nativeTag(unit currency.Unit) language.Tag {
	if unit == currency.USD {
		return language.AmericanEnglish
	}
	return language.BritishEnglish
}

func supportedTag(tag language.Tag, unit currency.Unit) language.Tag {
	_, i, conf := supported.Match(tag)
	if conf < language.High {
		return nativeTag(unit)
	}
	return supportedTags[i]
}

func format(amount decimal.Decimal, unit currency.Unit, tag language.Tag) (string, error) {
	if !domain.HasCurrency(unit) {
		return "", errNoCurrency
	}

	p := message.NewPrinter(supportedTag(tag, unit))

	symbol := p.Sprint(currency.Symbol(unit))
	rounded := amount.Abs().Round(2)
	digits := rounded.StringFixed(2)
	if rounded.LessThanOrEqual(maxGrouped) {
		// integers print exactly; floats would lose digits past 2^53
		_, frac, _ := strings.Cut(digits, ".")
		digits = p.Sprint(number.Decimal(rounded.IntPart())) + "." + frac
	}

	if amount.IsNegative() && !rounded.IsZero() {
		return "-" + symbol + digits, nil
	}
	return symbol + digits, nil
}

func fallback(amount decimal.Decimal) string {
	out, err := format(amount, fallbackCurrency, fallbackTag)
	if err != nil {
		return "£" + amount.StringFixed(2)
	}
	return out
}

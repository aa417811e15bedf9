// Package i18n resolves the storefront locale of a request and holds the
// localized UI strings.
package i18n

import (
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"golang.org/x/text/language"
)

// Negotiate walks the Accept-Language tags in preference order and returns
// the first supported locale. Anything else yields the default locale.
func Negotiate(acceptLanguage string) domain.Locale {
	accept := strings.TrimSpace(acceptLanguage)
	if accept == "" {
		return domain.DefaultLocale
	}

	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil {
		return domain.DefaultLocale
	}

	for _, tag := range tags {
		if locale, ok := domain.ParseLocale(tag.String()); ok {
			return locale
		}
	}
	return domain.DefaultLocale
}

// LocaleFromPath returns the locale of a /{locale} or /{locale}/... path.
func LocaleFromPath(path string) (domain.Locale, bool) {
	for _, l := range domain.Locales {
		prefix := "/" + l.String()
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return l, true
		}
	}
	return "", false
}

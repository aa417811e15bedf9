package i18n

import (
	"net/http"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
)

const legacyUSPrefix = "/us"

type Action int

const (
	Pass Action = iota
	Redirect
)

// Decision is the outcome of routing one request path.
type Decision struct {
	Action   Action
	Status   int
	Location string
	Locale   domain.Locale
}

// Route applies the locale rules to path in order: asset and API paths pass
// untouched, /us is moved permanently to /en-US, locale-prefixed paths pass,
// and everything else is redirected to the negotiated locale.
func Route(path, acceptLanguage string) Decision {
	if skip(path) {
		return Decision{Action: Pass}
	}

	if path == legacyUSPrefix || strings.HasPrefix(path, legacyUSPrefix+"/") {
		return Decision{
			Action:   Redirect,
			Status:   http.StatusMovedPermanently,
			Location: "/" + domain.LocaleUS.String() + strings.TrimPrefix(path, legacyUSPrefix),
			Locale:   domain.LocaleUS,
		}
	}

	if locale, ok := LocaleFromPath(path); ok {
		return Decision{Action: Pass, Locale: locale}
	}

	locale := Negotiate(acceptLanguage)
	location := "/" + locale.String()
	if path != "/" && path != "" {
		location += path
	}

	return Decision{
		Action:   Redirect,
		Status:   http.StatusTemporaryRedirect,
		Location: location,
		Locale:   locale,
	}
}

func skip(path string) bool {
	return strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/favicon") ||
		strings.Contains(path, ".")
}

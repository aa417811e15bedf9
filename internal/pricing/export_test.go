package pricing

import "github.com/nikolayk812/storefront/internal/domain"

// SetLocale starts resolving locale without waiting. The returned channel is
// closed once the run finishes, applied or not.
func (t *Tracker) SetLocale(locale domain.Locale) <-chan struct{} {
	r := t.start(locale)
	if r == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return r.done
}

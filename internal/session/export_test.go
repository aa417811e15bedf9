package session

import "time"

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

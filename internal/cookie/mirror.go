package cookie

import (
	"net/http"
	"sync"

	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/domain"
	"go.uber.org/zap"
)

// Sink receives each rebuilt cookie.
type Sink interface {
	SetCookie(c *http.Cookie) error
}

type SinkFunc func(c *http.Cookie) error

func (f SinkFunc) SetCookie(c *http.Cookie) error {
	return f(c)
}

// Mirror keeps the cart cookie in step with a store. It is a best-effort
// cache: failures are logged and dropped, and the store stays authoritative.
type Mirror struct {
	sink   Sink
	logger *zap.Logger

	mu   sync.RWMutex
	last *http.Cookie
}

func NewMirror(sink Sink, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{sink: sink, logger: logger}
}

// Attach writes the current contents and then follows every change.
func (m *Mirror) Attach(store *cart.Store) (detach func()) {
	detach = store.Subscribe(func(c cart.Change) {
		m.Write(c.Lines)
	})
	m.Write(store.Lines())
	return detach
}

// Write rebuilds the cookie from lines.
func (m *Mirror) Write(lines []domain.CartLine) {
	c, err := New(lines)
	if err != nil {
		m.logger.Debug("cart cookie not encoded", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.last = c
	m.mu.Unlock()

	if m.sink == nil {
		return
	}
	if err := m.sink.SetCookie(c); err != nil {
		m.logger.Debug("cart cookie not written", zap.Error(err))
	}
}

// Cookie returns a copy of the latest cookie, nil before the first write.
func (m *Mirror) Cookie() *http.Cookie {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return nil
	}
	c := *m.last
	return &c
}

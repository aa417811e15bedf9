// Package session owns one cart per browser session.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/cookie"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/pricing"
	"go.uber.org/zap"
)

const (
	CookieName = "sid"
	KeyPrefix  = "cart-store:"

	defaultHydrateTimeout = 5 * time.Second
	defaultIdleTTL        = 30 * time.Minute
	evictCloseTimeout     = 5 * time.Second

	maxSweepInterval = time.Minute
)

var (
	ErrClosed    = errors.New("session registry is closed")
	ErrInvalidID = errors.New("session id is not valid")
)

type Session struct {
	ID     string
	Store  *cart.Store
	Mirror *cookie.Mirror
	Prices *pricing.Tracker

	detach func()

	// guarded by Registry.mu
	lastSeen time.Time
}

type Registry struct {
	storage        port.CartStorage
	resolver       *pricing.Resolver
	logger         *zap.Logger
	hydrateTimeout time.Duration
	idleTTL        time.Duration
	now            func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	wg sync.WaitGroup

	quit      chan struct{}
	sweeper   sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithHydrateTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.hydrateTimeout = d
		}
	}
}

// WithIdleTTL sets how long a session may go unused before it is evicted.
func WithIdleTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

// NewRegistry creates a registry and starts its idle sweeper. Close stops it.
func NewRegistry(storage port.CartStorage, resolver *pricing.Resolver, opts ...Option) *Registry {
	r := &Registry{
		storage:        storage,
		resolver:       resolver,
		logger:         zap.NewNop(),
		hydrateTimeout: defaultHydrateTimeout,
		idleTTL:        defaultIdleTTL,
		now:            time.Now,
		sessions:       make(map[string]*Session),
		quit:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.sweeper.Add(1)
	go r.sweepLoop()

	return r
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ParseID returns the canonical form of a session id, or false when raw is
// not a UUID.
func ParseID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Cookie is the session cookie carrying id.
func Cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Get returns the session for id, creating it on first use. A new session
// starts Loading and is hydrated from storage in the background.
func (r *Registry) Get(ctx context.Context, rawID string) (*Session, error) {
	id, ok := ParseID(rawID)
	if !ok {
		return nil, fmt.Errorf("session.Get %q: %w", rawID, ErrInvalidID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s, nil
	}

	logger := r.logger.With(zap.String("session", id))
	store := cart.New(r.storage, KeyPrefix+id, cart.WithLogger(logger))
	mirror := cookie.NewMirror(nil, logger)

	s := &Session{
		ID:       id,
		Store:    store,
		Mirror:   mirror,
		Prices:   pricing.NewTracker(r.resolver),
		detach:   mirror.Attach(store),
		lastSeen: r.now(),
	}
	r.sessions[id] = s

	hydrateCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(hydrateCtx, r.hydrateTimeout)
		defer cancel()
		store.Hydrate(ctx)
	}()

	return s, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts hydrated sessions unused for longer than the idle TTL,
// flushing their carts to storage. It returns how many were evicted.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if !s.lastSeen.Before(cutoff) || !s.Store.Hydration().IsReady() {
			continue
		}
		idle = append(idle, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	return len(idle), release(ctx, idle)
}

func (r *Registry) sweepLoop() {
	defer r.sweeper.Done()

	ticker := time.NewTicker(max(min(r.idleTTL/2, maxSweepInterval), time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), evictCloseTimeout)
			n, err := r.Sweep(ctx)
			cancel()
			if err != nil {
				r.logger.Warn("idle session eviction failed", zap.Error(err))
			}
			if n > 0 {
				r.logger.Debug("idle sessions evicted", zap.Int("count", n))
			}
		}
	}
}

// Close stops accepting sessions, waits for pending hydrations and closes
// every store, flushing its last write.
func (r *Registry) Close(ctx context.Context) error {
	r.closeOnce.Do(func() { close(r.quit) })
	r.sweeper.Wait()

	r.mu.Lock()
	r.closed = true
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	r.wg.Wait()

	return release(ctx, sessions)
}

func release(ctx context.Context, sessions []*Session) error {
	var errs []error
	for _, s := range sessions {
		s.detach()
		s.Prices.Close()
		if err := s.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}

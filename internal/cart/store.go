// Package cart holds the in-memory basket for one browsing session.
//
// A Store is the single source of truth for basket contents. Mutations are
// serialized and, once the store has been hydrated from durable storage, every
// change is written through asynchronously on a dedicated goroutine. Listeners
// registered with Subscribe observe each change in mutation order.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const defaultSaveTimeout = 5 * time.Second

// Change carries the full collection after a mutation. Lines must be treated
// as read-only.
type Change struct {
	Key   string
	Lines []domain.CartLine
}

// Listener observes store changes. It runs synchronously in mutation order
// and must not call back into mutating methods of the same store.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

type Store struct {
	key         string
	storage     port.CartStorage
	logger      *zap.Logger
	saveTimeout time.Duration

	hydration   *Hydration
	hydrateOnce sync.Once

	mu       sync.Mutex
	lines    []domain.CartLine
	hydrated bool

	// notifyMu is taken before mu is released so listeners and the writer
	// see changes in mutation order.
	notifyMu sync.Mutex

	listenersMu sync.Mutex
	listeners   []subscription
	nextID      int

	pendingMu sync.Mutex
	pending   []domain.CartLine
	dirty     bool

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an empty store persisting under key. A nil storage keeps the
// cart in memory only.
func New(storage port.CartStorage, key string, opts ...Option) *Store {
	s := &Store{
		key:         key,
		storage:     storage,
		logger:      zap.NewNop(),
		saveTimeout: defaultSaveTimeout,
		hydration:   newHydration(),
		lines:       []domain.CartLine{},
		wake:        make(chan struct{}, 1),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if storage == nil {
		close(s.done)
	} else {
		go s.writer()
	}

	return s
}

func (s *Store) Key() string {
	return s.key
}

func (s *Store) Hydration() *Hydration {
	return s.hydration
}

// Hydrate restores the persisted collection and marks the store Ready.
// An unreadable record yields an empty cart. Only the first call has effect.
// Mutations made before hydration are replaced by the restored collection
// and are never written through.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		restored := s.restore(ctx)

		s.mu.Lock()
		s.lines = restored
		s.hydrated = true
		snapshot := domain.CloneLines(restored)
		s.notifyMu.Lock()
		s.mu.Unlock()

		s.notify(snapshot)
		s.notifyMu.Unlock()

		s.hydration.markReady()
	})
}

func (s *Store) restore(ctx context.Context) []domain.CartLine {
	if s.storage == nil {
		return []domain.CartLine{}
	}

	lines, err := s.storage.Load(ctx, s.key)
	if err != nil {
		s.logger.Warn("cart record unreadable, starting empty", zap.String("key", s.key), zap.Error(err))
		return []domain.CartLine{}
	}

	clean := sanitize(lines)
	if dropped := len(lines) - len(clean); dropped > 0 {
		s.logger.Warn("dropped invalid cart lines", zap.String("key", s.key), zap.Int("dropped", dropped))
	}
	return clean
}

// AddItem increments the named line or appends a new line with quantity 1.
// Price and currency are only recorded for a new line.
func (s *Store) AddItem(name string, price decimal.NullDecimal, unit currency.Unit) {
	s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		return addOrIncrement(lines, name, price, unit), true
	})
}

// DecrementItem lowers the quantity by one, removing the line at zero.
func (s *Store) DecrementItem(name string) {
	s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		i := indexOf(lines, name)
		if i == -1 {
			return lines, false
		}
		return withQuantity(lines, name, lines[i].Quantity-1)
	})
}

func (s *Store) RemoveItem(name string) {
	s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		return withQuantity(lines, name, 0)
	})
}

// SetQuantity sets an absolute quantity. The value is floored; non-finite
// values count as 0 and anything not positive removes the line.
func (s *Store) SetQuantity(name string, quantity float64) {
	q := normalizeQuantity(quantity)
	s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		return withQuantity(lines, name, q)
	})
}

func (s *Store) Clear() {
	s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		return []domain.CartLine{}, len(lines) > 0
	})
}

func (s *Store) QuantityFor(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.lines, name); i != -1 {
		return s.lines[i].Quantity
	}
	return 0
}

func (s *Store) TotalUniqueItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.lines)
}

func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Lines returns a copy of the collection in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CloneLines(s.lines)
}

// Snapshot is the view presentation code renders. While the store is
// loading it reports no lines and zero counts.
type Snapshot struct {
	State            State
	Lines            []domain.CartLine
	TotalUniqueItems int
	TotalQuantity    int
}

func (s *Store) Snapshot() Snapshot {
	if !s.hydration.IsReady() {
		return Snapshot{State: Loading, Lines: []domain.CartLine{}}
	}

	lines := s.Lines()
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}

	return Snapshot{
		State:            Ready,
		Lines:            lines,
		TotalUniqueItems: len(lines),
		TotalQuantity:    total,
	}
}

// Subscribe registers l for future changes.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: l})
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close flushes a pending write and stops the writer.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.quit) })

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close cart %s: %w", s.key, ctx.Err())
	}
}

func (s *Store) mutate(op func([]domain.CartLine) ([]domain.CartLine, bool)) {
	s.mu.Lock()
	next, changed := op(s.lines)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.lines = next
	persist := s.hydrated
	snapshot := domain.CloneLines(next)
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	if persist {
		s.schedulePersist(snapshot)
	}
	s.notify(snapshot)
}

func (s *Store) notify(lines []domain.CartLine) {
	s.listenersMu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.listenersMu.Unlock()

	change := Change{Key: s.key, Lines: lines}
	for _, sub := range subs {
		sub.fn(change)
	}
}

func (s *Store) schedulePersist(lines []domain.CartLine) {
	if s.storage == nil {
		return
	}

	s.pendingMu.Lock()
	s.pending = lines
	s.dirty = true
	s.pendingMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) writer() {
	defer close(s.done)

	for {
		select {
		case <-s.wake:
			s.flush()
		case <-s.quit:
			s.flush()
			return
		}
	}
}

func (s *Store) flush() {
	s.pendingMu.Lock()
	if !s.dirty {
		s.pendingMu.Unlock()
		return
	}
	lines := s.pending
	s.pending = nil
	s.dirty = false
	s.pendingMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.storage.Save(ctx, s.key, lines); err != nil {
		s.logger.Warn("cart write-through failed", zap.String("key", s.key), zap.Error(err))
	}
}

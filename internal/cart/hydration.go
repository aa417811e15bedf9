package cart

import (
	"context"
	"sync"
)

// State is the hydration lifecycle of a store.
type State int

const (
	Loading State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "loading"
}

// Hydration signals once that the persisted collection is in memory.
// It moves from Loading to Ready exactly once and never back.
type Hydration struct {
	once  sync.Once
	ready chan struct{}

	mu        sync.Mutex
	callbacks []func()
}

func newHydration() *Hydration {
	return &Hydration{ready: make(chan struct{})}
}

// Ready is closed when hydration completes.
func (h *Hydration) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hydration) IsReady() bool {
	select {
	case <-h.ready:
		return true
	default:
		return false
	}
}

func (h *Hydration) State() State {
	if h.IsReady() {
		return Ready
	}
	return Loading
}

// OnReady runs fn once hydration completes, immediately if it already has.
func (h *Hydration) OnReady(fn func()) {
	h.mu.Lock()
	if !h.IsReady() {
		h.callbacks = append(h.callbacks, fn)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	fn()
}

// Wait blocks until hydration completes or ctx is done.
func (h *Hydration) Wait(ctx context.Context) error {
	select {
	case <-h.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hydration) markReady() {
	h.once.Do(func() {
		h.mu.Lock()
		close(h.ready)
		callbacks := h.callbacks
		h.callbacks = nil
		h.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
	})
}

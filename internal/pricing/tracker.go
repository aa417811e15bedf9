package pricing

import (
	"context"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
)

// Tracker holds the price book for one consumer across locale changes.
// Requests for a locale already being resolved join that run. Only the
// latest requested run updates Book; results arriving after Close are
// discarded.
type Tracker struct {
	resolver *Resolver

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	book     PriceBook
	latest   *run
	inflight map[domain.Locale]*run

	wg sync.WaitGroup
}

type run struct {
	locale domain.Locale
	done   chan struct{}

	// set before done is closed
	book PriceBook
	ok   bool
}

func NewTracker(resolver *Resolver) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		resolver: resolver,
		ctx:      ctx,
		cancel:   cancel,
		book:     NewPriceBook(domain.DefaultLocale),
		inflight: make(map[domain.Locale]*run),
	}
}

// Load resolves prices for locale and waits for the outcome. The returned
// flag is false when the tracker closed or ctx ended first. A failed fetch
// still reports true with an empty book.
func (t *Tracker) Load(ctx context.Context, locale domain.Locale) (PriceBook, bool) {
	r := t.start(locale)
	if r == nil {
		return t.Book(), false
	}

	select {
	case <-r.done:
		return r.book, r.ok
	case <-ctx.Done():
		return t.Book(), false
	}
}

func (t *Tracker) start(locale domain.Locale) *run {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	if r, ok := t.inflight[locale]; ok {
		t.latest = r
		return r
	}

	r := &run{locale: locale, done: make(chan struct{})}
	t.inflight[locale] = r
	t.latest = r

	// runs outlive the caller that started them so joined callers are not
	// affected when it goes away; the resolver timeout bounds them
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		book := t.resolver.Resolve(t.ctx, locale)
		t.finish(r, book, t.ctx.Err() == nil)
	}()

	return r
}

func (t *Tracker) finish(r *run, book PriceBook, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inflight[r.locale] == r {
		delete(t.inflight, r.locale)
	}

	r.book = book
	r.ok = ok && !t.closed
	if r.ok && t.latest == r {
		t.book = book
	}
	close(r.done)
}

func (t *Tracker) Book() PriceBook {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.book
}

// Loading reports whether the latest requested locale is still resolving.
func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest == nil {
		return false
	}
	r, ok := t.inflight[t.latest.locale]
	return ok && r == t.latest
}

// Close discards in-flight results and waits for their goroutines.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}

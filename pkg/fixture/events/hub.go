// Package events implements a small generic observable event hub used
// throughout the server for its embedder-visible notification surface
// (data received/sent, client connected/disconnected, log messages,
// request handling lifecycle).
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrCapacityExceeded is returned by AddObserver when a Hub already holds
// its maxObservers limit of observers.
type ErrCapacityExceeded struct {
	Max int
}

func (e *ErrCapacityExceeded) Error() string {
	if e.Max == 1 {
		return fmt.Sprintf("This observable event only allows %d handler.", e.Max)
	}
	return fmt.Sprintf("This observable event only allows %d handlers.", e.Max)
}

// ObserverToken identifies a previously registered observer for removal.
type ObserverToken string

// ObserverOptions controls how a single observer is dispatched.
type ObserverOptions struct {
	// Async runs the observer in its own goroutine, fire-and-forget: its
	// error return and any panic are swallowed and Notify does not wait
	// for it to finish. Sync (the default) observers are awaited in
	// insertion order.
	Async bool
}

type observer[T any] struct {
	token       ObserverToken
	fn          func(context.Context, T) error
	opts        ObserverOptions
	description string
}

// Hub is a generic observable event supporting an optional cap on the
// number of registered observers and per-observer sync/async dispatch.
type Hub[T any] struct {
	mu           sync.RWMutex
	observers    []observer[T]
	maxObservers int
}

// NewHub creates a Hub. maxObservers of 0 means unlimited.
func NewHub[T any](maxObservers int) *Hub[T] {
	return &Hub[T]{maxObservers: maxObservers}
}

// AddObserver registers fn, returning a token that can later be passed to
// RemoveObserver. description is a human-readable label surfaced in
// diagnostics; it plays no role in dispatch.
func (h *Hub[T]) AddObserver(fn func(context.Context, T) error, opts ObserverOptions, description string) (ObserverToken, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.maxObservers > 0 && len(h.observers) >= h.maxObservers {
		return "", &ErrCapacityExceeded{Max: h.maxObservers}
	}
	token := ObserverToken(uuid.NewString())
	h.observers = append(h.observers, observer[T]{token: token, fn: fn, opts: opts, description: description})
	return token, nil
}

// RemoveObserver unregisters the observer identified by token, if present.
func (h *Hub[T]) RemoveObserver(token ObserverToken) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ob := range h.observers {
		if ob.token == token {
			h.observers = append(h.observers[:i], h.observers[i+1:]...)
			return
		}
	}
}

// Count returns the number of currently registered observers.
func (h *Hub[T]) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Notify dispatches arg to every registered observer. Synchronous
// observers run in insertion order and are awaited before Notify returns;
// the first sync observer to return an error or panic aborts the call and
// its error (a wrapped panic value, if that's the cause) is returned to
// the caller of Notify, which for a connection's receive loop means
// running through its normal close/finalize path. Asynchronous observers
// are launched in their own goroutine, fire-and-forget: their errors and
// panics are swallowed, and Notify does not wait for them.
func (h *Hub[T]) Notify(ctx context.Context, arg T) error {
	h.mu.RLock()
	snapshot := make([]observer[T], len(h.observers))
	copy(snapshot, h.observers)
	h.mu.RUnlock()

	for _, ob := range snapshot {
		if ob.opts.Async {
			go func(ob observer[T]) {
				defer func() { _ = recover() }()
				_ = ob.fn(ctx, arg)
			}(ob)
			continue
		}
		if err := callSync(ob, ctx, arg); err != nil {
			return err
		}
	}
	return nil
}

func callSync[T any](ob observer[T], ctx context.Context, arg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer %q panicked: %v", ob.description, r)
		}
	}()
	return ob.fn(ctx, arg)
}

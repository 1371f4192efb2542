// Package aggregate holds the client-side domain aggregates: one
// independently persisted document each, plus the commands that validly
// mutate it. Commands are serialized per aggregate so a slow persistence
// write can never let a later command compute from a stale snapshot.
package aggregate

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"marketplace-state-service/internal/repository"
)

// errNoop signals that a command found nothing to change. The core treats it
// as success without a persistence write; the caller sees the current
// snapshot and a nil error.
var errNoop = errors.New("aggregate: no change")

// Subscriber receives the new snapshot after every committed mutation.
type Subscriber[T any] func(T)

// core is the command-serialization engine shared by every aggregate. The
// mutex is held across read-snapshot, compute, persist and swap, so at most
// one mutating command is in flight per aggregate; the rest queue on the
// lock and each runs against the then-current snapshot. The in-memory
// snapshot changes if and only if the persistence write succeeded.
type core[T any] struct {
	mu       sync.Mutex
	key      string
	repo     *repository.AggregateRepository[T]
	logger   *zap.Logger
	clone    func(T) T
	snapshot T
	ready    bool
	subs     []Subscriber[T]
}

func newCore[T any](key string, repo *repository.AggregateRepository[T], logger *zap.Logger, clone func(T) T) *core[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &core[T]{key: key, repo: repo, logger: logger.With(zap.String("key", key)), clone: clone}
}

// load pulls the persisted document into memory. A storage failure leaves
// the aggregate on its default snapshot and not ready.
func (c *core[T]) load(ctx context.Context, def T) error {
	snapshot, err := c.repo.Load(ctx, c.key, def)
	c.mu.Lock()
	c.snapshot = snapshot
	c.ready = err == nil
	c.mu.Unlock()
	if err != nil {
		c.logger.Error("aggregate load failed", zap.Error(err))
		return err
	}
	return nil
}

// current returns a copy of the in-memory snapshot.
func (c *core[T]) current() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone(c.snapshot)
}

// isReady reports whether the initial load completed.
func (c *core[T]) isReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// subscribe registers a callback for committed snapshots.
func (c *core[T]) subscribe(fn Subscriber[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// mutate runs one command. fn receives a private copy of the current
// snapshot and returns the complete next snapshot; returning an error aborts
// without touching state. Subscribers are notified outside the lock.
func (c *core[T]) mutate(ctx context.Context, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	next, err := fn(c.clone(c.snapshot))
	if errors.Is(err, errNoop) {
		prev := c.clone(c.snapshot)
		c.mu.Unlock()
		return prev, nil
	}
	if err != nil {
		prev := c.clone(c.snapshot)
		c.mu.Unlock()
		return prev, err
	}
	if err := c.repo.Save(ctx, c.key, next); err != nil {
		prev := c.clone(c.snapshot)
		c.mu.Unlock()
		c.logger.Error("aggregate persist failed", zap.Error(err))
		return prev, err
	}
	c.snapshot = next
	published := c.clone(next)
	subs := make([]Subscriber[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(published)
	}
	return c.clone(published), nil
}

// clear removes the persisted key and resets to the empty snapshot. Removing
// the key, rather than writing an empty document, keeps a restart clean even
// under storage ambiguity.
func (c *core[T]) clear(ctx context.Context, empty T) (T, error) {
	c.mu.Lock()
	if err := c.repo.Clear(ctx, c.key); err != nil {
		prev := c.clone(c.snapshot)
		c.mu.Unlock()
		c.logger.Error("aggregate clear failed", zap.Error(err))
		return prev, err
	}
	c.snapshot = c.clone(empty)
	published := c.clone(empty)
	subs := make([]Subscriber[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(published)
	}
	return c.clone(published), nil
}

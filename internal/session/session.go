// Package session owns the logout boundary. The full list of persisted keys
// lives here and only here: each aggregate clears its own key when told to
// reset, and the session sweeps the auth/session keys no aggregate owns.
package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"marketplace-state-service/internal/store"
)

// Resettable is implemented by every aggregate: clear the persisted key and
// return to the empty snapshot.
type Resettable interface {
	Reset(ctx context.Context) error
}

// Keys removed directly on logout, written outside the aggregate layer.
var sessionKeys = []string{
	store.KeyUserToken,
	store.KeyUserData,
	store.KeyDarkMode,
}

// Lifecycle coordinates the logout sweep.
type Lifecycle struct {
	kv         store.KVStore
	logger     *zap.Logger
	aggregates []Resettable
}

// NewLifecycle creates the session boundary over the given store.
func NewLifecycle(kv store.KVStore, logger *zap.Logger, aggregates ...Resettable) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{kv: kv, logger: logger, aggregates: aggregates}
}

// Register adds an aggregate to the logout sweep.
func (l *Lifecycle) Register(agg Resettable) {
	l.aggregates = append(l.aggregates, agg)
}

// Logout resets every registered aggregate and removes the session keys.
// The sweep continues past individual failures so one bad key cannot leave
// the rest of the session behind; all failures are joined into the returned
// error.
func (l *Lifecycle) Logout(ctx context.Context) error {
	var errs []error
	for _, agg := range l.aggregates {
		if err := agg.Reset(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, key := range sessionKeys {
		if err := l.kv.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		l.logger.Error("logout sweep finished with failures", zap.Error(err))
		return err
	}
	l.logger.Info("logout sweep completed")
	return nil
}

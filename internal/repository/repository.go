// Package repository bridges aggregate snapshots and the key-value store.
// It owns serialization only; domain rules live with the aggregates.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"marketplace-state-service/internal/store"
)

// AggregateRepository loads and saves one snapshot type under one key.
// Save is always a full-document overwrite, which is why every aggregate
// command computes a complete next snapshot before persisting.
type AggregateRepository[T any] struct {
	kv     store.KVStore
	logger *zap.Logger
}

// New creates a repository over the given store.
func New[T any](kv store.KVStore, logger *zap.Logger) *AggregateRepository[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregateRepository[T]{kv: kv, logger: logger}
}

// Load reads the document under key. An absent key or a corrupt payload
// resolves to def: this favors availability over strict durability, so a
// damaged document can never block startup or reconstruct an invalid state.
// Storage I/O failure is still returned as an error.
func (r *AggregateRepository[T]) Load(ctx context.Context, key string, def T) (T, error) {
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if raw == nil {
		return def, nil
	}

	var snapshot T
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		r.logger.Warn("corrupt persisted document, falling back to default",
			zap.String("key", key),
			zap.Error(err))
		return def, nil
	}
	return snapshot, nil
}

// Save overwrites the document under key with the serialized snapshot.
func (r *AggregateRepository[T]) Save(ctx context.Context, key string, snapshot T) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		// Snapshot types are plain documents; this only fires on a
		// programming error, but it must not pass silently.
		return fmt.Errorf("repository: marshal %q: %w", key, err)
	}
	return r.kv.Set(ctx, key, raw)
}

// Clear removes the document under key entirely. Used where an empty
// document and an absent one must be indistinguishable after restart.
func (r *AggregateRepository[T]) Clear(ctx context.Context, key string) error {
	return r.kv.Remove(ctx, key)
}

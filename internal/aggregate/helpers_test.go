package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/store"
)

// failingStore wraps a MemoryStore and fails writes on demand, for
// exercising the persist-or-nothing commit rule.
type failingStore struct {
	*store.MemoryStore
	failSet    bool
	failRemove bool
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return &store.PersistenceError{Op: "set", Key: key, Err: errDiskFull}
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *failingStore) Remove(ctx context.Context, key string) error {
	if s.failRemove {
		return &store.PersistenceError{Op: "remove", Key: key, Err: errDiskFull}
	}
	return s.MemoryStore.Remove(ctx, key)
}

// stubSubscription satisfies SubscriptionReader with a fixed snapshot.
type stubSubscription struct {
	snapshot domain.SubscriptionSnapshot
}

func (s *stubSubscription) Snapshot() domain.SubscriptionSnapshot { return s.snapshot }

func activeSubscription(planID string) *stubSubscription {
	return &stubSubscription{snapshot: domain.SubscriptionSnapshot{
		PlanID: planID,
		Status: domain.StatusActive,
	}}
}

// stubRemote satisfies remote.Client with canned responses.
type stubRemote struct {
	fetchResponse  json.RawMessage
	fetchErr       error
	mutateErr      error
	fetchCalls     int
	mutateCalls    int
	lastResource   string
	mutatePayloads []any
}

func (r *stubRemote) Fetch(_ context.Context, resource string, _ url.Values) (json.RawMessage, error) {
	r.fetchCalls++
	r.lastResource = resource
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	return r.fetchResponse, nil
}

func (r *stubRemote) Mutate(_ context.Context, resource string, payload any) (json.RawMessage, error) {
	r.mutateCalls++
	r.lastResource = resource
	r.mutatePayloads = append(r.mutatePayloads, payload)
	if r.mutateErr != nil {
		return nil, r.mutateErr
	}
	return json.RawMessage(`{}`), nil
}

func testProduct(id string, price float64) domain.ProductSnapshot {
	return domain.ProductSnapshot{ID: id, Name: "Product " + id, Price: price}
}

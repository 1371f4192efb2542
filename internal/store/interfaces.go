package store

import (
	"context"
	"fmt"
)

// Persisted document keys. One JSON document per key; no key is written by
// more than one aggregate. The session layer owns the full sweep list.
const (
	KeyCart           = "cart"
	KeyWishlist       = "wishlist"
	KeyAddresses      = "addresses"
	KeyProfile        = "profile"
	KeySubscription   = "subscription"
	KeySellerCatalog  = "sellerCatalog"
	KeyRecentSearches = "recentSearches"

	// Session-owned keys, written outside the aggregate layer.
	KeyUserToken = "userToken"
	KeyUserData  = "userData"
	KeyDarkMode  = "isDarkMode"
)

// KVStore is the durable key-value substrate under every aggregate. Get
// returns (nil, nil) for an absent key; callers treat absence as "never
// initialized". No retries happen at this layer.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// PersistenceError wraps a storage I/O failure. Aggregates surface it
// unmodified so callers can tell storage trouble apart from domain failures.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op, key string, err error) error {
	return &PersistenceError{Op: op, Key: key, Err: err}
}

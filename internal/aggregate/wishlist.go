package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/repository"
	"marketplace-state-service/internal/store"
)

// Wishlist owns the wishlist document: an ordered set of product snapshots,
// unique by product id.
type Wishlist struct {
	core *core[domain.WishlistSnapshot]
}

// NewWishlist creates the wishlist aggregate over the given store.
func NewWishlist(kv store.KVStore, logger *zap.Logger) *Wishlist {
	repo := repository.New[domain.WishlistSnapshot](kv, logger)
	return &Wishlist{core: newCore(store.KeyWishlist, repo, logger, domain.WishlistSnapshot.Clone)}
}

// Load pulls the persisted wishlist into memory. Call once at startup.
func (w *Wishlist) Load(ctx context.Context) error {
	return w.core.load(ctx, domain.EmptyWishlist())
}

// Ready reports whether the initial load completed.
func (w *Wishlist) Ready() bool { return w.core.isReady() }

// Snapshot returns a copy of the current wishlist.
func (w *Wishlist) Snapshot() domain.WishlistSnapshot { return w.core.current() }

// Subscribe registers a callback invoked with every committed snapshot.
func (w *Wishlist) Subscribe(fn Subscriber[domain.WishlistSnapshot]) { w.core.subscribe(fn) }

// Add appends the product unless it is already present. A duplicate add
// returns ErrAlreadyExists with the list untouched and unreordered, so the
// caller can tell "already saved" apart from a fresh save.
func (w *Wishlist) Add(ctx context.Context, product domain.ProductSnapshot) (domain.WishlistSnapshot, error) {
	if product.ID == "" {
		return w.Snapshot(), fmt.Errorf("%w: product id is required", domain.ErrValidation)
	}
	return w.core.mutate(ctx, func(cur domain.WishlistSnapshot) (domain.WishlistSnapshot, error) {
		if cur.Contains(product.ID) {
			return cur, domain.ErrAlreadyExists
		}
		cur.Items = append(cur.Items, product)
		return cur, nil
	})
}

// Remove drops the product. Absent ids are a no-op, not an error.
func (w *Wishlist) Remove(ctx context.Context, productID string) (domain.WishlistSnapshot, error) {
	return w.core.mutate(ctx, func(cur domain.WishlistSnapshot) (domain.WishlistSnapshot, error) {
		for i, p := range cur.Items {
			if p.ID == productID {
				cur.Items = append(cur.Items[:i], cur.Items[i+1:]...)
				return cur, nil
			}
		}
		return cur, errNoop
	})
}

// Contains reports whether the product id is saved. Pure query, no I/O.
func (w *Wishlist) Contains(productID string) bool {
	return w.Snapshot().Contains(productID)
}

// Clear empties the wishlist and removes the persisted key.
func (w *Wishlist) Clear(ctx context.Context) (domain.WishlistSnapshot, error) {
	return w.core.clear(ctx, domain.EmptyWishlist())
}

// Reset implements the session reset contract.
func (w *Wishlist) Reset(ctx context.Context) error {
	_, err := w.Clear(ctx)
	return err
}

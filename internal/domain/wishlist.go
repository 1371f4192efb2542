package domain

// WishlistSnapshot is the persisted wishlist document: an ordered set of
// product snapshots, unique by product id. Insertion order is preserved.
type WishlistSnapshot struct {
	Items []ProductSnapshot `json:"items"`
}

// EmptyWishlist returns the default wishlist used when the persisted key is
// absent.
func EmptyWishlist() WishlistSnapshot {
	return WishlistSnapshot{Items: []ProductSnapshot{}}
}

// Contains reports whether a product id is present. Pure query, no I/O.
func (w WishlistSnapshot) Contains(productID string) bool {
	for _, p := range w.Items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// Clone returns an independent copy safe to hand to subscribers.
func (w WishlistSnapshot) Clone() WishlistSnapshot {
	items := make([]ProductSnapshot, len(w.Items))
	copy(items, w.Items)
	return WishlistSnapshot{Items: items}
}

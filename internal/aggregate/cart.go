package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/repository"
	"marketplace-state-service/internal/store"
)

// Cart owns the shopping cart document: at most one line per product id,
// every quantity >= 1.
type Cart struct {
	core *core[domain.CartSnapshot]
}

// NewCart creates the cart aggregate over the given store.
func NewCart(kv store.KVStore, logger *zap.Logger) *Cart {
	repo := repository.New[domain.CartSnapshot](kv, logger)
	return &Cart{core: newCore(store.KeyCart, repo, logger, domain.CartSnapshot.Clone)}
}

// Load pulls the persisted cart into memory. Call once at startup.
func (c *Cart) Load(ctx context.Context) error {
	return c.core.load(ctx, domain.EmptyCart())
}

// Ready reports whether the initial load completed.
func (c *Cart) Ready() bool { return c.core.isReady() }

// Snapshot returns a copy of the current cart.
func (c *Cart) Snapshot() domain.CartSnapshot { return c.core.current() }

// Subscribe registers a callback invoked with every committed snapshot.
func (c *Cart) Subscribe(fn Subscriber[domain.CartSnapshot]) { c.core.subscribe(fn) }

// AddItem merges qty into the existing line for the product, or appends a
// new line. qty must be >= 1.
func (c *Cart) AddItem(ctx context.Context, product domain.ProductSnapshot, qty int) (domain.CartSnapshot, error) {
	if product.ID == "" {
		return c.Snapshot(), fmt.Errorf("%w: product id is required", domain.ErrValidation)
	}
	if qty < 1 {
		return c.Snapshot(), fmt.Errorf("%w: quantity must be at least 1, got %d", domain.ErrValidation, qty)
	}
	return c.core.mutate(ctx, func(cur domain.CartSnapshot) (domain.CartSnapshot, error) {
		for i, line := range cur.Lines {
			if line.Product.ID == product.ID {
				cur.Lines[i].Quantity += qty
				return cur, nil
			}
		}
		cur.Lines = append(cur.Lines, domain.CartLine{Product: product, Quantity: qty})
		return cur, nil
	})
}

// SetQuantity replaces the line's quantity. A qty below 1 behaves as
// RemoveItem: the line is dropped rather than persisted invalid.
func (c *Cart) SetQuantity(ctx context.Context, productID string, qty int) (domain.CartSnapshot, error) {
	if qty < 1 {
		return c.RemoveItem(ctx, productID)
	}
	return c.core.mutate(ctx, func(cur domain.CartSnapshot) (domain.CartSnapshot, error) {
		for i, line := range cur.Lines {
			if line.Product.ID == productID {
				if line.Quantity == qty {
					return cur, errNoop
				}
				cur.Lines[i].Quantity = qty
				return cur, nil
			}
		}
		return cur, errNoop
	})
}

// RemoveItem drops the line for the product. Absent ids are a no-op, not an
// error.
func (c *Cart) RemoveItem(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	return c.core.mutate(ctx, func(cur domain.CartSnapshot) (domain.CartSnapshot, error) {
		for i, line := range cur.Lines {
			if line.Product.ID == productID {
				cur.Lines = append(cur.Lines[:i], cur.Lines[i+1:]...)
				return cur, nil
			}
		}
		return cur, errNoop
	})
}

// Clear empties the cart and removes the persisted key. Used on checkout
// success and logout.
func (c *Cart) Clear(ctx context.Context) (domain.CartSnapshot, error) {
	return c.core.clear(ctx, domain.EmptyCart())
}

// Reset implements the session reset contract.
func (c *Cart) Reset(ctx context.Context) error {
	_, err := c.Clear(ctx)
	return err
}

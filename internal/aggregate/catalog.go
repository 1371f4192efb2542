package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/remote"
	"marketplace-state-service/internal/repository"
	"marketplace-state-service/internal/store"
)

// NewProduct is the caller-supplied portion of a catalog product. The
// aggregate assigns the id and timestamps.
type NewProduct struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// SellerCatalog owns the seller's product and order document. Additions are
// gated by the AuthorizationGate against the subscription snapshot captured
// at command start. A catalog loaded from storage that already exceeds the
// plan limit (after a downgrade) is valid at rest; it only blocks further
// additions.
type SellerCatalog struct {
	core   *core[domain.CatalogSnapshot]
	gate   *AuthorizationGate
	subs   SubscriptionReader
	remote remote.Client
	now    func() time.Time
}

// NewSellerCatalog creates the catalog aggregate. subs is the read-only
// subscription dependency consulted by the gate; remoteClient may be nil.
func NewSellerCatalog(kv store.KVStore, gate *AuthorizationGate, subs SubscriptionReader, remoteClient remote.Client, logger *zap.Logger) *SellerCatalog {
	repo := repository.New[domain.CatalogSnapshot](kv, logger)
	return &SellerCatalog{
		core:   newCore(store.KeySellerCatalog, repo, logger, domain.CatalogSnapshot.Clone),
		gate:   gate,
		subs:   subs,
		remote: remoteClient,
		now:    time.Now,
	}
}

// Load pulls the persisted catalog into memory. Call once at startup.
func (s *SellerCatalog) Load(ctx context.Context) error {
	return s.core.load(ctx, domain.EmptyCatalog())
}

// Ready reports whether the initial load completed.
func (s *SellerCatalog) Ready() bool { return s.core.isReady() }

// Snapshot returns a copy of the current catalog.
func (s *SellerCatalog) Snapshot() domain.CatalogSnapshot { return s.core.current() }

// Subscribe registers a callback invoked with every committed snapshot.
func (s *SellerCatalog) Subscribe(fn Subscriber[domain.CatalogSnapshot]) { s.core.subscribe(fn) }

// AddProduct appends a product after the gate admits it. The subscription
// snapshot is read inside the critical section so the size it is checked
// against is the size that gets persisted.
func (s *SellerCatalog) AddProduct(ctx context.Context, input NewProduct) (domain.CatalogSnapshot, error) {
	if input.Name == "" {
		return s.Snapshot(), fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}
	if input.Price < 0 {
		return s.Snapshot(), fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if input.Stock < 0 {
		return s.Snapshot(), fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	}
	return s.core.mutate(ctx, func(cur domain.CatalogSnapshot) (domain.CatalogSnapshot, error) {
		if err := s.gate.CheckAddProduct(len(cur.Products), s.subs.Snapshot()); err != nil {
			return cur, err
		}
		now := s.now().UTC()
		cur.Products = append(cur.Products, domain.SellerProduct{
			ID:          uuid.NewString(),
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Stock:       input.Stock,
			Category:    input.Category,
			ImageURL:    input.ImageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return cur, nil
	})
}

// UpdateProduct shallow-merges the patch into the product. Not limit-gated;
// editing never increases the count.
func (s *SellerCatalog) UpdateProduct(ctx context.Context, id string, patch domain.SellerProductPatch) (domain.CatalogSnapshot, error) {
	return s.core.mutate(ctx, func(cur domain.CatalogSnapshot) (domain.CatalogSnapshot, error) {
		for i := range cur.Products {
			if cur.Products[i].ID != id {
				continue
			}
			applyProductPatch(&cur.Products[i], patch)
			cur.Products[i].UpdatedAt = s.now().UTC()
			return cur, nil
		}
		return cur, fmt.Errorf("%w: product %q", domain.ErrNotFound, id)
	})
}

func applyProductPatch(p *domain.SellerProduct, patch domain.SellerProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
}

// DeleteProduct removes the product. Absent ids are a no-op; removal can
// bring an over-limit catalog back under its plan limit.
func (s *SellerCatalog) DeleteProduct(ctx context.Context, id string) (domain.CatalogSnapshot, error) {
	return s.core.mutate(ctx, func(cur domain.CatalogSnapshot) (domain.CatalogSnapshot, error) {
		for i := range cur.Products {
			if cur.Products[i].ID == id {
				cur.Products = append(cur.Products[:i], cur.Products[i+1:]...)
				return cur, nil
			}
		}
		return cur, errNoop
	})
}

// UpdateOrderStatus moves an order along the fixed forward-only sequence
// pending -> processing -> shipped -> delivered, with cancelled reachable
// only from pending or processing. Illegal edges fail with
// ErrInvalidTransition and leave state unchanged.
func (s *SellerCatalog) UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.CatalogSnapshot, error) {
	return s.core.mutate(ctx, func(cur domain.CatalogSnapshot) (domain.CatalogSnapshot, error) {
		for i := range cur.Orders {
			if cur.Orders[i].ID != orderID {
				continue
			}
			if !domain.CanTransition(cur.Orders[i].Status, next) {
				return cur, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, cur.Orders[i].Status, next)
			}
			cur.Orders[i].Status = next
			cur.Orders[i].UpdatedAt = s.now().UTC()
			return cur, nil
		}
		return cur, fmt.Errorf("%w: order %q", domain.ErrNotFound, orderID)
	})
}

// SyncOrders replaces the order sequence with the marketplace's view of it.
// A remote failure surfaces as a RemoteError and leaves state unchanged;
// without a remote client this is a no-op.
func (s *SellerCatalog) SyncOrders(ctx context.Context) (domain.CatalogSnapshot, error) {
	if s.remote == nil {
		return s.Snapshot(), nil
	}
	return s.core.mutate(ctx, func(cur domain.CatalogSnapshot) (domain.CatalogSnapshot, error) {
		raw, err := s.remote.Fetch(ctx, "seller/orders", nil)
		if err != nil {
			return cur, err
		}
		var orders []domain.Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			return cur, &remote.RemoteError{Resource: "seller/orders", Err: err}
		}
		cur.Orders = orders
		return cur, nil
	})
}

// Clear empties the catalog and removes the persisted key.
func (s *SellerCatalog) Clear(ctx context.Context) (domain.CatalogSnapshot, error) {
	return s.core.clear(ctx, domain.EmptyCatalog())
}

// Reset implements the session reset contract.
func (s *SellerCatalog) Reset(ctx context.Context) error {
	_, err := s.Clear(ctx)
	return err
}

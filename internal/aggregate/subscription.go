package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/remote"
	"marketplace-state-service/internal/repository"
	"marketplace-state-service/internal/store"
)

// Subscription owns the seller subscription document and its state machine:
// none -> active -> none. The immutable plan catalog lives in the domain
// package; the aggregate only records which plan is active and when.
type Subscription struct {
	core   *core[domain.SubscriptionSnapshot]
	remote remote.Client
	now    func() time.Time
}

// NewSubscription creates the subscription aggregate. remoteClient may be
// nil; when present, Subscribe and Cancel notify the marketplace before the
// local document is persisted.
func NewSubscription(kv store.KVStore, remoteClient remote.Client, logger *zap.Logger) *Subscription {
	repo := repository.New[domain.SubscriptionSnapshot](kv, logger)
	return &Subscription{
		core:   newCore(store.KeySubscription, repo, logger, domain.SubscriptionSnapshot.Clone),
		remote: remoteClient,
		now:    time.Now,
	}
}

// Load pulls the persisted subscription into memory. Call once at startup.
func (s *Subscription) Load(ctx context.Context) error {
	return s.core.load(ctx, domain.EmptySubscription())
}

// Ready reports whether the initial load completed.
func (s *Subscription) Ready() bool { return s.core.isReady() }

// Snapshot returns a copy of the current subscription.
func (s *Subscription) Snapshot() domain.SubscriptionSnapshot { return s.core.current() }

// Subscribe registers a callback invoked with every committed snapshot.
func (s *Subscription) Subscribe(fn Subscriber[domain.SubscriptionSnapshot]) { s.core.subscribe(fn) }

// Activate starts a subscription on the given plan. Valid only from none;
// an unknown plan id fails without touching state.
func (s *Subscription) Activate(ctx context.Context, planID string) (domain.SubscriptionSnapshot, error) {
	plan, ok := domain.PlanByID(planID)
	if !ok {
		return s.Snapshot(), fmt.Errorf("%w: %q", domain.ErrUnknownPlan, planID)
	}
	return s.core.mutate(ctx, func(cur domain.SubscriptionSnapshot) (domain.SubscriptionSnapshot, error) {
		if cur.Status == domain.StatusActive {
			return cur, domain.ErrAlreadyActive
		}
		if s.remote != nil {
			if _, err := s.remote.Mutate(ctx, "subscriptions", map[string]string{"plan_id": planID}); err != nil {
				return cur, err
			}
		}
		start := s.now().UTC()
		end := start.AddDate(0, 0, plan.DurationDays)
		return domain.SubscriptionSnapshot{
			PlanID:    plan.ID,
			Status:    domain.StatusActive,
			StartDate: &start,
			EndDate:   &end,
		}, nil
	})
}

// Cancel ends the active subscription and returns the aggregate to none.
// Past orders are unaffected; a catalog already over its old limit stays
// valid at rest.
func (s *Subscription) Cancel(ctx context.Context) (domain.SubscriptionSnapshot, error) {
	return s.core.mutate(ctx, func(cur domain.SubscriptionSnapshot) (domain.SubscriptionSnapshot, error) {
		if cur.Status != domain.StatusActive {
			return cur, domain.ErrNotSubscribed
		}
		if s.remote != nil {
			if _, err := s.remote.Mutate(ctx, "subscriptions/cancel", map[string]string{"plan_id": cur.PlanID}); err != nil {
				return cur, err
			}
		}
		return domain.EmptySubscription(), nil
	})
}

// CurrentLimit returns the active plan's product limit. ok is false when
// there is no seller access.
func (s *Subscription) CurrentLimit() (int, bool) {
	plan, ok := s.Snapshot().Plan()
	if !ok {
		return 0, false
	}
	return plan.ProductLimit, true
}

// Plans returns the immutable reference catalog.
func (s *Subscription) Plans() []domain.Plan { return domain.PlanCatalog() }

// Clear removes the persisted key and resets to none.
func (s *Subscription) Clear(ctx context.Context) (domain.SubscriptionSnapshot, error) {
	return s.core.clear(ctx, domain.EmptySubscription())
}

// Reset implements the session reset contract.
func (s *Subscription) Reset(ctx context.Context) error {
	_, err := s.Clear(ctx)
	return err
}

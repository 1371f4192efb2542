package domain

import "time"

// SubscriptionStatus is the lifecycle state of the seller subscription.
// Cancel returns the aggregate to StatusNone; StatusCancelled only appears
// transiently in remote responses and is normalized to none on this side.
type SubscriptionStatus string

const (
	StatusNone      SubscriptionStatus = "none"
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// Plan is an immutable reference record describing a subscription tier.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	ProductLimit int      `json:"product_limit"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features"`
}

// Reference catalog of available plans. Not persisted; compiled in.
var plans = []Plan{
	{
		ID:           "basic",
		Name:         "Basic Seller",
		Price:        9.99,
		ProductLimit: 50,
		DurationDays: 30,
		Features:     []string{"seller dashboard", "up to 50 products"},
	},
	{
		ID:           "premium",
		Name:         "Premium Seller",
		Price:        29.99,
		ProductLimit: 500,
		DurationDays: 30,
		Features:     []string{"seller dashboard", "up to 500 products", "priority support", "sales analytics"},
	},
}

// PlanCatalog returns a copy of the reference plan catalog.
func PlanCatalog() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan in the reference catalog.
func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// SubscriptionSnapshot is the persisted subscription document.
type SubscriptionSnapshot struct {
	PlanID    string             `json:"plan_id,omitempty"`
	Status    SubscriptionStatus `json:"status"`
	StartDate *time.Time         `json:"start_date,omitempty"`
	EndDate   *time.Time         `json:"end_date,omitempty"`
}

// EmptySubscription returns the default document used when the persisted key
// is absent.
func EmptySubscription() SubscriptionSnapshot {
	return SubscriptionSnapshot{Status: StatusNone}
}

// Plan resolves the active plan from the reference catalog. ok is false when
// the subscription is not active or the plan id is unknown.
func (s SubscriptionSnapshot) Plan() (Plan, bool) {
	if s.Status != StatusActive {
		return Plan{}, false
	}
	return PlanByID(s.PlanID)
}

// Clone returns an independent copy safe to hand to subscribers.
func (s SubscriptionSnapshot) Clone() SubscriptionSnapshot {
	out := s
	if s.StartDate != nil {
		t := *s.StartDate
		out.StartDate = &t
	}
	if s.EndDate != nil {
		t := *s.EndDate
		out.EndDate = &t
	}
	return out
}

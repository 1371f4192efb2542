package aggregate

import (
	"marketplace-state-service/internal/domain"
)

// SubscriptionReader is the read-only view of the subscription aggregate the
// catalog consults at command time. The catalog never writes through it; the
// snapshot read is not a joint transaction, so a plan cancellation racing a
// product add may admit one product over the limit (accepted as eventual
// consistency).
type SubscriptionReader interface {
	Snapshot() domain.SubscriptionSnapshot
}

// AuthorizationGate decides whether a catalog-mutating command is permitted
// given the subscription snapshot captured at command start. It is pure:
// both inputs arrive as values, nothing is read or written elsewhere.
type AuthorizationGate struct{}

// NewAuthorizationGate creates the gate.
func NewAuthorizationGate() *AuthorizationGate { return &AuthorizationGate{} }

// CheckAddProduct permits an addition when an active plan exists and the
// catalog is below its product limit. Editing and deleting are never gated;
// they cannot increase the count.
func (g *AuthorizationGate) CheckAddProduct(catalogSize int, sub domain.SubscriptionSnapshot) error {
	plan, ok := sub.Plan()
	if !ok {
		return domain.NewAuthorizationError(domain.ErrSubscriptionRequired)
	}
	if catalogSize >= plan.ProductLimit {
		return domain.NewAuthorizationError(domain.ErrLimitExceeded)
	}
	return nil
}

package domain

import "errors"

// Predefined errors returned by aggregate commands. Callers distinguish
// failure kinds with errors.Is; commands never panic across the boundary.
var (
	ErrValidation        = errors.New("domain: invalid command input")
	ErrNotFound          = errors.New("domain: not found")
	ErrAlreadyExists     = errors.New("domain: already exists")
	ErrInvalidTransition = errors.New("domain: invalid status transition")
	ErrUnknownPlan       = errors.New("domain: unknown subscription plan")
	ErrAlreadyActive     = errors.New("domain: subscription already active")
	ErrNotSubscribed     = errors.New("domain: no active subscription")

	// Authorization failures raised by the catalog gate. Both wrap
	// ErrAuthorization so callers can match the class or the specific cause.
	ErrAuthorization        = errors.New("domain: not authorized")
	ErrSubscriptionRequired = errors.New("domain: active subscription required")
	ErrLimitExceeded        = errors.New("domain: product limit exceeded for current plan")
)

// AuthorizationCause ties the specific gate failures to the general class.
// errors.Is(err, ErrAuthorization) holds for both.
type authorizationError struct{ cause error }

func (e *authorizationError) Error() string { return e.cause.Error() }

func (e *authorizationError) Is(target error) bool {
	return target == ErrAuthorization || errors.Is(e.cause, target)
}

func (e *authorizationError) Unwrap() error { return e.cause }

// NewAuthorizationError wraps one of the gate sentinels so it also matches
// ErrAuthorization.
func NewAuthorizationError(cause error) error {
	return &authorizationError{cause: cause}
}

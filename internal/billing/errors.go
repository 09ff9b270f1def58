package billing

import "errors"

var (
	// ErrMissingPrice is returned when checkout is requested without a price
	// and no default price is configured.
	ErrMissingPrice = errors.New("price ID is required")

	// ErrProviderUnavailable wraps Stripe failures while creating customers.
	ErrProviderUnavailable = errors.New("billing provider unavailable")

	// ErrCheckoutFailed wraps Stripe failures while creating checkout sessions.
	ErrCheckoutFailed = errors.New("failed to create checkout session")

	// ErrInconsistentState means a provider-side object was created but the
	// local link could not be persisted. The caller must not blindly retry
	// creation: every retry would orphan another provider customer.
	ErrInconsistentState = errors.New("provider state diverged from local records")

	// ErrInvalidSignature means webhook authentication failed. The event is
	// rejected permanently; redelivery with the same signature will not help.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrNoActiveSubscription is the expected-absence result for cancel
	// requests from users without an active subscription.
	ErrNoActiveSubscription = errors.New("no active subscription")
)

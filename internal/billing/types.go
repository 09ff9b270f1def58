package billing

import "time"

// CheckoutSession is the provider-hosted payment page handed back to the
// client for redirection.
type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// ProviderSubscription is the normalized shape of a Stripe subscription as
// returned by the provider client. The webhook processor maps it onto the
// persisted Subscription model.
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	Status             string
	PriceID            string
	Quantity           int64
	CancelAtPeriodEnd  bool
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
	StartedAt          time.Time
	EndedAt            *time.Time
}

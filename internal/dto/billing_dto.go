package dto

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	PriceID   string `json:"price_id"`
	ReturnURL string `json:"return_url"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type SubscriptionResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Status             string     `json:"status"`
	PriceID            string     `json:"price_id"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
}

// AdminSubscriptionRequest inserts or overwrites a subscription record
// directly, bypassing Stripe. Used for support tooling and manual fixes.
type AdminSubscriptionRequest struct {
	UserID               uuid.UUID `json:"user_id"`
	StripeCustomerID     string    `json:"stripe_customer_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	Status               string    `json:"status"`
	PriceID              string    `json:"price_id"`
	CurrentPeriodStart   time.Time `json:"current_period_start"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
}

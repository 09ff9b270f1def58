package models

import (
	"time"

	"github.com/google/uuid"
)

// Stripe subscription statuses persisted locally. Only StatusActive entitles
// a user to the pro tier.
const (
	StatusActive            = "active"
	StatusTrialing          = "trialing"
	StatusCanceled          = "canceled"
	StatusIncomplete        = "incomplete"
	StatusIncompleteExpired = "incomplete_expired"
	StatusPastDue           = "past_due"
	StatusUnpaid            = "unpaid"
)

// ValidStatus reports whether s is one of the persisted status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusTrialing, StatusCanceled, StatusIncomplete,
		StatusIncompleteExpired, StatusPastDue, StatusUnpaid:
		return true
	}
	return false
}

// Subscription mirrors the last-known state of a Stripe subscription.
// StripeSubscriptionID is the natural key for webhook-driven upserts; rows
// are never deleted, cancellation is a status change plus an end timestamp.
type Subscription struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	StripeCustomerID     string     `gorm:"size:255;not null;index" json:"stripe_customer_id"`
	StripeSubscriptionID string     `gorm:"size:255;not null;uniqueIndex" json:"stripe_subscription_id"`
	Status               string     `gorm:"size:50;not null" json:"status"`
	PriceID              string     `gorm:"size:255" json:"price_id"`
	Quantity             int64      `gorm:"default:1" json:"quantity"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CurrentPeriodStart   time.Time  `json:"current_period_start"`
	CurrentPeriodEnd     time.Time  `json:"current_period_end"`
	CancelAt             *time.Time `json:"cancel_at"`
	CanceledAt           *time.Time `json:"canceled_at"`
	TrialStart           *time.Time `json:"trial_start"`
	TrialEnd             *time.Time `json:"trial_end"`
	StartedAt            time.Time  `json:"started_at"`
	EndedAt              *time.Time `json:"ended_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	User                 User       `gorm:"foreignKey:UserID" json:"-"`
}

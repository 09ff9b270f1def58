package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer binds a local user to a Stripe customer object. Created lazily on
// first checkout, never updated, never deleted.
type Customer struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StripeCustomerID string    `gorm:"size:255;not null;uniqueIndex" json:"stripe_customer_id"`
	CreatedAt        time.Time `json:"created_at"`
	User             User      `gorm:"foreignKey:UserID" json:"-"`
}

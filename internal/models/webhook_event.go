package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookEvent records every verified Stripe event once. The unique index on
// StripeEventID is what makes at-least-once delivery safe: redelivered events
// hit the conflict and are acked without reprocessing.
type WebhookEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StripeEventID   string         `gorm:"size:255;not null;uniqueIndex" json:"stripe_event_id"`
	Type            string         `gorm:"size:100;not null;index" json:"type"`
	Payload         datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	ProcessedAt     *time.Time     `json:"processed_at"`
	ProcessingError string         `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time      `json:"created_at"`
}

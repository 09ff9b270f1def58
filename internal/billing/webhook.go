package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/todoplus/todoplus-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProcessEvent verifies and applies one Stripe webhook delivery.
//
// Signature verification runs over the exact raw bytes before anything is
// parsed or written; a bad signature returns ErrInvalidSignature and leaves
// the store untouched. Verified events are recorded once by event ID, so
// redeliveries of an already-processed event ack as no-ops, while
// redeliveries of a previously failed event are reprocessed. The upsert
// semantics below make that safe.
func (s *Service) ProcessEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.WebhookEvent{
		ID:            uuid.New(),
		StripeEventID: event.ID,
		Type:          string(event.Type),
		Payload:       datatypes.JSON(payload),
	})
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		slog.Info("duplicate webhook event ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}

	procErr := s.handleEvent(ctx, &event)
	if markErr := s.repo.MarkWebhookProcessed(event.ID, procErr); markErr != nil {
		slog.Error("failed to mark webhook event processed", "event_id", event.ID, "error", markErr)
	}
	if procErr != nil {
		return fmt.Errorf("handle %s: %w", event.Type, procErr)
	}

	slog.Info("webhook event processed", "event_id", event.ID, "type", event.Type)
	return nil
}

func (s *Service) handleEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return s.handleCheckoutCompleted(ctx, &sess)
	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.handleSubscriptionUpdated(&sub)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.handleSubscriptionDeleted(&sub)
	default:
		slog.Info("webhook event ignored", "event_id", event.ID, "type", event.Type)
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	// One-time-payment sessions carry no subscription state.
	if sess.Mode != stripe.CheckoutSessionModeSubscription || sess.Customer == nil || sess.Subscription == nil {
		return nil
	}

	userID, ok, err := s.lookupUser(sess.Customer.ID)
	if err != nil {
		return err
	}
	if !ok {
		// Redelivery would not fix a missing customer mapping; ack as no-op.
		slog.Warn("checkout completed for unknown customer", "stripe_customer_id", sess.Customer.ID)
		return nil
	}

	// The session alone lacks period boundaries, trial data and cancellation
	// flags; fetch the full subscription before persisting.
	psub, err := s.client.GetSubscription(ctx, sess.Subscription.ID)
	if err != nil {
		return fmt.Errorf("retrieve subscription %s: %w", sess.Subscription.ID, err)
	}

	return s.repo.UpsertSubscription(subscriptionRecord(userID, sess.Customer.ID, psub))
}

func (s *Service) handleSubscriptionUpdated(sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return errors.New("subscription event missing customer")
	}

	userID, ok, err := s.lookupUser(sub.Customer.ID)
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("subscription update for unknown customer",
			"stripe_customer_id", sub.Customer.ID,
			"stripe_subscription_id", sub.ID)
		return nil
	}

	// Upsert rather than update: an update event may arrive before the
	// checkout.session.completed that would have inserted the row.
	return s.repo.UpsertSubscription(subscriptionRecord(userID, sub.Customer.ID, normalizeSubscription(sub)))
}

func (s *Service) handleSubscriptionDeleted(sub *stripe.Subscription) error {
	status := string(sub.Status)
	if status == "" {
		status = models.StatusCanceled
	}

	endedAt := time.Now().UTC()
	if sub.EndedAt != 0 {
		endedAt = time.Unix(sub.EndedAt, 0).UTC()
	}

	// Cancellation is a status change plus an end timestamp; the row stays.
	return s.repo.MarkSubscriptionEnded(sub.ID, status, endedAt)
}

func (s *Service) lookupUser(stripeCustomerID string) (uuid.UUID, bool, error) {
	customer, err := s.repo.GetCustomerByStripeID(stripeCustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("customer lookup: %w", err)
	}
	return customer.UserID, true, nil
}

func subscriptionRecord(userID uuid.UUID, stripeCustomerID string, p *ProviderSubscription) *models.Subscription {
	if !models.ValidStatus(p.Status) {
		slog.Warn("unexpected subscription status from provider",
			"stripe_subscription_id", p.ID, "status", p.Status)
	}

	return &models.Subscription{
		ID:                   uuid.New(),
		UserID:               userID,
		StripeCustomerID:     stripeCustomerID,
		StripeSubscriptionID: p.ID,
		Status:               p.Status,
		PriceID:              p.PriceID,
		Quantity:             p.Quantity,
		CancelAtPeriodEnd:    p.CancelAtPeriodEnd,
		CurrentPeriodStart:   p.CurrentPeriodStart,
		CurrentPeriodEnd:     p.CurrentPeriodEnd,
		CancelAt:             p.CancelAt,
		CanceledAt:           p.CanceledAt,
		TrialStart:           p.TrialStart,
		TrialEnd:             p.TrialEnd,
		StartedAt:            p.StartedAt,
		EndedAt:              p.EndedAt,
	}
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/todoplus/todoplus-backend/internal/models"
	"gorm.io/gorm"
)

// Config carries the billing settings the service needs. The webhook secret
// authenticates inbound events; the default price and checkout origin back
// checkout requests that omit them.
type Config struct {
	WebhookSecret  string
	DefaultPriceID string
	CheckoutOrigin string
}

// Service synchronizes Stripe customer/subscription state with local records.
// Both collaborators are injected so tests can substitute fakes.
type Service struct {
	repo   Repository
	client ProviderClient
	cfg    Config
}

func NewService(repo Repository, client ProviderClient, cfg Config) *Service {
	return &Service{repo: repo, client: client, cfg: cfg}
}

// ResolveCustomer returns the Stripe customer ID bound to userID, creating
// the provider-side object and the local binding on first use. The lookup
// always runs before creation so retries after a partial failure never orphan
// additional provider customers.
func (s *Service) ResolveCustomer(ctx context.Context, userID uuid.UUID, emailHint string) (string, error) {
	existing, err := s.repo.GetCustomerByUserID(userID)
	if err == nil {
		return existing.StripeCustomerID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("customer lookup: %w", err)
	}

	stripeCustomerID, err := s.client.CreateCustomer(ctx, emailHint, "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	record := &models.Customer{
		ID:               uuid.New(),
		UserID:           userID,
		StripeCustomerID: stripeCustomerID,
	}
	if err := s.repo.CreateCustomer(record); err != nil {
		// The Stripe customer exists but is unlinked locally. Surface loudly;
		// blind retries would create more orphaned provider customers.
		slog.Error("stripe customer created but local binding failed",
			"user_id", userID.String(),
			"stripe_customer_id", stripeCustomerID,
			"error", err)
		return "", fmt.Errorf("%w: stripe customer %s is unlinked: %v", ErrInconsistentState, stripeCustomerID, err)
	}

	return stripeCustomerID, nil
}

// CreateCheckout resolves the user's Stripe customer and opens a
// subscription-mode checkout session. No local subscription state is written
// here: session creation does not guarantee payment, so records are only
// created later by the webhook path.
func (s *Service) CreateCheckout(ctx context.Context, userID uuid.UUID, emailHint, priceID, returnURL string) (*CheckoutSession, error) {
	if priceID == "" {
		priceID = s.cfg.DefaultPriceID
	}
	if priceID == "" {
		return nil, ErrMissingPrice
	}

	base := returnURL
	if base == "" {
		base = s.cfg.CheckoutOrigin
	}

	customerID, err := s.ResolveCustomer(ctx, userID, emailHint)
	if err != nil {
		return nil, err
	}

	successURL, cancelURL := callbackURLs(base)
	sess, err := s.client.CreateCheckoutSession(ctx, customerID, priceID, successURL, cancelURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	slog.Info("checkout session created",
		"user_id", userID.String(),
		"stripe_customer_id", customerID,
		"session_id", sess.ID)
	return sess, nil
}

// CancelSubscription cancels the user's active subscription provider-side.
// Local state is not touched here; it converges when Stripe delivers the
// customer.subscription.deleted event.
func (s *Service) CancelSubscription(ctx context.Context, userID uuid.UUID) error {
	sub, err := s.repo.GetActiveSubscription(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveSubscription
		}
		return fmt.Errorf("subscription lookup: %w", err)
	}

	if err := s.client.CancelSubscription(ctx, sub.StripeSubscriptionID); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

// callbackURLs derives the success and cancel redirect targets by appending
// the fixed query markers the frontend watches for.
func callbackURLs(base string) (successURL, cancelURL string) {
	return base + "?success=true", base + "?canceled=true"
}

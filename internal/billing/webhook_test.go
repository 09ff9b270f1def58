package billing

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/todoplus/todoplus-backend/internal/models"
)

const testWebhookSecret = "whsec_test"

func signHeader(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func checkoutCompletedPayload(eventID, mode, customerID, subscriptionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"mode": %q,
				"customer": %q,
				"subscription": %q
			}
		}
	}`, eventID, mode, customerID, subscriptionID))
}

func subscriptionEventPayload(eventID, eventType, subscriptionID, customerID, status string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"object": "subscription",
				"customer": %q,
				"status": %q,
				"cancel_at_period_end": false,
				"current_period_start": 1700000000,
				"current_period_end": 1702592000,
				"created": 1700000000,
				"ended_at": 1701000000,
				"items": {
					"object": "list",
					"data": [
						{
							"id": "si_1",
							"object": "subscription_item",
							"price": {"id": "price_pro", "object": "price"},
							"quantity": 1
						}
					]
				}
			}
		}
	}`, eventID, eventType, subscriptionID, customerID, status))
}

func linkCustomer(repo *fakeRepository, stripeCustomerID string) uuid.UUID {
	userID := uuid.New()
	repo.customers = append(repo.customers, &models.Customer{
		ID:               uuid.New(),
		UserID:           userID,
		StripeCustomerID: stripeCustomerID,
	})
	return userID
}

func TestProcessEvent_RejectsBadSignature(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, newFakeProvider())

	payload := checkoutCompletedPayload("evt_1", "subscription", "cus_1", "sub_1")
	err := svc.ProcessEvent(context.Background(), payload, signHeader(payload, "whsec_wrong"))
	require.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, repo.events, "unverified events must never be stored")
}

func TestProcessEvent_CheckoutCompleted(t *testing.T) {
	repo := newFakeRepository()
	provider := newFakeProvider()
	svc := newTestService(repo, provider)
	userID := linkCustomer(repo, "cus_1")

	provider.subs["sub_1"] = &ProviderSubscription{
		ID:                 "sub_1",
		CustomerID:         "cus_1",
		Status:             models.StatusActive,
		PriceID:            "price_pro",
		Quantity:           1,
		CurrentPeriodStart: time.Unix(1700000000, 0),
		CurrentPeriodEnd:   time.Unix(1702592000, 0),
		StartedAt:          time.Unix(1700000000, 0),
	}

	payload := checkoutCompletedPayload("evt_1", "subscription", "cus_1", "sub_1")
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, signHeader(payload, testWebhookSecret)))

	sub, ok := repo.subs["sub_1"]
	require.True(t, ok, "subscription row must be inserted")
	assert.Equal(t, userID, sub.UserID)
	assert.Equal(t, "cus_1", sub.StripeCustomerID)
	assert.Equal(t, "price_pro", sub.PriceID)
	assert.True(t, svc.IsActive(userID))

	event := repo.events["evt_1"]
	require.NotNil(t, event)
	assert.NotNil(t, event.ProcessedAt)
	assert.Empty(t, event.ProcessingError)
}

func TestProcessEvent_ReplayIsNoOp(t *testing.T) {
	repo := newFakeRepository()
	provider := newFakeProvider()
	svc := newTestService(repo, provider)
	linkCustomer(repo, "cus_1")
	provider.subs["sub_1"] = &ProviderSubscription{ID: "sub_1", Status: models.StatusActive}

	payload := checkoutCompletedPayload("evt_1", "subscription", "cus_1", "sub_1")
	header := signHeader(payload, testWebhookSecret)
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, header))
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, header))

	assert.Equal(t, 1, provider.getSubCalls, "replayed event must not hit the provider again")
	assert.Len(t, repo.subs, 1)
}

func TestProcessEvent_FailedEventRetriedOnRedelivery(t *testing.T) {
	repo := newFakeRepository()
	provider := newFakeProvider()
	svc := newTestService(repo, provider)
	linkCustomer(repo, "cus_1")

	payload := checkoutCompletedPayload("evt_1", "subscription", "cus_1", "sub_1")
	header := signHeader(payload, testWebhookSecret)

	provider.getSubErr = errors.New("stripe: 500")
	require.Error(t, svc.ProcessEvent(context.Background(), payload, header))
	require.NotEmpty(t, repo.events["evt_1"].ProcessingError)

	provider.getSubErr = nil
	provider.subs["sub_1"] = &ProviderSubscription{ID: "sub_1", Status: models.StatusActive}
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, header))
	assert.Len(t, repo.subs, 1)
	assert.Empty(t, repo.events["evt_1"].ProcessingError)
}

func TestProcessEvent_CheckoutUnknownCustomerAcked(t *testing.T) {
	repo := newFakeRepository()
	provider := newFakeProvider()
	svc := newTestService(repo, provider)

	payload := checkoutCompletedPayload("evt_1", "subscription", "cus_unknown", "sub_1")
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, signHeader(payload, testWebhookSecret)))
	assert.Empty(t, repo.subs)
	assert.Equal(t, 0, provider.getSubCalls)
}

func TestProcessEvent_CheckoutPaymentModeIgnored(t *testing.T) {
	repo := newFakeRepository()
	provider := newFakeProvider()
	svc := newTestService(repo, provider)
	linkCustomer(repo, "cus_1")

	payload := checkoutCompletedPayload("evt_1", "payment", "cus_1", "sub_1")
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, signHeader(payload, testWebhookSecret)))
	assert.Empty(t, repo.subs)
}

func TestProcessEvent_UpdateBeforeCreateInserts(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, newFakeProvider())
	userID := linkCustomer(repo, "cus_1")

	// The update event arrives before any checkout completion was seen.
	payload := subscriptionEventPayload("evt_1", "customer.subscription.updated", "sub_1", "cus_1", "active")
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, signHeader(payload, testWebhookSecret)))

	sub, ok := repo.subs["sub_1"]
	require.True(t, ok)
	assert.Equal(t, userID, sub.UserID)
	assert.Equal(t, models.StatusActive, sub.Status)
	assert.Equal(t, "price_pro", sub.PriceID)
}

func TestProcessEvent_PastDueRevokesEntitlement(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, newFakeProvider())
	userID := linkCustomer(repo, "cus_1")

	active := subscriptionEventPayload("evt_1", "customer.subscription.updated", "sub_1", "cus_1", "active")
	require.NoError(t, svc.ProcessEvent(context.Background(), active, signHeader(active, testWebhookSecret)))
	require.True(t, svc.IsActive(userID))

	pastDue := subscriptionEventPayload("evt_2", "customer.subscription.updated", "sub_1", "cus_1", "past_due")
	require.NoError(t, svc.ProcessEvent(context.Background(), pastDue, signHeader(pastDue, testWebhookSecret)))
	assert.False(t, svc.IsActive(userID))
	assert.Len(t, repo.subs, 1, "status change must overwrite, not duplicate")
}

func TestProcessEvent_SubscriptionDeleted(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, newFakeProvider())
	userID := linkCustomer(repo, "cus_1")

	active := subscriptionEventPayload("evt_1", "customer.subscription.updated", "sub_1", "cus_1", "active")
	require.NoError(t, svc.ProcessEvent(context.Background(), active, signHeader(active, testWebhookSecret)))

	deleted := subscriptionEventPayload("evt_2", "customer.subscription.deleted", "sub_1", "cus_1", "canceled")
	require.NoError(t, svc.ProcessEvent(context.Background(), deleted, signHeader(deleted, testWebhookSecret)))

	sub := repo.subs["sub_1"]
	assert.Equal(t, models.StatusCanceled, sub.Status)
	require.NotNil(t, sub.EndedAt)
	assert.Equal(t, int64(1701000000), sub.EndedAt.Unix())
	assert.False(t, svc.IsActive(userID))
}

func TestProcessEvent_UnknownTypeAcked(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, newFakeProvider())

	payload := []byte(`{"id": "evt_1", "type": "invoice.paid", "data": {"object": {"id": "in_1"}}}`)
	require.NoError(t, svc.ProcessEvent(context.Background(), payload, signHeader(payload, testWebhookSecret)))

	event := repo.events["evt_1"]
	require.NotNil(t, event, "unhandled events are still recorded")
	assert.NotNil(t, event.ProcessedAt)
}

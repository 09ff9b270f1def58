package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/todoplus/todoplus-backend/internal/models"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository for exercising the service and
// webhook paths without a database.
type fakeRepository struct {
	customers []*models.Customer
	subs      map[string]*models.Subscription
	events    map[string]*models.WebhookEvent

	createCustomerErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		subs:   make(map[string]*models.Subscription),
		events: make(map[string]*models.WebhookEvent),
	}
}

func (r *fakeRepository) GetCustomerByUserID(userID uuid.UUID) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetCustomerByStripeID(stripeCustomerID string) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.StripeCustomerID == stripeCustomerID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateCustomer(customer *models.Customer) error {
	if r.createCustomerErr != nil {
		return r.createCustomerErr
	}
	r.customers = append(r.customers, customer)
	return nil
}

func (r *fakeRepository) UpsertSubscription(sub *models.Subscription) error {
	if existing, ok := r.subs[sub.StripeSubscriptionID]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.CreatedAt = time.Now()
	}
	r.subs[sub.StripeSubscriptionID] = sub
	return nil
}

func (r *fakeRepository) MarkSubscriptionEnded(stripeSubscriptionID, status string, endedAt time.Time) error {
	if sub, ok := r.subs[stripeSubscriptionID]; ok {
		sub.Status = status
		sub.EndedAt = &endedAt
	}
	return nil
}

func (r *fakeRepository) GetActiveSubscription(userID uuid.UUID) (*models.Subscription, error) {
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.Status == models.StatusActive {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if stored, ok := r.events[event.StripeEventID]; ok {
		return false, stored, nil
	}
	r.events[event.StripeEventID] = event
	return true, event, nil
}

func (r *fakeRepository) MarkWebhookProcessed(stripeEventID string, processingErr error) error {
	event, ok := r.events[stripeEventID]
	if !ok {
		return nil
	}
	now := time.Now()
	event.ProcessedAt = &now
	event.ProcessingError = ""
	if processingErr != nil {
		event.ProcessingError = processingErr.Error()
	}
	return nil
}

// fakeProvider is a canned ProviderClient that counts calls.
type fakeProvider struct {
	customerSeq int
	sessionSeq  int
	getSubCalls int
	canceled    []string

	subs map[string]*ProviderSubscription

	createCustomerErr error
	createSessionErr  error
	getSubErr         error
	cancelErr         error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{subs: make(map[string]*ProviderSubscription)}
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	if p.createCustomerErr != nil {
		return "", p.createCustomerErr
	}
	p.customerSeq++
	return fmt.Sprintf("cus_test%d", p.customerSeq), nil
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	if p.createSessionErr != nil {
		return nil, p.createSessionErr
	}
	p.sessionSeq++
	id := fmt.Sprintf("cs_test%d", p.sessionSeq)
	return &CheckoutSession{ID: id, URL: "https://checkout.stripe.com/pay/" + id}, nil
}

func (p *fakeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	p.getSubCalls++
	if p.getSubErr != nil {
		return nil, p.getSubErr
	}
	sub, ok := p.subs[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("no such subscription: %s", subscriptionID)
	}
	return sub, nil
}

func (p *fakeProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if p.cancelErr != nil {
		return p.cancelErr
	}
	p.canceled = append(p.canceled, subscriptionID)
	return nil
}

package billing

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ProviderClient is the outbound surface consumed from the billing provider.
// The webhook processor and checkout initiator depend on this interface so
// tests can substitute fakes without touching Stripe.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type stripeClient struct {
	api *client.API
}

// NewStripeClient creates a ProviderClient backed by the Stripe SDK. The key
// is scoped to this client rather than the package-global stripe.Key.
func NewStripeClient(secretKey string) ProviderClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeClient{api: api}
}

func (c *stripeClient) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if email != "" {
		params.Email = stripe.String(email)
	}
	if name != "" {
		params.Name = stripe.String(name)
	}

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeError(err)
	}
	return cust.ID, nil
}

func (c *stripeClient) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (c *stripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return normalizeSubscription(sub), nil
}

func (c *stripeClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := c.api.Subscriptions.Cancel(subscriptionID, params); err != nil {
		return wrapStripeError(err)
	}
	return nil
}

func normalizeSubscription(sub *stripe.Subscription) *ProviderSubscription {
	out := &ProviderSubscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		Quantity:           1,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAt:           unixOrNil(sub.CancelAt),
		CanceledAt:         unixOrNil(sub.CanceledAt),
		TrialStart:         unixOrNil(sub.TrialStart),
		TrialEnd:           unixOrNil(sub.TrialEnd),
		StartedAt:          time.Unix(sub.Created, 0).UTC(),
		EndedAt:            unixOrNil(sub.EndedAt),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
		if item.Quantity > 0 {
			out.Quantity = item.Quantity
		}
	}
	return out
}

func unixOrNil(v int64) *time.Time {
	if v == 0 {
		return nil
	}
	t := time.Unix(v, 0).UTC()
	return &t
}

// wrapStripeError preserves the provider's message for diagnostics while
// keeping the stripe type out of callers.
func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return errors.New(stripeErr.Msg)
	}
	return err
}

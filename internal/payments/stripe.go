package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	AppURL        string
	Currency      string
}

type Stripe struct {
	api           *client.API
	webhookSecret string
	appURL        string
	currency      string
}

func NewStripe(cfg StripeConfig) *Stripe {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "inr"
	}

	return &Stripe{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		appURL:        strings.TrimRight(cfg.AppURL, "/"),
		currency:      currency,
	}
}

// CreateCheckout opens a monthly subscription checkout priced from the tier policy.
func (s *Stripe) CreateCheckout(ctx context.Context, user *models.User, t models.Tier) (*CheckoutSession, error) {
	policy := tier.Lookup(t)
	userID := user.ID.String()

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(policy.Name + " Plan"),
						Description: stripe.String(strings.Join(policy.Features, ", ")),
					},
					UnitAmount: stripe.Int64(int64(policy.Price) * 100),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.appURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(s.appURL + "/subscription/cancel"),
		ClientReferenceID: stripe.String(userID),
	}
	params.Context = ctx
	params.AddMetadata("userId", userID)
	params.AddMetadata("tier", string(t))

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*TierChange, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	userID, err := uuid.Parse(session.Metadata["userId"])
	if err != nil {
		return nil, fmt.Errorf("checkout session %s has no valid userId: %w", session.ID, err)
	}
	t := models.Tier(session.Metadata["tier"])
	if !t.Valid() {
		return nil, fmt.Errorf("checkout session %s has unknown tier %q", session.ID, t)
	}

	change := &TierChange{UserID: userID, Tier: t}
	if session.Customer != nil {
		change.CustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		change.SubscriptionID = session.Subscription.ID
	}

	return change, nil
}

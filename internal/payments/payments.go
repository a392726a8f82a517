// Package payments creates subscription checkouts and turns provider
// webhooks into tier changes.
package payments

import (
	"context"
	"errors"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// TierChange is the outcome of a completed checkout.
type TierChange struct {
	UserID         uuid.UUID
	Tier           models.Tier
	CustomerID     string
	SubscriptionID string
}

type Provider interface {
	CreateCheckout(ctx context.Context, user *models.User, tier models.Tier) (*CheckoutSession, error)
	// ParseWebhook verifies a webhook payload. Events that do not change a
	// tier return a nil TierChange.
	ParseWebhook(payload []byte, signature string) (*TierChange, error)
}

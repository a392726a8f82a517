package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/config"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/payments"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
	"github.com/google/uuid"
)

type SubscriptionStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetTier(ctx context.Context, id uuid.UUID, tier models.Tier, customerID, subscriptionID string) (*models.User, error)
}

// RateLimits reports the request rate the HTTP limiter enforces per tier.
type RateLimits interface {
	RateLimitTier(name string) *config.RateLimiterTier
}

type SubscriptionService struct {
	repo     SubscriptionStore
	payments payments.Provider
	limits   RateLimits
}

// payments may be nil when no payment provider is configured.
func NewSubscriptionService(repo SubscriptionStore, provider payments.Provider) *SubscriptionService {
	return &SubscriptionService{repo: repo, payments: provider}
}

// WithRateLimits makes Tiers advertise the configured request rates.
func (s *SubscriptionService) WithRateLimits(limits RateLimits) *SubscriptionService {
	s.limits = limits
	return s
}

func (s *SubscriptionService) Tiers() map[string]tier.Policy {
	tiers := tier.All()
	if s.limits == nil {
		return tiers
	}

	for name, policy := range tiers {
		if limit := s.limits.RateLimitTier(name); limit != nil {
			policy.RequestsPerMinute = limit.RequestsPerMinute
			tiers[name] = policy
		}
	}
	return tiers
}

func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID uuid.UUID, t models.Tier) (*payments.CheckoutSession, error) {
	if s.payments == nil {
		return nil, fmt.Errorf("payments: %w", apperr.ErrServiceUnavailable)
	}
	if !t.Valid() {
		return nil, &apperr.ValidationError{Field: "tier", Reason: "is not a known tier"}
	}
	if t == models.TierFree {
		return nil, &apperr.ValidationError{Field: "tier", Reason: "cannot checkout for free tier"}
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}

	return s.payments.CreateCheckout(ctx, user, t)
}

// HandleWebhook verifies the payload and applies any tier change it carries.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.payments == nil {
		return fmt.Errorf("payments: %w", apperr.ErrServiceUnavailable)
	}

	change, err := s.payments.ParseWebhook(payload, signature)
	if errors.Is(err, payments.ErrInvalidSignature) {
		return &apperr.ValidationError{Field: "signature", Reason: "is invalid"}
	}
	if err != nil {
		return &apperr.ValidationError{Field: "payload", Reason: err.Error()}
	}
	if change == nil {
		return nil
	}

	if _, err := s.repo.SetTier(ctx, change.UserID, change.Tier, change.CustomerID, change.SubscriptionID); err != nil {
		return err
	}

	log.Printf("[subscription] user %s moved to %s tier", change.UserID, change.Tier)
	return nil
}

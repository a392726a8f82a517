// Package gateway meters AI tutoring requests against each user's daily
// token budget and forwards them to the completion provider.
package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/metrics"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/provider"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
	"github.com/google/uuid"
)

// Store is the persistence the gateway reads and writes.
type Store interface {
	tier.LedgerStore
	AddTokensUsed(ctx context.Context, id uuid.UUID, tokens int) error
	CreateDoubt(ctx context.Context, doubt *models.Doubt) error
	ResolveDoubt(ctx context.Context, id uuid.UUID, answer string, tokensUsed int) (*models.Doubt, error)
	CreateDerivation(ctx context.Context, derivation *models.Derivation) error
	ResolveDerivation(ctx context.Context, id uuid.UUID, steps string, tokensUsed int) (*models.Derivation, error)
}

type Gateway struct {
	store    Store
	provider provider.Provider
	gate     *tier.Gate
	recorder *UsageRecorder
	now      func() time.Time
}

// New builds a gateway. A nil provider means AI is not configured and every
// tutoring request fails with ErrServiceUnavailable. recorder may be nil.
func New(store Store, p provider.Provider, gate *tier.Gate, recorder *UsageRecorder) *Gateway {
	return &Gateway{
		store:    store,
		provider: p,
		gate:     gate,
		recorder: recorder,
		now:      time.Now,
	}
}

func (g *Gateway) Configured() bool {
	return g.provider != nil
}

func (g *Gateway) SubmitDoubt(ctx context.Context, userID uuid.UUID, req DoubtRequest) (*DoubtResult, error) {
	if !g.Configured() {
		return nil, apperr.ErrServiceUnavailable
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, budget, err := g.admit(ctx, userID)
	if err != nil {
		return nil, err
	}

	doubt := &models.Doubt{
		UserID:   user.ID,
		Subject:  req.Subject,
		Chapter:  req.Chapter,
		Topic:    req.Topic,
		Question: req.Question,
	}
	if err := g.store.CreateDoubt(ctx, doubt); err != nil {
		return nil, fmt.Errorf("create doubt: %w", err)
	}

	completion, err := g.complete(ctx, user, models.KindDoubt, provider.Request{
		Prompt:      doubtPrompt(user.SelectedClass, req),
		Temperature: doubtTemperature,
	})
	if err != nil {
		return nil, err
	}

	// Tokens are spent once the provider answers, even if the record update fails.
	if err := g.charge(ctx, user, completion.TokensConsumed); err != nil {
		return nil, err
	}

	resolved, err := g.store.ResolveDoubt(ctx, doubt.ID, completion.Text, completion.TokensConsumed)
	if err != nil {
		return nil, fmt.Errorf("resolve doubt: %w", err)
	}

	return &DoubtResult{
		Answer:          completion.Text,
		Doubt:           resolved,
		TokensRemaining: remainingAfter(budget.Remaining, completion.TokensConsumed),
	}, nil
}

func (g *Gateway) SubmitDerivation(ctx context.Context, userID uuid.UUID, req DerivationRequest) (*DerivationResult, error) {
	if !g.Configured() {
		return nil, apperr.ErrServiceUnavailable
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, budget, err := g.admit(ctx, userID)
	if err != nil {
		return nil, err
	}

	derivation := &models.Derivation{
		UserID:  user.ID,
		Subject: req.Subject,
		Chapter: req.Chapter,
		Formula: req.Formula,
	}
	if err := g.store.CreateDerivation(ctx, derivation); err != nil {
		return nil, fmt.Errorf("create derivation: %w", err)
	}

	completion, err := g.complete(ctx, user, models.KindDerivation, provider.Request{
		Prompt:      derivationPrompt(user.SelectedClass, req),
		Temperature: derivationTemperature,
	})
	if err != nil {
		return nil, err
	}

	// Tokens are spent once the provider answers, even if the record update fails.
	if err := g.charge(ctx, user, completion.TokensConsumed); err != nil {
		return nil, err
	}

	resolved, err := g.store.ResolveDerivation(ctx, derivation.ID, completion.Text, completion.TokensConsumed)
	if err != nil {
		return nil, fmt.Errorf("resolve derivation: %w", err)
	}

	return &DerivationResult{
		Steps:           completion.Text,
		Derivation:      resolved,
		TokensRemaining: remainingAfter(budget.Remaining, completion.TokensConsumed),
	}, nil
}

// ExplainWrongAnswer asks for a short explanation of why answer is wrong.
// It is not metered against the ledger and never fails the caller: nil is
// returned when AI is unavailable or the call does not succeed.
func (g *Gateway) ExplainWrongAnswer(ctx context.Context, user *models.User, quiz *models.Quiz, answer string) *string {
	if !g.Configured() || user == nil || quiz == nil {
		return nil
	}

	completion, err := g.complete(ctx, user, models.KindExplanation, provider.Request{
		Prompt:      explanationPrompt(user.SelectedClass, quiz, answer),
		Temperature: explanationTemperature,
		MaxTokens:   explanationMaxTokens,
	})
	if err != nil {
		log.Printf("[gateway] explanation for quiz %s failed: %v", quiz.ID, err)
		return nil
	}

	return &completion.Text
}

// admit resolves the user and applies the budget gate. Nothing is written
// when the request is refused.
func (g *Gateway) admit(ctx context.Context, userID uuid.UUID) (*models.User, tier.Budget, error) {
	user, err := g.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, tier.Budget{}, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, tier.Budget{}, fmt.Errorf("user %w", apperr.ErrNotFound)
	}

	budget, err := g.gate.Check(ctx, user.ID, user.SubscriptionTier)
	if err != nil {
		return nil, tier.Budget{}, err
	}

	if !tier.Permit(user.SubscriptionTier, budget) {
		metrics.QuotaRejections.WithLabelValues(user.SubscriptionTier.String()).Inc()
		return nil, budget, apperr.ErrQuotaExceeded
	}

	return user, budget, nil
}

// complete calls the provider with the tier's model and records metrics and
// a usage event for successful calls.
func (g *Gateway) complete(ctx context.Context, user *models.User, kind string, req provider.Request) (*provider.Completion, error) {
	req.Model = tier.ModelFor(user.SubscriptionTier)
	tierLabel := user.SubscriptionTier.String()

	start := g.now()
	completion, err := g.provider.Complete(ctx, req)
	latency := g.now().Sub(start)

	metrics.AILatency.WithLabelValues(kind, req.Model).Observe(latency.Seconds())

	if err != nil {
		metrics.AIRequests.WithLabelValues(kind, tierLabel, req.Model, "upstream_error").Inc()
		return nil, fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
	}
	if completion == nil || strings.TrimSpace(completion.Text) == "" {
		metrics.AIRequests.WithLabelValues(kind, tierLabel, req.Model, "empty").Inc()
		return nil, fmt.Errorf("%w: empty completion", apperr.ErrUpstream)
	}

	metrics.AIRequests.WithLabelValues(kind, tierLabel, req.Model, "ok").Inc()
	metrics.AITokens.WithLabelValues(kind, tierLabel, req.Model).Add(float64(completion.TokensConsumed))

	if g.recorder != nil {
		g.recorder.Record(models.UsageEvent{
			Timestamp: start,
			UserID:    user.ID,
			Tier:      user.SubscriptionTier,
			Model:     req.Model,
			Kind:      kind,
			Tokens:    completion.TokensConsumed,
			LatencyMs: int(latency.Milliseconds()),
			Metered:   kind != models.KindExplanation && user.SubscriptionTier != models.TierFree,
		})
	}

	return completion, nil
}

// charge adds consumed tokens to the ledger. Free tier usage is never counted.
func (g *Gateway) charge(ctx context.Context, user *models.User, tokens int) error {
	if user.SubscriptionTier == models.TierFree {
		return nil
	}

	if err := g.store.AddTokensUsed(ctx, user.ID, tokens); err != nil {
		return fmt.Errorf("record token usage: %w", err)
	}
	return nil
}

func remainingAfter(remaining, consumed int) int {
	if remaining == tier.Unlimited {
		return tier.Unlimited
	}

	left := remaining - consumed
	if left < 0 {
		return 0
	}
	return left
}

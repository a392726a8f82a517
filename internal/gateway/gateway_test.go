package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/provider"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu     sync.Mutex
	calls  []provider.Request
	text   string
	tokens int
	err    error
}

func (f *fakeProvider) Complete(ctx context.Context, req provider.Request) (*provider.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Completion{Text: f.text, TokensConsumed: f.tokens}, nil
}

func (f *fakeProvider) Calls() []provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.Request(nil), f.calls...)
}

type fixture struct {
	store    *memory.Store
	provider *fakeProvider
	gateway  *Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	p := &fakeProvider{text: "Velocity is the rate of change of displacement.", tokens: 120}

	return &fixture{
		store:    store,
		provider: p,
		gateway:  New(store, p, tier.NewGate(store), nil),
	}
}

func (f *fixture) user(t *testing.T, tr models.Tier, tokensUsed int) *models.User {
	t.Helper()

	u := &models.User{
		Username:         "student-" + uuid.NewString()[:8],
		Email:            uuid.NewString() + "@example.com",
		PasswordHash:     "x",
		SubscriptionTier: tr,
		SelectedClass:    "12",
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	require.NoError(t, f.store.UpdateUserLedger(context.Background(), u.ID, tokensUsed, time.Now()))
	return u
}

func (f *fixture) tokensUsed(t *testing.T, id uuid.UUID) int {
	t.Helper()

	u, err := f.store.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.TokensUsedToday
}

func validDoubt() DoubtRequest {
	return DoubtRequest{
		Subject:  "Physics",
		Chapter:  "Kinematics",
		Topic:    "Velocity",
		Question: "What is the difference between speed and velocity?",
	}
}

func TestSubmitDoubt_NotConfigured(t *testing.T) {
	store := memory.New()
	g := New(store, nil, tier.NewGate(store), nil)

	_, err := g.SubmitDoubt(context.Background(), uuid.New(), DoubtRequest{})

	assert.ErrorIs(t, err, apperr.ErrServiceUnavailable)
	assert.False(t, g.Configured())
}

func TestSubmitDoubt_Validation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.TierBasic, 0)

	req := validDoubt()
	req.Question = "   "

	_, err := f.gateway.SubmitDoubt(context.Background(), u.ID, req)

	require.ErrorIs(t, err, apperr.ErrValidation)
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "question", verr.Field)
	assert.Empty(t, f.provider.Calls())
}

func TestSubmitDoubt_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.gateway.SubmitDoubt(context.Background(), uuid.New(), validDoubt())

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, f.provider.Calls())
}

func TestSubmitDoubt_MeteredSuccess(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.TierBasic, 1000)

	res, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())
	require.NoError(t, err)

	assert.Equal(t, f.provider.text, res.Answer)
	assert.Equal(t, 10000-1000-120, res.TokensRemaining)
	require.NotNil(t, res.Doubt)
	require.NotNil(t, res.Doubt.AIResponse)
	assert.Equal(t, f.provider.text, *res.Doubt.AIResponse)
	assert.True(t, res.Doubt.IsResolved)
	assert.Equal(t, 120, res.Doubt.TokensUsed)
	assert.Equal(t, 1120, f.tokensUsed(t, u.ID))

	calls := f.provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gpt-4o-mini", calls[0].Model)
	assert.Equal(t, float32(0.7), calls[0].Temperature)
	assert.Contains(t, calls[0].Prompt, "Class 12 Physics")
	assert.Contains(t, calls[0].Prompt, "Kinematics - Velocity")
}

func TestSubmitDoubt_QuotaExhausted(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.TierBasic, 10000)

	_, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())

	assert.ErrorIs(t, err, apperr.ErrQuotaExceeded)
	assert.Empty(t, f.provider.Calls())

	doubts, err := f.store.ListDoubts(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, doubts)
	assert.Equal(t, 10000, f.tokensUsed(t, u.ID))
}

func TestSubmitDoubt_ConsumingExactLimitDeniesNext(t *testing.T) {
	f := newFixture(t)
	f.provider.tokens = 250
	u := f.user(t, models.TierBasic, 10000-250)

	res, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())
	require.NoError(t, err)
	assert.Equal(t, 0, res.TokensRemaining)

	_, err = f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())
	assert.ErrorIs(t, err, apperr.ErrQuotaExceeded)
}

func TestSubmitDoubt_RemainingNeverNegative(t *testing.T) {
	f := newFixture(t)
	f.provider.tokens = 500
	u := f.user(t, models.TierPro, 50000-100)

	res, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())

	require.NoError(t, err)
	assert.Equal(t, 0, res.TokensRemaining)
	assert.Equal(t, 50400, f.tokensUsed(t, u.ID))
}

func TestSubmitDoubt_FreeTierAlwaysPermittedAndNeverCharged(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.TierFree, 999999)

	for i := 0; i < 3; i++ {
		res, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())
		require.NoError(t, err)
		assert.Equal(t, tier.Unlimited, res.TokensRemaining)
	}

	assert.Equal(t, 999999, f.tokensUsed(t, u.ID))
	assert.Len(t, f.provider.Calls(), 3)
}

func TestSubmitDoubt_UnlimitedTierReportsSentinel(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.TierPremium, 0)

	res, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())

	require.NoError(t, err)
	assert.Equal(t, tier.Unlimited, res.TokensRemaining)
	assert.Equal(t, "gpt-4o", f.provider.Calls()[0].Model)
}

func TestSubmitDoubt_ResetsStaleLedger(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.TierBasic, 0)
	require.NoError(t, f.store.UpdateUserLedger(context.Background(), u.ID, 10000, time.Now().AddDate(0, 0, -1)))

	res, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())

	require.NoError(t, err)
	assert.Equal(t, 10000-120, res.TokensRemaining)
	assert.Equal(t, 120, f.tokensUsed(t, u.ID))
}

func TestSubmitDoubt_ProviderFailureLeavesPendingRecord(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("connection reset")
	u := f.user(t, models.TierBasic, 0)

	_, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())
	require.ErrorIs(t, err, apperr.ErrUpstream)

	doubts, err := f.store.ListDoubts(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, doubts, 1)
	assert.Nil(t, doubts[0].AIResponse)
	assert.False(t, doubts[0].IsResolved)

	pending, err := f.store.GetDoubt(context.Background(), doubts[0].ID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Nil(t, pending.AIResponse)

	assert.Equal(t, 0, f.tokensUsed(t, u.ID))
	assert.Len(t, f.provider.Calls(), 1)
}

type failingResolveStore struct {
	*memory.Store
}

func (s failingResolveStore) ResolveDoubt(ctx context.Context, id uuid.UUID, answer string, tokensUsed int) (*models.Doubt, error) {
	return nil, errors.New("write timeout")
}

func (s failingResolveStore) ResolveDerivation(ctx context.Context, id uuid.UUID, steps string, tokensUsed int) (*models.Derivation, error) {
	return nil, errors.New("write timeout")
}

func TestSubmit_ResolveFailureStillCharges(t *testing.T) {
	f := newFixture(t)
	f.gateway = New(failingResolveStore{f.store}, f.provider, tier.NewGate(f.store), nil)
	u := f.user(t, models.TierBasic, 100)

	_, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())
	require.Error(t, err)
	assert.Equal(t, 220, f.tokensUsed(t, u.ID))

	_, err = f.gateway.SubmitDerivation(context.Background(), u.ID, DerivationRequest{
		Subject: "Physics",
		Chapter: "Kinematics",
		Formula: "v = u + at",
	})
	require.Error(t, err)
	assert.Equal(t, 340, f.tokensUsed(t, u.ID))
}

func TestSubmitDoubt_EmptyCompletionIsUpstreamError(t *testing.T) {
	f := newFixture(t)
	f.provider.text = "  \n"
	u := f.user(t, models.TierPro, 0)

	_, err := f.gateway.SubmitDoubt(context.Background(), u.ID, validDoubt())

	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Equal(t, 0, f.tokensUsed(t, u.ID))
}

func TestSubmitDerivation(t *testing.T) {
	f := newFixture(t)
	f.provider.text = "Step 1: start from v = u + at"
	u := f.user(t, models.TierPro, 0)

	res, err := f.gateway.SubmitDerivation(context.Background(), u.ID, DerivationRequest{
		Subject: " Physics ",
		Chapter: "Kinematics",
		Formula: "s = ut + 1/2 at^2",
	})
	require.NoError(t, err)

	assert.Equal(t, f.provider.text, res.Steps)
	assert.Equal(t, 50000-120, res.TokensRemaining)
	require.NotNil(t, res.Derivation.DerivationSteps)
	assert.Equal(t, f.provider.text, *res.Derivation.DerivationSteps)
	assert.Equal(t, "Physics", res.Derivation.Subject)

	stored, err := f.store.GetDerivation(context.Background(), res.Derivation.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DerivationSteps)

	call := f.provider.Calls()[0]
	assert.Equal(t, "gpt-4o", call.Model)
	assert.Equal(t, float32(0.6), call.Temperature)
	assert.Contains(t, call.Prompt, "s = ut + 1/2 at^2")
}

func TestSubmitDerivation_Validation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.TierPro, 0)

	_, err := f.gateway.SubmitDerivation(context.Background(), u.ID, DerivationRequest{Subject: "Physics", Chapter: "Optics"})

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "formula", verr.Field)
}

func TestExplainWrongAnswer(t *testing.T) {
	f := newFixture(t)
	f.provider.text = "Think about the direction of motion."
	u := f.user(t, models.TierBasic, 0)
	quiz := &models.Quiz{ID: uuid.New(), Question: "Is velocity a vector?", CorrectAnswer: "Yes"}

	got := f.gateway.ExplainWrongAnswer(context.Background(), u, quiz, "No")

	require.NotNil(t, got)
	assert.Equal(t, f.provider.text, *got)
	assert.Equal(t, 0, f.tokensUsed(t, u.ID))

	call := f.provider.Calls()[0]
	assert.Equal(t, 200, call.MaxTokens)
	assert.Contains(t, call.Prompt, `answered incorrectly: "No"`)
}

func TestExplainWrongAnswer_BestEffort(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("timeout")
	u := f.user(t, models.TierBasic, 0)

	assert.Nil(t, f.gateway.ExplainWrongAnswer(context.Background(), u, &models.Quiz{}, "No"))

	unconfigured := New(f.store, nil, tier.NewGate(f.store), nil)
	assert.Nil(t, unconfigured.ExplainWrongAnswer(context.Background(), u, &models.Quiz{}, "No"))
}

func TestGateway_RecordsUsage(t *testing.T) {
	f := newFixture(t)
	recorder := NewUsageRecorder(f.store, 10)
	recorder.Start()
	g := New(f.store, f.provider, tier.NewGate(f.store), recorder)

	u := f.user(t, models.TierBasic, 0)
	_, err := g.SubmitDoubt(context.Background(), u.ID, validDoubt())
	require.NoError(t, err)

	recorder.Close()

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	requests, tokens, err := f.store.UserUsage(context.Background(), u.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), requests)
	assert.Equal(t, int64(120), tokens)

	byKind, err := f.store.UsageBreakdown(context.Background(), "kind", from, to)
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, models.KindDoubt, byKind[0].Key)
}

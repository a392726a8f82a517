package service

import (
	"context"
	"testing"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSummary(t *testing.T) {
	store := memory.New()
	s := NewAnalyticsService(store)
	ctx := context.Background()
	now := time.Now()
	user := uuid.New()

	require.NoError(t, store.CreateUsageEvents(ctx, []models.UsageEvent{
		{Timestamp: now.Add(-time.Hour), UserID: user, Tier: models.TierPro, Model: "gpt-4o", Kind: models.KindDoubt, Tokens: 300, LatencyMs: 100},
		{Timestamp: now.Add(-time.Hour), UserID: user, Tier: models.TierPro, Model: "gpt-4o", Kind: models.KindDerivation, Tokens: 500, LatencyMs: 300},
		{Timestamp: now.Add(-time.Hour), UserID: uuid.New(), Tier: models.TierFree, Model: "gpt-4o-mini", Kind: models.KindDoubt, Tokens: 100, LatencyMs: 200},
	}))

	summary, err := s.GetSummary(ctx, now.Add(-24*time.Hour), now)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalRequests)
	assert.Equal(t, int64(900), summary.TotalTokens)
	assert.InDelta(t, 200.0, summary.AvgLatency, 0.001)
	require.Len(t, summary.ByTier, 2)
	assert.Equal(t, "pro", summary.ByTier[0].Key)
	assert.Equal(t, int64(800), summary.ByTier[0].Tokens)
	assert.Len(t, summary.ByKind, 2)

	usage, err := s.GetUserUsage(ctx, user, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), usage.Requests)
	assert.Equal(t, int64(800), usage.Tokens)
}

func TestGetSummary_Empty(t *testing.T) {
	s := NewAnalyticsService(memory.New())
	now := time.Now()

	summary, err := s.GetSummary(context.Background(), now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRequests)
	assert.NotNil(t, summary.ByTier)

	_, err = s.GetSummary(context.Background(), now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCleanupOldUsage(t *testing.T) {
	store := memory.New()
	s := NewAnalyticsService(store)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateUsageEvents(ctx, []models.UsageEvent{
		{Timestamp: now.AddDate(0, 0, -100), Tier: models.TierBasic, Kind: models.KindDoubt, Tokens: 10},
		{Timestamp: now.AddDate(0, 0, -1), Tier: models.TierBasic, Kind: models.KindDoubt, Tokens: 10},
	}))

	deleted, err := s.CleanupOldUsage(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := store.CountUsage(ctx, now.AddDate(-1, 0, 0), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

package service

import (
	"context"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

type UsageStore interface {
	CountUsage(ctx context.Context, from, to time.Time) (int64, error)
	SumUsageTokens(ctx context.Context, from, to time.Time) (int64, error)
	AverageUsageLatency(ctx context.Context, from, to time.Time) (float64, error)
	UsageBreakdown(ctx context.Context, column string, from, to time.Time) ([]models.UsageBreakdown, error)
	HourlyUsage(ctx context.Context, from, to time.Time) ([]models.UsageBucket, error)
	UserUsage(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, int64, error)
	DeleteUsageBefore(ctx context.Context, before time.Time) (int64, error)
}

type AnalyticsService struct {
	repository UsageStore
	now        func() time.Time
}

func NewAnalyticsService(repo UsageStore) *AnalyticsService {
	return &AnalyticsService{
		repository: repo,
		now:        time.Now,
	}
}

// Holds AI usage summary data
type UsageSummary struct {
	From          time.Time               `json:"from"`
	To            time.Time               `json:"to"`
	TotalRequests int64                   `json:"total_requests"`
	TotalTokens   int64                   `json:"total_tokens"`
	AvgLatency    float64                 `json:"avg_latency_ms"`
	ByTier        []models.UsageBreakdown `json:"by_tier"`
	ByModel       []models.UsageBreakdown `json:"by_model"`
	ByKind        []models.UsageBreakdown `json:"by_kind"`
}

type UserUsage struct {
	UserID   uuid.UUID `json:"user_id"`
	Requests int64     `json:"requests"`
	Tokens   int64     `json:"tokens"`
}

// Retrieves usage summary for a time range
func (s *AnalyticsService) GetSummary(ctx context.Context, from, to time.Time) (*UsageSummary, error) {
	if !from.Before(to) {
		return nil, &apperr.ValidationError{Field: "from", Reason: "must be before to"}
	}

	summary := &UsageSummary{
		From:    from,
		To:      to,
		ByTier:  []models.UsageBreakdown{},
		ByModel: []models.UsageBreakdown{},
		ByKind:  []models.UsageBreakdown{},
	}

	totalRequests, err := s.repository.CountUsage(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalRequests = totalRequests

	if totalRequests == 0 {
		return summary, nil
	}

	if summary.TotalTokens, err = s.repository.SumUsageTokens(ctx, from, to); err != nil {
		return nil, err
	}
	if summary.AvgLatency, err = s.repository.AverageUsageLatency(ctx, from, to); err != nil {
		return nil, err
	}

	if summary.ByTier, err = s.repository.UsageBreakdown(ctx, "tier", from, to); err != nil {
		return nil, err
	}
	if summary.ByModel, err = s.repository.UsageBreakdown(ctx, "model", from, to); err != nil {
		return nil, err
	}
	if summary.ByKind, err = s.repository.UsageBreakdown(ctx, "kind", from, to); err != nil {
		return nil, err
	}

	return summary, nil
}

// Retrieves hourly time-series data
func (s *AnalyticsService) GetTimeSeriesData(ctx context.Context, from, to time.Time) ([]models.UsageBucket, error) {
	if !from.Before(to) {
		return nil, &apperr.ValidationError{Field: "from", Reason: "must be before to"}
	}

	buckets, err := s.repository.HourlyUsage(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []models.UsageBucket{}
	}

	return buckets, nil
}

// Retrieves usage for a specific user
func (s *AnalyticsService) GetUserUsage(ctx context.Context, userID uuid.UUID, from, to time.Time) (*UserUsage, error) {
	requests, tokens, err := s.repository.UserUsage(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	return &UserUsage{UserID: userID, Requests: requests, Tokens: tokens}, nil
}

// Deletes usage events older than the retention period
func (s *AnalyticsService) CleanupOldUsage(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := s.now().AddDate(0, 0, -retentionDays)
	return s.repository.DeleteUsageBefore(ctx, cutOffDate)
}

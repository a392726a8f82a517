package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const usageInsertBatch = 200

type UsageRepository struct {
	db *storage.Postgres
}

func NewUsageRepository(db *storage.Postgres) *UsageRepository {
	return &UsageRepository{db: db}
}

// Inserts multiple usage events (for batch insertion)
func (r *UsageRepository) CreateUsageEvents(ctx context.Context, events []models.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.WithContext(ctx).CreateInBatches(&events, usageInsertBatch).Error
	})
}

// Counts provider calls in a time range
func (r *UsageRepository) CountUsage(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64

	err := r.db.DB.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}

func (r *UsageRepository) SumUsageTokens(ctx context.Context, from, to time.Time) (int64, error) {
	var sum int64

	err := r.db.DB.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Select("COALESCE(SUM(tokens), 0)").
		Scan(&sum).Error

	return sum, err
}

// Calculates average provider latency
func (r *UsageRepository) AverageUsageLatency(ctx context.Context, from, to time.Time) (float64, error) {
	var avg float64

	err := r.db.DB.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Select("COALESCE(AVG(latency_ms), 0)").
		Scan(&avg).Error

	return avg, err
}

var breakdownColumns = map[string]bool{
	"tier":  true,
	"model": true,
	"kind":  true,
}

// Returns request and token totals grouped by tier, model or kind
func (r *UsageRepository) UsageBreakdown(ctx context.Context, column string, from, to time.Time) ([]models.UsageBreakdown, error) {
	if !breakdownColumns[column] {
		return nil, fmt.Errorf("unsupported breakdown column: %s", column)
	}

	var results []models.UsageBreakdown
	err := r.db.DB.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Select(column+" AS key, COUNT(*) AS requests, COALESCE(SUM(tokens), 0) AS tokens").
		Where("timestamp BETWEEN ? AND ?", from, to).
		Group(column).
		Order("tokens DESC").
		Scan(&results).Error

	return results, err
}

// Returns usage grouped by hour
func (r *UsageRepository) HourlyUsage(ctx context.Context, from, to time.Time) ([]models.UsageBucket, error) {
	var results []models.UsageBucket

	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Select("DATE_TRUNC('hour', timestamp) as hour, COUNT(*) as requests, COALESCE(SUM(tokens), 0) as tokens").
		Where("timestamp BETWEEN ? AND ?", from, to).
		Group("hour").
		Order("hour ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bucket models.UsageBucket
		if err := rows.Scan(&bucket.Hour, &bucket.Requests, &bucket.Tokens); err != nil {
			return nil, err
		}
		results = append(results, bucket)
	}

	return results, rows.Err()
}

func (r *UsageRepository) UserUsage(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, int64, error) {
	var row struct {
		Requests int64
		Tokens   int64
	}

	err := r.db.DB.WithContext(ctx).
		Model(&models.UsageEvent{}).
		Select("COUNT(*) AS requests, COALESCE(SUM(tokens), 0) AS tokens").
		Where("user_id = ? AND timestamp BETWEEN ? AND ?", userID, from, to).
		Scan(&row).Error

	return row.Requests, row.Tokens, err
}

// Deletes usage events older than the specified time
func (r *UsageRepository) DeleteUsageBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&models.UsageEvent{})

	return result.RowsAffected, result.Error
}

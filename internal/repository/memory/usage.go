package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateUsageEvents(ctx context.Context, events []models.UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		s.nextUsageID++
		e.ID = s.nextUsageID
		s.usageEvents = append(s.usageEvents, e)
	}
	return nil
}

func (s *Store) eachUsage(from, to time.Time, fn func(models.UsageEvent)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.usageEvents {
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		fn(e)
	}
}

func (s *Store) CountUsage(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	s.eachUsage(from, to, func(models.UsageEvent) { count++ })
	return count, nil
}

func (s *Store) SumUsageTokens(ctx context.Context, from, to time.Time) (int64, error) {
	var sum int64
	s.eachUsage(from, to, func(e models.UsageEvent) { sum += int64(e.Tokens) })
	return sum, nil
}

func (s *Store) AverageUsageLatency(ctx context.Context, from, to time.Time) (float64, error) {
	var total, count int64
	s.eachUsage(from, to, func(e models.UsageEvent) {
		total += int64(e.LatencyMs)
		count++
	})
	if count == 0 {
		return 0, nil
	}
	return float64(total) / float64(count), nil
}

func (s *Store) UsageBreakdown(ctx context.Context, column string, from, to time.Time) ([]models.UsageBreakdown, error) {
	key := func(e models.UsageEvent) string {
		switch column {
		case "tier":
			return string(e.Tier)
		case "model":
			return e.Model
		default:
			return e.Kind
		}
	}
	if column != "tier" && column != "model" && column != "kind" {
		return nil, fmt.Errorf("unsupported breakdown column: %s", column)
	}

	groups := make(map[string]*models.UsageBreakdown)
	s.eachUsage(from, to, func(e models.UsageEvent) {
		k := key(e)
		g, ok := groups[k]
		if !ok {
			g = &models.UsageBreakdown{Key: k}
			groups[k] = g
		}
		g.Requests++
		g.Tokens += int64(e.Tokens)
	})

	out := make([]models.UsageBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tokens > out[j].Tokens })
	return out, nil
}

func (s *Store) HourlyUsage(ctx context.Context, from, to time.Time) ([]models.UsageBucket, error) {
	buckets := make(map[time.Time]*models.UsageBucket)
	s.eachUsage(from, to, func(e models.UsageEvent) {
		hour := e.Timestamp.Truncate(time.Hour)
		b, ok := buckets[hour]
		if !ok {
			b = &models.UsageBucket{Hour: hour}
			buckets[hour] = b
		}
		b.Requests++
		b.Tokens += int64(e.Tokens)
	})

	out := make([]models.UsageBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out, nil
}

func (s *Store) UserUsage(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, int64, error) {
	var requests, tokens int64
	s.eachUsage(from, to, func(e models.UsageEvent) {
		if e.UserID == userID {
			requests++
			tokens += int64(e.Tokens)
		}
	})
	return requests, tokens, nil
}

func (s *Store) DeleteUsageBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.usageEvents[:0]
	var deleted int64
	for _, e := range s.usageEvents {
		if e.Timestamp.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.usageEvents = kept
	return deleted, nil
}

// Package jobs runs the service's scheduled background work.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/metrics"
	"github.com/robfig/cron/v3"
)

// UsagePruner deletes usage events older than a retention window.
type UsagePruner interface {
	CleanupOldUsage(ctx context.Context, retentionDays int) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the usage retention job on schedule, a standard
// five-field cron expression.
func NewScheduler(pruner UsagePruner, schedule string, retentionDays int) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if _, err := c.AddJob(schedule, NewRetentionJob(pruner, retentionDays)); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

type RetentionJob struct {
	pruner        UsagePruner
	retentionDays int
	timeout       time.Duration
}

func NewRetentionJob(pruner UsagePruner, retentionDays int) *RetentionJob {
	return &RetentionJob{pruner: pruner, retentionDays: retentionDays, timeout: 5 * time.Minute}
}

// Run implements cron.Job
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	deleted, err := j.pruner.CleanupOldUsage(ctx, j.retentionDays)
	if err != nil {
		log.Printf("[jobs] usage retention failed: %v", err)
		return
	}

	metrics.UsageEventsPruned.Add(float64(deleted))
	log.Printf("[jobs] pruned %d usage events older than %d days", deleted, j.retentionDays)
}

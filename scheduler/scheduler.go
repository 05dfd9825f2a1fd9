// Package scheduler fires the daily workflow operations at the
// configured wall-clock times.
package scheduler

import (
	"context"
	"time"

	"github.com/teamops/muster-bot/entity"
	"go.uber.org/zap"
)

// Job is one recurring trigger. At is a local wall-clock time "15:04".
// WeekdaysOnly jobs skip Saturday and Sunday at the trigger level; jobs
// without it fire every calendar day and rely on the workflow's own
// off-day check.
type Job struct {
	Name         string
	At           string
	WeekdaysOnly bool
	Run          func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	logger *zap.Logger

	now      func() time.Time
	interval time.Duration

	// lastFired maps job name to the last date it fired, so a job
	// fires at most once per day even though ticks are sub-minute.
	lastFired map[string]string
}

func New(jobs []Job, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs:      jobs,
		logger:    logger,
		now:       time.Now,
		interval:  time.Second,
		lastFired: make(map[string]string),
	}
}

// Run ticks until ctx is canceled. A job's error is logged and does not
// stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler configured and running", zap.Int("jobs", len(s.jobs)))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	for i := range s.jobs {
		job := s.jobs[i]
		if !s.due(job, now) {
			continue
		}

		s.lastFired[job.Name] = now.Format(entity.DateLayout)
		s.logger.Info("firing scheduled job", zap.String("job", job.Name), zap.String("at", job.At))

		if err := job.Run(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
		}
	}
}

// due reports whether a job should fire on this tick: its wall-clock
// minute has arrived, its weekday gate passes, and it has not already
// fired today.
func (s *Scheduler) due(job Job, now time.Time) bool {
	if now.Format("15:04") != job.At {
		return false
	}

	if job.WeekdaysOnly {
		switch now.Weekday() {
		case time.Saturday, time.Sunday:
			return false
		}
	}

	return s.lastFired[job.Name] != now.Format(entity.DateLayout)
}

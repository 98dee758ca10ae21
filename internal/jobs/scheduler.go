package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Schedules holds the cron expressions of the maintenance jobs. An empty
// expression disables the job.
type Schedules struct {
	NotificationCleanup string
	RateWarmup          string
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron      *cron.Cron
	jobs      *Jobs
	logger    *slog.Logger
	schedules Schedules
}

func NewScheduler(jobs *Jobs, logger *slog.Logger, schedules Schedules) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	return &Scheduler{
		cron:      c,
		jobs:      jobs,
		logger:    logger,
		schedules: schedules,
	}
}

// Register adds the configured jobs and returns how many were scheduled.
func (s *Scheduler) Register() int {
	entries := []struct {
		name     string
		schedule string
		run      func()
	}{
		{"notification cleanup", s.schedules.NotificationCleanup, s.jobs.CleanupExpiredNotifications},
		{"rate warmup", s.schedules.RateWarmup, s.jobs.WarmupRates},
	}

	scheduled := 0
	for _, e := range entries {
		if e.schedule == "" {
			s.logger.Info("job disabled", "job", e.name)
			continue
		}
		if _, err := s.cron.AddFunc(e.schedule, e.run); err != nil {
			s.logger.Error("failed to schedule job", "job", e.name, "schedule", e.schedule, "error", err)
			continue
		}
		s.logger.Info("scheduled job", "job", e.name, "schedule", e.schedule)
		scheduled++
	}
	return scheduled
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Register()
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Package scheduler runs the nightly background jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/smart-accounting/backend/internal/application/usecase/points"
)

// giftSweepTimeout bounds one sweep run.
const giftSweepTimeout = 5 * time.Minute

// Scheduler wraps the cron runner for background ledger jobs.
type Scheduler struct {
	cron      *cron.Cron
	giftSweep *points.GiftSweepUseCase
}

// New creates a scheduler instance.
func New(giftSweep *points.GiftSweepUseCase) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		giftSweep: giftSweep,
	}
}

// Start registers the gift sweep on the given cron schedule and starts
// the runner.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.runGiftSweep)
	if err != nil {
		return fmt.Errorf("failed to register gift sweep: %w", err)
	}

	s.cron.Start()
	slog.Info("Scheduler started", "giftSweepSchedule", schedule)
	return nil
}

// Stop stops the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) runGiftSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), giftSweepTimeout)
	defer cancel()

	if _, err := s.giftSweep.Execute(ctx); err != nil {
		slog.Error("Gift sweep failed", "error", err)
	}
}

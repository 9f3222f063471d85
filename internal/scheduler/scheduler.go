// Package scheduler wires up the cron job that announces follow-ups as they
// come due.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// FollowUpSource is the slice of tracker.Service the scheduler needs.
type FollowUpSource interface {
	DueFollowUps(ctx context.Context, from, to time.Time) ([]tracker.Application, error)
	Notify(ctx context.Context, ev tracker.Event)
}

// Scheduler wraps robfig/cron and runs the follow-up scan. The first scan
// covers [now, now+interval); each later one starts where the previous
// successful scan ended, so late ticks leave no gap and a follow-up is
// announced once.
type Scheduler struct {
	cron     *cron.Cron
	source   FollowUpSource
	interval time.Duration

	mu     sync.Mutex // serialises scans
	lastTo time.Time
}

// New creates a Scheduler that fires every interval.
func New(source FollowUpSource, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		source:   source,
		interval: interval,
	}
}

// Start registers the job and starts the scheduler. One scan runs
// immediately so reminders are not delayed by a full interval after a restart.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	slog.Info("follow-up scheduler started", "spec", spec)

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("follow-up scheduler stopped")
}

// RunOnce publishes EVENT_FOLLOW_UP_DUE for every open application whose
// follow-up falls in the unscanned part of the next interval. A failed scan
// leaves its window to the next run. It returns the number announced.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	from, to := now, now.Add(s.interval)
	if !s.lastTo.IsZero() {
		from = s.lastTo
	}
	if !to.After(from) {
		return 0
	}

	apps, err := s.source.DueFollowUps(ctx, from, to)
	if err != nil {
		slog.Error("follow-up scan failed", "err", err, "from", from, "to", to)
		return 0
	}
	s.lastTo = to

	n := 0
	for _, a := range apps {
		if a.FollowUpDate == nil {
			continue
		}
		n++
		s.source.Notify(ctx, tracker.Event{
			Type:          tracker.EventFollowUpDue,
			ApplicationID: a.ID,
			UserID:        a.UserID,
			FollowUpDate:  a.FollowUpDate.UTC().Format(time.RFC3339),
		})
	}
	if n > 0 {
		slog.Info("follow-up reminders published", "count", n)
	}
	return n
}

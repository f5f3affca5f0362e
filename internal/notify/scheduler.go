package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Alerter delivers a message to the admin chat
type Alerter interface {
	SendNotification(message string)
}

// Scheduler runs a Watcher on a cron schedule and alerts the admin chat
// about new registrations.
type Scheduler struct {
	cron    *cron.Cron
	watcher *Watcher
	alerter Alerter
	timeout time.Duration
	jobID   cron.EntryID
}

// NewScheduler creates a scheduler; Start must be called to begin polling
func NewScheduler(watcher *Watcher, alerter Alerter, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		watcher: watcher,
		alerter: alerter,
		timeout: timeout,
	}
}

// Start primes the watcher and schedules the check.
// spec accepts six-field expressions and descriptors such as "@every 30s".
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if _, err := s.watcher.Poll(ctx); err != nil {
		slog.Warn("Initial employee count failed", "error", err)
	}

	var err error
	s.jobID, err = s.cron.AddFunc(spec, s.Check)
	if err != nil {
		return fmt.Errorf("error scheduling registration watcher: %w", err)
	}

	s.cron.Start()
	slog.Info("Registration watcher started", "schedule", spec)
	return nil
}

// Stop terminates the scheduler and waits for a running check
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("Registration watcher stopped")
}

// Check polls once and alerts when something increased
func (s *Scheduler) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	change, err := s.watcher.Poll(ctx)
	if err != nil {
		slog.Warn("Registration watcher poll failed", "error", err)
		return
	}
	if msg := FormatChange(change); msg != "" {
		s.alerter.SendNotification(msg)
	}
}

// FormatChange renders a change as an admin message; empty when nothing changed
func FormatChange(c Change) string {
	switch {
	case c.NewUnconfirmed > 0 && c.NewConfirmed > 0:
		return fmt.Sprintf("🔔 Новые сотрудники ожидают подтверждения: %d\n✅ Подтверждено: %d", c.NewUnconfirmed, c.NewConfirmed)
	case c.NewUnconfirmed > 0:
		return fmt.Sprintf("🔔 Новые сотрудники ожидают подтверждения: %d", c.NewUnconfirmed)
	case c.NewConfirmed > 0:
		return fmt.Sprintf("✅ Подтверждено новых сотрудников: %d", c.NewConfirmed)
	default:
		return ""
	}
}

// Package notify implements the pull side of the notification bridge: a
// re-count of employees that reports newly registered and newly confirmed ones.
package notify

import (
	"context"
	"sync"

	"tasklist/internal/models"
)

// Counter returns the current number of unconfirmed and confirmed employees
type Counter interface {
	CountByConfirmation(ctx context.Context) (unconfirmed, confirmed int64, err error)
}

// Change is the increase observed since the previous poll
type Change struct {
	NewUnconfirmed int64
	NewConfirmed   int64
}

// Empty reports whether nothing increased
func (c Change) Empty() bool {
	return c.NewUnconfirmed == 0 && c.NewConfirmed == 0
}

// Watcher diffs employee counts between polls. The first poll only records a
// baseline. A decrease (deletion, confirmation) moves the baseline down without
// reporting anything.
type Watcher struct {
	counter Counter

	mu          sync.Mutex
	primed      bool
	unconfirmed int64
	confirmed   int64
}

// NewWatcher creates a watcher over counter
func NewWatcher(counter Counter) *Watcher {
	return &Watcher{counter: counter}
}

// Poll re-counts and returns the positive deltas since the last poll
func (w *Watcher) Poll(ctx context.Context) (Change, error) {
	unconfirmed, confirmed, err := w.counter.CountByConfirmation(ctx)
	if err != nil {
		return Change{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var change Change
	if w.primed {
		change.NewUnconfirmed = max(unconfirmed-w.unconfirmed, 0)
		change.NewConfirmed = max(confirmed-w.confirmed, 0)
	}
	w.primed = true
	w.unconfirmed = unconfirmed
	w.confirmed = confirmed
	return change, nil
}

// Nop is a Notifier that drops every message. It is used when no bot token
// is configured.
type Nop struct{}

func (Nop) NotifyConfirmed(context.Context, models.Employee) error { return nil }

func (Nop) NotifyTaskAssigned(context.Context, models.Employee, models.Task) error { return nil }

func (Nop) NotifyTaskCompleted(context.Context, models.Employee, models.Task) error { return nil }

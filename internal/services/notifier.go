// Package services implements business logic for the application
package services

import (
	"context"

	"tasklist/internal/models"
)

// Notifier pushes messages to an employee's chat. Calls are best-effort:
// services log a returned error and never roll back because of it.
type Notifier interface {
	NotifyConfirmed(ctx context.Context, employee models.Employee) error
	NotifyTaskAssigned(ctx context.Context, employee models.Employee, task models.Task) error
	NotifyTaskCompleted(ctx context.Context, employee models.Employee, task models.Task) error
}

// PhotoSource looks up the current profile photo of a chat user.
// An empty reference means the user has none.
type PhotoSource interface {
	ProfilePhoto(ctx context.Context, employeeID int64) (string, error)
}

// PhotoUploader turns a photo reference into a hosted URL
type PhotoUploader interface {
	Upload(ctx context.Context, ref string) (string, error)
}

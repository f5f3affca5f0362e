package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"

	"tasklist/internal/apperr"
)

// Store hands out units of work over the shared database
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewStore wraps db. timeout bounds every unit of work; zero disables the bound.
func NewStore(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// Do runs fn as one transaction: commit when fn returns nil, rollback otherwise.
// The session is released on every exit path, panics included.
// Driver errors are classified as apperr.ErrConnectivity or apperr.ErrStorage;
// errors already carrying an apperr sentinel are returned unchanged.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newGormRepos(tx))
	})
	return classify(err)
}

func classify(err error) error {
	if err == nil || apperr.IsDomain(err) {
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", apperr.ErrConnectivity, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
}

func newGormRepos(tx *gorm.DB) Repos {
	return Repos{
		Admins:    &gormAdminRepository{db: tx},
		Employees: &gormEmployeeRepository{db: tx},
		Tasks:     &gormTaskRepository{db: tx},
		Logs:      &gormTaskLogRepository{db: tx},
	}
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/repository"
)

// ProfileUpdate is an admin edit of an employee's contact fields.
// Empty optional fields clear the stored value.
type ProfileUpdate struct {
	Username string  `validate:"required,max=255"`
	Email    *string `validate:"omitempty,email"`
	Phone    *string `validate:"omitempty,max=32"`
	// Photo is a URL or a local file path; local files are uploaded first
	Photo *string
}

// EmployeeService handles registration, confirmation and removal of employees
type EmployeeService struct {
	store    *repository.Store
	notifier Notifier
	photos   PhotoSource
	uploader PhotoUploader
}

// NewEmployeeService creates a new employee service.
// photos and uploader may be nil.
func NewEmployeeService(store *repository.Store, notifier Notifier, photos PhotoSource, uploader PhotoUploader) *EmployeeService {
	return &EmployeeService{
		store:    store,
		notifier: notifier,
		photos:   photos,
		uploader: uploader,
	}
}

// RegisterOrTouch creates an unconfirmed employee for an unknown identity or
// refreshes the display name of a known one. The profile photo is refreshed
// afterwards on a best-effort basis.
func (s *EmployeeService) RegisterOrTouch(ctx context.Context, id int64, displayName string) (*models.Employee, bool, error) {
	name := strings.TrimSpace(displayName)
	var (
		employee *models.Employee
		created  bool
	)

	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		emp, err := r.Employees.GetByID(ctx, id)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			employee = &models.Employee{ID: id, Username: name}
			created = true
			return r.Employees.Create(ctx, employee)
		case err != nil:
			return err
		}

		employee = emp
		if name == "" || name == emp.Username {
			return nil
		}
		emp.Username = name
		return r.Employees.Save(ctx, emp)
	})
	if err != nil {
		return nil, false, fmt.Errorf("register employee %d: %w", id, err)
	}
	if created {
		slog.Info("New employee registered", "employee_id", id, "name", name)
	}

	s.refreshPhoto(ctx, employee)
	return employee, created, nil
}

func (s *EmployeeService) refreshPhoto(ctx context.Context, employee *models.Employee) {
	if s.photos == nil {
		return
	}
	ref, err := s.photos.ProfilePhoto(ctx, employee.ID)
	if err != nil {
		slog.Warn("Failed to fetch profile photo", "employee_id", employee.ID, "error", err)
		return
	}
	if ref == "" || (employee.Photo != nil && *employee.Photo == ref) {
		return
	}

	err = s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		emp, err := r.Employees.GetByID(ctx, employee.ID)
		if err != nil {
			return err
		}
		emp.Photo = &ref
		return r.Employees.Save(ctx, emp)
	})
	if err != nil {
		slog.Warn("Failed to store profile photo", "employee_id", employee.ID, "error", err)
		return
	}
	employee.Photo = &ref
}

// Confirm marks the employee as confirmed. Confirming twice is a no-op and
// only the first confirmation sends the welcome message.
func (s *EmployeeService) Confirm(ctx context.Context, id int64) (*models.Employee, error) {
	var (
		employee *models.Employee
		changed  bool
	)

	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		employee, err = r.Employees.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if employee.IsConfirmed {
			return nil
		}
		employee.IsConfirmed = true
		changed = true
		return r.Employees.Save(ctx, employee)
	})
	if err != nil {
		return nil, fmt.Errorf("confirm employee %d: %w", id, err)
	}

	if changed {
		slog.Info("Employee confirmed", "employee_id", id)
		if err := s.notifier.NotifyConfirmed(ctx, *employee); err != nil {
			slog.Warn("Failed to send welcome message", "employee_id", id, "error", err)
		}
	}
	return employee, nil
}

// Delete removes the employee and unassigns their tasks. Completion records are
// kept. Deleting an unknown id is logged and not reported as an error.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	var (
		existed    bool
		unassigned int64
	)

	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		if unassigned, err = r.Tasks.UnassignAll(ctx, id); err != nil {
			return err
		}
		existed, err = r.Employees.Delete(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}

	if !existed {
		slog.Warn("Employee to delete not found", "employee_id", id)
		return nil
	}
	slog.Info("Employee deleted", "employee_id", id, "unassigned_tasks", unassigned)
	return nil
}

// Get returns one employee
func (s *EmployeeService) Get(ctx context.Context, id int64) (*models.Employee, error) {
	var employee *models.Employee
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		employee, err = r.Employees.GetByID(ctx, id)
		return err
	})
	return employee, err
}

// ListUnconfirmed returns employees waiting for confirmation, oldest first
func (s *EmployeeService) ListUnconfirmed(ctx context.Context) ([]models.Employee, error) {
	return s.listByConfirmation(ctx, false)
}

// ListConfirmed returns confirmed employees, oldest first
func (s *EmployeeService) ListConfirmed(ctx context.Context) ([]models.Employee, error) {
	return s.listByConfirmation(ctx, true)
}

func (s *EmployeeService) listByConfirmation(ctx context.Context, confirmed bool) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		employees, err = r.Employees.ListByConfirmation(ctx, confirmed)
		return err
	})
	return employees, err
}

// ListConfirmedWithStats returns confirmed employees with their completed task counts
func (s *EmployeeService) ListConfirmedWithStats(ctx context.Context) ([]models.EmployeeStats, error) {
	var stats []models.EmployeeStats
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		employees, err := r.Employees.ListByConfirmation(ctx, true)
		if err != nil {
			return err
		}
		counts, err := r.Logs.CountsByEmployee(ctx)
		if err != nil {
			return err
		}
		stats = make([]models.EmployeeStats, 0, len(employees))
		for _, e := range employees {
			stats = append(stats, models.EmployeeStats{Employee: e, Completed: counts[e.ID]})
		}
		return nil
	})
	return stats, err
}

// CountByConfirmation returns the number of unconfirmed and confirmed employees
func (s *EmployeeService) CountByConfirmation(ctx context.Context) (unconfirmed, confirmed int64, err error) {
	err = s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		if unconfirmed, err = r.Employees.CountByConfirmation(ctx, false); err != nil {
			return err
		}
		confirmed, err = r.Employees.CountByConfirmation(ctx, true)
		return err
	})
	return unconfirmed, confirmed, err
}

// UpdateProfile applies an admin edit. A new local photo is uploaded before the
// write; if the image host fails the previous photo is kept.
func (s *EmployeeService) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*models.Employee, error) {
	upd.Username = strings.TrimSpace(upd.Username)
	upd.Email = optional(upd.Email)
	upd.Phone = optional(upd.Phone)
	if err := validateStruct(upd); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update employee %d: %w", id, err)
	}

	photo, keepPhoto := s.resolvePhoto(ctx, current, upd.Photo)

	var employee *models.Employee
	err = s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		employee, err = r.Employees.GetByID(ctx, id)
		if err != nil {
			return err
		}
		employee.Username = upd.Username
		employee.Email = upd.Email
		employee.Phone = upd.Phone
		if !keepPhoto {
			employee.Photo = photo
		}
		return r.Employees.Save(ctx, employee)
	})
	if err != nil {
		return nil, fmt.Errorf("update employee %d: %w", id, err)
	}

	slog.Info("Employee profile updated", "employee_id", id)
	return employee, nil
}

// resolvePhoto returns the reference to store, or keep=true to leave it untouched
func (s *EmployeeService) resolvePhoto(ctx context.Context, current *models.Employee, requested *string) (ref *string, keep bool) {
	if requested == nil {
		return nil, true
	}
	next := optional(requested)
	if next == nil {
		return nil, false
	}
	if current.Photo != nil && *current.Photo == *next {
		return nil, true
	}
	if s.uploader == nil {
		return next, false
	}

	url, err := s.uploader.Upload(ctx, *next)
	if err != nil {
		slog.Warn("Photo upload failed, keeping previous photo", "employee_id", current.ID, "error", err)
		return nil, true
	}
	return &url, false
}

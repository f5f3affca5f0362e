// Package repository defines repository interfaces for data access
package repository

import (
	"context"

	"tasklist/internal/models"
)

// AdminRepository defines the interface for admin account data access
type AdminRepository interface {
	// GetByLogin retrieves an admin by login, apperr.ErrNotFound if absent
	GetByLogin(ctx context.Context, login string) (*models.Admin, error)
	// Save writes every column of the account
	Save(ctx context.Context, admin *models.Admin) error
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	// GetByID retrieves an employee by Telegram id, apperr.ErrNotFound if absent
	GetByID(ctx context.Context, id int64) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Save(ctx context.Context, employee *models.Employee) error
	// Delete removes the row and reports whether it existed
	Delete(ctx context.Context, id int64) (bool, error)
	ListByConfirmation(ctx context.Context, confirmed bool) ([]models.Employee, error)
	CountByConfirmation(ctx context.Context, confirmed bool) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// GetByID retrieves a task with its assignee, apperr.ErrNotFound if absent
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	// Update writes the task only if its version is unchanged, then bumps it.
	// apperr.ErrConflict if another writer got there first.
	Update(ctx context.Context, task *models.Task) error
	List(ctx context.Context) ([]models.Task, error)
	ListActiveByAssignee(ctx context.Context, employeeID int64, offset, limit int) ([]models.Task, error)
	CountActiveByAssignee(ctx context.Context, employeeID int64) (int64, error)
	// UnassignAll clears the assignee on every task of the employee
	UnassignAll(ctx context.Context, employeeID int64) (int64, error)
}

// TaskLogRepository defines the interface for completion record data access
type TaskLogRepository interface {
	Exists(ctx context.Context, taskID uint, employeeID int64) (bool, error)
	// Create inserts the record; a duplicate (task, employee) pair is ignored.
	// It reports whether a row was inserted.
	Create(ctx context.Context, log *models.TaskLog) (bool, error)
	CountsByEmployee(ctx context.Context) (map[int64]int64, error)
	// List returns all records with their tasks, oldest first
	List(ctx context.Context) ([]models.TaskLog, error)
}

// Repos groups the repositories bound to one unit of work
type Repos struct {
	Admins    AdminRepository
	Employees EmployeeRepository
	Tasks     TaskRepository
	Logs      TaskLogRepository
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/repository"
)

// DefaultPageSize is the number of active tasks shown per page
const DefaultPageSize = 5

// TaskInput describes a new task
type TaskInput struct {
	Title       string `validate:"required,max=255"`
	Description *string
	// Empty means models.PriorityLow
	Priority   models.Priority
	AssigneeID *int64
}

// TaskUpdate carries the fields an admin edit changes. Nil fields stay as they are.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *models.Priority
	// A pointer to 0 removes the assignee
	AssigneeID  *int64
	IsCompleted *bool
	// Version the caller loaded; a mismatch fails with apperr.ErrConflict
	Version *int64
}

// TaskPage is one page of an employee's active tasks
type TaskPage struct {
	Items      []models.Task
	Page       int
	TotalPages int
	Total      int64
	PageSize   int
}

// TaskProcessor is the employee-facing part of the task lifecycle used by the
// chat bot and the HTTP API
type TaskProcessor interface {
	ListActiveTasks(ctx context.Context, employeeID int64, page int) (*TaskPage, error)
	ActiveTaskAt(ctx context.Context, employeeID int64, index int) (*models.Task, error)
	CompleteTask(ctx context.Context, id uint, employeeID int64) (*models.Task, bool, error)
	CountActive(ctx context.Context, employeeID int64) (int64, error)
}

var _ TaskProcessor = (*TaskService)(nil)

// TaskService handles the task lifecycle shared by the console and the bot
type TaskService struct {
	store    *repository.Store
	notifier Notifier
	pageSize int
	loc      *time.Location
	now      func() time.Time
}

// NewTaskService creates a new task service.
// Completion records are stamped in loc.
func NewTaskService(store *repository.Store, notifier Notifier, pageSize int, loc *time.Location) *TaskService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TaskService{
		store:    store,
		notifier: notifier,
		pageSize: pageSize,
		loc:      loc,
		now:      time.Now,
	}
}

// CreateTask validates and stores a new task, notifying the assignee if any
func (s *TaskService) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityLow
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, priority)
	}

	task := &models.Task{
		Title:       in.Title,
		Description: optional(in.Description),
		Priority:    priority,
	}
	var assignee *models.Employee

	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		if in.AssigneeID != nil && *in.AssigneeID != 0 {
			emp, err := assignable(ctx, r, *in.AssigneeID)
			if err != nil {
				return err
			}
			assignee = emp
			task.UserID = &emp.ID
		}
		return r.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	attrs := []any{"task_id", task.ID, "priority", task.Priority}
	if task.UserID != nil {
		attrs = append(attrs, "assignee", *task.UserID)
	}
	slog.Info("Task created", attrs...)
	if assignee != nil {
		task.User = assignee
		s.notifyAssigned(ctx, *assignee, *task)
	}
	return task, nil
}

// UpdateTask applies an admin edit. Completing an assigned task writes its
// completion record in the same unit of work; completed tasks cannot be re-opened.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, upd TaskUpdate) (*models.Task, error) {
	var (
		task        *models.Task
		newAssignee *models.Employee
		completedBy *models.Employee
	)

	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		task, err = r.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if upd.Version != nil && *upd.Version != task.Version {
			return fmt.Errorf("%w: task %d is at version %d, edit was based on %d",
				apperr.ErrConflict, id, task.Version, *upd.Version)
		}

		if upd.Title != nil {
			title := strings.TrimSpace(*upd.Title)
			if title == "" {
				return fmt.Errorf("%w: title is required", apperr.ErrValidation)
			}
			task.Title = title
		}
		if upd.Description != nil {
			task.Description = optional(upd.Description)
		}
		if upd.Priority != nil {
			if !upd.Priority.Valid() {
				return fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, *upd.Priority)
			}
			task.Priority = *upd.Priority
		}

		if upd.AssigneeID != nil {
			switch {
			case *upd.AssigneeID == 0:
				task.UserID = nil
				task.User = nil
			case !task.AssignedTo(*upd.AssigneeID):
				emp, err := assignable(ctx, r, *upd.AssigneeID)
				if err != nil {
					return err
				}
				task.UserID = &emp.ID
				task.User = emp
				newAssignee = emp
			}
		}

		completing := false
		if upd.IsCompleted != nil {
			switch {
			case task.IsCompleted && !*upd.IsCompleted:
				return fmt.Errorf("%w: task %d is completed and cannot be re-opened", apperr.ErrValidation, id)
			case !task.IsCompleted && *upd.IsCompleted:
				completing = true
			}
		}

		if !completing {
			return r.Tasks.Update(ctx, task)
		}
		if err := s.complete(ctx, r, task); err != nil {
			return err
		}
		if task.UserID != nil {
			emp, err := r.Employees.GetByID(ctx, *task.UserID)
			if err != nil {
				return err
			}
			completedBy = emp
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}

	slog.Info("Task updated", "task_id", task.ID, "version", task.Version, "completed", task.IsCompleted)
	if newAssignee != nil && !task.IsCompleted {
		s.notifyAssigned(ctx, *newAssignee, *task)
	}
	if completedBy != nil {
		s.notifyCompleted(ctx, *completedBy, *task)
	}
	return task, nil
}

// CompleteTask marks a task completed on behalf of its assignee.
// It reports whether this call performed the transition; a second call is a no-op.
func (s *TaskService) CompleteTask(ctx context.Context, id uint, employeeID int64) (*models.Task, bool, error) {
	var (
		task         *models.Task
		employee     *models.Employee
		transitioned bool
	)

	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		task, err = r.Tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !task.AssignedTo(employeeID) {
			return fmt.Errorf("%w: task %d is not assigned to %d", apperr.ErrForbidden, id, employeeID)
		}
		employee, err = confirmedEmployee(ctx, r, employeeID)
		if err != nil {
			return err
		}
		if task.IsCompleted {
			return nil
		}
		transitioned = true
		return s.complete(ctx, r, task)
	})
	if err != nil {
		return nil, false, fmt.Errorf("complete task %d: %w", id, err)
	}

	if transitioned {
		slog.Info("Task completed", "task_id", task.ID, "employee_id", employeeID)
		s.notifyCompleted(ctx, *employee, *task)
	}
	return task, transitioned, nil
}

// ListActiveTasks returns a page of the employee's uncompleted tasks ordered by id.
// page is 1-based and clamped to [1, TotalPages].
func (s *TaskService) ListActiveTasks(ctx context.Context, employeeID int64, page int) (*TaskPage, error) {
	result := &TaskPage{PageSize: s.pageSize}

	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := confirmedEmployee(ctx, r, employeeID); err != nil {
			return err
		}
		total, err := r.Tasks.CountActiveByAssignee(ctx, employeeID)
		if err != nil {
			return err
		}

		result.Total = total
		result.TotalPages = totalPages(total, s.pageSize)
		result.Page = clamp(page, 1, result.TotalPages)

		result.Items, err = r.Tasks.ListActiveByAssignee(ctx, employeeID, (result.Page-1)*s.pageSize, s.pageSize)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list active tasks of %d: %w", employeeID, err)
	}
	return result, nil
}

// ActiveTaskAt returns the index-th (1-based) active task of the employee
func (s *TaskService) ActiveTaskAt(ctx context.Context, employeeID int64, index int) (*models.Task, error) {
	if index < 1 {
		return nil, fmt.Errorf("%w: index %d", apperr.ErrValidation, index)
	}

	var task *models.Task
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := confirmedEmployee(ctx, r, employeeID); err != nil {
			return err
		}
		items, err := r.Tasks.ListActiveByAssignee(ctx, employeeID, index-1, 1)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: active task #%d of %d", apperr.ErrNotFound, index, employeeID)
		}
		task = &items[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CountActive returns how many uncompleted tasks are assigned to the employee
func (s *TaskService) CountActive(ctx context.Context, employeeID int64) (int64, error) {
	var n int64
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		n, err = r.Tasks.CountActiveByAssignee(ctx, employeeID)
		return err
	})
	return n, err
}

// GetTask returns a task with its assignee
func (s *TaskService) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task *models.Task
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		task, err = r.Tasks.GetByID(ctx, id)
		return err
	})
	return task, err
}

// ListTasks returns every task with its assignee, ordered by id
func (s *TaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		tasks, err = r.Tasks.List(ctx)
		return err
	})
	return tasks, err
}

// ListCompletions returns every completion record with its task
func (s *TaskService) ListCompletions(ctx context.Context) ([]models.TaskLog, error) {
	var logs []models.TaskLog
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		logs, err = r.Logs.List(ctx)
		return err
	})
	return logs, err
}

// complete writes the completion record (if the task has an assignee and none
// exists yet) and then the task itself.
func (s *TaskService) complete(ctx context.Context, r repository.Repos, task *models.Task) error {
	if task.UserID != nil {
		exists, err := r.Logs.Exists(ctx, task.ID, *task.UserID)
		if err != nil {
			return err
		}
		if !exists {
			record := &models.TaskLog{
				TaskID:      task.ID,
				UserID:      *task.UserID,
				CompletedAt: s.now().In(s.loc),
			}
			if _, err := r.Logs.Create(ctx, record); err != nil {
				return err
			}
		}
	}
	task.IsCompleted = true
	return r.Tasks.Update(ctx, task)
}

func (s *TaskService) notifyAssigned(ctx context.Context, employee models.Employee, task models.Task) {
	if err := s.notifier.NotifyTaskAssigned(ctx, employee, task); err != nil {
		slog.Warn("Failed to notify about assignment", "task_id", task.ID, "employee_id", employee.ID, "error", err)
	}
}

func (s *TaskService) notifyCompleted(ctx context.Context, employee models.Employee, task models.Task) {
	if err := s.notifier.NotifyTaskCompleted(ctx, employee, task); err != nil {
		slog.Warn("Failed to notify about completion", "task_id", task.ID, "employee_id", employee.ID, "error", err)
	}
}

// assignable loads an employee that may receive tasks
func assignable(ctx context.Context, r repository.Repos, id int64) (*models.Employee, error) {
	emp, err := r.Employees.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: assignee %d does not exist", apperr.ErrValidation, id)
	}
	if err != nil {
		return nil, err
	}
	if !emp.IsConfirmed {
		return nil, fmt.Errorf("%w: assignee %d is not confirmed", apperr.ErrValidation, id)
	}
	return emp, nil
}

// confirmedEmployee loads the acting employee; unknown and unconfirmed callers are forbidden
func confirmedEmployee(ctx context.Context, r repository.Repos, id int64) (*models.Employee, error) {
	emp, err := r.Employees.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: employee %d is not registered", apperr.ErrForbidden, id)
	}
	if err != nil {
		return nil, err
	}
	if !emp.IsConfirmed {
		return nil, fmt.Errorf("%w: employee %d is not confirmed", apperr.ErrForbidden, id)
	}
	return emp, nil
}

func totalPages(total int64, size int) int {
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		return 1
	}
	return pages
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tasklist/internal/database"
	"tasklist/internal/models"
	"tasklist/internal/repository"
)

// recordingNotifier is a mock Notifier that remembers every call
type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []int64
	assigned  []uint
	completed []uint
	err       error
}

var _ Notifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) NotifyConfirmed(_ context.Context, e models.Employee) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, e.ID)
	return n.err
}

func (n *recordingNotifier) NotifyTaskAssigned(_ context.Context, _ models.Employee, t models.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, t.ID)
	return n.err
}

func (n *recordingNotifier) NotifyTaskCompleted(_ context.Context, _ models.Employee, t models.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, t.ID)
	return n.err
}

// stubPhotos is a mock PhotoSource and PhotoUploader
type stubPhotos struct {
	ref string
	err error
}

var (
	_ PhotoSource   = (*stubPhotos)(nil)
	_ PhotoUploader = (*stubPhotos)(nil)
)

func (p *stubPhotos) ProfilePhoto(context.Context, int64) (string, error) { return p.ref, p.err }

func (p *stubPhotos) Upload(_ context.Context, ref string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "https://i.imgur.com/" + ref, nil
}

type fixture struct {
	db        *gorm.DB
	store     *repository.Store
	notifier  *recordingNotifier
	tasks     *TaskService
	employees *EmployeeService
	admins    *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Options{
		Driver:   "sqlite",
		DSN:      database.SQLiteDSN(":memory:"),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := database.SeedDefaultAdmin(ctx, db); err != nil {
		t.Fatalf("SeedDefaultAdmin() error = %v", err)
	}

	store := repository.NewStore(db, 5*time.Second)
	notifier := &recordingNotifier{}
	return &fixture{
		db:        db,
		store:     store,
		notifier:  notifier,
		tasks:     NewTaskService(store, notifier, DefaultPageSize, time.UTC),
		employees: NewEmployeeService(store, notifier, nil, nil),
		admins:    NewAdminService(store),
	}
}

// addConfirmed registers and confirms an employee
func (f *fixture) addConfirmed(t *testing.T, id int64, name string) *models.Employee {
	t.Helper()
	ctx := context.Background()
	if _, _, err := f.employees.RegisterOrTouch(ctx, id, name); err != nil {
		t.Fatalf("RegisterOrTouch() error = %v", err)
	}
	emp, err := f.employees.Confirm(ctx, id)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	return emp
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	return n
}

func ptr[T any](v T) *T { return &v }

var errBoom = errors.New("boom")

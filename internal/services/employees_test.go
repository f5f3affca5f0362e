package services

import (
	"context"
	"errors"
	"testing"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
)

func TestRegisterOrTouch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.employees = NewEmployeeService(f.store, f.notifier, &stubPhotos{ref: "https://api.telegram.org/file/photo.jpg"}, nil)

	emp, created, err := f.employees.RegisterOrTouch(ctx, 42, "Ann")
	if err != nil {
		t.Fatalf("RegisterOrTouch() error = %v", err)
	}
	if !created || emp.IsConfirmed || emp.Username != "Ann" {
		t.Errorf("first RegisterOrTouch() = %+v created=%v", emp, created)
	}
	if emp.Photo == nil || *emp.Photo != "https://api.telegram.org/file/photo.jpg" {
		t.Errorf("Photo = %v, want fetched reference", emp.Photo)
	}

	emp, created, err = f.employees.RegisterOrTouch(ctx, 42, "Ann Smith")
	if err != nil {
		t.Fatalf("RegisterOrTouch() error = %v", err)
	}
	if created || emp.Username != "Ann Smith" {
		t.Errorf("second RegisterOrTouch() = %+v created=%v", emp, created)
	}
	if n := f.count(t, &models.Employee{}); n != 1 {
		t.Errorf("employees = %d, want 1", n)
	}
}

func TestRegisterOrTouchPhotoFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.employees = NewEmployeeService(f.store, f.notifier, &stubPhotos{err: errBoom}, nil)

	emp, created, err := f.employees.RegisterOrTouch(ctx, 42, "Ann")
	if err != nil {
		t.Fatalf("RegisterOrTouch() error = %v", err)
	}
	if !created || emp.Photo != nil {
		t.Errorf("RegisterOrTouch() = %+v, want created without photo", emp)
	}
}

func TestConfirmIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, _, err := f.employees.RegisterOrTouch(ctx, 42, "Ann"); err != nil {
		t.Fatalf("RegisterOrTouch() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		emp, err := f.employees.Confirm(ctx, 42)
		if err != nil {
			t.Fatalf("Confirm() #%d error = %v", i+1, err)
		}
		if !emp.IsConfirmed {
			t.Errorf("Confirm() #%d IsConfirmed = false", i+1)
		}
	}
	if len(f.notifier.confirmed) != 1 {
		t.Errorf("welcome notifications = %d, want 1", len(f.notifier.confirmed))
	}
	if n := f.count(t, &models.Employee{}); n != 1 {
		t.Errorf("employees = %d, want 1", n)
	}

	if _, err := f.employees.Confirm(ctx, 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Confirm(99) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUnassignsTasksAndKeepsRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addConfirmed(t, 42, "Ann")

	done, err := f.tasks.CreateTask(ctx, TaskInput{Title: "Done", AssigneeID: ptr(int64(42))})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, _, err := f.tasks.CompleteTask(ctx, done.ID, 42); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	open, err := f.tasks.CreateTask(ctx, TaskInput{Title: "Open", AssigneeID: ptr(int64(42))})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if err := f.employees.Delete(ctx, 42); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := f.tasks.GetTask(ctx, open.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.UserID != nil {
		t.Errorf("UserID = %v, want nil after delete", *got.UserID)
	}
	if n := f.count(t, &models.TaskLog{}); n != 1 {
		t.Errorf("records = %d, want 1", n)
	}
	if n := f.count(t, &models.Task{}); n != 2 {
		t.Errorf("tasks = %d, want 2", n)
	}
}

func TestDeleteMissingEmployee(t *testing.T) {
	f := newFixture(t)
	if err := f.employees.Delete(context.Background(), 12345); err != nil {
		t.Errorf("Delete() error = %v, want nil", err)
	}
}

func TestListsAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addConfirmed(t, 1, "Ann")
	f.addConfirmed(t, 2, "Bob")
	if _, _, err := f.employees.RegisterOrTouch(ctx, 3, "Eve"); err != nil {
		t.Fatalf("RegisterOrTouch() error = %v", err)
	}

	task, err := f.tasks.CreateTask(ctx, TaskInput{Title: "t", AssigneeID: ptr(int64(2))})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, _, err := f.tasks.CompleteTask(ctx, task.ID, 2); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}

	unconfirmed, confirmed, err := f.employees.CountByConfirmation(ctx)
	if err != nil {
		t.Fatalf("CountByConfirmation() error = %v", err)
	}
	if unconfirmed != 1 || confirmed != 2 {
		t.Errorf("CountByConfirmation() = %d, %d, want 1, 2", unconfirmed, confirmed)
	}

	pending, err := f.employees.ListUnconfirmed(ctx)
	if err != nil {
		t.Fatalf("ListUnconfirmed() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != 3 {
		t.Errorf("ListUnconfirmed() = %+v", pending)
	}

	stats, err := f.employees.ListConfirmedWithStats(ctx)
	if err != nil {
		t.Fatalf("ListConfirmedWithStats() error = %v", err)
	}
	want := map[int64]int64{1: 0, 2: 1}
	if len(stats) != len(want) {
		t.Fatalf("ListConfirmedWithStats() len = %d, want %d", len(stats), len(want))
	}
	for _, s := range stats {
		if s.Completed != want[s.ID] {
			t.Errorf("completed for %d = %d, want %d", s.ID, s.Completed, want[s.ID])
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addConfirmed(t, 42, "Ann")

	tests := []struct {
		name      string
		uploader  PhotoUploader
		upd       ProfileUpdate
		wantErr   error
		wantPhoto *string
	}{
		{
			name:    "invalid email",
			upd:     ProfileUpdate{Username: "Ann", Email: ptr("not-an-email")},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "empty name",
			upd:     ProfileUpdate{Username: "  "},
			wantErr: apperr.ErrValidation,
		},
		{
			name:      "uploaded photo",
			uploader:  &stubPhotos{},
			upd:       ProfileUpdate{Username: "Ann", Email: ptr("ann@example.com"), Photo: ptr("avatar.png")},
			wantPhoto: ptr("https://i.imgur.com/avatar.png"),
		},
		{
			name:      "host failure keeps photo",
			uploader:  &stubPhotos{err: apperr.ErrExternalService},
			upd:       ProfileUpdate{Username: "Ann", Photo: ptr("other.png")},
			wantPhoto: ptr("https://i.imgur.com/avatar.png"),
		},
		{
			name:      "empty photo clears",
			upd:       ProfileUpdate{Username: "Ann", Photo: ptr("")},
			wantPhoto: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEmployeeService(f.store, f.notifier, nil, tt.uploader)
			got, err := svc.UpdateProfile(ctx, 42, tt.upd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UpdateProfile() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateProfile() error = %v", err)
			}
			switch {
			case tt.wantPhoto == nil && got.Photo != nil:
				t.Errorf("Photo = %q, want nil", *got.Photo)
			case tt.wantPhoto != nil && (got.Photo == nil || *got.Photo != *tt.wantPhoto):
				t.Errorf("Photo = %v, want %q", got.Photo, *tt.wantPhoto)
			}
		})
	}

	if _, err := f.employees.UpdateProfile(ctx, 99, ProfileUpdate{Username: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateProfile(99) error = %v, want ErrNotFound", err)
	}
}

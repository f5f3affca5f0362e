package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm/logger"

	"tasklist/internal/apperr"
	"tasklist/internal/database"
	"tasklist/internal/models"
)

func TestParseEmployeeID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"5123456789", 5123456789, false},
		{"-7", -7, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseEmployeeID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"bot", "admin", "migrate", "tasks", "employees", "report", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestTaskInputPriority(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Priority
		wantErr bool
	}{
		{"", models.PriorityLow, false},
		{"Medium", models.PriorityMedium, false},
		{"medium", models.PriorityMedium, false},
		{"HIGH", models.PriorityHigh, false},
		{"Средний", models.PriorityMedium, false},
		{"высокий", models.PriorityHigh, false},
		{"urgent", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := taskInput("Ship report", "", tt.in, 0)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Fatalf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("taskInput() error = %v", err)
			}
			if got.Priority != tt.want {
				t.Errorf("priority = %s, want %s", got.Priority, tt.want)
			}
			if got.Description != nil || got.AssigneeID != nil {
				t.Errorf("empty flags should stay nil: %+v", got)
			}
		})
	}
}

func TestTasksAddAcceptsLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("TASKLIST_CONFIG", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("LOG_LEVEL", "error")

	for _, p := range []string{"Medium", "medium", "Средний"} {
		rootCmd.SetArgs([]string{"tasks", "add", "Ship report", "-p", p})
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("tasks add -p %s: %v", p, err)
		}
	}

	db, err := database.Open(context.Background(), database.Options{
		Driver:   "sqlite",
		DSN:      database.SQLiteDSN(path),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close(db)

	var tasks []models.Task
	if err := db.Find(&tasks).Error; err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	for _, task := range tasks {
		if task.Priority != models.PriorityMedium {
			t.Errorf("task %d priority = %s, want Medium", task.ID, task.Priority)
		}
	}
}

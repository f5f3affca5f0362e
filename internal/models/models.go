// Package models contains data structures for the application
package models

import (
	"time"
)

// Admin is an account of the admin console. Login is the primary key.
type Admin struct {
	Login    string `gorm:"primaryKey"`
	Password string `gorm:"not null"` // plaintext, see DESIGN.md
	Username string `gorm:"not null"`
	// Theme: false = light, true = dark
	Theme bool `gorm:"not null;default:false"`
	// Poll interval of the console in milliseconds
	NotificationInterval int  `gorm:"not null;default:5000"`
	SoundNotifications   bool `gorm:"not null"`
	NewUserNotifications bool `gorm:"not null"`
}

// TableName keeps the table name used by existing deployments
func (Admin) TableName() string { return "admins" }

// IntervalDuration returns the poll interval as a duration
func (a Admin) IntervalDuration() time.Duration {
	return time.Duration(a.NotificationInterval) * time.Millisecond
}

// Employee represents an employee in the system. ID is the Telegram user id.
type Employee struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Username    string `gorm:"not null"`
	Email       *string
	Phone       *string
	Photo       *string
	IsConfirmed bool `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the table name used by existing deployments
func (Employee) TableName() string { return "users" }

// DisplayName falls back to a generated name when the username is empty
func (e Employee) DisplayName() string {
	if e.Username != "" {
		return e.Username
	}
	return "Сотрудник"
}

// Task is a unit of work that can be assigned to one employee
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description *string
	UserID      *int64    `gorm:"index"`
	User        *Employee `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Priority    Priority  `gorm:"type:varchar(16);not null;default:'Low'"`
	IsCompleted bool      `gorm:"not null;default:false;index"`
	Version     int64     `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignedTo reports whether the task is assigned to the given employee
func (t Task) AssignedTo(employeeID int64) bool {
	return t.UserID != nil && *t.UserID == employeeID
}

// TaskLog records the completion of a task by an employee.
// UserID carries no foreign key so records outlive deleted employees.
type TaskLog struct {
	ID          uint      `gorm:"primaryKey"`
	TaskID      uint      `gorm:"not null;uniqueIndex:idx_task_logs_task_user"`
	Task        *Task     `gorm:"foreignKey:TaskID"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_task_logs_task_user"`
	CompletedAt time.Time `gorm:"not null"`
}

// TableName keeps the table name used by existing deployments
func (TaskLog) TableName() string { return "task_logs" }

// EmployeeStats pairs an employee with the number of tasks they completed
type EmployeeStats struct {
	Employee
	Completed int64
}

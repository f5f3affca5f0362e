package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
)

type gormTaskRepository struct {
	db *gorm.DB
}

func (r *gormTaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Preload("User").First(&task, id).Error; err != nil {
		return nil, notFound(err, "task %d", id)
	}
	return &task, nil
}

func (r *gormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Version == 0 {
		task.Version = 1
	}
	return r.db.WithContext(ctx).Omit("User").Create(task).Error
}

func (r *gormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]any{
			"title":        task.Title,
			"description":  task.Description,
			"user_id":      task.UserID,
			"priority":     task.Priority,
			"is_completed": task.IsCompleted,
			"version":      task.Version + 1,
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: task %d", apperr.ErrNotFound, task.ID)
		}
		return fmt.Errorf("%w: task %d was modified concurrently", apperr.ErrConflict, task.ID)
	}
	task.Version++
	task.UpdatedAt = now
	return nil
}

func (r *gormTaskRepository) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).Preload("User").Order("id").Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) ListActiveByAssignee(ctx context.Context, employeeID int64, offset, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_completed = ?", employeeID, false).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) CountActiveByAssignee(ctx context.Context, employeeID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND is_completed = ?", employeeID, false).
		Count(&n).Error
	return n, err
}

func (r *gormTaskRepository) UnassignAll(ctx context.Context, employeeID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ?", employeeID).
		Updates(map[string]any{
			"user_id":    nil,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasklist/internal/models"
)

type gormTaskLogRepository struct {
	db *gorm.DB
}

func (r *gormTaskLogRepository) Exists(ctx context.Context, taskID uint, employeeID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TaskLog{}).
		Where("task_id = ? AND user_id = ?", taskID, employeeID).
		Count(&n).Error
	return n > 0, err
}

func (r *gormTaskLogRepository) Create(ctx context.Context, log *models.TaskLog) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("Task").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(log)
	return res.RowsAffected > 0, res.Error
}

func (r *gormTaskLogRepository) CountsByEmployee(ctx context.Context) (map[int64]int64, error) {
	var rows []struct {
		UserID int64
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&models.TaskLog{}).
		Select("user_id, count(*) as n").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.N
	}
	return counts, nil
}

func (r *gormTaskLogRepository) List(ctx context.Context) ([]models.TaskLog, error) {
	var logs []models.TaskLog
	err := r.db.WithContext(ctx).Preload("Task").Order("completed_at, id").Find(&logs).Error
	return logs, err
}

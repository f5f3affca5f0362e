package repository

import (
	"context"

	"gorm.io/gorm"

	"tasklist/internal/models"
)

type gormEmployeeRepository struct {
	db *gorm.DB
}

func (r *gormEmployeeRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "employee %d", id)
	}
	return &employee, nil
}

func (r *gormEmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *gormEmployeeRepository) Save(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

func (r *gormEmployeeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Employee{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormEmployeeRepository) ListByConfirmation(ctx context.Context, confirmed bool) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.WithContext(ctx).
		Where("is_confirmed = ?", confirmed).
		Order("created_at, id").
		Find(&employees).Error
	return employees, err
}

func (r *gormEmployeeRepository) CountByConfirmation(ctx context.Context, confirmed bool) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Employee{}).Where("is_confirmed = ?", confirmed).Count(&n).Error
	return n, err
}

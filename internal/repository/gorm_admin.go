package repository

import (
	"context"

	"gorm.io/gorm"

	"tasklist/internal/models"
)

type gormAdminRepository struct {
	db *gorm.DB
}

func (r *gormAdminRepository) GetByLogin(ctx context.Context, login string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "login = ?", login).Error; err != nil {
		return nil, notFound(err, "admin %q", login)
	}
	return &admin, nil
}

func (r *gormAdminRepository) Save(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Save(admin).Error
}

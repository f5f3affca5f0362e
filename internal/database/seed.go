package database

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"tasklist/internal/models"
)

// DefaultAdmin is created on first run when the admins table is empty
func DefaultAdmin() models.Admin {
	return models.Admin{
		Login:                "admin",
		Password:             "admin",
		Username:             "Administrator",
		Theme:                false,
		NotificationInterval: 5000,
		SoundNotifications:   true,
		NewUserNotifications: true,
	}
}

// SeedDefaultAdmin creates the default admin account.
// Idempotent: skips if any admin already exists.
func SeedDefaultAdmin(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Admin{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		admin := DefaultAdmin()
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		slog.Info("Default admin account created", "login", admin.Login)
		return nil
	})
}

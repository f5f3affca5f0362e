package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/repository"
)

// NotificationPrefs are the console notification settings of an admin
type NotificationPrefs struct {
	IntervalSeconds int `validate:"min=1,max=86400"`
	Sound           bool
	NewUsers        bool
}

// AdminService handles admin login and settings
type AdminService struct {
	store *repository.Store
}

// NewAdminService creates a new admin service
func NewAdminService(store *repository.Store) *AdminService {
	return &AdminService{store: store}
}

// Authenticate checks the credentials and returns the account.
// Passwords are stored and compared in plaintext.
func (s *AdminService) Authenticate(ctx context.Context, login, password string) (*models.Admin, error) {
	admin, err := s.Get(ctx, strings.TrimSpace(login))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid login or password", apperr.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	if !passwordMatches(admin.Password, password) {
		slog.Warn("Failed admin login", "login", login)
		return nil, fmt.Errorf("%w: invalid login or password", apperr.ErrForbidden)
	}
	return admin, nil
}

// Get returns the admin account
func (s *AdminService) Get(ctx context.Context, login string) (*models.Admin, error) {
	var admin *models.Admin
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		admin, err = r.Admins.GetByLogin(ctx, login)
		return err
	})
	return admin, err
}

// UpdateProfile changes the display name and, when newPassword is set, the
// password. The current password must match.
func (s *AdminService) UpdateProfile(ctx context.Context, login, displayName, oldPassword, newPassword string) (*models.Admin, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, fmt.Errorf("%w: display name is required", apperr.ErrValidation)
	}

	return s.update(ctx, login, func(a *models.Admin) error {
		if !passwordMatches(a.Password, oldPassword) {
			return fmt.Errorf("%w: current password does not match", apperr.ErrForbidden)
		}
		a.Username = name
		if newPassword != "" {
			a.Password = newPassword
		}
		return nil
	})
}

// SetTheme stores the console theme: false light, true dark
func (s *AdminService) SetTheme(ctx context.Context, login string, dark bool) (*models.Admin, error) {
	return s.update(ctx, login, func(a *models.Admin) error {
		a.Theme = dark
		return nil
	})
}

// SetNotificationPrefs stores the poll interval and notification toggles
func (s *AdminService) SetNotificationPrefs(ctx context.Context, login string, prefs NotificationPrefs) (*models.Admin, error) {
	if err := validateStruct(prefs); err != nil {
		return nil, err
	}
	return s.update(ctx, login, func(a *models.Admin) error {
		a.NotificationInterval = prefs.IntervalSeconds * 1000
		a.SoundNotifications = prefs.Sound
		a.NewUserNotifications = prefs.NewUsers
		return nil
	})
}

func (s *AdminService) update(ctx context.Context, login string, mutate func(*models.Admin) error) (*models.Admin, error) {
	var admin *models.Admin
	err := s.store.Do(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		admin, err = r.Admins.GetByLogin(ctx, login)
		if err != nil {
			return err
		}
		if err := mutate(admin); err != nil {
			return err
		}
		return r.Admins.Save(ctx, admin)
	})
	if err != nil {
		return nil, fmt.Errorf("update admin %q: %w", login, err)
	}
	return admin, nil
}

func passwordMatches(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

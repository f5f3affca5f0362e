package services

import (
	"context"
	"errors"
	"testing"

	"tasklist/internal/apperr"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
	}{
		{"default account", "admin", "admin", nil},
		{"wrong password", "admin", "nope", apperr.ErrForbidden},
		{"unknown login", "root", "admin", apperr.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin, err := f.admins.Authenticate(ctx, tt.login, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && admin.Username != "Administrator" {
				t.Errorf("Username = %q, want Administrator", admin.Username)
			}
		})
	}
}

func TestAdminSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.admins.UpdateProfile(ctx, "admin", "Boss", "wrong", "secret"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("UpdateProfile() with wrong password error = %v, want ErrForbidden", err)
	}
	if _, err := f.admins.UpdateProfile(ctx, "admin", " ", "admin", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("UpdateProfile() with empty name error = %v, want ErrValidation", err)
	}
	if _, err := f.admins.UpdateProfile(ctx, "admin", "Boss", "admin", "secret"); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if _, err := f.admins.Authenticate(ctx, "admin", "secret"); err != nil {
		t.Errorf("Authenticate() with new password error = %v", err)
	}

	admin, err := f.admins.SetTheme(ctx, "admin", true)
	if err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}
	if !admin.Theme {
		t.Error("Theme = false, want true")
	}

	if _, err := f.admins.SetNotificationPrefs(ctx, "admin", NotificationPrefs{IntervalSeconds: 0}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("SetNotificationPrefs(0) error = %v, want ErrValidation", err)
	}
	admin, err = f.admins.SetNotificationPrefs(ctx, "admin", NotificationPrefs{IntervalSeconds: 10, Sound: false, NewUsers: true})
	if err != nil {
		t.Fatalf("SetNotificationPrefs() error = %v", err)
	}

	stored, err := f.admins.Get(ctx, "admin")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.NotificationInterval != 10000 || stored.SoundNotifications || !stored.NewUserNotifications || !stored.Theme {
		t.Errorf("stored settings = %+v", stored)
	}
	if stored.Username != "Boss" || admin.Username != "Boss" {
		t.Errorf("Username = %q, want Boss", stored.Username)
	}
}

package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/notify"
	"tasklist/internal/services"
)

// Notifier pushes service events to employees' chats and alerts to the admin chat
type Notifier struct {
	api         API
	adminChatID int64
}

// Ensure Notifier implements both notification interfaces
var (
	_ services.Notifier = (*Notifier)(nil)
	_ notify.Alerter    = (*Notifier)(nil)
)

// NewNotifier creates a new bot notifier. adminChatID 0 disables admin alerts.
func NewNotifier(api API, adminChatID int64) *Notifier {
	return &Notifier{api: api, adminChatID: adminChatID}
}

// NotifyConfirmed tells the employee their account is usable
func (n *Notifier) NotifyConfirmed(_ context.Context, employee models.Employee) error {
	msg := tgbotapi.NewMessage(employee.ID, "✅ Ваш аккаунт подтверждён администратором! Теперь вы можете работать с задачами.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📌 Мои задачи", "tasks_1")),
		mainMenuRow(),
	)
	return n.deliver(employee.ID, msg)
}

// NotifyTaskAssigned tells the employee about a task assigned to them
func (n *Notifier) NotifyTaskAssigned(_ context.Context, employee models.Employee, task models.Task) error {
	if !employee.IsConfirmed {
		return nil
	}
	text := fmt.Sprintf("📌 Новая задача назначена!\n\nЗадача #%d: %s\nОписание: %s\nПриоритет: %s",
		task.ID, task.Title, describe(task.Description), task.Priority.Label())
	msg := tgbotapi.NewMessage(employee.ID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 К задачам", "tasks_1")),
	)
	return n.deliver(employee.ID, msg)
}

// NotifyTaskCompleted echoes a completion back to the employee
func (n *Notifier) NotifyTaskCompleted(_ context.Context, employee models.Employee, task models.Task) error {
	if !employee.IsConfirmed {
		return nil
	}
	return n.deliver(employee.ID, tgbotapi.NewMessage(employee.ID, fmt.Sprintf("✅ Задача #%d выполнена!", task.ID)))
}

// SendNotification sends message to the admin chat
func (n *Notifier) SendNotification(message string) {
	if n.adminChatID == 0 {
		return
	}
	if err := n.deliver(n.adminChatID, tgbotapi.NewMessage(n.adminChatID, message)); err != nil {
		slog.Warn("Failed to send admin notification", "error", err)
	}
}

func (n *Notifier) deliver(chatID int64, msg tgbotapi.MessageConfig) error {
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("%w: send to %d: %v", apperr.ErrExternalService, chatID, err)
	}
	return nil
}

// PhotoSource reads profile photos through the Bot API
type PhotoSource struct {
	api API
}

var _ services.PhotoSource = (*PhotoSource)(nil)

// NewPhotoSource creates a photo source over api
func NewPhotoSource(api API) *PhotoSource {
	return &PhotoSource{api: api}
}

// ProfilePhoto returns the file URL of the largest size of the user's first
// profile photo, or "" if they have none.
func (p *PhotoSource) ProfilePhoto(_ context.Context, userID int64) (string, error) {
	cfg := tgbotapi.NewUserProfilePhotos(userID)
	cfg.Limit = 1
	photos, err := p.api.GetUserProfilePhotos(cfg)
	if err != nil {
		return "", fmt.Errorf("%w: profile photos of %d: %v", apperr.ErrExternalService, userID, err)
	}
	if photos.TotalCount == 0 || len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}

	sizes := photos.Photos[0]
	url, err := p.api.GetFileDirectURL(sizes[len(sizes)-1].FileID)
	if err != nil {
		return "", fmt.Errorf("%w: photo file of %d: %v", apperr.ErrExternalService, userID, err)
	}
	return url, nil
}

// Package bot is the Telegram front-end: employees register with /start and
// work through their active tasks with inline buttons.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/services"
)

// API is the subset of *tgbotapi.BotAPI the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUserProfilePhotos(config tgbotapi.UserProfilePhotosConfig) (tgbotapi.UserProfilePhotos, error)
	GetFileDirectURL(fileID string) (string, error)
}

var _ API = (*tgbotapi.BotAPI)(nil)

// Directory is the part of the employee service the bot needs
type Directory interface {
	RegisterOrTouch(ctx context.Context, id int64, displayName string) (*models.Employee, bool, error)
	Get(ctx context.Context, id int64) (*models.Employee, error)
}

var _ Directory = (*services.EmployeeService)(nil)

const (
	msgRetryLater   = "Произошла ошибка. Попробуйте позже."
	msgRetry        = "Произошла ошибка. Попробуйте снова."
	msgUseStart     = "Пожалуйста, используйте /start для регистрации."
	msgNotConfirmed = "❌ Ваш аккаунт не подтверждён."
	msgNoTasks      = "✅ У вас нет активных задач!"
	msgTaskNotFound = "Задача не найдена."
	msgNotYourTask  = "Задача не найдена или не принадлежит вам."
)

// Bot handles updates from Telegram
type Bot struct {
	api       API
	tasks     services.TaskProcessor
	employees Directory
}

// Connect authorizes with the Bot API
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram: %v", apperr.ErrExternalService, err)
	}
	api.Debug = false
	slog.Info("Authorized on account", "username", api.Self.UserName)
	return api, nil
}

// New creates a bot over api
func New(api API, tasks services.TaskProcessor, employees Directory) *Bot {
	return &Bot{api: api, tasks: tasks, employees: employees}
}

// Run handles updates until ctx is done or the channel is closed
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	switch update.Message.Command() {
	case "start":
		b.handleStart(ctx, update.Message)
	default:
		b.send(tgbotapi.NewMessage(update.Message.Chat.ID, msgUseStart))
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	employee, created, err := b.employees.RegisterOrTouch(ctx, message.From.ID, displayName(message.From))
	if err != nil {
		slog.Error("Failed to handle /start", "user_id", message.From.ID, "error", err)
		b.reply(message, msgRetryLater)
		return
	}

	if created {
		msg := tgbotapi.NewMessage(chatID, "🎉 Вы зарегистрированы! Ожидайте подтверждения от администратора.")
		msg.ReplyToMessageID = message.MessageID
		msg.ReplyMarkup = refreshKeyboard()
		b.send(msg)
		return
	}
	b.showMainMenu(ctx, chatID, employee)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		slog.Debug("Failed to answer callback", "error", err)
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	employee, err := b.employees.Get(ctx, query.From.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		b.send(tgbotapi.NewMessage(chatID, msgUseStart))
		return
	}
	if err != nil {
		slog.Error("Failed to load employee", "user_id", query.From.ID, "error", err)
		b.send(tgbotapi.NewMessage(chatID, msgRetry))
		return
	}

	action, err := ParseCallback(query.Data)
	if err != nil {
		slog.Warn("Unknown callback", "data", query.Data, "user_id", query.From.ID)
		return
	}

	switch action.Kind {
	case ActionRefresh:
		err = b.refresh(ctx, query, employee)
	case ActionTasks:
		err = b.showTasks(ctx, query.Message, employee, action.Page)
	case ActionViewTask:
		err = b.showTaskDetails(ctx, query.Message, employee, action.Page, action.Index)
	case ActionComplete:
		err = b.completeTask(ctx, query.Message, employee, action.TaskID)
	case ActionMainMenu:
		b.deleteMessage(query.Message)
		b.showMainMenu(ctx, chatID, employee)
	}

	if err != nil {
		slog.Error("Callback failed", "data", query.Data, "user_id", employee.ID, "error", err)
		b.send(tgbotapi.NewMessage(chatID, msgRetry))
	}
}

func (b *Bot) refresh(ctx context.Context, query *tgbotapi.CallbackQuery, employee *models.Employee) error {
	employee, _, err := b.employees.RegisterOrTouch(ctx, employee.ID, displayName(query.From))
	if err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, "Данные обновлены!")
	b.send(edit)
	b.showMainMenu(ctx, query.Message.Chat.ID, employee)
	return nil
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64, employee *models.Employee) {
	if !employee.IsConfirmed {
		msg := tgbotapi.NewMessage(chatID, "❌ Ваш аккаунт ещё не подтверждён. Дождитесь подтверждения от администратора.")
		msg.ReplyMarkup = refreshKeyboard()
		b.send(msg)
		return
	}

	active, err := b.tasks.CountActive(ctx, employee.ID)
	if err != nil {
		slog.Error("Failed to count active tasks", "user_id", employee.ID, "error", err)
		b.send(tgbotapi.NewMessage(chatID, msgRetryLater))
		return
	}

	text := fmt.Sprintf("👋 Привет, %s!\n\n📋 У вас %d активных задач.", employee.DisplayName(), active)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📌 Мои задачи", "tasks_1")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", "refresh")),
	)
	b.send(msg)
}

func (b *Bot) showTasks(ctx context.Context, message *tgbotapi.Message, employee *models.Employee, page int) error {
	chatID := message.Chat.ID
	result, err := b.tasks.ListActiveTasks(ctx, employee.ID, page)
	if errors.Is(err, apperr.ErrForbidden) {
		b.send(tgbotapi.NewMessage(chatID, msgNotConfirmed))
		return nil
	}
	if err != nil {
		return err
	}
	if result.Total == 0 {
		b.send(tgbotapi.NewMessage(chatID, msgNoTasks))
		return nil
	}

	first := (result.Page-1)*result.PageSize + 1
	var sb strings.Builder
	sb.WriteString("📌 Ваши активные задачи:\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(result.Items)+2)
	for i, task := range result.Items {
		idx := first + i
		fmt.Fprintf(&sb, "%d. %s\nПриоритет: %s\n\n", idx, task.Title, task.Priority.Label())
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d. Подробности", idx), fmt.Sprintf("view_task_%d_%d", result.Page, idx)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if result.Page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅ Назад", fmt.Sprintf("tasks_%d", result.Page-1)))
	}
	if result.Page < result.TotalPages {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Вперёд ➡", fmt.Sprintf("tasks_%d", result.Page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, mainMenuRow())

	b.deleteMessage(message)
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(msg)
	return nil
}

func (b *Bot) showTaskDetails(ctx context.Context, message *tgbotapi.Message, employee *models.Employee, page, index int) error {
	chatID := message.Chat.ID
	task, err := b.tasks.ActiveTaskAt(ctx, employee.ID, index)
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		b.send(tgbotapi.NewMessage(chatID, msgNotConfirmed))
		return nil
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrValidation):
		b.send(tgbotapi.NewMessage(chatID, msgTaskNotFound))
		return nil
	case err != nil:
		return err
	}

	text := fmt.Sprintf("📌 Задача #%d:\n\nНазвание: %s\nОписание: %s\nПриоритет: %s",
		task.ID, task.Title, describe(task.Description), task.Priority.Label())

	b.deleteMessage(message)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Выполнить", fmt.Sprintf("complete_%d", task.ID))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅ К списку задач", fmt.Sprintf("tasks_%d", page))),
		mainMenuRow(),
	)
	b.send(msg)
	return nil
}

func (b *Bot) completeTask(ctx context.Context, message *tgbotapi.Message, employee *models.Employee, taskID uint) error {
	chatID := message.Chat.ID
	_, transitioned, err := b.tasks.CompleteTask(ctx, taskID, employee.ID)
	switch {
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrNotFound):
		b.send(tgbotapi.NewMessage(chatID, msgNotYourTask))
		return nil
	case err != nil:
		return err
	}

	if !transitioned {
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Задача #%d уже выполнена.", taskID)))
		return nil
	}

	// the completion echo is sent by the notifier
	b.deleteMessage(message)
	b.showMainMenu(ctx, chatID, employee)
	return nil
}

func (b *Bot) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		slog.Warn("Bot send error", "error", err)
	}
}

func (b *Bot) deleteMessage(message *tgbotapi.Message) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)); err != nil {
		slog.Debug("Failed to delete message", "chat_id", message.Chat.ID, "error", err)
	}
}

func refreshKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", "refresh")),
	)
}

func mainMenuRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", "main_menu"))
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func describe(description *string) string {
	if description == nil || *description == "" {
		return "Нет описания"
	}
	return *description
}

// ActionKind identifies an inline button
type ActionKind int

const (
	ActionRefresh ActionKind = iota + 1
	ActionTasks
	ActionViewTask
	ActionComplete
	ActionMainMenu
)

// Action is a parsed callback payload
type Action struct {
	Kind   ActionKind
	Page   int
	Index  int
	TaskID uint
}

// ParseCallback decodes refresh, main_menu, tasks_<page>,
// view_task_<page>_<index> and complete_<task id>
func ParseCallback(data string) (Action, error) {
	switch {
	case data == "refresh":
		return Action{Kind: ActionRefresh}, nil
	case data == "main_menu":
		return Action{Kind: ActionMainMenu}, nil
	case strings.HasPrefix(data, "tasks_"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "tasks_"))
		if err != nil {
			return Action{}, fmt.Errorf("bad page in %q: %w", data, err)
		}
		return Action{Kind: ActionTasks, Page: page}, nil
	case strings.HasPrefix(data, "view_task_"):
		parts := strings.Split(strings.TrimPrefix(data, "view_task_"), "_")
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("bad task view %q", data)
		}
		page, err := strconv.Atoi(parts[0])
		if err != nil {
			return Action{}, fmt.Errorf("bad page in %q: %w", data, err)
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			return Action{}, fmt.Errorf("bad index in %q: %w", data, err)
		}
		return Action{Kind: ActionViewTask, Page: page, Index: index}, nil
	case strings.HasPrefix(data, "complete_"):
		id, err := strconv.ParseUint(strings.TrimPrefix(data, "complete_"), 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("bad task id in %q: %w", data, err)
		}
		return Action{Kind: ActionComplete, TaskID: uint(id)}, nil
	default:
		return Action{}, fmt.Errorf("unknown callback %q", data)
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/services"
)

// fakeAPI records everything the bot sends
type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	photos   tgbotapi.UserProfilePhotos
	sendErr  error
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUserProfilePhotos(tgbotapi.UserProfilePhotosConfig) (tgbotapi.UserProfilePhotos, error) {
	return f.photos, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "https://api.telegram.org/file/bot-token/" + fileID, nil
}

// texts returns the text of every sent message
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	t.Fatal("no message sent")
	return tgbotapi.MessageConfig{}
}

// mockDirectory is a mock employee directory
type mockDirectory struct {
	employees map[int64]*models.Employee
	err       error
}

var _ Directory = (*mockDirectory)(nil)

func (m *mockDirectory) RegisterOrTouch(_ context.Context, id int64, name string) (*models.Employee, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if e, ok := m.employees[id]; ok {
		e.Username = name
		return e, false, nil
	}
	e := &models.Employee{ID: id, Username: name}
	m.employees[id] = e
	return e, true, nil
}

func (m *mockDirectory) Get(_ context.Context, id int64) (*models.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: employee %d", apperr.ErrNotFound, id)
}

// mockTasks serves a fixed list of active tasks with page size 5
type mockTasks struct {
	active    []models.Task
	completed map[uint]bool
}

var _ services.TaskProcessor = (*mockTasks)(nil)

func (m *mockTasks) ListActiveTasks(_ context.Context, _ int64, page int) (*services.TaskPage, error) {
	const size = 5
	total := len(m.active)
	pages := max((total+size-1)/size, 1)
	page = min(max(page, 1), pages)
	start := (page - 1) * size
	end := min(start+size, total)
	return &services.TaskPage{Items: m.active[start:end], Page: page, TotalPages: pages, Total: int64(total), PageSize: size}, nil
}

func (m *mockTasks) ActiveTaskAt(_ context.Context, _ int64, index int) (*models.Task, error) {
	if index < 1 || index > len(m.active) {
		return nil, apperr.ErrNotFound
	}
	return &m.active[index-1], nil
}

func (m *mockTasks) CompleteTask(_ context.Context, id uint, _ int64) (*models.Task, bool, error) {
	for _, t := range m.active {
		if t.ID == id {
			done := m.completed[id]
			m.completed[id] = true
			return &t, !done, nil
		}
	}
	return nil, false, apperr.ErrForbidden
}

func (m *mockTasks) CountActive(context.Context, int64) (int64, error) {
	return int64(len(m.active)), nil
}

func newTestBot(employees ...*models.Employee) (*Bot, *fakeAPI, *mockTasks) {
	api := &fakeAPI{}
	dir := &mockDirectory{employees: map[int64]*models.Employee{}}
	for _, e := range employees {
		dir.employees[e.ID] = e
	}
	tasks := &mockTasks{completed: map[uint]bool{}}
	for i := 1; i <= 7; i++ {
		tasks.active = append(tasks.active, models.Task{ID: uint(100 + i), Title: fmt.Sprintf("task %d", i), Priority: models.PriorityHigh})
	}
	return New(api, tasks, dir), api, tasks
}

func startUpdate(userID int64) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "ann"},
		Chat:      &tgbotapi.Chat{ID: userID},
		Text:      "/start",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID, UserName: "ann"},
		Message: &tgbotapi.Message{MessageID: 9, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data    string
		want    Action
		wantErr bool
	}{
		{data: "refresh", want: Action{Kind: ActionRefresh}},
		{data: "main_menu", want: Action{Kind: ActionMainMenu}},
		{data: "tasks_2", want: Action{Kind: ActionTasks, Page: 2}},
		{data: "view_task_2_7", want: Action{Kind: ActionViewTask, Page: 2, Index: 7}},
		{data: "complete_15", want: Action{Kind: ActionComplete, TaskID: 15}},
		{data: "tasks_x", wantErr: true},
		{data: "view_task_2", wantErr: true},
		{data: "complete_-1", wantErr: true},
		{data: "other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseCallback(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCallback() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCallback() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStartRegistersThenShowsMenu(t *testing.T) {
	b, api, _ := newTestBot()
	ctx := context.Background()

	b.HandleUpdate(ctx, startUpdate(42))
	if got := api.lastMessage(t).Text; !strings.Contains(got, "зарегистрированы") {
		t.Errorf("first /start reply = %q", got)
	}

	b.HandleUpdate(ctx, startUpdate(42))
	if got := api.lastMessage(t).Text; !strings.Contains(got, "не подтверждён") {
		t.Errorf("unconfirmed /start reply = %q", got)
	}
}

func TestStartConfirmedShowsTaskCount(t *testing.T) {
	b, api, _ := newTestBot(&models.Employee{ID: 42, Username: "ann", IsConfirmed: true})
	b.HandleUpdate(context.Background(), startUpdate(42))

	msg := api.lastMessage(t)
	if !strings.Contains(msg.Text, "У вас 7 активных задач") {
		t.Errorf("menu = %q", msg.Text)
	}
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || *markup.InlineKeyboard[0][0].CallbackData != "tasks_1" {
		t.Errorf("menu keyboard = %+v", msg.ReplyMarkup)
	}
}

func TestStartStoreFailure(t *testing.T) {
	b, api, _ := newTestBot()
	b.employees.(*mockDirectory).err = apperr.ErrConnectivity
	b.HandleUpdate(context.Background(), startUpdate(42))
	if got := api.lastMessage(t).Text; got != msgRetryLater {
		t.Errorf("reply = %q, want %q", got, msgRetryLater)
	}
}

func TestCallbackUnknownUser(t *testing.T) {
	b, api, _ := newTestBot()
	b.HandleUpdate(context.Background(), callbackUpdate(42, "tasks_1"))
	if got := api.lastMessage(t).Text; got != msgUseStart {
		t.Errorf("reply = %q, want %q", got, msgUseStart)
	}
}

func TestTaskListPages(t *testing.T) {
	b, api, _ := newTestBot(&models.Employee{ID: 42, IsConfirmed: true})
	ctx := context.Background()

	tests := []struct {
		data      string
		wantFirst string
		wantNav   []string
	}{
		{"tasks_1", "1. task 1", []string{"tasks_2"}},
		{"tasks_2", "6. task 6", []string{"tasks_1"}},
		{"tasks_9", "6. task 6", []string{"tasks_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			b.HandleUpdate(ctx, callbackUpdate(42, tt.data))
			msg := api.lastMessage(t)
			if !strings.Contains(msg.Text, tt.wantFirst) || !strings.Contains(msg.Text, "Приоритет: Высокий") {
				t.Errorf("list = %q", msg.Text)
			}

			markup := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
			nav := markup.InlineKeyboard[len(markup.InlineKeyboard)-2]
			var got []string
			for _, btn := range nav {
				got = append(got, *btn.CallbackData)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.wantNav) {
				t.Errorf("nav = %v, want %v", got, tt.wantNav)
			}
		})
	}
}

func TestViewAndCompleteTask(t *testing.T) {
	b, api, tasks := newTestBot(&models.Employee{ID: 42, IsConfirmed: true})
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(42, "view_task_2_6"))
	msg := api.lastMessage(t)
	if !strings.Contains(msg.Text, "Задача #106") || !strings.Contains(msg.Text, "Нет описания") {
		t.Errorf("details = %q", msg.Text)
	}
	markup := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if got := *markup.InlineKeyboard[0][0].CallbackData; got != "complete_106" {
		t.Errorf("complete button = %q", got)
	}

	b.HandleUpdate(ctx, callbackUpdate(42, "view_task_1_99"))
	if got := api.lastMessage(t).Text; got != msgTaskNotFound {
		t.Errorf("missing task reply = %q", got)
	}

	b.HandleUpdate(ctx, callbackUpdate(42, "complete_106"))
	if !tasks.completed[106] {
		t.Error("task 106 was not completed")
	}
	if got := api.lastMessage(t).Text; !strings.Contains(got, "Привет") {
		t.Errorf("after completion = %q, want main menu", got)
	}

	b.HandleUpdate(ctx, callbackUpdate(42, "complete_106"))
	if got := api.lastMessage(t).Text; got != "Задача #106 уже выполнена." {
		t.Errorf("repeat completion = %q", got)
	}

	b.HandleUpdate(ctx, callbackUpdate(42, "complete_5"))
	if got := api.lastMessage(t).Text; got != msgNotYourTask {
		t.Errorf("foreign task reply = %q", got)
	}
}

func TestRefreshEditsMessage(t *testing.T) {
	b, api, _ := newTestBot(&models.Employee{ID: 42, Username: "old", IsConfirmed: true})
	b.HandleUpdate(context.Background(), callbackUpdate(42, "refresh"))

	texts := api.texts()
	if len(texts) != 2 || texts[0] != "Данные обновлены!" || !strings.Contains(texts[1], "Привет, ann") {
		t.Errorf("messages = %q", texts)
	}
}

func TestNotifier(t *testing.T) {
	api := &fakeAPI{}
	n := NewNotifier(api, 0)
	ctx := context.Background()
	confirmed := models.Employee{ID: 42, IsConfirmed: true}
	task := models.Task{ID: 3, Title: "Ship report", Priority: models.PriorityMedium}

	if err := n.NotifyConfirmed(ctx, confirmed); err != nil {
		t.Fatalf("NotifyConfirmed() error = %v", err)
	}
	if err := n.NotifyTaskAssigned(ctx, confirmed, task); err != nil {
		t.Fatalf("NotifyTaskAssigned() error = %v", err)
	}
	if err := n.NotifyTaskCompleted(ctx, confirmed, task); err != nil {
		t.Fatalf("NotifyTaskCompleted() error = %v", err)
	}
	if err := n.NotifyTaskAssigned(ctx, models.Employee{ID: 43}, task); err != nil {
		t.Fatalf("NotifyTaskAssigned(unconfirmed) error = %v", err)
	}
	n.SendNotification("ignored without admin chat")

	texts := api.texts()
	if len(texts) != 3 {
		t.Fatalf("sent %d messages, want 3: %q", len(texts), texts)
	}
	if !strings.Contains(texts[1], "Приоритет: Средний") {
		t.Errorf("assignment text = %q", texts[1])
	}

	api.sendErr = errors.New("blocked by user")
	if err := n.NotifyTaskCompleted(ctx, confirmed, task); !errors.Is(err, apperr.ErrExternalService) {
		t.Errorf("NotifyTaskCompleted() error = %v, want ErrExternalService", err)
	}

	admin := NewNotifier(api, 1000)
	admin.SendNotification("new user")
	if got := api.lastMessage(t); got.ChatID != 1000 {
		t.Errorf("admin chat = %d, want 1000", got.ChatID)
	}
}

func TestPhotoSource(t *testing.T) {
	api := &fakeAPI{}
	src := NewPhotoSource(api)

	got, err := src.ProfilePhoto(context.Background(), 42)
	if err != nil || got != "" {
		t.Errorf("ProfilePhoto() without photos = %q, %v", got, err)
	}

	api.photos = tgbotapi.UserProfilePhotos{
		TotalCount: 1,
		Photos:     [][]tgbotapi.PhotoSize{{{FileID: "small"}, {FileID: "large"}}},
	}
	got, err = src.ProfilePhoto(context.Background(), 42)
	if err != nil {
		t.Fatalf("ProfilePhoto() error = %v", err)
	}
	if !strings.HasSuffix(got, "/large") {
		t.Errorf("ProfilePhoto() = %q, want largest size", got)
	}
}

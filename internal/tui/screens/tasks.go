package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/models"
	"tasklist/internal/services"
)

type Tasks struct {
	deps   Deps
	width  int
	height int

	tasks        []models.Task
	cursor       int
	hideDone     bool
	loading      bool
	err          error
	message      string
	confirmClose bool
}

func NewTasks(deps Deps) *Tasks {
	return &Tasks{deps: deps}
}

func (t *Tasks) SetSize(width, height int) {
	t.width = width
	t.height = height
}

type tasksDataMsg struct {
	tasks []models.Task
	err   error
}

type taskCompletedMsg struct {
	task *models.Task
	err  error
}

func (t *Tasks) Init() tea.Cmd {
	t.loading = true
	t.confirmClose = false
	return t.loadData
}

func (t *Tasks) loadData() tea.Msg {
	tasks, err := t.deps.Tasks.ListTasks(context.Background())
	return tasksDataMsg{tasks: tasks, err: err}
}

func (t *Tasks) visible() []models.Task {
	if !t.hideDone {
		return t.tasks
	}
	out := make([]models.Task, 0, len(t.tasks))
	for _, task := range t.tasks {
		if !task.IsCompleted {
			out = append(out, task)
		}
	}
	return out
}

func (t *Tasks) selected() *models.Task {
	visible := t.visible()
	if t.cursor < 0 || t.cursor >= len(visible) {
		return nil
	}
	return &visible[t.cursor]
}

func (t *Tasks) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tasksDataMsg:
		t.loading = false
		t.err = msg.err
		t.tasks = msg.tasks
		t.clampCursor()
		return nil

	case taskCompletedMsg:
		if msg.err != nil {
			t.err = msg.err
			return nil
		}
		t.message = fmt.Sprintf("Задача #%d выполнена", msg.task.ID)
		return t.loadData

	case RefreshMsg:
		return t.loadData

	case tea.KeyMsg:
		return t.handleKey(msg)
	}
	return nil
}

func (t *Tasks) clampCursor() {
	if n := len(t.visible()); t.cursor >= n {
		t.cursor = max(0, n-1)
	}
}

func (t *Tasks) handleKey(msg tea.KeyMsg) tea.Cmd {
	if t.confirmClose {
		switch msg.String() {
		case "y", "Y":
			t.confirmClose = false
			return t.complete()
		case "n", "N", "esc":
			t.confirmClose = false
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.visible())-1 {
			t.cursor++
		}
	case "a":
		return Navigate("task_form")
	case "e", "enter":
		if task := t.selected(); task != nil {
			return NavigateWithTask("task_form", task.ID)
		}
	case "c":
		if task := t.selected(); task != nil && !task.IsCompleted {
			t.confirmClose = true
		}
	case "f":
		t.hideDone = !t.hideDone
		t.clampCursor()
	case "r":
		t.message = ""
		return t.Init()
	case "q", "esc":
		return Navigate("menu")
	}
	return nil
}

func (t *Tasks) complete() tea.Cmd {
	task := t.selected()
	if task == nil {
		return nil
	}
	id, version := task.ID, task.Version
	done := true
	return func() tea.Msg {
		updated, err := t.deps.Tasks.UpdateTask(context.Background(), id, services.TaskUpdate{
			IsCompleted: &done,
			Version:     &version,
		})
		return taskCompletedMsg{task: updated, err: err}
	}
}

func assigneeName(task models.Task) string {
	switch {
	case task.User != nil:
		return task.User.DisplayName()
	case task.UserID != nil:
		return fmt.Sprintf("#%d", *task.UserID)
	default:
		return "—"
	}
}

func (t *Tasks) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("ЗАДАЧИ"))
	b.WriteString("\n\n")

	if t.loading {
		b.WriteString("Загрузка...\n")
		return b.String()
	}

	b.WriteString(statusLine(t.err, t.message))

	if t.confirmClose {
		if task := t.selected(); task != nil {
			b.WriteString(WarningStyle.Render(fmt.Sprintf("Отметить задачу '%s' выполненной? Это действие необратимо. (y/n)", task.Title)))
			b.WriteString("\n")
			return b.String()
		}
	}

	visible := t.visible()
	if len(visible) == 0 {
		b.WriteString(DimStyle.Render("Задач нет."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(DimStyle.Render(fmt.Sprintf("  %-5s %-36s %-10s %-20s %s", "ID", "Название", "Приоритет", "Исполнитель", "Статус")))
		b.WriteString("\n")
		for i, task := range visible {
			status := "Активна"
			if task.IsCompleted {
				status = "Выполнена"
			}
			line := fmt.Sprintf("%-5d %-36s %-10s %-20s %s",
				task.ID, truncate(task.Title, 36), task.Priority.Label(), truncate(assigneeName(task), 20), status)
			b.WriteString(cursorLine(i == t.cursor, line))
			b.WriteString("\n")
		}
	}

	filter := "[f] Скрыть выполненные"
	if t.hideDone {
		filter = "[f] Показать все"
	}
	b.WriteString(HelpStyle.Render("[a] Добавить  [e] Изменить  [c] Выполнить  " + filter + "  [r] Обновить  [q] Назад"))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

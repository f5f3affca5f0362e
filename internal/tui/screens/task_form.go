package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/services"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldAssignee
	fieldCompleted
	fieldCount
)

// TaskForm creates a task or edits an existing one
type TaskForm struct {
	deps   Deps
	width  int
	height int

	taskID    *uint
	task      *models.Task
	title     textinput.Model
	desc      textinput.Model
	priority  models.Priority
	employees []models.Employee
	// index into employees, -1 for no assignee
	assignee  int
	completed bool
	focus     int
	loading   bool
	err       error
}

func NewTaskForm(deps Deps) *TaskForm {
	title := textinput.New()
	title.Placeholder = "Название"
	title.CharLimit = 255
	title.Width = 50

	desc := textinput.New()
	desc.Placeholder = "Описание"
	desc.CharLimit = 1000
	desc.Width = 50

	return &TaskForm{deps: deps, title: title, desc: desc}
}

func (f *TaskForm) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// SetTask selects the task to edit; nil starts a new one
func (f *TaskForm) SetTask(id *uint) {
	f.taskID = id
}

type taskFormDataMsg struct {
	task      *models.Task
	employees []models.Employee
	err       error
}

type taskSavedMsg struct {
	task *models.Task
	err  error
}

func (f *TaskForm) Init() tea.Cmd {
	f.loading = true
	f.err = nil
	f.focus = fieldTitle
	f.task = nil
	f.title.SetValue("")
	f.desc.SetValue("")
	f.priority = models.PriorityLow
	f.assignee = -1
	f.completed = false
	f.focusField()

	id := f.taskID
	return func() tea.Msg {
		ctx := context.Background()
		employees, err := f.deps.Employees.ListConfirmed(ctx)
		if err != nil {
			return taskFormDataMsg{err: err}
		}
		var task *models.Task
		if id != nil {
			if task, err = f.deps.Tasks.GetTask(ctx, *id); err != nil {
				return taskFormDataMsg{err: err}
			}
		}
		return taskFormDataMsg{task: task, employees: employees}
	}
}

func (f *TaskForm) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case taskFormDataMsg:
		f.loading = false
		f.err = msg.err
		f.employees = msg.employees
		if msg.task != nil {
			f.load(msg.task)
		}
		return textinput.Blink

	case taskSavedMsg:
		if msg.err != nil {
			f.err = msg.err
			if errors.Is(msg.err, apperr.ErrConflict) {
				f.err = fmt.Errorf("задача была изменена в другом месте, откройте её заново: %w", msg.err)
			}
			return nil
		}
		return Navigate("tasks")

	case tea.KeyMsg:
		return f.handleKey(msg)
	}

	return f.updateInput(msg)
}

func (f *TaskForm) load(task *models.Task) {
	f.task = task
	f.title.SetValue(task.Title)
	f.desc.SetValue(optionalValue(task.Description))
	f.priority = task.Priority
	f.completed = task.IsCompleted
	f.assignee = -1
	for i, e := range f.employees {
		if task.AssignedTo(e.ID) {
			f.assignee = i
		}
	}
}

func (f *TaskForm) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return Navigate("tasks")
	case "ctrl+s":
		return f.save()
	case "tab", "down":
		f.focus = (f.focus + 1) % fieldCount
		f.focusField()
		return nil
	case "shift+tab", "up":
		f.focus = (f.focus + fieldCount - 1) % fieldCount
		f.focusField()
		return nil
	case "enter":
		if f.focus == fieldCount-1 {
			return f.save()
		}
		f.focus++
		f.focusField()
		return nil
	}

	switch f.focus {
	case fieldPriority:
		switch msg.String() {
		case "left", "right", " ":
			f.priority = f.priority.Next()
		}
		return nil
	case fieldAssignee:
		switch msg.String() {
		case "right", " ":
			f.assignee++
			if f.assignee >= len(f.employees) {
				f.assignee = -1
			}
		case "left":
			f.assignee--
			if f.assignee < -1 {
				f.assignee = len(f.employees) - 1
			}
		}
		return nil
	case fieldCompleted:
		if msg.String() == " " && (f.task == nil || !f.task.IsCompleted) {
			f.completed = !f.completed
		}
		return nil
	}

	return f.updateInput(msg)
}

func (f *TaskForm) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	}
	return cmd
}

func (f *TaskForm) focusField() {
	f.title.Blur()
	f.desc.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.desc.Focus()
	}
}

func (f *TaskForm) assigneeID() int64 {
	if f.assignee < 0 || f.assignee >= len(f.employees) {
		return 0
	}
	return f.employees[f.assignee].ID
}

func (f *TaskForm) save() tea.Cmd {
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		f.err = fmt.Errorf("%w: название задачи не может быть пустым", apperr.ErrValidation)
		return nil
	}
	desc := f.desc.Value()
	priority := f.priority
	assignee := f.assigneeID()
	completed := f.completed

	if f.task == nil {
		in := services.TaskInput{Title: title, Description: &desc, Priority: priority}
		if assignee != 0 {
			in.AssigneeID = &assignee
		}
		return func() tea.Msg {
			ctx := context.Background()
			task, err := f.deps.Tasks.CreateTask(ctx, in)
			if err == nil && completed {
				done := true
				task, err = f.deps.Tasks.UpdateTask(ctx, task.ID, services.TaskUpdate{IsCompleted: &done, Version: &task.Version})
			}
			return taskSavedMsg{task: task, err: err}
		}
	}

	id, version := f.task.ID, f.task.Version
	upd := services.TaskUpdate{
		Title:       &title,
		Description: &desc,
		Priority:    &priority,
		AssigneeID:  &assignee,
		IsCompleted: &completed,
		Version:     &version,
	}
	return func() tea.Msg {
		task, err := f.deps.Tasks.UpdateTask(context.Background(), id, upd)
		return taskSavedMsg{task: task, err: err}
	}
}

func (f *TaskForm) View() string {
	var b strings.Builder

	heading := "НОВАЯ ЗАДАЧА"
	if f.task != nil {
		heading = fmt.Sprintf("ЗАДАЧА #%d", f.task.ID)
	}
	b.WriteString(TitleStyle.Render(heading))
	b.WriteString("\n\n")

	if f.loading {
		b.WriteString("Загрузка...\n")
		return b.String()
	}
	b.WriteString(statusLine(f.err, ""))

	assignee := "Не назначена"
	if f.assignee >= 0 && f.assignee < len(f.employees) {
		assignee = f.employees[f.assignee].DisplayName()
	}
	completed := "[ ] Выполнена"
	if f.completed {
		completed = "[x] Выполнена"
	}

	rows := []string{
		"Название:    " + f.title.View(),
		"Описание:    " + f.desc.View(),
		"Приоритет:   ◀ " + f.priority.Label() + " ▶",
		"Исполнитель: ◀ " + assignee + " ▶",
		completed,
	}
	for i, row := range rows {
		b.WriteString(cursorLine(i == f.focus, row))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[tab] Поле  [←/→] Выбор  [space] Переключить  [ctrl+s] Сохранить  [esc] Отмена"))
	return b.String()
}

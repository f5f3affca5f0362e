package screens

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasklist/internal/models"
	"tasklist/internal/services"
)

type employeesMode int

const (
	employeesModeList employeesMode = iota
	employeesModeEdit
	employeesModeDelete
)

const avatarWidth = 16

const (
	profileName = iota
	profileEmail
	profilePhone
	profilePhoto
)

type Employees struct {
	deps   Deps
	width  int
	height int

	employees []models.EmployeeStats
	cursor    int
	mode      employeesMode
	inputs    []textinput.Model
	focus     int
	avatars   map[string]image.Image
	loading   bool
	err       error
	message   string
}

func NewEmployees(deps Deps) *Employees {
	placeholders := []string{"Имя", "Email", "Телефон", "Фото: URL или путь к файлу"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		ti := textinput.New()
		ti.Placeholder = p
		ti.CharLimit = 255
		ti.Width = 50
		inputs[i] = ti
	}
	return &Employees{deps: deps, inputs: inputs, avatars: make(map[string]image.Image)}
}

func (e *Employees) SetSize(width, height int) {
	e.width = width
	e.height = height
}

type employeesDataMsg struct {
	employees []models.EmployeeStats
	err       error
}

type employeeSavedMsg struct {
	employee *models.Employee
	err      error
}

type employeeDeletedMsg struct {
	name string
	err  error
}

type avatarMsg struct {
	ref string
	img image.Image
}

func (e *Employees) Init() tea.Cmd {
	e.loading = true
	e.mode = employeesModeList
	e.message = ""
	return e.loadData
}

func (e *Employees) loadData() tea.Msg {
	employees, err := e.deps.Employees.ListConfirmedWithStats(context.Background())
	return employeesDataMsg{employees: employees, err: err}
}

func (e *Employees) selected() *models.EmployeeStats {
	if e.cursor < 0 || e.cursor >= len(e.employees) {
		return nil
	}
	return &e.employees[e.cursor]
}

func (e *Employees) loadAvatar() tea.Cmd {
	emp := e.selected()
	if e.deps.Avatars == nil || emp == nil || emp.Photo == nil {
		return nil
	}
	ref := *emp.Photo
	if _, ok := e.avatars[ref]; ok {
		return nil
	}
	return func() tea.Msg {
		img, err := e.deps.Avatars.Get(context.Background(), ref)
		if err != nil {
			return avatarMsg{ref: ref}
		}
		return avatarMsg{ref: ref, img: img}
	}
}

func (e *Employees) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case employeesDataMsg:
		e.loading = false
		e.err = msg.err
		e.employees = msg.employees
		if e.cursor >= len(e.employees) {
			e.cursor = max(0, len(e.employees)-1)
		}
		return e.loadAvatar()

	case avatarMsg:
		// nil marks a failed load so it is not retried on every move
		e.avatars[msg.ref] = msg.img
		return nil

	case employeeSavedMsg:
		if msg.err != nil {
			e.err = msg.err
			return nil
		}
		e.mode = employeesModeList
		e.message = fmt.Sprintf("Профиль %s сохранён", msg.employee.DisplayName())
		return e.loadData

	case employeeDeletedMsg:
		e.mode = employeesModeList
		if msg.err != nil {
			e.err = msg.err
			return nil
		}
		e.message = fmt.Sprintf("Сотрудник %s удалён", msg.name)
		return e.loadData

	case RefreshMsg:
		if e.mode == employeesModeList {
			return e.loadData
		}
		return nil

	case tea.KeyMsg:
		return e.handleKey(msg)
	}

	if e.mode == employeesModeEdit {
		var cmd tea.Cmd
		e.inputs[e.focus], cmd = e.inputs[e.focus].Update(msg)
		return cmd
	}
	return nil
}

func (e *Employees) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch e.mode {
	case employeesModeEdit:
		return e.handleEditKey(msg)
	case employeesModeDelete:
		return e.handleDeleteKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
			return e.loadAvatar()
		}
	case "down", "j":
		if e.cursor < len(e.employees)-1 {
			e.cursor++
			return e.loadAvatar()
		}
	case "e", "enter":
		if emp := e.selected(); emp != nil {
			e.startEdit(emp.Employee)
			return textinput.Blink
		}
	case "d":
		if e.selected() != nil {
			e.mode = employeesModeDelete
		}
	case "r":
		return e.Init()
	case "q", "esc":
		return Navigate("menu")
	}
	return nil
}

func (e *Employees) startEdit(emp models.Employee) {
	e.mode = employeesModeEdit
	e.err = nil
	e.inputs[profileName].SetValue(emp.Username)
	e.inputs[profileEmail].SetValue(optionalValue(emp.Email))
	e.inputs[profilePhone].SetValue(optionalValue(emp.Phone))
	e.inputs[profilePhoto].SetValue(optionalValue(emp.Photo))
	e.focus = profileName
	e.focusInput()
}

func (e *Employees) focusInput() {
	for i := range e.inputs {
		if i == e.focus {
			e.inputs[i].Focus()
		} else {
			e.inputs[i].Blur()
		}
	}
}

func (e *Employees) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		e.mode = employeesModeList
		e.focusInput()
		return nil
	case "tab", "down":
		e.focus = (e.focus + 1) % len(e.inputs)
		e.focusInput()
		return nil
	case "shift+tab", "up":
		e.focus = (e.focus + len(e.inputs) - 1) % len(e.inputs)
		e.focusInput()
		return nil
	case "enter", "ctrl+s":
		if msg.String() == "enter" && e.focus < len(e.inputs)-1 {
			e.focus++
			e.focusInput()
			return nil
		}
		return e.saveProfile()
	}

	var cmd tea.Cmd
	e.inputs[e.focus], cmd = e.inputs[e.focus].Update(msg)
	return cmd
}

func (e *Employees) saveProfile() tea.Cmd {
	emp := e.selected()
	if emp == nil {
		return nil
	}
	id := emp.ID
	email := e.inputs[profileEmail].Value()
	phone := e.inputs[profilePhone].Value()
	photo := e.inputs[profilePhoto].Value()
	upd := services.ProfileUpdate{
		Username: e.inputs[profileName].Value(),
		Email:    &email,
		Phone:    &phone,
		Photo:    &photo,
	}
	return func() tea.Msg {
		updated, err := e.deps.Employees.UpdateProfile(context.Background(), id, upd)
		return employeeSavedMsg{employee: updated, err: err}
	}
}

func (e *Employees) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		emp := e.selected()
		if emp == nil {
			e.mode = employeesModeList
			return nil
		}
		id, name := emp.ID, emp.DisplayName()
		return func() tea.Msg {
			return employeeDeletedMsg{name: name, err: e.deps.Employees.Delete(context.Background(), id)}
		}
	case "n", "N", "esc":
		e.mode = employeesModeList
	}
	return nil
}

func (e *Employees) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("СОТРУДНИКИ"))
	b.WriteString("\n\n")

	if e.loading {
		b.WriteString("Загрузка...\n")
		return b.String()
	}

	b.WriteString(statusLine(e.err, e.message))

	if e.mode == employeesModeEdit {
		labels := []string{"Имя:     ", "Email:   ", "Телефон: ", "Фото:    "}
		for i, in := range e.inputs {
			b.WriteString(cursorLine(i == e.focus, labels[i]+in.View()))
			b.WriteString("\n")
		}
		b.WriteString(HelpStyle.Render("[tab] Поле  [ctrl+s] Сохранить  [esc] Отмена"))
		return b.String()
	}

	if e.mode == employeesModeDelete {
		if emp := e.selected(); emp != nil {
			b.WriteString(WarningStyle.Render(fmt.Sprintf(
				"Удалить сотрудника '%s'? Его задачи останутся без исполнителя. (y/n)", emp.DisplayName())))
			b.WriteString("\n")
			return b.String()
		}
	}

	if len(e.employees) == 0 {
		b.WriteString(DimStyle.Render("Подтверждённых сотрудников нет."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r] Обновить  [q] Назад"))
		return b.String()
	}

	var list strings.Builder
	for i, emp := range e.employees {
		line := fmt.Sprintf("%-24s выполнено: %d", truncate(emp.DisplayName(), 24), emp.Completed)
		list.WriteString(cursorLine(i == e.cursor, line))
		list.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "   ", e.details()))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("[e] Изменить  [d] Удалить  [r] Обновить  [q] Назад"))
	return b.String()
}

func (e *Employees) details() string {
	emp := e.selected()
	if emp == nil {
		return ""
	}

	avatar := avatarPlaceholder(avatarWidth, emp.DisplayName())
	if emp.Photo != nil {
		if img := e.avatars[*emp.Photo]; img != nil {
			avatar = RenderAvatar(img, avatarWidth)
		}
	}

	lines := []string{
		avatar,
		SelectedStyle.Render(emp.DisplayName()),
		fmt.Sprintf("ID:      %d", emp.ID),
		fmt.Sprintf("Email:   %s", orDash(emp.Email)),
		fmt.Sprintf("Телефон: %s", orDash(emp.Phone)),
		fmt.Sprintf("Выполнено задач: %d", emp.Completed),
	}
	return strings.Join(lines, "\n")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "—"
	}
	return *s
}

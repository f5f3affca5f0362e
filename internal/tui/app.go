// Package tui is the admin console: a bubbletea program over the task and
// employee services.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasklist/internal/models"
	"tasklist/internal/notify"
	"tasklist/internal/tui/screens"
)

// ToastDuration is how long a notification stays on screen
const ToastDuration = 5 * time.Second

type Screen int

const (
	ScreenLogin Screen = iota
	ScreenMenu
	ScreenTasks
	ScreenTaskForm
	ScreenEmployees
	ScreenConfirmation
	ScreenSettings
)

// Poller reports employee changes since the previous call
type Poller interface {
	Poll(ctx context.Context) (notify.Change, error)
}

var _ Poller = (*notify.Watcher)(nil)

type pollMsg struct {
	change notify.Change
	err    error
}

type pollTickMsg struct{}

type baselineMsg struct {
	err error
}

type toastExpiredMsg struct {
	seq int
}

type App struct {
	deps          screens.Deps
	poller        Poller
	currentScreen Screen
	width         int
	height        int

	admin    *models.Admin
	polling  bool
	toast    string
	toastSeq int

	login        *screens.Login
	menu         *screens.Menu
	tasks        *screens.Tasks
	taskForm     *screens.TaskForm
	employees    *screens.Employees
	confirmation *screens.Confirmation
	settings     *screens.Settings
}

func NewApp(deps screens.Deps, poller Poller) *App {
	return &App{
		deps:          deps,
		poller:        poller,
		currentScreen: ScreenLogin,
		login:         screens.NewLogin(deps),
		menu:          screens.NewMenu(),
		tasks:         screens.NewTasks(deps),
		taskForm:      screens.NewTaskForm(deps),
		employees:     screens.NewEmployees(deps),
		confirmation:  screens.NewConfirmation(deps),
		settings:      screens.NewSettings(deps),
	}
}

func (a *App) Init() tea.Cmd {
	return a.login.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenMenu {
				return a, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.login.SetSize(msg.Width, msg.Height)
		a.menu.SetSize(msg.Width, msg.Height)
		a.tasks.SetSize(msg.Width, msg.Height)
		a.taskForm.SetSize(msg.Width, msg.Height)
		a.employees.SetSize(msg.Width, msg.Height)
		a.confirmation.SetSize(msg.Width, msg.Height)
		a.settings.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a, a.handleNavigation(msg)

	case screens.LoggedInMsg:
		return a, a.handleLogin(msg.Admin)

	case screens.AdminChangedMsg:
		a.setAdmin(msg.Admin)

	case pollTickMsg:
		return a, a.poll()

	case pollMsg:
		return a, a.handlePoll(msg)

	case screens.EmployeesChangedMsg:
		return a, a.rebaseline()

	case baselineMsg:
		if msg.err != nil {
			slog.Warn("Employee recount failed", "error", msg.err)
		}
		return a, nil

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil
	}

	return a, a.updateScreen(msg)
}

func (a *App) updateScreen(msg tea.Msg) tea.Cmd {
	switch a.currentScreen {
	case ScreenLogin:
		return a.login.Update(msg)
	case ScreenMenu:
		return a.menu.Update(msg)
	case ScreenTasks:
		return a.tasks.Update(msg)
	case ScreenTaskForm:
		return a.taskForm.Update(msg)
	case ScreenEmployees:
		return a.employees.Update(msg)
	case ScreenConfirmation:
		return a.confirmation.Update(msg)
	case ScreenSettings:
		return a.settings.Update(msg)
	}
	return nil
}

func (a *App) handleNavigation(msg screens.NavigateMsg) tea.Cmd {
	switch msg.Screen {
	case "menu":
		a.currentScreen = ScreenMenu
		return a.menu.Init()
	case "tasks":
		a.currentScreen = ScreenTasks
		return a.tasks.Init()
	case "task_form":
		a.currentScreen = ScreenTaskForm
		a.taskForm.SetTask(msg.TaskID)
		return a.taskForm.Init()
	case "employees":
		a.currentScreen = ScreenEmployees
		return a.employees.Init()
	case "confirmation":
		a.currentScreen = ScreenConfirmation
		return a.confirmation.Init()
	case "settings":
		a.currentScreen = ScreenSettings
		a.settings.SetAdmin(a.admin)
		return a.settings.Init()
	}
	return nil
}

func (a *App) setAdmin(admin *models.Admin) {
	if admin == nil {
		return
	}
	a.admin = admin
	a.menu.SetAdminName(admin.Username)
	a.settings.SetAdmin(admin)
	screens.ApplyTheme(admin.Theme)
}

func (a *App) handleLogin(admin *models.Admin) tea.Cmd {
	a.setAdmin(admin)
	a.currentScreen = ScreenMenu
	slog.Info("Admin logged in", "login", admin.Login)
	if a.polling {
		return a.menu.Init()
	}
	a.polling = true
	// the first poll only primes the baseline
	return tea.Batch(a.menu.Init(), a.poll())
}

func (a *App) poll() tea.Cmd {
	if a.poller == nil {
		return nil
	}
	return func() tea.Msg {
		change, err := a.poller.Poll(context.Background())
		return pollMsg{change: change, err: err}
	}
}

// rebaseline re-counts without reporting, so the admin's own decisions
// do not come back as notifications
func (a *App) rebaseline() tea.Cmd {
	if a.poller == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := a.poller.Poll(context.Background())
		return baselineMsg{err: err}
	}
}

func (a *App) scheduleTick() tea.Cmd {
	interval := time.Second
	if a.admin != nil && a.admin.IntervalDuration() > 0 {
		interval = a.admin.IntervalDuration()
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (a *App) handlePoll(msg pollMsg) tea.Cmd {
	next := a.scheduleTick()
	if msg.err != nil {
		slog.Warn("Employee poll failed", "error", msg.err)
		return next
	}
	if msg.change.Empty() {
		return next
	}

	cmds := []tea.Cmd{next, a.updateScreen(screens.RefreshMsg{})}
	if a.admin != nil && a.admin.NewUserNotifications {
		cmds = append(cmds, a.showToast(notify.FormatChange(msg.change)))
	}
	if a.admin != nil && a.admin.SoundNotifications {
		cmds = append(cmds, bell)
	}
	return tea.Batch(cmds...)
}

func bell() tea.Msg {
	fmt.Print("\a")
	return nil
}

func (a *App) showToast(text string) tea.Cmd {
	a.toastSeq++
	a.toast = text
	seq := a.toastSeq
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

// Toast returns the notification currently shown, if any
func (a *App) Toast() string {
	return a.toast
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenLogin:
		content = a.login.View()
	case ScreenMenu:
		content = a.menu.View()
	case ScreenTasks:
		content = a.tasks.View()
	case ScreenTaskForm:
		content = a.taskForm.View()
	case ScreenEmployees:
		content = a.employees.View()
	case ScreenConfirmation:
		content = a.confirmation.View()
	case ScreenSettings:
		content = a.settings.View()
	}

	if a.toast != "" {
		toast := screens.ToastStyle.Render(strings.TrimSpace(a.toast))
		content = lipgloss.JoinVertical(lipgloss.Left, toast, "", content)
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Padding(1, 2).
		Render(content)
}

// Run starts the console in the alternate screen and blocks until it exits
func Run(deps screens.Deps, poller Poller) error {
	app := NewApp(deps, poller)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

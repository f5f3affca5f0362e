package screens

import (
	"context"
	"image"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasklist/internal/models"
	"tasklist/internal/services"
)

// TaskManager is the admin side of the task service
type TaskManager interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id uint) (*models.Task, error)
	CreateTask(ctx context.Context, in services.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, id uint, upd services.TaskUpdate) (*models.Task, error)
}

// EmployeeManager is the admin side of the employee service
type EmployeeManager interface {
	ListConfirmed(ctx context.Context) ([]models.Employee, error)
	ListConfirmedWithStats(ctx context.Context) ([]models.EmployeeStats, error)
	ListUnconfirmed(ctx context.Context) ([]models.Employee, error)
	Confirm(ctx context.Context, id int64) (*models.Employee, error)
	Delete(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, upd services.ProfileUpdate) (*models.Employee, error)
}

// AdminManager is the admin account service
type AdminManager interface {
	Authenticate(ctx context.Context, login, password string) (*models.Admin, error)
	UpdateProfile(ctx context.Context, login, displayName, oldPassword, newPassword string) (*models.Admin, error)
	SetTheme(ctx context.Context, login string, dark bool) (*models.Admin, error)
	SetNotificationPrefs(ctx context.Context, login string, prefs services.NotificationPrefs) (*models.Admin, error)
}

// AvatarLoader returns decoded employee photos
type AvatarLoader interface {
	Get(ctx context.Context, ref string) (image.Image, error)
}

var (
	_ TaskManager     = (*services.TaskService)(nil)
	_ EmployeeManager = (*services.EmployeeService)(nil)
	_ AdminManager    = (*services.AdminService)(nil)
)

// Deps are the services the screens call
type Deps struct {
	Tasks     TaskManager
	Employees EmployeeManager
	Admins    AdminManager
	// Avatars may be nil
	Avatars AvatarLoader
}

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen string
	TaskID *uint
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateWithTask(screen string, taskID uint) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, TaskID: &taskID}
	}
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// EmployeesChangedMsg is sent after the admin confirmed or rejected employees
type EmployeesChangedMsg struct{}

func employeesChanged() tea.Msg {
	return EmployeesChangedMsg{}
}

// LoggedInMsg carries the authenticated account
type LoggedInMsg struct {
	Admin *models.Admin
}

// AdminChangedMsg carries the account after a settings change
type AdminChangedMsg struct {
	Admin *models.Admin
}

// Styles
var (
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	HelpStyle     lipgloss.Style
	SelectedStyle lipgloss.Style
	NormalStyle   lipgloss.Style
	DimStyle      lipgloss.Style
	SuccessStyle  lipgloss.Style
	WarningStyle  lipgloss.Style
	ErrorStyle    lipgloss.Style
	BoxStyle      lipgloss.Style
	ToastStyle    lipgloss.Style
)

func init() {
	ApplyTheme(false)
}

// ApplyTheme switches the palette: false light, true dark
func ApplyTheme(dark bool) {
	accent, text, dim, border := lipgloss.Color("25"), lipgloss.Color("235"), lipgloss.Color("245"), lipgloss.Color("31")
	if dark {
		accent, text, dim, border = lipgloss.Color("205"), lipgloss.Color("252"), lipgloss.Color("241"), lipgloss.Color("62")
	}

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	SubtitleStyle = lipgloss.NewStyle().Foreground(dim).MarginBottom(1)
	HelpStyle = lipgloss.NewStyle().Foreground(dim).MarginTop(1)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	NormalStyle = lipgloss.NewStyle().Foreground(text)
	DimStyle = lipgloss.NewStyle().Foreground(dim)
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	BoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(1, 2)
	ToastStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(border).Padding(0, 2)
}

func cursorLine(selected bool, line string) string {
	if selected {
		return SelectedStyle.Render("> " + line)
	}
	return NormalStyle.Render("  " + line)
}

func statusLine(err error, message string) string {
	switch {
	case err != nil:
		return ErrorStyle.Render("Ошибка: "+err.Error()) + "\n\n"
	case message != "":
		return SuccessStyle.Render(message) + "\n\n"
	}
	return ""
}

func optionalValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

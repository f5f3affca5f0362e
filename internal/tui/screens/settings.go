package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/apperr"
	"tasklist/internal/models"
	"tasklist/internal/services"
)

const (
	settingsName = iota
	settingsOldPassword
	settingsNewPassword
	settingsInterval
)

// Settings edits the admin profile, theme and notification preferences
type Settings struct {
	deps   Deps
	width  int
	height int

	admin    *models.Admin
	inputs   []textinput.Model
	focus    int
	sound    bool
	newUsers bool
	err      error
	message  string
}

func NewSettings(deps Deps) *Settings {
	placeholders := []string{"Отображаемое имя", "Текущий пароль", "Новый пароль (необязательно)", "Интервал проверки, сек"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		ti := textinput.New()
		ti.Placeholder = p
		ti.CharLimit = 64
		ti.Width = 36
		if i == settingsOldPassword || i == settingsNewPassword {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	return &Settings{deps: deps, inputs: inputs}
}

func (s *Settings) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetAdmin loads the current account into the form
func (s *Settings) SetAdmin(admin *models.Admin) {
	s.admin = admin
}

type settingsSavedMsg struct {
	admin   *models.Admin
	message string
	err     error
}

func (s *Settings) Init() tea.Cmd {
	s.err = nil
	s.message = ""
	if s.admin != nil {
		s.inputs[settingsName].SetValue(s.admin.Username)
		s.inputs[settingsInterval].SetValue(strconv.Itoa(s.admin.NotificationInterval / 1000))
		s.sound = s.admin.SoundNotifications
		s.newUsers = s.admin.NewUserNotifications
	}
	s.inputs[settingsOldPassword].SetValue("")
	s.inputs[settingsNewPassword].SetValue("")
	s.focus = settingsName
	s.focusInput()
	return textinput.Blink
}

func (s *Settings) focusInput() {
	for i := range s.inputs {
		if i == s.focus {
			s.inputs[i].Focus()
		} else {
			s.inputs[i].Blur()
		}
	}
}

func (s *Settings) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			s.err = msg.err
			return nil
		}
		s.err = nil
		s.message = msg.message
		s.admin = msg.admin
		s.inputs[settingsOldPassword].SetValue("")
		s.inputs[settingsNewPassword].SetValue("")
		admin := msg.admin
		return func() tea.Msg { return AdminChangedMsg{Admin: admin} }

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return Navigate("menu")
		case "tab", "down":
			s.focus = (s.focus + 1) % len(s.inputs)
			s.focusInput()
			return nil
		case "shift+tab", "up":
			s.focus = (s.focus + len(s.inputs) - 1) % len(s.inputs)
			s.focusInput()
			return nil
		case "ctrl+t":
			return s.toggleTheme()
		case "ctrl+o":
			s.sound = !s.sound
			return nil
		case "ctrl+n":
			s.newUsers = !s.newUsers
			return nil
		case "ctrl+s":
			return s.saveNotifications()
		case "enter":
			if s.focus == settingsInterval {
				return s.saveNotifications()
			}
			return s.saveProfile()
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return cmd
}

func (s *Settings) login() string {
	if s.admin == nil {
		return ""
	}
	return s.admin.Login
}

func (s *Settings) saveProfile() tea.Cmd {
	login := s.login()
	name := s.inputs[settingsName].Value()
	oldPassword := s.inputs[settingsOldPassword].Value()
	newPassword := s.inputs[settingsNewPassword].Value()
	return func() tea.Msg {
		admin, err := s.deps.Admins.UpdateProfile(context.Background(), login, name, oldPassword, newPassword)
		return settingsSavedMsg{admin: admin, message: "Профиль сохранён", err: err}
	}
}

func (s *Settings) saveNotifications() tea.Cmd {
	seconds, err := strconv.Atoi(strings.TrimSpace(s.inputs[settingsInterval].Value()))
	if err != nil || seconds < 1 {
		s.err = fmt.Errorf("%w: интервал должен быть целым числом не меньше 1", apperr.ErrValidation)
		return nil
	}
	login := s.login()
	prefs := services.NotificationPrefs{IntervalSeconds: seconds, Sound: s.sound, NewUsers: s.newUsers}
	return func() tea.Msg {
		admin, err := s.deps.Admins.SetNotificationPrefs(context.Background(), login, prefs)
		return settingsSavedMsg{admin: admin, message: "Уведомления сохранены", err: err}
	}
}

func (s *Settings) toggleTheme() tea.Cmd {
	if s.admin == nil {
		return nil
	}
	login, dark := s.login(), !s.admin.Theme
	return func() tea.Msg {
		admin, err := s.deps.Admins.SetTheme(context.Background(), login, dark)
		return settingsSavedMsg{admin: admin, message: "Тема изменена", err: err}
	}
}

func checkbox(on bool, label string) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}

func (s *Settings) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("НАСТРОЙКИ"))
	b.WriteString("\n\n")
	b.WriteString(statusLine(s.err, s.message))

	labels := []string{"Имя:            ", "Текущий пароль: ", "Новый пароль:   ", "Интервал, сек:  "}
	for i, in := range s.inputs {
		b.WriteString(cursorLine(i == s.focus, labels[i]+in.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	theme := "светлая"
	if s.admin != nil && s.admin.Theme {
		theme = "тёмная"
	}
	b.WriteString(NormalStyle.Render("  Тема: " + theme))
	b.WriteString("\n")
	b.WriteString(NormalStyle.Render("  " + checkbox(s.sound, "Звуковые уведомления")))
	b.WriteString("\n")
	b.WriteString(NormalStyle.Render("  " + checkbox(s.newUsers, "Уведомления о новых сотрудниках")))
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render(
		"[enter] Сохранить профиль  [ctrl+s] Сохранить уведомления  [ctrl+t] Тема  [ctrl+o] Звук  [ctrl+n] Новые сотрудники  [esc] Назад"))
	return b.String()
}

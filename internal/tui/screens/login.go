package screens

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Login struct {
	deps   Deps
	width  int
	height int

	inputs []textinput.Model
	focus  int
	err    error
}

func NewLogin(deps Deps) *Login {
	login := textinput.New()
	login.Placeholder = "Логин"
	login.CharLimit = 64
	login.Width = 30

	password := textinput.New()
	password.Placeholder = "Пароль"
	password.CharLimit = 64
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Login{deps: deps, inputs: []textinput.Model{login, password}}
}

func (l *Login) SetSize(width, height int) {
	l.width = width
	l.height = height
}

type loginResultMsg struct {
	msg LoggedInMsg
	err error
}

func (l *Login) Init() tea.Cmd {
	l.focus = 0
	l.inputs[1].SetValue("")
	l.inputs[0].Focus()
	l.inputs[1].Blur()
	return textinput.Blink
}

func (l *Login) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginResultMsg:
		if msg.err != nil {
			l.err = msg.err
			l.inputs[1].SetValue("")
			return nil
		}
		l.err = nil
		return func() tea.Msg { return msg.msg }

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			l.inputs[l.focus].Blur()
			l.focus = (l.focus + 1) % len(l.inputs)
			l.inputs[l.focus].Focus()
			return nil
		case "enter":
			if l.focus == 0 {
				l.inputs[0].Blur()
				l.focus = 1
				l.inputs[1].Focus()
				return nil
			}
			return l.submit()
		}
	}

	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return cmd
}

func (l *Login) submit() tea.Cmd {
	login := strings.TrimSpace(l.inputs[0].Value())
	password := l.inputs[1].Value()
	return func() tea.Msg {
		admin, err := l.deps.Admins.Authenticate(context.Background(), login, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{msg: LoggedInMsg{Admin: admin}}
	}
}

func (l *Login) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("TASKLIST · ВХОД"))
	b.WriteString("\n\n")
	b.WriteString(statusLine(l.err, ""))

	for _, in := range l.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render("[tab] Следующее поле  [enter] Войти  [ctrl+c] Выход"))

	return BoxStyle.Render(b.String())
}

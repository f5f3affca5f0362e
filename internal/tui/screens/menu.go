package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type menuItem struct {
	title  string
	screen string
}

var menuItems = []menuItem{
	{"Задачи", "tasks"},
	{"Сотрудники", "employees"},
	{"Подтверждение сотрудников", "confirmation"},
	{"Настройки", "settings"},
}

// Menu is the start screen after login
type Menu struct {
	width  int
	height int

	adminName string
	cursor    int
}

func NewMenu() *Menu {
	return &Menu{}
}

func (m *Menu) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Menu) SetAdminName(name string) {
	m.adminName = name
}

func (m *Menu) Init() tea.Cmd {
	return nil
}

func (m *Menu) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case "1", "2", "3", "4":
		return Navigate(menuItems[int(key.String()[0]-'1')].screen)
	case "enter":
		return Navigate(menuItems[m.cursor].screen)
	}
	return nil
}

func (m *Menu) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("TASKLIST"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Администратор: %s", m.adminName)))
	b.WriteString("\n")

	for i, item := range menuItems {
		b.WriteString(cursorLine(i == m.cursor, fmt.Sprintf("%d. %s", i+1, item.title)))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("[enter] Открыть  [q] Выход"))
	return b.String()
}

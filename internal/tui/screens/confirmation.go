package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/models"
)

// Confirmation lists employees waiting for approval
type Confirmation struct {
	deps   Deps
	width  int
	height int

	pending   []models.Employee
	cursor    int
	rejecting bool
	loading   bool
	err       error
	message   string
}

func NewConfirmation(deps Deps) *Confirmation {
	return &Confirmation{deps: deps}
}

func (c *Confirmation) SetSize(width, height int) {
	c.width = width
	c.height = height
}

type pendingDataMsg struct {
	pending []models.Employee
	err     error
}

type decisionMsg struct {
	message string
	err     error
}

func (c *Confirmation) Init() tea.Cmd {
	c.loading = true
	c.rejecting = false
	c.message = ""
	return c.loadData
}

func (c *Confirmation) loadData() tea.Msg {
	pending, err := c.deps.Employees.ListUnconfirmed(context.Background())
	return pendingDataMsg{pending: pending, err: err}
}

func (c *Confirmation) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pendingDataMsg:
		c.loading = false
		c.err = msg.err
		c.pending = msg.pending
		if c.cursor >= len(c.pending) {
			c.cursor = max(0, len(c.pending)-1)
		}
		return nil

	case decisionMsg:
		c.rejecting = false
		c.err = msg.err
		if msg.err != nil {
			return c.loadData
		}
		c.message = msg.message
		return tea.Batch(c.loadData, employeesChanged)

	case RefreshMsg:
		if !c.rejecting {
			return c.loadData
		}
		return nil

	case tea.KeyMsg:
		return c.handleKey(msg)
	}
	return nil
}

func (c *Confirmation) handleKey(msg tea.KeyMsg) tea.Cmd {
	if c.rejecting {
		switch msg.String() {
		case "y", "Y":
			return c.reject()
		case "n", "N", "esc":
			c.rejecting = false
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.pending)-1 {
			c.cursor++
		}
	case "c", "enter":
		return c.confirm()
	case "x":
		if len(c.pending) > 0 {
			c.rejecting = true
		}
	case "r":
		return c.Init()
	case "q", "esc":
		return Navigate("menu")
	}
	return nil
}

func (c *Confirmation) confirm() tea.Cmd {
	if len(c.pending) == 0 {
		return nil
	}
	emp := c.pending[c.cursor]
	return func() tea.Msg {
		_, err := c.deps.Employees.Confirm(context.Background(), emp.ID)
		return decisionMsg{message: fmt.Sprintf("Сотрудник %s подтверждён", emp.DisplayName()), err: err}
	}
}

func (c *Confirmation) reject() tea.Cmd {
	if len(c.pending) == 0 {
		return nil
	}
	emp := c.pending[c.cursor]
	return func() tea.Msg {
		err := c.deps.Employees.Delete(context.Background(), emp.ID)
		return decisionMsg{message: fmt.Sprintf("Заявка %s отклонена", emp.DisplayName()), err: err}
	}
}

func (c *Confirmation) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("ПОДТВЕРЖДЕНИЕ СОТРУДНИКОВ"))
	b.WriteString("\n\n")

	if c.loading {
		b.WriteString("Загрузка...\n")
		return b.String()
	}

	b.WriteString(statusLine(c.err, c.message))

	if c.rejecting && len(c.pending) > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Отклонить и удалить '%s'? (y/n)", c.pending[c.cursor].DisplayName())))
		b.WriteString("\n")
		return b.String()
	}

	if len(c.pending) == 0 {
		b.WriteString(DimStyle.Render("Нет сотрудников, ожидающих подтверждения."))
		b.WriteString("\n\n")
	} else {
		for i, emp := range c.pending {
			line := fmt.Sprintf("%-24s id %d, с %s", truncate(emp.DisplayName(), 24), emp.ID, emp.CreatedAt.Format("02.01.2006 15:04"))
			b.WriteString(cursorLine(i == c.cursor, line))
			b.WriteString("\n")
		}
	}

	b.WriteString(HelpStyle.Render("[c] Подтвердить  [x] Отклонить  [r] Обновить  [q] Назад"))
	return b.String()
}

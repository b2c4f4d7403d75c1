// Package tui is a terminal rendition of the board. The cursor stands in
// for the pointer: grabbing a card starts a drag, moving between columns
// enters and leaves them, and dropping issues the status update.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"taskboard/board"
	"taskboard/models"
)

// columnsMsg carries the columns derived from a new snapshot.
type columnsMsg models.PageData

// errMsg reports a failed request. Failures are logged only.
type errMsg struct{ err error }

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(28)
	overStyle     = columnStyle.BorderForeground(lipgloss.Color("63"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
	emptyStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	draggingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Model is the Bubble Tea model for the board.
type Model struct {
	ctx  context.Context
	view *board.View
	log  zerolog.Logger

	cols models.PageData
	col  int
	row  int

	// payload is held apart from the view's drag state, like a browser's
	// drag data, and is what Drop reads the ID from.
	payload *board.DragPayload

	prompting bool
	input     textinput.Model
}

func New(ctx context.Context, view *board.View, log zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Todo content"
	ti.Width = 40

	return Model{
		ctx:   ctx,
		view:  view,
		log:   log.With().Str("component", "tui").Logger(),
		cols:  view.Columns(),
		input: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case columnsMsg:
		m.cols = models.PageData(msg)
		m.clampRow()
		return m, nil

	case errMsg:
		m.log.Debug().Err(msg.err).Msg("request failed")
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		if m.payload != nil {
			return m.updateDragging(msg)
		}
		return m.updateIdle(msg)
	}

	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		m.moveColumn(-1)
	case "right", "l":
		m.moveColumn(1)
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.current())-1 {
			m.row++
		}
	case " ":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		payload, err := m.view.StartDrag(task.ID)
		if err != nil {
			m.log.Debug().Err(err).Msg("cannot start drag")
			return m, nil
		}
		m.payload = &payload
		// The pointer is over the card's own column when the drag begins.
		m.view.EnterColumn(m.status())
	case "x", "delete":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.request(func(ctx context.Context) error {
			return m.view.Delete(ctx, task.ID)
		})
	case "n":
		m.prompting = true
		m.input.Reset()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateDragging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.view.CancelDrag()
		return m, tea.Quit
	case "left", "h":
		m.view.LeaveColumn()
		m.moveColumn(-1)
		m.view.EnterColumn(m.status())
	case "right", "l":
		m.view.LeaveColumn()
		m.moveColumn(1)
		m.view.EnterColumn(m.status())
	case "enter", " ":
		payload, col := *m.payload, m.status()
		m.payload = nil
		return m, m.request(func(ctx context.Context) error {
			return m.view.Drop(ctx, payload, col)
		})
	case "esc":
		m.payload = nil
		m.view.CancelDrag()
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		content := m.input.Value()
		m.prompting = false
		m.input.Blur()
		return m, m.request(func(ctx context.Context) error {
			return m.view.Create(ctx, content)
		})
	case "esc":
		m.prompting = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// request runs fn off the UI loop. The board changes only when the store's
// next snapshot arrives.
func (m Model) request(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (m Model) current() []models.Task {
	return m.cols.Columns()[m.col].Tasks
}

func (m Model) status() models.Status {
	return models.Statuses[m.col]
}

func (m Model) selected() (models.Task, bool) {
	tasks := m.current()
	if m.row < 0 || m.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.row], true
}

func (m *Model) moveColumn(delta int) {
	n := len(models.Statuses)
	m.col = (m.col + delta + n) % n
	m.clampRow()
}

func (m *Model) clampRow() {
	if last := len(m.current()) - 1; m.row > last {
		m.row = max(last, 0)
	}
}

func (m Model) View() string {
	state, dragID, over := m.view.Drag()

	rendered := make([]string, 0, len(models.Statuses))
	for i, col := range m.cols.Columns() {
		var b strings.Builder
		b.WriteString(titleStyle.Render(string(col.Status)))
		b.WriteString("\n")

		if len(col.Tasks) == 0 {
			b.WriteString(emptyStyle.Render("No items"))
		}
		for j, t := range col.Tasks {
			line := t.Content
			switch {
			case state != board.Idle && t.ID == dragID:
				line = draggingStyle.Render("» " + line)
			case m.payload == nil && i == m.col && j == m.row:
				line = cursorStyle.Render(line)
			}
			b.WriteString(line)
			if j < len(col.Tasks)-1 {
				b.WriteString("\n")
			}
		}

		style := columnStyle
		if state == board.DraggingOverColumn && over == col.Status {
			style = overStyle
		}
		rendered = append(rendered, style.Render(b.String()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	if m.prompting {
		out += "\n\n" + m.input.View()
		out += "\n" + helpStyle.Render("enter add • esc cancel")
		return out
	}

	help := "←/→ column • ↑/↓ card • space grab • x delete • n new • q quit"
	if m.payload != nil {
		help = "←/→ move • enter/space drop • esc cancel"
	}
	return out + "\n" + helpStyle.Render(help)
}

package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/board"
	"taskboard/models"
	"taskboard/store/storetest"
)

func newTestModel(t *testing.T, tasks ...models.Task) (Model, *board.View, *storetest.Recorder) {
	t.Helper()

	rec := storetest.NewRecorder(tasks...)
	view := board.NewView(rec, zerolog.Nop())
	view.Apply(tasks)
	return New(context.Background(), view, zerolog.Nop()), view, rec
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to the model and runs the request commands they return.
// Commands returned while the prompt is open only blink the cursor.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(key(k))
		m = next.(Model)
		if cmd != nil && !m.prompting {
			if msg := cmd(); msg != nil {
				if _, quit := msg.(tea.QuitMsg); !quit {
					next, _ = m.Update(msg)
					m = next.(Model)
				}
			}
		}
	}
	return m
}

func TestModel_DragAndDrop(t *testing.T) {
	m, view, rec := newTestModel(t, models.Task{ID: "1", Content: "A", Status: models.StatusTodo})

	m = press(t, m, "space")
	state, id, over := view.Drag()
	assert.Equal(t, board.DraggingOverColumn, state)
	assert.Equal(t, "1", id)
	assert.Equal(t, models.StatusTodo, over)

	m = press(t, m, "right")
	_, _, over = view.Drag()
	assert.Equal(t, models.StatusDoing, over)
	assert.Contains(t, m.View(), "» A")

	m = press(t, m, "enter")

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "update", calls[0].Op)
	assert.Equal(t, "1", calls[0].ID)
	assert.Equal(t, models.StatusDoing, calls[0].Status)
	require.NotNil(t, calls[0].Content)
	assert.Equal(t, "A", *calls[0].Content)

	state, _, _ = view.Drag()
	assert.Equal(t, board.Idle, state)

	// Still rendered in TODO until a snapshot says otherwise.
	assert.Len(t, m.cols.Todo, 1)
	assert.Empty(t, m.cols.Doing)

	next, _ := m.Update(columnsMsg(board.Partition([]models.Task{
		{ID: "1", Content: "A", Status: models.StatusDoing},
	})))
	m = next.(Model)
	assert.Empty(t, m.cols.Todo)
	assert.Len(t, m.cols.Doing, 1)
}

func TestModel_CancelDrag(t *testing.T) {
	m, view, rec := newTestModel(t, models.Task{ID: "1", Content: "A", Status: models.StatusTodo})

	m = press(t, m, "space", "right", "right", "esc")

	state, _, _ := view.Drag()
	assert.Equal(t, board.Idle, state)
	assert.Nil(t, m.payload)
	assert.Empty(t, rec.Calls())
}

func TestModel_GrabEmptyColumn(t *testing.T) {
	m, view, rec := newTestModel(t, models.Task{ID: "1", Content: "A", Status: models.StatusTodo})

	m = press(t, m, "right", "space", "enter")

	state, _, _ := view.Drag()
	assert.Equal(t, board.Idle, state)
	assert.Nil(t, m.payload)
	assert.Empty(t, rec.Calls())
}

func TestModel_Delete(t *testing.T) {
	m, _, rec := newTestModel(t,
		models.Task{ID: "1", Content: "A", Status: models.StatusTodo},
		models.Task{ID: "2", Content: "B", Status: models.StatusTodo},
	)

	press(t, m, "down", "x")

	assert.Equal(t, []storetest.Call{{Op: "delete", ID: "2"}}, rec.Calls())
}

func TestModel_Create(t *testing.T) {
	t.Run("submits content", func(t *testing.T) {
		m, _, rec := newTestModel(t)

		m = press(t, m, "n")
		assert.True(t, m.prompting)

		m = press(t, m, "Buy milk", "enter")
		assert.False(t, m.prompting)

		calls := rec.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "create", calls[0].Op)
		assert.Equal(t, "Buy milk", *calls[0].Content)
	})

	t.Run("long content is not cut", func(t *testing.T) {
		m, _, rec := newTestModel(t)
		long := strings.Repeat("a", 300)

		press(t, m, "n", long, "enter")

		calls := rec.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, long, *calls[0].Content)
	})

	t.Run("whitespace is content", func(t *testing.T) {
		m, _, rec := newTestModel(t)

		press(t, m, "n", "   ", "enter")

		calls := rec.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "   ", *calls[0].Content)
	})

	t.Run("cancelled prompt", func(t *testing.T) {
		m, _, rec := newTestModel(t)
		press(t, m, "n", "Buy milk", "esc")
		assert.Empty(t, rec.Calls())
	})

	t.Run("empty prompt", func(t *testing.T) {
		m, _, rec := newTestModel(t)
		press(t, m, "n", "enter")
		assert.Empty(t, rec.Calls())
	})
}

func TestModel_FailedRequestIsNotShown(t *testing.T) {
	m, _, rec := newTestModel(t, models.Task{ID: "1", Content: "A", Status: models.StatusTodo})
	rec.DeleteErr = assert.AnError

	m = press(t, m, "x")

	assert.NotContains(t, m.View(), assert.AnError.Error())
	assert.Len(t, m.cols.Todo, 1)
}

func TestModel_Quit(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_View(t *testing.T) {
	m, _, _ := newTestModel(t,
		models.Task{ID: "1", Content: "Write docs", Status: models.StatusTodo},
		models.Task{ID: "2", Content: "Hidden", Status: "ARCHIVED"},
	)

	out := m.View()
	assert.Contains(t, out, "TODO")
	assert.Contains(t, out, "DOING")
	assert.Contains(t, out, "DONE")
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "No items")
	assert.NotContains(t, out, "Hidden")
}

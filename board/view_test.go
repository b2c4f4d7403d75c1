package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/models"
	"taskboard/store/storetest"
)

func newTestView(t *testing.T, tasks ...models.Task) (*View, *storetest.Recorder) {
	t.Helper()

	rec := storetest.NewRecorder(tasks...)
	v := NewView(rec, zerolog.Nop())
	v.Apply(tasks)
	return v, rec
}

func strPtr(s string) *string { return &s }

func TestView_DragStateMachine(t *testing.T) {
	v, rec := newTestView(t, models.Task{ID: "1", Content: "A", Status: models.StatusTodo})

	state, id, over := v.Drag()
	assert.Equal(t, Idle, state)
	assert.Empty(t, id)
	assert.Empty(t, over)

	// Entering a column outside a drag does nothing.
	v.EnterColumn(models.StatusDoing)
	state, _, _ = v.Drag()
	assert.Equal(t, Idle, state)

	payload, err := v.StartDrag("1")
	require.NoError(t, err)
	assert.Equal(t, DragPayload{ID: "1"}, payload)
	state, id, _ = v.Drag()
	assert.Equal(t, Dragging, state)
	assert.Equal(t, "1", id)

	v.EnterColumn(models.StatusDoing)
	state, _, over = v.Drag()
	assert.Equal(t, DraggingOverColumn, state)
	assert.Equal(t, models.StatusDoing, over)

	v.EnterColumn(models.StatusDone)
	_, _, over = v.Drag()
	assert.Equal(t, models.StatusDone, over)

	v.EnterColumn("ARCHIVED")
	_, _, over = v.Drag()
	assert.Equal(t, models.StatusDone, over, "unknown column is not highlighted")

	v.LeaveColumn()
	state, id, over = v.Drag()
	assert.Equal(t, Dragging, state)
	assert.Equal(t, "1", id)
	assert.Empty(t, over)

	v.CancelDrag()
	state, id, _ = v.Drag()
	assert.Equal(t, Idle, state)
	assert.Empty(t, id)

	assert.Empty(t, rec.Calls(), "hover and cancel issue no requests")
}

func TestView_StartDrag(t *testing.T) {
	v, _ := newTestView(t, models.Task{ID: "1", Content: "A"})

	_, err := v.StartDrag("")
	require.ErrorIs(t, err, ErrMissingID)

	_, err = v.StartDrag("nope")
	require.ErrorIs(t, err, ErrUnknownTask)

	state, _, _ := v.Drag()
	assert.Equal(t, Idle, state)
}

func TestView_Drop(t *testing.T) {
	ctx := context.Background()
	todo := models.Task{ID: "1", Content: "A", Status: models.StatusTodo}

	t.Run("issues exactly one update preserving content", func(t *testing.T) {
		v, rec := newTestView(t, todo)

		payload, err := v.StartDrag("1")
		require.NoError(t, err)
		v.EnterColumn(models.StatusDoing)

		require.NoError(t, v.Drop(ctx, payload, models.StatusDoing))

		calls := rec.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, storetest.Call{
			Op:      "update",
			ID:      "1",
			Status:  models.StatusDoing,
			Content: strPtr("A"),
		}, calls[0])

		state, _, _ := v.Drag()
		assert.Equal(t, Idle, state)
	})

	t.Run("does not move the task before the next snapshot", func(t *testing.T) {
		v, _ := newTestView(t, todo)

		require.NoError(t, v.Drop(ctx, DragPayload{ID: "1"}, models.StatusDoing))

		cols := v.Columns()
		assert.Equal(t, []string{"1"}, ids(cols.Todo))
		assert.Empty(t, cols.Doing)

		v.Apply([]models.Task{{ID: "1", Content: "A", Status: models.StatusDoing}})

		cols = v.Columns()
		assert.Empty(t, cols.Todo)
		assert.Equal(t, []string{"1"}, ids(cols.Doing))
	})

	t.Run("reads the id from the payload, not the drag state", func(t *testing.T) {
		other := models.Task{ID: "2", Content: "B", Status: models.StatusTodo}
		v, rec := newTestView(t, todo, other)

		_, err := v.StartDrag("1")
		require.NoError(t, err)

		require.NoError(t, v.Drop(ctx, DragPayload{ID: "2"}, models.StatusDone))

		calls := rec.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "2", calls[0].ID)
		assert.Equal(t, strPtr("B"), calls[0].Content)
	})

	t.Run("empty payload is ignored", func(t *testing.T) {
		v, rec := newTestView(t, todo)
		_, err := v.StartDrag("1")
		require.NoError(t, err)

		err = v.Drop(ctx, DragPayload{}, models.StatusDoing)
		require.ErrorIs(t, err, ErrMissingID)
		assert.Empty(t, rec.Calls())

		state, _, _ := v.Drag()
		assert.Equal(t, Idle, state)
	})

	t.Run("unknown task is a no-op", func(t *testing.T) {
		v, rec := newTestView(t, todo)

		err := v.Drop(ctx, DragPayload{ID: "missing"}, models.StatusDoing)
		require.ErrorIs(t, err, ErrUnknownTask)
		assert.Empty(t, rec.Calls())
	})

	t.Run("unknown column is rejected", func(t *testing.T) {
		v, rec := newTestView(t, todo)

		err := v.Drop(ctx, DragPayload{ID: "1"}, "ARCHIVED")
		require.ErrorIs(t, err, ErrUnknownColumn)
		assert.Empty(t, rec.Calls())
	})

	t.Run("update failure is returned and nothing moves", func(t *testing.T) {
		v, rec := newTestView(t, todo)
		boom := errors.New("service unavailable")
		rec.UpdateErr = boom

		err := v.Drop(ctx, DragPayload{ID: "1"}, models.StatusDone)
		require.ErrorIs(t, err, boom)
		assert.Len(t, rec.Calls(), 1)
		assert.Equal(t, []string{"1"}, ids(v.Columns().Todo))
	})
}

func TestView_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("issues exactly one delete", func(t *testing.T) {
		v, rec := newTestView(t, models.Task{ID: "1", Content: "A"})

		require.NoError(t, v.Delete(ctx, "1"))
		assert.Equal(t, []storetest.Call{{Op: "delete", ID: "1"}}, rec.Calls())

		// Still visible until the next snapshot.
		assert.Equal(t, []string{"1"}, ids(v.Columns().Todo))
	})

	t.Run("empty id issues nothing", func(t *testing.T) {
		v, rec := newTestView(t)
		require.ErrorIs(t, v.Delete(ctx, ""), ErrMissingID)
		assert.Empty(t, rec.Calls())
	})

	t.Run("failure is returned", func(t *testing.T) {
		v, rec := newTestView(t, models.Task{ID: "1"})
		rec.DeleteErr = errors.New("network down")

		require.ErrorIs(t, v.Delete(ctx, "1"), rec.DeleteErr)
	})
}

func TestView_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("empty content issues nothing", func(t *testing.T) {
		v, rec := newTestView(t)
		require.NoError(t, v.Create(ctx, ""))
		assert.Empty(t, rec.Calls())
	})

	t.Run("content issues exactly one create", func(t *testing.T) {
		v, rec := newTestView(t)
		require.NoError(t, v.Create(ctx, "Buy milk"))
		assert.Equal(t, []storetest.Call{
			{Op: "create", Content: strPtr("Buy milk"), Status: models.StatusTodo},
		}, rec.Calls())
	})

	t.Run("failure is returned", func(t *testing.T) {
		v, rec := newTestView(t)
		rec.CreateErr = errors.New("rejected")
		require.ErrorIs(t, v.Create(ctx, "x"), rec.CreateErr)
	})
}

func TestView_CreateFromPrompt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		content   string
		ok        bool
		wantCalls int
	}{
		{name: "cancelled", content: "ignored", ok: false, wantCalls: 0},
		{name: "empty", content: "", ok: true, wantCalls: 0},
		{name: "answered", content: "Buy milk", ok: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, rec := newTestView(t)
			err := v.CreateFromPrompt(ctx, func() (string, bool, error) {
				return tt.content, tt.ok, nil
			})
			require.NoError(t, err)
			assert.Len(t, rec.Calls(), tt.wantCalls)
		})
	}

	t.Run("prompt error", func(t *testing.T) {
		v, rec := newTestView(t)
		err := v.CreateFromPrompt(ctx, func() (string, bool, error) {
			return "", false, errors.New("no tty")
		})
		require.Error(t, err)
		assert.Empty(t, rec.Calls())
	})
}

func TestView_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("create appears after the next snapshot", func(t *testing.T) {
		rec := storetest.NewRecorder(models.Task{ID: "1", Content: "A", Status: models.StatusTodo})
		v := NewView(rec, zerolog.Nop())

		sub, err := v.Subscribe(ctx, nil)
		require.NoError(t, err)
		t.Cleanup(sub.Unsubscribe)

		require.Eventually(t, func() bool { return len(v.Columns().Todo) == 1 }, time.Second, 5*time.Millisecond)

		require.NoError(t, v.Create(ctx, "B"))

		require.Eventually(t, func() bool { return len(v.Columns().Todo) == 2 }, time.Second, 5*time.Millisecond)
		todo := v.Columns().Todo
		assert.Equal(t, "A", todo[0].Content)
		assert.Equal(t, "B", todo[1].Content)
		assert.Equal(t, models.StatusTodo, todo[1].Status)
	})

	t.Run("drop moves the task once the snapshot confirms it", func(t *testing.T) {
		rec := storetest.NewRecorder(models.Task{ID: "1", Content: "A", Status: models.StatusTodo})
		v := NewView(rec, zerolog.Nop())

		changes := make(chan models.PageData, 10)
		sub, err := v.Subscribe(ctx, func(cols models.PageData) { changes <- cols })
		require.NoError(t, err)
		t.Cleanup(sub.Unsubscribe)

		initial := <-changes
		require.Equal(t, []string{"1"}, ids(initial.Todo))

		payload, err := v.StartDrag("1")
		require.NoError(t, err)
		v.EnterColumn(models.StatusDoing)
		require.NoError(t, v.Drop(ctx, payload, models.StatusDoing))

		select {
		case cols := <-changes:
			assert.Empty(t, cols.Todo)
			require.Len(t, cols.Doing, 1)
			assert.Equal(t, "A", cols.Doing[0].Content)
		case <-time.After(time.Second):
			t.Fatal("no snapshot after drop")
		}
	})

	t.Run("changes from elsewhere show up without any local request", func(t *testing.T) {
		rec := storetest.NewRecorder(models.Task{ID: "1", Content: "A", Status: models.StatusTodo})
		v := NewView(rec, zerolog.Nop())

		sub, err := v.Subscribe(ctx, nil)
		require.NoError(t, err)
		t.Cleanup(sub.Unsubscribe)

		// Another session writes straight to the store.
		_, err = rec.Memory.Update(ctx, models.TaskUpdate{ID: "1", Status: models.StatusDone})
		require.NoError(t, err)

		require.Eventually(t, func() bool { return len(v.Columns().Done) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "A", v.Columns().Done[0].Content)
		assert.Empty(t, rec.Calls())
	})
}

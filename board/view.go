package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"taskboard/models"
	"taskboard/store"
)

var (
	// ErrMissingID is returned for a drop or delete that carries no task ID.
	ErrMissingID = errors.New("missing task id")
	// ErrUnknownTask is returned for a drop naming a task that is not in the
	// current snapshot.
	ErrUnknownTask = errors.New("task not in current snapshot")
	// ErrUnknownColumn is returned for a drop onto something other than one
	// of the three columns.
	ErrUnknownColumn = errors.New("unknown column")
)

// DragState is the phase of the drag-and-drop gesture.
type DragState int

const (
	Idle DragState = iota
	Dragging
	DraggingOverColumn
)

func (s DragState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case DraggingOverColumn:
		return "dragging-over-column"
	}
	return fmt.Sprintf("DragState(%d)", int(s))
}

// DragPayload travels with the gesture and is the only source of the dragged
// task's ID at drop time.
type DragPayload struct {
	ID string
}

// View is the board's client-side state: the latest snapshot and the
// transient drag state. Column membership is always derived from the
// snapshot; the view never moves a task locally.
type View struct {
	store store.Store
	log   zerolog.Logger

	mu     sync.RWMutex
	tasks  []models.Task
	state  DragState
	dragID string
	over   models.Status
}

func NewView(s store.Store, log zerolog.Logger) *View {
	return &View{
		store: s,
		log:   log.With().Str("component", "board").Logger(),
	}
}

// Apply replaces the snapshot.
func (v *View) Apply(snapshot []models.Task) {
	v.mu.Lock()
	v.tasks = snapshot
	v.mu.Unlock()
}

// Subscribe keeps the view on the store's latest snapshot. onChange, when
// non-nil, is called with the new columns after every snapshot is applied.
func (v *View) Subscribe(ctx context.Context, onChange func(models.PageData)) (*store.Subscription, error) {
	return v.store.Subscribe(ctx, func(snapshot []models.Task) {
		v.Apply(snapshot)
		if onChange != nil {
			onChange(Partition(snapshot))
		}
	})
}

// Tasks returns the current snapshot.
func (v *View) Tasks() []models.Task {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Task, len(v.tasks))
	copy(out, v.tasks)
	return out
}

// Columns derives the three columns from the current snapshot.
func (v *View) Columns() models.PageData {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Partition(v.tasks)
}

// Drag reports the drag state, the dragged ID and the hovered column.
func (v *View) Drag() (DragState, string, models.Status) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state, v.dragID, v.over
}

// StartDrag begins dragging a rendered task. Starting while another drag is
// in progress replaces it.
func (v *View) StartDrag(id string) (DragPayload, error) {
	if id == "" {
		return DragPayload{}, ErrMissingID
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := find(v.tasks, id); !ok {
		return DragPayload{}, ErrUnknownTask
	}
	v.state, v.dragID, v.over = Dragging, id, ""
	v.log.Debug().Str("id", id).Msg("started dragging")
	return DragPayload{ID: id}, nil
}

// EnterColumn highlights the column under the pointer. It has no effect
// outside a drag or for an unknown column.
func (v *View) EnterColumn(col models.Status) {
	if !col.Valid() {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == Idle {
		return
	}
	v.state, v.over = DraggingOverColumn, col
}

// LeaveColumn clears the column highlight.
func (v *View) LeaveColumn() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == DraggingOverColumn {
		v.state, v.over = Dragging, ""
	}
}

// CancelDrag ends the gesture without a drop. No request is issued.
func (v *View) CancelDrag() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resetLocked()
}

// Drop ends the gesture over col and requests exactly one status update for
// the task named by the payload, carrying its current content. The view's
// drag state is not consulted, so a drop is accepted from any state.
//
// The task stays where the last snapshot put it until a snapshot with the
// new status arrives.
func (v *View) Drop(ctx context.Context, payload DragPayload, col models.Status) error {
	v.mu.Lock()
	v.resetLocked()
	task, ok := find(v.tasks, payload.ID)
	v.mu.Unlock()

	if payload.ID == "" {
		return ErrMissingID
	}
	if !col.Valid() {
		return fmt.Errorf("drop onto %q: %w", col, ErrUnknownColumn)
	}
	if !ok {
		v.log.Warn().Str("id", payload.ID).Msg("dropped task not found")
		return fmt.Errorf("drop %s: %w", payload.ID, ErrUnknownTask)
	}

	v.log.Debug().Str("id", task.ID).Str("status", string(col)).Msg("dropping task")

	content := task.Content
	updated, err := v.store.Update(ctx, models.TaskUpdate{
		ID:      task.ID,
		Status:  col,
		Content: &content,
	})
	if err != nil {
		v.log.Error().Err(err).Str("id", task.ID).Msg("error updating task")
		return fmt.Errorf("move task %s: %w", task.ID, err)
	}

	v.log.Debug().Str("id", updated.ID).Str("status", string(updated.Status)).Msg("update successful")
	return nil
}

// Delete requests removal of a task. There is no confirmation; the task
// disappears with the next snapshot.
func (v *View) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}

	if err := v.store.Delete(ctx, id); err != nil {
		v.log.Error().Err(err).Str("id", id).Msg("error deleting task")
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// Create requests a new TODO task. Empty content issues no request.
func (v *View) Create(ctx context.Context, content string) error {
	if content == "" {
		return nil
	}

	if _, err := v.store.Create(ctx, content); err != nil {
		v.log.Error().Err(err).Msg("error creating task")
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Prompter asks the user for task content. ok is false when the prompt was
// cancelled.
type Prompter func() (content string, ok bool, err error)

// CreateFromPrompt runs prompt once and creates a task from its answer.
// A cancelled or empty answer issues no request.
func (v *View) CreateFromPrompt(ctx context.Context, prompt Prompter) error {
	content, ok, err := prompt()
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}
	if !ok {
		return nil
	}
	return v.Create(ctx, content)
}

func (v *View) resetLocked() {
	v.state, v.dragID, v.over = Idle, "", ""
}

func find(tasks []models.Task, id string) (models.Task, bool) {
	if id == "" {
		return models.Task{}, false
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

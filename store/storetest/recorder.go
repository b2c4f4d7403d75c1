// Package storetest provides a recording store for tests.
package storetest

import (
	"context"
	"sync"

	"taskboard/models"
	"taskboard/store"
)

// Call is one mutation request seen by a Recorder.
type Call struct {
	Op      string // "create", "update" or "delete"
	ID      string
	Content *string
	Status  models.Status
}

// Recorder wraps an in-memory store, records every mutation request and can
// fail any of them on demand.
type Recorder struct {
	*store.Memory

	mu    sync.Mutex
	calls []Call

	// Error injection for testing
	CreateErr    error
	UpdateErr    error
	DeleteErr    error
	SubscribeErr error
}

var _ store.Store = (*Recorder)(nil)

// NewRecorder returns a Recorder seeded with tasks.
func NewRecorder(tasks ...models.Task) *Recorder {
	m := store.NewMemory()
	if len(tasks) > 0 {
		m.Seed(tasks...)
	}
	return &Recorder{Memory: m}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns the requests recorded so far, in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) Create(ctx context.Context, content string) (models.Task, error) {
	r.record(Call{Op: "create", Content: &content, Status: models.StatusTodo})
	if r.CreateErr != nil {
		return models.Task{}, r.CreateErr
	}
	return r.Memory.Create(ctx, content)
}

func (r *Recorder) Update(ctx context.Context, upd models.TaskUpdate) (models.Task, error) {
	r.record(Call{Op: "update", ID: upd.ID, Content: upd.Content, Status: upd.Status})
	if r.UpdateErr != nil {
		return models.Task{}, r.UpdateErr
	}
	return r.Memory.Update(ctx, upd)
}

func (r *Recorder) Delete(ctx context.Context, id string) error {
	r.record(Call{Op: "delete", ID: id})
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	return r.Memory.Delete(ctx, id)
}

func (r *Recorder) Subscribe(ctx context.Context, fn func([]models.Task)) (*store.Subscription, error) {
	if r.SubscribeErr != nil {
		return nil, r.SubscribeErr
	}
	return r.Memory.Subscribe(ctx, fn)
}

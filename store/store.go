// Package store is the record store adapter: a uniform create, update,
// delete and subscribe surface over the backend holding the board's tasks.
// Callers never talk to Postgres or Redis directly.
package store

import (
	"context"
	"errors"
	"sync"

	"taskboard/models"
)

// ErrNotFound is returned by Update and Delete for an unknown task ID.
var ErrNotFound = errors.New("task not found")

// Store is implemented by every backend.
type Store interface {
	// Create stores a new task with the given content and status TODO.
	Create(ctx context.Context, content string) (models.Task, error)

	// Update sets the status of a task, and its content only when
	// upd.Content is non-nil. It returns the task as stored.
	Update(ctx context.Context, upd models.TaskUpdate) (models.Task, error)

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// Subscribe calls fn with the full task set now and after every change.
	// Calls are sequential and in the order changes were applied; a
	// listener that falls behind only receives the newest snapshot.
	Subscribe(ctx context.Context, fn func([]models.Task)) (*Subscription, error)
}

// Notifier carries "something changed" signals between processes sharing
// one database.
type Notifier interface {
	Publish(ctx context.Context) error
	Listen(ctx context.Context) (signals <-chan struct{}, stop func(), err error)
}

// Subscription is an active snapshot listener.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Unsubscribe stops delivery. A callback already running is allowed to
// finish. Safe to call more than once and from inside the callback.
func (s *Subscription) Unsubscribe() {
	s.cancel()
}

// Done is closed once the subscription has stopped delivering.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// listener delivers snapshots to one callback, keeping only the newest
// undelivered one.
type listener struct {
	fn   func([]models.Task)
	wake chan struct{}

	mu      sync.Mutex
	pending []models.Task
	has     bool
}

func newListener(fn func([]models.Task)) *listener {
	return &listener{fn: fn, wake: make(chan struct{}, 1)}
}

func (l *listener) offer(snapshot []models.Task) {
	l.mu.Lock()
	l.pending = snapshot
	l.has = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *listener) take() ([]models.Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.pending, l.has
	l.pending, l.has = nil, false
	return s, ok
}

// run delivers until ctx is cancelled.
func (l *listener) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
			if s, ok := l.take(); ok && ctx.Err() == nil {
				l.fn(s)
			}
		}
	}
}

// start runs the listener on its own goroutine and calls cleanup after it
// exits.
func (l *listener) start(ctx context.Context, cleanup func()) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer cleanup()
		l.run(ctx)
	}()
	return sub
}

func clone(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}

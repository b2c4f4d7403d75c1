package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/models"
)

// Memory keeps tasks in process. Every Subscribe sees every change made
// through the same instance.
type Memory struct {
	mu        sync.Mutex
	tasks     []models.Task
	listeners map[*listener]struct{}
	now       func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		listeners: make(map[*listener]struct{}),
		now:       time.Now,
	}
}

// Seed replaces the task set without going through Create, so tasks can
// carry any status, including unset or unknown ones. Subscribers are
// notified.
func (m *Memory) Seed(tasks ...models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = clone(tasks)
	m.broadcastLocked()
}

func (m *Memory) Create(ctx context.Context, content string) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	t := models.Task{
		ID:        uuid.NewString(),
		Content:   content,
		Status:    models.StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.tasks = append(m.tasks, t)
	m.broadcastLocked()
	return t, nil
}

func (m *Memory) Update(ctx context.Context, upd models.TaskUpdate) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(upd.ID)
	if i < 0 {
		return models.Task{}, fmt.Errorf("update %s: %w", upd.ID, ErrNotFound)
	}
	t := &m.tasks[i]
	t.Status = upd.Status
	if upd.Content != nil {
		t.Content = *upd.Content
	}
	t.UpdatedAt = m.now()
	m.broadcastLocked()
	return *t, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	m.tasks = append(m.tasks[:i:i], m.tasks[i+1:]...)
	m.broadcastLocked()
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, fn func([]models.Task)) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := newListener(fn)

	m.mu.Lock()
	l.offer(clone(m.tasks))
	m.listeners[l] = struct{}{}
	m.mu.Unlock()

	return l.start(ctx, func() {
		m.mu.Lock()
		delete(m.listeners, l)
		m.mu.Unlock()
	}), nil
}

// Snapshot returns the current task set.
func (m *Memory) Snapshot() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.tasks)
}

func (m *Memory) indexLocked(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) broadcastLocked() {
	for l := range m.listeners {
		l.offer(clone(m.tasks))
	}
}

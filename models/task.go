package models

import "time"

// Status is the board column a task belongs to.
type Status string

const (
	StatusTodo  Status = "TODO"
	StatusDoing Status = "DOING"
	StatusDone  Status = "DONE"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

// Valid reports whether s is one of the three board columns.
// The unset status is not valid here even though it displays as TODO.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	Status    Status    `db:"status" json:"status,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TaskUpdate requests a status change. Content is only written when non-nil.
type TaskUpdate struct {
	ID      string
	Status  Status
	Content *string
}

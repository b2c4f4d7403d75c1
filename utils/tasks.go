package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/models"
)

const taskColumns = "id::text AS id, content, COALESCE(status, '') AS status, created_at, updated_at"

func collectTask(rows pgx.Rows) (models.Task, error) {
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Task])
}

// InsertTask stores a new row and returns it as written.
func InsertTask(ctx context.Context, db *pgxpool.Pool, id string, content string, status models.Status) (models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "INSERT INTO todos (id, content, status) VALUES ($1::uuid, $2, $3) RETURNING " + taskColumns
	rows, err := db.Query(ctx, stmt, id, content, string(status))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	t, err := collectTask(rows)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// UpdateTask sets the status, and the content when upd.Content is non-nil.
// A missing row yields pgx.ErrNoRows.
func UpdateTask(ctx context.Context, db *pgxpool.Pool, upd models.TaskUpdate) (models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := `UPDATE todos
		SET status = $2, content = COALESCE($3, content), updated_at = NOW()
		WHERE id = $1::uuid
		RETURNING ` + taskColumns
	rows, err := db.Query(ctx, stmt, upd.ID, string(upd.Status), upd.Content)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	t, err := collectTask(rows)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a row. A missing row yields pgx.ErrNoRows.
func DeleteTask(ctx context.Context, db *pgxpool.Pool, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := db.Exec(ctx, "DELETE FROM todos WHERE id = $1::uuid", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete task: %w", pgx.ErrNoRows)
	}
	return nil
}

// ListTasks returns every row, oldest first.
func ListTasks(ctx context.Context, db *pgxpool.Pool) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := db.Query(ctx, "SELECT "+taskColumns+" FROM todos ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Task])
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}
	return tasks, nil
}

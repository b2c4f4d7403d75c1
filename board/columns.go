// Package board derives the three board columns from a task snapshot and
// runs the drag-and-drop state machine that turns gestures into store
// requests.
package board

import "taskboard/models"

// Partition buckets tasks into the three columns, keeping snapshot order.
// An unset status lands in TODO; any status outside the three columns is
// left out of every column.
func Partition(tasks []models.Task) models.PageData {
	var data models.PageData
	for _, t := range tasks {
		switch t.Status {
		case models.StatusTodo, "":
			data.Todo = append(data.Todo, t)
		case models.StatusDoing:
			data.Doing = append(data.Doing, t)
		case models.StatusDone:
			data.Done = append(data.Done, t)
		}
	}
	return data
}

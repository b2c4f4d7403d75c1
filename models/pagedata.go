package models

type PageData struct {
	Todo  []Task
	Doing []Task
	Done  []Task
}

// ColumnData is one rendered column of the board.
type ColumnData struct {
	Status Status
	Tasks  []Task
}

// Columns returns the three columns in display order.
func (p PageData) Columns() []ColumnData {
	return []ColumnData{
		{Status: StatusTodo, Tasks: p.Todo},
		{Status: StatusDoing, Tasks: p.Doing},
		{Status: StatusDone, Tasks: p.Done},
	}
}

package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"taskboard/board"
	"taskboard/store"
	"taskboard/ui"
	"taskboard/utils"
)

var templates = template.Must(template.ParseFS(ui.HTML, "html/*.html"))

// Board renders the full page from the view's current snapshot.
func Board(w http.ResponseWriter, r *http.Request, view *board.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "board", view.Columns()); err != nil {
		log.Error().Err(err).Msg("error rendering board")
		http.Error(w, "Error displaying tasks", http.StatusInternalServerError)
	}
}

// AddTaskHandler creates a task from the "content" form value. Empty content
// is the cancelled prompt and issues nothing. The task shows up through the
// event stream, not in this response.
func AddTaskHandler(w http.ResponseWriter, r *http.Request, view *board.View) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	content := r.FormValue("content")
	if content == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := utils.ValidateTaskInput(content); err != nil {
		log.Debug().Err(err).Msg("rejected task content")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := view.Create(r.Context(), content); err != nil {
		http.Error(w, "Failed to add task", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// MoveTaskHandler is the drop end of a drag: "id" is the drag payload and
// "status" the column it was dropped on.
func MoveTaskHandler(w http.ResponseWriter, r *http.Request, view *board.View) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	status, err := utils.ParseStatus(r.FormValue("status"))
	if err != nil {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	err = view.Drop(r.Context(), board.DragPayload{ID: r.FormValue("id")}, status)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, board.ErrMissingID):
		http.Error(w, "Missing task ID", http.StatusBadRequest)
	case errors.Is(err, board.ErrUnknownTask), errors.Is(err, store.ErrNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	default:
		http.Error(w, "Failed to move task", http.StatusInternalServerError)
	}
}

func DeleteTaskHandler(w http.ResponseWriter, r *http.Request, view *board.View) {
	err := view.Delete(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, board.ErrMissingID):
		http.Error(w, "Missing task ID", http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	default:
		http.Error(w, "Failed to delete task", http.StatusInternalServerError)
	}
}

// Pinger is implemented by backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the backend answers. Backends without a Ping are
// always healthy.
func Health(w http.ResponseWriter, r *http.Request, st store.Store) {
	if p, ok := st.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}

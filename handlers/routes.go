package handlers

import (
	"io/fs"
	"net/http"

	"taskboard/board"
	"taskboard/store"
	"taskboard/ui"
)

// NewMux wires every board route. view must already be subscribed to st.
func NewMux(view *board.View, st store.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// File server for static files
	static, err := fs.Sub(ui.Static, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(static)))

	// HTTP handlers
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		Board(w, r, view)
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		Events(w, r, st)
	})
	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		AddTaskHandler(w, r, view)
	})
	mux.HandleFunc("POST /drop", func(w http.ResponseWriter, r *http.Request) {
		MoveTaskHandler(w, r, view)
	})
	mux.HandleFunc("DELETE /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		DeleteTaskHandler(w, r, view)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		Health(w, r, st)
	})

	return mux
}

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"taskboard/board"
	"taskboard/models"
	"taskboard/store"
)

// KeepAlive is how often an idle event stream sends a comment line.
var KeepAlive = 30 * time.Second

// Events streams the rendered columns as Server-Sent Events: once on
// connect, then after every change in the store. Each connection holds its
// own subscription.
func Events(w http.ResponseWriter, r *http.Request, st store.Store) {
	rc := http.NewResponseController(w)

	updates := make(chan models.PageData, 1)
	sub, err := st.Subscribe(r.Context(), func(tasks []models.Task) {
		cols := board.Partition(tasks)
		// Only the newest snapshot matters to a slow client.
		for {
			select {
			case updates <- cols:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("error subscribing to tasks")
		http.Error(w, "Failed to subscribe", http.StatusInternalServerError)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Error().Err(err).Msg("event stream not supported")
		return
	}

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	var buf bytes.Buffer
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case cols := <-updates:
			buf.Reset()
			if err := templates.ExecuteTemplate(&buf, "columns", cols); err != nil {
				log.Error().Err(err).Msg("error rendering columns")
				continue
			}
			if err := writeEvent(w, "snapshot", buf.String()); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event, data string) error {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteByte('\n')
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := fmt.Fprint(w, b.String())
	return err
}

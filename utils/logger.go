package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	stdout     = os.Stdout
	isTerminal = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }
)

// NewLogger builds the process logger. With a file, JSON lines are appended
// to it so restarts keep earlier logs. Without one, logs go to stdout: as
// human-readable lines on a terminal, as JSON otherwise.
func NewLogger(level string, file string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, func() {}, err
	}

	w, closer, err := logWriter(file)
	if err != nil {
		return zerolog.Logger{}, func() {}, err
	}

	l := zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}

func logWriter(file string) (io.Writer, func(), error) {
	if file == "" {
		if isTerminal(stdout) {
			return zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.Kitchen}, func() {}, nil
		}
		return stdout, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create logs dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"taskboard/board"
	"taskboard/models"
)

// Run shows the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, view *board.View, log zerolog.Logger) error {
	p := tea.NewProgram(New(ctx, view, log), tea.WithAltScreen(), tea.WithContext(ctx))

	sub, err := view.Subscribe(ctx, func(cols models.PageData) {
		p.Send(columnsMsg(cols))
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run board: %w", err)
	}
	return nil
}

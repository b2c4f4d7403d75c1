package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"taskboard/board"
	"taskboard/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Open the board in the terminal",
		UsageText: "taskboard tui",
		Description: `Arrows move the cursor. Space grabs the selected task, left and right
carry it across columns, enter or space drops it and esc cancels.
x deletes the selected task, n adds one and q quits.

The terminal board always logs to a file (--log-file, or tui.log in the data
directory).`,
		Action: cmd.run,
	})

	return app
}

func (cmd *TuiCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Open(ctx); err != nil {
		return err
	}

	view := board.NewView(cmd.app.Store, log.Logger)
	return tui.Run(ctx, view, log.Logger)
}

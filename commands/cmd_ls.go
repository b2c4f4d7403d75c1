package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"taskboard/board"
	"taskboard/models"
)

type LsCmd struct {
	flags *Flags
	app   *App

	// flags
	ids bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "Print the board's columns",
		UsageText: "taskboard ls [--ids]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "ids",
				Usage:       "print task IDs next to their content",
				Destination: &cmd.ids,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tasks, err := cmd.app.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	printColumns(c.Root().Writer, board.Partition(tasks), cmd.ids)
	return nil
}

func printColumns(w io.Writer, page models.PageData, ids bool) {
	for i, col := range page.Columns() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", col.Status, len(col.Tasks))
		if len(col.Tasks) == 0 {
			fmt.Fprintln(w, "  No items")
			continue
		}
		for _, t := range col.Tasks {
			if ids {
				fmt.Fprintf(w, "  %s  %s\n", t.ID, t.Content)
			} else {
				fmt.Fprintf(w, "  %s\n", t.Content)
			}
		}
	}
}

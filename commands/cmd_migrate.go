package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type MigrateCmd struct {
	flags *Flags
	app   *App
}

// NewMigrateCmd creates a new migrate command
func NewMigrateCmd(flags *Flags, app *App) *MigrateCmd {
	return &MigrateCmd{flags: flags, app: app}
}

// Register adds the migrate command to the application
func (cmd *MigrateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "migrate",
		Usage:     "Create the tasks table if it does not exist",
		UsageText: "taskboard migrate",
		Action:    cmd.run,
	})

	return app
}

func (cmd *MigrateCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("schema is up to date")
	return nil
}

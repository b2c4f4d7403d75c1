package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"taskboard/commands"
	"taskboard/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		boardApp  = &commands.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskboard",
		Usage:     "A three column kanban board",
		UsageText: "taskboard [global options] command [command options]",
		Description: `Tasks live in Postgres (or in memory with --backend memory) and move
between TODO, DOING and DONE. Every open board, in the browser or the terminal,
follows the store and redraws on each change.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKBOARD_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stdout, or <data-dir>/tui.log for tui)",
				Sources:     cli.EnvVars("TASKBOARD_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKBOARD_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "task store (postgres, memory)",
				Destination: &flags.Backend,
			},
			&cli.StringFlag{
				Name:        "notify",
				Usage:       "change notifications for the postgres backend (redis, postgres)",
				Destination: &flags.Notify,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Args().First() == "tui" && flags.LogFile == "" {
				flags.LogFile = commands.DefaultTuiLogFile()
			}

			logger, closer, err := utils.NewLogger(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := utils.LoadConfig(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.Backend != "" {
				cfg.Backend = flags.Backend
			}
			if flags.Notify != "" {
				cfg.Notify = flags.Notify
			}

			// Populate the pre-allocated App (commands already hold a pointer
			// to it). Commands open the backend themselves.
			*boardApp = *commands.NewApp(cfg, log.With().Str("component", "store").Logger())

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			boardApp.Close()

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewServeCmd(flags, boardApp).Register(app)
	app = commands.NewTuiCmd(flags, boardApp).Register(app)
	app = commands.NewMigrateCmd(flags, boardApp).Register(app)
	app = commands.NewAddCmd(flags, boardApp).Register(app)
	app = commands.NewLsCmd(flags, boardApp).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"taskboard/board"
	"taskboard/handlers"
	"taskboard/utils"
)

type ServeCmd struct {
	flags *Flags
	app   *App

	// flags
	addr string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags, app *App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the board over HTTP",
		UsageText: "taskboard serve [--addr :8080]",
		Description: `Serves the board page, its event stream and the endpoints the page
calls for create, drop and delete. Every open page is kept on the latest
snapshot of the store.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to the configured addr)",
				Sources:     cli.EnvVars("TASKBOARD_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := cmd.addr
	if addr == "" {
		addr = cmd.app.Config.Addr
	}

	if err := cmd.app.Open(ctx); err != nil {
		return err
	}

	view := board.NewView(cmd.app.Store, log.Logger)
	sub, err := view.Subscribe(ctx, nil)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	srv := &http.Server{
		Addr:              addr,
		Handler:           utils.LogRequests(log.Logger, handlers.NewMux(view, cmd.app.Store)),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

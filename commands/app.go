package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskboard/models"
	"taskboard/store"
	"taskboard/utils"
)

// App holds the backend shared by every command. Config is loaded in the
// root Before hook; the backend itself is opened by the first command that
// needs it, so help output never connects to anything.
type App struct {
	Config utils.Config
	Store  store.Store

	// DB is nil for the memory backend.
	DB *pgxpool.Pool

	log     zerolog.Logger
	closers []func()
}

func NewApp(cfg utils.Config, log zerolog.Logger) *App {
	return &App{Config: cfg, log: log}
}

// Open validates the config and connects to the backend it selects. It is a
// no-op once a store is set.
func (a *App) Open(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}

	cfg := a.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Backend == utils.BackendMemory {
		a.Store = store.NewMemory()
		return nil
	}

	db, err := utils.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	var notifier store.Notifier
	switch cfg.Notify {
	case utils.NotifyRedis:
		client, err := utils.OpenRedisPool(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return fmt.Errorf("open redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				a.log.Error().Err(err).Msg("failed to close redis")
			}
		})
		notifier = utils.NewRedisNotifier(client)
	default:
		notifier = utils.NewPGNotifier(db)
	}

	a.DB = db
	a.Store = store.NewPostgres(db, notifier, a.log)
	a.log.Debug().Str("backend", cfg.Backend).Str("notify", cfg.Notify).Msg("backend ready")
	return nil
}

// Migrate creates the tasks table. Only the postgres backend has one.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.Open(ctx); err != nil {
		return err
	}
	if a.DB == nil {
		return errors.New("migrate needs the postgres backend")
	}
	return utils.Migrate(ctx, a.DB)
}

// Snapshot returns the current task set by waiting for the first delivery of
// a subscription.
func (a *App) Snapshot(ctx context.Context) ([]models.Task, error) {
	if err := a.Open(ctx); err != nil {
		return nil, err
	}
	ch := make(chan []models.Task, 1)
	sub, err := a.Store.Subscribe(ctx, func(tasks []models.Task) {
		select {
		case ch <- tasks:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	select {
	case tasks := <-ch:
		return tasks, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

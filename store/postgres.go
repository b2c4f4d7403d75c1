package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"taskboard/models"
	"taskboard/utils"
)

// Postgres stores tasks in the todos table and announces every mutation
// through a Notifier, so subscribers in any process re-read the full set.
type Postgres struct {
	db       *pgxpool.Pool
	notifier Notifier
	log      zerolog.Logger
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *pgxpool.Pool, notifier Notifier, log zerolog.Logger) *Postgres {
	return &Postgres{
		db:       db,
		notifier: notifier,
		log:      log.With().Str("component", "postgres-store").Logger(),
	}
}

func (p *Postgres) Create(ctx context.Context, content string) (models.Task, error) {
	t, err := utils.InsertTask(ctx, p.db, uuid.NewString(), content, models.StatusTodo)
	if err != nil {
		return models.Task{}, err
	}
	p.announce(ctx)
	return t, nil
}

func (p *Postgres) Update(ctx context.Context, upd models.TaskUpdate) (models.Task, error) {
	if _, err := uuid.Parse(upd.ID); err != nil {
		return models.Task{}, fmt.Errorf("update %s: %w", upd.ID, ErrNotFound)
	}
	t, err := utils.UpdateTask(ctx, p.db, upd)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, fmt.Errorf("update %s: %w", upd.ID, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, err
	}
	p.announce(ctx)
	return t, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	err := utils.DeleteTask(ctx, p.db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	p.announce(ctx)
	return nil
}

// announce is best effort: the write already succeeded, and a lost signal
// only delays the next snapshot until another change happens.
func (p *Postgres) announce(ctx context.Context) {
	if err := p.notifier.Publish(ctx); err != nil {
		p.log.Warn().Err(err).Msg("failed to announce change")
	}
}

func (p *Postgres) Subscribe(ctx context.Context, fn func([]models.Task)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	// Listen before the first read so a change landing in between is not lost.
	signals, stop, err := p.notifier.Listen(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	initial, err := utils.ListTasks(ctx, p.db)
	if err != nil {
		stop()
		cancel()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	l := newListener(fn)
	l.offer(initial)

	go func() {
		for range signals {
			tasks, err := utils.ListTasks(ctx, p.db)
			if err != nil {
				if ctx.Err() == nil {
					p.log.Error().Err(err).Msg("failed to reload tasks")
				}
				continue
			}
			l.offer(tasks)
		}
	}()

	return l.start(ctx, func() {
		stop()
		cancel()
	}), nil
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

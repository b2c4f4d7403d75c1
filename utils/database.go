package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ChangeChannel is the notification channel name shared by the Redis and
// Postgres notifiers.
const ChangeChannel = "taskboard_changes"

func OpenDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	// Parse the connection string into a pgxpool.Config
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id         UUID PRIMARY KEY,
	content    TEXT NOT NULL,
	status     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at, id);
`

// Migrate creates the todos table if it does not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate todos: %w", err)
	}
	return nil
}

// PGNotifier signals task changes with pg_notify and receives them on one
// dedicated connection opened outside the pool. Every Listen in the process
// shares that connection; it is opened by the first listener and closed when
// the last one stops.
type PGNotifier struct {
	db      *pgxpool.Pool
	channel string

	mu       sync.Mutex
	subs     map[chan struct{}]struct{}
	stopConn func()
}

func NewPGNotifier(db *pgxpool.Pool) *PGNotifier {
	return &PGNotifier{
		db:      db,
		channel: ChangeChannel,
		subs:    make(map[chan struct{}]struct{}),
	}
}

func (n *PGNotifier) Publish(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := n.db.Exec(ctx, "SELECT pg_notify($1, '')", n.channel); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// Listen registers a subscriber on the shared listener connection. Bursts of
// notifications collapse into a single pending signal. The channel is closed
// after stop is called, ctx is cancelled or the listener connection fails.
func (n *PGNotifier) Listen(ctx context.Context) (<-chan struct{}, func(), error) {
	n.mu.Lock()
	if n.stopConn == nil {
		stopConn, err := n.connect(ctx)
		if err != nil {
			n.mu.Unlock()
			return nil, nil, err
		}
		n.stopConn = stopConn
	}
	signals := make(chan struct{}, 1)
	n.subs[signals] = struct{}{}
	n.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			n.remove(signals)
		})
	}
	go func() {
		<-ctx.Done()
		stop()
	}()
	return signals, stop, nil
}

// Listeners reports how many subscribers share the listener connection.
func (n *PGNotifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

func (n *PGNotifier) remove(signals chan struct{}) {
	n.mu.Lock()
	if _, ok := n.subs[signals]; !ok {
		n.mu.Unlock()
		return
	}
	delete(n.subs, signals)
	close(signals)

	var stopConn func()
	if len(n.subs) == 0 {
		stopConn, n.stopConn = n.stopConn, nil
	}
	n.mu.Unlock()

	// The listen loop takes n.mu to broadcast, so wait for it unlocked.
	if stopConn != nil {
		stopConn()
	}
}

func (n *PGNotifier) broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for signals := range n.subs {
		select {
		case signals <- struct{}{}:
		default:
		}
	}
}

// fail ends every subscription after the listener connection broke.
func (n *PGNotifier) fail() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for signals := range n.subs {
		delete(n.subs, signals)
		close(signals)
	}
	n.stopConn = nil
}

// connect opens the listener connection and starts its loop. The returned
// func stops the loop and closes the connection. Called with n.mu held.
func (n *PGNotifier) connect(ctx context.Context) (func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := pgx.ConnectConfig(connectCtx, n.db.Config().ConnConfig.Copy())
	if err != nil {
		return nil, fmt.Errorf("open listen connection: %w", err)
	}
	if _, err := conn.Exec(connectCtx, "LISTEN "+pgx.Identifier{n.channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen %s: %w", n.channel, err)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = conn.Close(closeCtx)
		}()
		for {
			if _, err := conn.WaitForNotification(loopCtx); err != nil {
				if loopCtx.Err() == nil {
					log.Warn().Err(err).Msg("postgres listener stopped")
					n.fail()
				}
				return
			}
			n.broadcast()
		}
	}()

	return func() {
		stopLoop()
		<-done
	}, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stardom/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS game_saves (
	id text PRIMARY KEY,
	snapshot jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`

// Postgres keeps snapshots as jsonb rows.
type Postgres struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Load(ctx context.Context, id string) (*game.State, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT snapshot FROM game_saves WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load save: %w", err)
	}
	return decodeSnapshot(id, data)
}

func (p *Postgres) Save(ctx context.Context, id string, st *game.State) error {
	if err := validateID(id); err != nil {
		return err
	}
	data, err := encodeSnapshot(id, st)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO game_saves (id, snapshot, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = now()
`, id, data)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT id FROM game_saves ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan save ids: %w", err)
	}
	return ids, nil
}

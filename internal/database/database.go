package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoSnapshot = errors.New("no snapshot")

// Snapshot is the last successful result of a published-content query.
type Snapshot struct {
	Key       string
	Query     string
	Payload   []byte
	FetchedAt time.Time
}

// Database stores last-known-good query results so published pages can
// still render while the CMS is unreachable.
type Database interface {
	Close()
	SaveSnapshot(ctx context.Context, s Snapshot) error
	LoadSnapshot(ctx context.Context, key string) (Snapshot, error)
	CountSnapshots(ctx context.Context) (int, error)
	PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS content_snapshots (
	key        TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	payload    JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type database struct {
	db *pgxpool.Pool
}

func NewDatabase(ctx context.Context, dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute
	config.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return &database{db: pool}, nil
}

func (d *database) Close() {
	d.db.Close()
}

func (d *database) SaveSnapshot(ctx context.Context, s Snapshot) error {
	if s.FetchedAt.IsZero() {
		s.FetchedAt = time.Now()
	}
	_, err := d.db.Exec(ctx, `INSERT INTO content_snapshots (key, query, payload, fetched_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET query = $2, payload = $3, fetched_at = $4`,
		s.Key, s.Query, string(s.Payload), s.FetchedAt)
	return err
}

func (d *database) LoadSnapshot(ctx context.Context, key string) (Snapshot, error) {
	s := Snapshot{Key: key}
	var payload string
	err := d.db.QueryRow(ctx, `SELECT query, payload::text, fetched_at FROM content_snapshots WHERE key = $1`, key).
		Scan(&s.Query, &payload, &s.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, ErrNoSnapshot
	}
	if err != nil {
		return s, err
	}
	s.Payload = []byte(payload)
	return s, nil
}

func (d *database) CountSnapshots(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRow(ctx, `SELECT count(*) FROM content_snapshots`).Scan(&n)
	return n, err
}

func (d *database) PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := d.db.Exec(ctx, `DELETE FROM content_snapshots WHERE fetched_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

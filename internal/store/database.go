package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the archive database connection. The archive is
// write-mostly: reconciliation passes append snapshots, nothing in the
// live pipeline reads them back.
type Database struct {
	conn *sql.DB
}

// NewDatabase opens and pings the archive database.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening archive database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "pinging archive database")
	}

	return &Database{conn: db}, nil
}

func (db *Database) Close() error {
	return db.conn.Close()
}

// DB returns the underlying connection pool.
func (db *Database) DB() *sql.DB {
	return db.conn
}

// EnsureSchema creates the snapshot archive table when absent.
func (db *Database) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS player_boxscores (
			id           BIGSERIAL PRIMARY KEY,
			league       TEXT NOT NULL,
			game_id      TEXT NOT NULL,
			captured_at  TIMESTAMPTZ NOT NULL,
			player_name  TEXT NOT NULL,
			team         TEXT NOT NULL,
			opponent     TEXT NOT NULL,
			game_status  TEXT NOT NULL,
			starter      BOOLEAN NOT NULL DEFAULT FALSE,
			did_not_play BOOLEAN NOT NULL DEFAULT FALSE,
			stat_keys    TEXT[] NOT NULL,
			stat_values  TEXT[] NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := db.conn.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, "creating player_boxscores table")
	}

	index := `
		CREATE INDEX IF NOT EXISTS idx_player_boxscores_game
		ON player_boxscores (league, game_id, captured_at)
	`
	if _, err := db.conn.ExecContext(ctx, index); err != nil {
		return errors.Wrap(err, "creating player_boxscores index")
	}
	return nil
}

// HealthCheck pings the database with a short deadline.
func (db *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type PostgresDB struct {
	Conn *sql.DB
}

func NewPostgresDB(ctx context.Context, host string, port int, user, password, dbname string) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", host).Str("name", dbname).Msg("connected to postgres")
	return &PostgresDB{Conn: conn}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS archived_products (
	id         SERIAL PRIMARY KEY,
	url        TEXT NOT NULL UNIQUE,
	lang       TEXT NOT NULL,
	icecat_id  TEXT NOT NULL DEFAULT '',
	prod_id    TEXT NOT NULL DEFAULT '',
	brand      TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	raw_xml    TEXT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS archived_products_fetched_at_idx ON archived_products (fetched_at DESC);
`

// Migrate creates the archive table when missing.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.Conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (db *PostgresDB) Close() error {
	return db.Conn.Close()
}

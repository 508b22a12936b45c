package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `CREATE TABLE IF NOT EXISTS sheet_fetches (
	id BIGSERIAL PRIMARY KEY,
	category TEXT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	row_count INTEGER NOT NULL
);`

// PostgresArchive keeps an append-only history of fetch outcomes so
// the site operator can see when a sheet went empty or stopped moving.
type PostgresArchive struct {
	db *pgxpool.Pool
}

func NewPostgresArchive(ctx context.Context, connStr string) (*PostgresArchive, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &PostgresArchive{db: db}, nil
}

func (a *PostgresArchive) RecordFetch(ctx context.Context, category string, fetchedAt time.Time, rows int) error {
	_, err := a.db.Exec(ctx,
		`INSERT INTO sheet_fetches (category, fetched_at, row_count) VALUES ($1, $2, $3)`,
		category, fetchedAt, rows)
	return err
}

func (a *PostgresArchive) Ping(ctx context.Context) error {
	return a.db.Ping(ctx)
}

func (a *PostgresArchive) Close() {
	a.db.Close()
}

package sqlsink

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/postgres"
)

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	s, err := New(ctx, db, SQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres writes into the pool owned by client.
func NewPostgres(ctx context.Context, client *postgres.Client) (*Sink, error) {
	return New(ctx, client.DB, Postgres)
}

// Package sqlsink writes reports into a SQL database. The schema and
// statements are shared by the SQLite and PostgreSQL sinks; only the
// placeholder syntax differs.
package sqlsink

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/report"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/postgres"
)

// Dialect names a database flavour and renders its positional parameters.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
}

var (
	SQLite   = Dialect{Name: "sqlite", Placeholder: func(int) string { return "?" }}
	Postgres = Dialect{Name: "postgres", Placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS crawl_sessions (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		query TEXT NOT NULL,
		generated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS urls (
		session_id TEXT NOT NULL,
		doc_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (session_id, doc_id)
	)`,
	`CREATE TABLE IF NOT EXISTS word_counts (
		session_id TEXT NOT NULL,
		doc_id INTEGER NOT NULL,
		term TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (session_id, doc_id, term)
	)`,
	`CREATE TABLE IF NOT EXISTS top_terms (
		session_id TEXT NOT NULL,
		rank INTEGER NOT NULL,
		term TEXT NOT NULL,
		total INTEGER NOT NULL,
		doc_ids TEXT NOT NULL,
		PRIMARY KEY (session_id, rank)
	)`,
	`CREATE TABLE IF NOT EXISTS scores (
		session_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		doc_id INTEGER NOT NULL,
		term TEXT NOT NULL,
		tf DOUBLE PRECISION NOT NULL,
		idf DOUBLE PRECISION NOT NULL,
		tf_idf DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (session_id, ordinal)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_term ON scores (session_id, term)`,
}

// Sink writes each report in a single transaction.
type Sink struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps db and creates the schema if needed.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Sink, error) {
	err := postgres.InTx(ctx, db, func(tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("migrating %s schema: %w", dialect.Name, err)
	}
	return &Sink{db: db, dialect: dialect}, nil
}

// Name implements report.Sink.
func (s *Sink) Name() string { return s.dialect.Name }

// DB exposes the handle, e.g. for reading results back.
func (s *Sink) DB() *sql.DB { return s.db }

func (s *Sink) insert(table string, cols ...string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = s.dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(ph, ", "))
}

// Write implements report.Sink.
func (s *Sink) Write(ctx context.Context, r *report.Report) error {
	return postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.insert("crawl_sessions", "id", "seed", "query", "generated_at"),
			r.SessionID, r.Seed, r.Query, r.GeneratedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}

		if err := s.batch(ctx, tx, s.insert("urls", "session_id", "doc_id", "url"), func(exec func(args ...any) error) error {
			for _, d := range r.URLs {
				if err := exec(r.SessionID, int(d.ID), d.URL); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return fmt.Errorf("inserting urls: %w", err)
		}

		if err := s.batch(ctx, tx, s.insert("word_counts", "session_id", "doc_id", "term", "count"), func(exec func(args ...any) error) error {
			for _, dc := range r.WordCounts {
				for _, tc := range dc.Terms {
					if err := exec(r.SessionID, int(dc.Document.ID), tc.Term, tc.Count); err != nil {
						return err
					}
				}
			}
			return nil
		}); err != nil {
			return fmt.Errorf("inserting word counts: %w", err)
		}

		if err := s.batch(ctx, tx, s.insert("top_terms", "session_id", "rank", "term", "total", "doc_ids"), func(exec func(args ...any) error) error {
			for i, ts := range r.TopTerms {
				if err := exec(r.SessionID, i+1, ts.Term, ts.Total, report.JoinIDs(ts.Documents)); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return fmt.Errorf("inserting top terms: %w", err)
		}

		if err := s.batch(ctx, tx, s.insert("scores", "session_id", "ordinal", "doc_id", "term", "tf", "idf", "tf_idf"), func(exec func(args ...any) error) error {
			for i, row := range r.Scores {
				if err := exec(r.SessionID, i, int(row.DocumentID), row.Term, row.TF, row.IDF, row.TFIDF); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return fmt.Errorf("inserting scores: %w", err)
		}
		return nil
	})
}

// batch prepares query once and hands fill an executor for each row.
func (s *Sink) batch(ctx context.Context, tx *sql.Tx, query string, fill func(exec func(args ...any) error) error) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return fill(func(args ...any) error {
		_, err := stmt.ExecContext(ctx, args...)
		return err
	})
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Package search serves TF-IDF queries against the most recently loaded
// crawl session. Until a session is loaded every query fails with
// apperrors.ErrNotReady.
package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/index"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/report"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
	apperrors "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/errors"
)

// Result is the answer to one query.
type Result struct {
	SessionID string                  `json:"session_id"`
	Query     string                  `json:"query"`
	Terms     []string                `json:"terms"`
	Documents int                     `json:"documents"`
	Rows      []scorer.Row            `json:"rows"`
	Ranking   []report.RankedDocument `json:"ranking"`
	TookMs    int64                   `json:"took_ms"`
}

// Session is a finished crawl ready to be queried.
type Session struct {
	ID     string
	Seed   string
	Store  *index.Store
	Scorer *scorer.Scorer
}

// Engine answers queries for the current Session.
type Engine struct {
	current atomic.Pointer[Session]
}

// NewEngine returns an Engine with no session loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// Load makes s the session all later queries run against.
func (e *Engine) Load(s *Session) {
	e.current.Store(s)
}

// Session returns the loaded session or ErrNotReady.
func (e *Engine) Session() (*Session, error) {
	s := e.current.Load()
	if s == nil {
		return nil, apperrors.ErrNotReady
	}
	return s, nil
}

// Search scores query against the loaded session.
func (e *Engine) Search(ctx context.Context, query string) (*Result, error) {
	s, err := e.Session()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	rows := s.Scorer.Score(query)
	return &Result{
		SessionID: s.ID,
		Query:     query,
		Terms:     s.Scorer.QueryTerms(query),
		Documents: s.Store.DocumentCount(),
		Rows:      rows,
		Ranking:   report.RankDocuments(rows),
		TookMs:    time.Since(start).Milliseconds(),
	}, nil
}

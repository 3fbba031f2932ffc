// Package kafkasink publishes a report's scoring rows to Kafka, one message
// per row keyed by session, followed by a ranking summary message.
package kafkasink

import (
	"context"
	"fmt"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/report"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/scorer"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/kafka"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// ScoreEvent is the message value for one scoring row.
type ScoreEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Ordinal   int    `json:"ordinal"`
	scorer.Row
}

// SummaryEvent closes a session's stream with the document ranking.
type SummaryEvent struct {
	Type      string                  `json:"type"`
	SessionID string                  `json:"session_id"`
	Query     string                  `json:"query"`
	Rows      int                     `json:"rows"`
	Ranking   []report.RankedDocument `json:"ranking"`
}

// Sink publishes through p.
type Sink struct {
	publisher Publisher
}

// New returns a Sink publishing through p.
func New(p Publisher) *Sink {
	return &Sink{publisher: p}
}

// Name implements report.Sink.
func (s *Sink) Name() string { return "kafka" }

// Write implements report.Sink.
func (s *Sink) Write(ctx context.Context, r *report.Report) error {
	events := make([]kafka.Event, 0, len(r.Scores)+1)
	for i, row := range r.Scores {
		events = append(events, kafka.Event{
			Key: r.SessionID,
			Value: ScoreEvent{
				Type:      "score",
				SessionID: r.SessionID,
				Query:     r.Query,
				Ordinal:   i,
				Row:       row,
			},
		})
	}
	events = append(events, kafka.Event{
		Key: r.SessionID,
		Value: SummaryEvent{
			Type:      "summary",
			SessionID: r.SessionID,
			Query:     r.Query,
			Rows:      len(r.Scores),
			Ranking:   r.Ranking,
		},
	})
	if err := s.publisher.PublishBatch(ctx, events); err != nil {
		return fmt.Errorf("publishing %d score events: %w", len(events), err)
	}
	return nil
}

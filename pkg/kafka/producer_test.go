package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishBatchEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, "scores")
	err := p.PublishBatch(context.Background(), []Event{
		{Key: "1", Value: map[string]float64{"tfidf": 0.5}},
		{Key: "2", Value: map[string]float64{"tfidf": 0}},
	})
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "1" {
		t.Errorf("key = %q", w.msgs[0].Key)
	}
	var got map[string]float64
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatal(err)
	}
	if got["tfidf"] != 0.5 {
		t.Errorf("value = %v", got)
	}
}

func TestPublishBatchEmptyAndError(t *testing.T) {
	boom := errors.New("broker down")
	w := &recordingWriter{err: boom}
	p := newProducer(w, "scores")
	if err := p.PublishBatch(context.Background(), nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
	if err := p.PublishBatch(context.Background(), []Event{{Key: "k", Value: 1}}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

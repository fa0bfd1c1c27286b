package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type recordingPublisher struct {
	topic string
	msg   []byte
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	p.topic = topic
	p.msg = msg
	return p.err
}

func TestPublish(t *testing.T) {
	t.Run("nilPublisher", func(t *testing.T) {
		if err := Publish(context.Background(), nil, ReservationsTopic, ReservationEvent{}); err != nil {
			t.Errorf("Publish() error = %v, want nil", err)
		}
	})

	t.Run("encodesEvent", func(t *testing.T) {
		p := &recordingPublisher{}
		evt := ReservationEvent{
			EventType:     EventReservationConfirmed,
			OccurredAt:    time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
			ReservationID: "r-1",
			Status:        "Confirmed",
		}
		if err := Publish(context.Background(), p, ReservationsTopic, evt); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		if p.topic != ReservationsTopic {
			t.Errorf("topic = %q, want %q", p.topic, ReservationsTopic)
		}
		var got ReservationEvent
		if err := json.Unmarshal(p.msg, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ReservationID != "r-1" || got.EventType != EventReservationConfirmed {
			t.Errorf("decoded = %+v", got)
		}
	})

	t.Run("propagatesError", func(t *testing.T) {
		p := &recordingPublisher{err: errors.New("down")}
		if err := Publish(context.Background(), p, OrdersTopic, OrderEvent{}); err == nil {
			t.Error("Publish() error = nil, want error")
		}
	})
}

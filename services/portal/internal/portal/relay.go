package portal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/pkg/event"
)

// Subscriber is the consuming side of the event bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler event.HandlerFunc, onErr func(error)) error
}

// Broadcaster pushes a frame to every connected browser.
type Broadcaster interface {
	Broadcast(msg notify.Message)
}

// Relay forwards reservation and order events from the bus to every open
// websocket so dashboards refresh without polling.
type Relay struct {
	sub    Subscriber
	out    Broadcaster
	logger logger.Logger
}

func NewRelay(sub Subscriber, out Broadcaster, log logger.Logger) *Relay {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Relay{sub: sub, out: out, logger: log}
}

func (r *Relay) Start(ctx context.Context) error {
	if err := r.sub.Subscribe(ctx, event.ReservationsTopic, r.forward(event.ReservationsTopic), r.onError); err != nil {
		return err
	}
	if err := r.sub.Subscribe(ctx, event.OrdersTopic, r.forward(event.OrdersTopic), r.onError); err != nil {
		return err
	}
	r.logger.Info("relaying events to websocket clients", "topics", []string{event.ReservationsTopic, event.OrdersTopic})
	return nil
}

func (r *Relay) forward(topic string) event.HandlerFunc {
	return func(ctx context.Context, msg []byte) error {
		var envelope struct {
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal(msg, &envelope); err != nil {
			return fmt.Errorf("cannot decode %s event: %w", topic, err)
		}
		if envelope.EventType == "" {
			envelope.EventType = topic
		}
		r.out.Broadcast(notify.Message{Event: envelope.EventType, Payload: json.RawMessage(msg)})
		return nil
	}
}

func (r *Relay) onError(err error) {
	r.logger.Error("event relay failed", "error", err)
}

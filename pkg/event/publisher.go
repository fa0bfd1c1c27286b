package event

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher delivers a raw payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
}

// HandlerFunc consumes a raw payload received on a topic.
type HandlerFunc func(ctx context.Context, msg []byte) error

// Publish encodes evt as JSON and hands it to p. A nil publisher is a no-op.
func Publish(ctx context.Context, p Publisher, topic string, evt any) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("cannot encode event: %w", err)
	}
	return p.Publish(ctx, topic, data)
}

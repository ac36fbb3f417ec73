package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSPublisher drains the event bus to a NATS subject per event type so
// other systems can follow plan activity.
type NATSPublisher struct {
	conn *nats.Conn
	bus  *EventBus
}

func NewNATSPublisher(url string, bus *EventBus) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{
		conn: conn,
		bus:  bus,
	}, nil
}

func (p *NATSPublisher) Run(ctx context.Context) error {
	defer p.conn.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-p.bus.GetChannel():
			payload, err := json.Marshal(event)
			if err != nil {
				slog.Error("Failed to marshal event", "type", event.GetType(), "error", err)
				continue
			}
			if err := p.conn.Publish("plans.events."+string(event.GetType()), payload); err != nil {
				slog.Warn("Failed to publish event", "type", event.GetType(), "error", err)
			}
		}
	}
}

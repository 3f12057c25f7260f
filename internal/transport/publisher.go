// Package transport moves derived connection events between processes over
// NATS, JSON-encoded one event per message.
package transport

import (
	"encoding/json"
	"fmt"
	"log"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/model"

	"github.com/nats-io/nats.go"
)

// Publisher publishes connection events to a NATS subject. It satisfies the
// model.EventSink interface so the monitor can treat it like any other sink.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// WriteEvents publishes each event as its own message.
func (p *Publisher) WriteEvents(events []*model.ConnectionEvent) error {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		if err := p.nc.Publish(p.subject, data); err != nil {
			return fmt.Errorf("failed to publish event: %w", err)
		}
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
	return nil
}

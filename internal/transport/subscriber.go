package transport

import (
	"encoding/json"
	"log"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/model"

	"github.com/nats-io/nats.go"
)

// EventHandler is a function that processes a received ConnectionEvent.
type EventHandler func(ev *model.ConnectionEvent)

// Subscriber consumes connection events from a NATS subject.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.NATSConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to the configured subject and hands each decoded event to
// the handler. Undecodable messages are logged and dropped.
func (s *Subscriber) Start(handler EventHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		var ev model.ConnectionEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("Error unmarshalling event: %v", err)
			return
		}
		handler(&ev)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Drain()
	}
}

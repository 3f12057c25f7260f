package model

// EventSink defines a generic interface for persisting derived connection
// events. A sink failure is reported to the caller but must never roll back
// the engine state that produced the events.
type EventSink interface {
	// WriteEvents persists one poll cycle's worth of events.
	WriteEvents(events []*ConnectionEvent) error

	// Close releases the sink's resources.
	Close() error
}

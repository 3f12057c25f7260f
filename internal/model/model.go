package model

import (
	"fmt"
	"time"
)

// EventType classifies a connection lifecycle transition.
type EventType string

const (
	EventConnect       EventType = "connect"
	EventAuthenticated EventType = "authenticated"
	EventDisconnect    EventType = "disconnect"
	EventAuthFailed    EventType = "auth_failed"
)

// ConnectionEvent is an immutable record of one lifecycle transition for a
// single tunnel session. Optional fields are pointers (counters) or empty
// strings; serialization drops them, the in-memory shape is fixed.
type ConnectionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"event_type"`
	ClientIP   string    `json:"client_ip"`
	ClientPort int       `json:"client_port"`

	// Resolved via log correlation or the snapshot record; empty until known.
	Username string `json:"username,omitempty"`

	// Tunnel-internal address. Never set on disconnect events: the snapshot
	// no longer lists a departed session.
	VirtualIP string `json:"virtual_ip,omitempty"`

	// Traffic counters from the snapshot record. Nil when the event was not
	// derived from a snapshot line (disconnects, auth failures).
	BytesReceived *uint64 `json:"bytes_received,omitempty"`
	BytesSent     *uint64 `json:"bytes_sent,omitempty"`

	ServerName     string `json:"server_name,omitempty"`
	ServerLocation string `json:"server_location,omitempty"`
}

// SessionKey returns the "ip:port" identifier of the session this event
// belongs to. The pair uniquely identifies a concurrently active session,
// though a recycled port may later carry an unrelated one.
func (e *ConnectionEvent) SessionKey() string {
	return SessionKey(e.ClientIP, e.ClientPort)
}

// SessionKey builds the composite session identifier from a client's real
// address.
func SessionKey(ip string, port int) string {
	return fmt.Sprintf("%s:%d", ip, port)
}

// ClientRecord is one parsed CLIENT_LIST entry from a status snapshot.
type ClientRecord struct {
	CommonName     string
	ClientIP       string
	ClientPort     int
	VirtualIP      string
	BytesReceived  uint64
	BytesSent      uint64
	ConnectedSince string
	Username       string
}

// Key returns the session key for this record.
func (r *ClientRecord) Key() string {
	return SessionKey(r.ClientIP, r.ClientPort)
}

package query

import (
	"context"
	"fmt"
	"time"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/storage"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// TypeSummary aggregates one event type over a reporting window.
type TypeSummary struct {
	EventType     string `json:"event_type"`
	Count         uint64 `json:"count"`
	UniqueClients uint64 `json:"unique_clients"`
}

// ClientSummary aggregates one client's activity over a reporting window.
type ClientSummary struct {
	ClientIP     string    `json:"client_ip"`
	Total        uint64    `json:"total_connections"`
	Connects     uint64    `json:"connect_events"`
	Disconnects  uint64    `json:"disconnect_events"`
	AuthFailures uint64    `json:"auth_failures"`
	LastSeen     time.Time `json:"last_seen"`
}

// TimelineEntry is one stored event row returned by timeline and per-client
// queries.
type TimelineEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	ClientIP   string    `json:"client_ip"`
	ClientPort uint16    `json:"client_port"`
	Username   *string   `json:"username,omitempty"`
	VirtualIP  *string   `json:"virtual_ip,omitempty"`
	ServerName string    `json:"server_name"`
}

// Querier defines the interface for querying stored connection events.
type Querier interface {
	Summary(ctx context.Context, since time.Time) ([]TypeSummary, error)
	TopClients(ctx context.Context, since time.Time, limit int) ([]ClientSummary, error)
	Timeline(ctx context.Context, since time.Time, limit int) ([]TimelineEntry, error)
	ClientEvents(ctx context.Context, clientIP string, since time.Time) ([]TimelineEntry, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := storage.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

// Summary returns per-event-type counts and unique client counts since the
// given instant.
func (q *clickhouseQuerier) Summary(ctx context.Context, since time.Time) ([]TypeSummary, error) {
	const query = `
		SELECT
			EventType,
			COUNT(*) AS Count,
			uniqExact(ClientIP) AS UniqueClients
		FROM connection_events
		WHERE Timestamp >= ?
		GROUP BY EventType
		ORDER BY EventType
	`

	rows, err := q.conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to execute summary query: %w", err)
	}
	defer rows.Close()

	var summaries []TypeSummary
	for rows.Next() {
		var s TypeSummary
		if err := rows.Scan(&s.EventType, &s.Count, &s.UniqueClients); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// TopClients returns the most active clients by stored event count.
func (q *clickhouseQuerier) TopClients(ctx context.Context, since time.Time, limit int) ([]ClientSummary, error) {
	const query = `
		SELECT
			ClientIP,
			COUNT(*) AS Total,
			countIf(EventType = 'connect') AS Connects,
			countIf(EventType = 'disconnect') AS Disconnects,
			countIf(EventType = 'auth_failed') AS AuthFailures,
			max(Timestamp) AS LastSeen
		FROM connection_events
		WHERE Timestamp >= ?
		GROUP BY ClientIP
		ORDER BY Total DESC
		LIMIT ?
	`

	rows, err := q.conn.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute top clients query: %w", err)
	}
	defer rows.Close()

	var clients []ClientSummary
	for rows.Next() {
		var c ClientSummary
		if err := rows.Scan(&c.ClientIP, &c.Total, &c.Connects, &c.Disconnects, &c.AuthFailures, &c.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// Timeline returns the most recent stored events, newest first.
func (q *clickhouseQuerier) Timeline(ctx context.Context, since time.Time, limit int) ([]TimelineEntry, error) {
	const query = `
		SELECT Timestamp, EventType, ClientIP, ClientPort, Username, VirtualIP, ServerName
		FROM connection_events
		WHERE Timestamp >= ?
		ORDER BY Timestamp DESC
		LIMIT ?
	`
	return q.queryTimeline(ctx, query, since, limit)
}

// ClientEvents returns all stored events for one client IP, newest first.
func (q *clickhouseQuerier) ClientEvents(ctx context.Context, clientIP string, since time.Time) ([]TimelineEntry, error) {
	const query = `
		SELECT Timestamp, EventType, ClientIP, ClientPort, Username, VirtualIP, ServerName
		FROM connection_events
		WHERE ClientIP = ? AND Timestamp >= ?
		ORDER BY Timestamp DESC
	`
	return q.queryTimeline(ctx, query, clientIP, since)
}

func (q *clickhouseQuerier) queryTimeline(ctx context.Context, query string, args ...interface{}) ([]TimelineEntry, error) {
	rows, err := q.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute timeline query: %w", err)
	}
	defer rows.Close()

	var entries []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.Timestamp, &e.EventType, &e.ClientIP, &e.ClientPort, &e.Username, &e.VirtualIP, &e.ServerName); err != nil {
			return nil, fmt.Errorf("failed to scan timeline row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

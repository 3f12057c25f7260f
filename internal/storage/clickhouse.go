// Package storage persists derived connection events and system samples to
// ClickHouse.
package storage

import (
	"context"
	"fmt"
	"log"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/model"
	"TunnelSpectra/internal/sysmon"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createEventsTableStatement = `
CREATE TABLE IF NOT EXISTS connection_events (
    Timestamp      DateTime,
    EventType      String,
    ClientIP       String,
    ClientPort     UInt16,
    Username       Nullable(String),
    VirtualIP      Nullable(String),
    BytesReceived  Nullable(UInt64),
    BytesSent      Nullable(UInt64),
    ServerName     String,
    ServerLocation String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (EventType, Timestamp);
`

const createMetricsTableStatement = `
CREATE TABLE IF NOT EXISTS system_metrics (
    Timestamp       DateTime,
    CPUPercent      Float64,
    MemoryPercent   Float64,
    MemoryAvailable UInt64,
    DiskPercent     Float64,
    DiskFree        UInt64,
    ServerName      String,
    ServerLocation  String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY Timestamp;
`

// ClickHouseSink implements the model.EventSink interface for ClickHouse and
// additionally stores periodic system samples.
type ClickHouseSink struct {
	conn   driver.Conn
	server config.ServerConfig
}

// NewClickHouseSink connects to ClickHouse and ensures both tables exist.
func NewClickHouseSink(cfg config.ClickHouseConfig, server config.ServerConfig) (*ClickHouseSink, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createEventsTableStatement, createMetricsTableStatement} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseSink{conn: conn, server: server}, nil
}

// Connect opens a ClickHouse connection and verifies it with a ping.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// WriteEvents batch-inserts one poll cycle's events. Absent optional fields
// are inserted as NULL.
func (s *ClickHouseSink) WriteEvents(events []*model.ConnectionEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(context.Background(), "INSERT INTO connection_events")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, ev := range events {
		err = batch.Append(
			ev.Timestamp,
			string(ev.Type),
			ev.ClientIP,
			uint16(ev.ClientPort),
			nullableString(ev.Username),
			nullableString(ev.VirtualIP),
			ev.BytesReceived,
			ev.BytesSent,
			ev.ServerName,
			ev.ServerLocation,
		)
		if err != nil {
			return fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d connection events to ClickHouse", len(events))
	return nil
}

// WriteSystemSample inserts one host resource sample.
func (s *ClickHouseSink) WriteSystemSample(sample *sysmon.Sample) error {
	batch, err := s.conn.PrepareBatch(context.Background(), "INSERT INTO system_metrics")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	err = batch.Append(
		sample.Timestamp,
		sample.CPUPercent,
		sample.MemoryPercent,
		sample.MemoryAvailable,
		sample.DiskPercent,
		sample.DiskFree,
		s.server.Name,
		s.server.Location,
	)
	if err != nil {
		return fmt.Errorf("failed to append sample to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}

// nullableString maps an absent optional field to NULL.
func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

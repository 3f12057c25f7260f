// Package monitor wires the derivation engine to its sinks and drives the
// poll cycles on a fixed interval.
package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"TunnelSpectra/internal/alerter"
	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/engine"
	"TunnelSpectra/internal/model"
	"TunnelSpectra/internal/notification"
	"TunnelSpectra/internal/storage"
	"TunnelSpectra/internal/sysmon"
	"TunnelSpectra/internal/transport"
)

// Monitor owns one derivation engine and the sinks its events feed. Poll
// cycles run on a single goroutine: a cycle still in flight when the next
// tick fires makes that tick get dropped, never run concurrently, because
// the engine's registry and cursors are not synchronized.
type Monitor struct {
	engine   *engine.Engine
	sinks    []model.EventSink
	notifier *notification.Manager
	sampler  *sysmon.Sampler
	chSink   *storage.ClickHouseSink
	alerter  *alerter.Alerter

	pollInterval  time.Duration
	statsInterval time.Duration
	cursorPath    string

	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a monitor from the configuration, connecting every enabled
// sink.
func New(cfg *config.Config) (*Monitor, error) {
	pollInterval, err := cfg.Monitor.PollIntervalDuration()
	if err != nil {
		return nil, err
	}
	statsInterval, err := cfg.Monitor.StatsIntervalDuration()
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		engine:        engine.New(cfg.Server, cfg.Monitor),
		notifier:      notification.NewManager(cfg),
		sampler:       &sysmon.Sampler{},
		pollInterval:  pollInterval,
		statsInterval: statsInterval,
		cursorPath:    cfg.Monitor.CursorPath,
		done:          make(chan struct{}),
	}

	if cfg.ClickHouse.Enabled {
		sink, err := storage.NewClickHouseSink(cfg.ClickHouse, cfg.Server)
		if err != nil {
			return nil, fmt.Errorf("failed to create clickhouse sink: %w", err)
		}
		m.chSink = sink
		m.sinks = append(m.sinks, sink)
	}
	if cfg.NATS.Enabled {
		pub, err := transport.NewPublisher(cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("failed to create nats publisher: %w", err)
		}
		m.sinks = append(m.sinks, pub)
	}

	if cfg.Alerter.Enabled {
		if m.notifier.Enabled() {
			a, err := alerter.NewAlerter(&cfg.Alerter, m.sampler, m.notifier, cfg.Server.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to create alerter: %w", err)
			}
			m.alerter = a
			log.Println("Alerter enabled and initialized.")
		} else {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		}
	}

	if m.cursorPath != "" {
		if err := m.loadCursor(); err != nil {
			log.Printf("Starting with a fresh cursor: %v", err)
		}
	}

	return m, nil
}

// Start launches the poll loop, the system stats loop and the alerter.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.runPoller()
	log.Printf("Started poller with interval %s", m.pollInterval)

	if m.chSink != nil {
		m.wg.Add(1)
		go m.runStatsLogger()
		log.Printf("Started system stats logger with interval %s", m.statsInterval)
	}

	if m.alerter != nil {
		go m.alerter.Start()
	}
}

// Stop shuts the monitor down, running one final poll cycle so buffered log
// content is not lost.
func (m *Monitor) Stop() {
	log.Println("Monitor stopping...")
	close(m.done)
	m.wg.Wait()

	if m.alerter != nil {
		m.alerter.Stop()
	}
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			log.Printf("Failed to close sink: %v", err)
		}
	}
	log.Println("Monitor stopped.")
}

// runPoller drives the poll cycles. The initial cycle runs immediately so a
// restart picks up pending log content without waiting a full interval.
func (m *Monitor) runPoller() {
	defer m.wg.Done()

	m.cycle()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cycle()
		case <-m.done:
			m.cycle()
			return
		}
	}
}

// cycle runs one poll and hands the derived events to every sink. Engine
// state is committed once Poll returns; sink failures are logged and do not
// roll it back.
func (m *Monitor) cycle() {
	events := m.engine.Poll()

	if len(events) > 0 {
		for _, sink := range m.sinks {
			if err := sink.WriteEvents(events); err != nil {
				log.Printf("Failed to write events to sink: %v", err)
			}
		}
		for _, ev := range events {
			log.Printf("Derived %s event for %s", ev.Type, ev.SessionKey())
			m.notifier.NotifyConnectionEvent(ev.Type, ev.ClientIP, ev.Username, ev.VirtualIP, ev.ServerName, ev.ClientPort)
		}
	}

	if m.cursorPath != "" {
		if err := m.saveCursor(); err != nil {
			log.Printf("Failed to save cursor: %v", err)
		}
	}
}

// runStatsLogger periodically stores a host resource sample.
func (m *Monitor) runStatsLogger() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sample, err := m.sampler.Sample()
			if err != nil {
				log.Printf("Failed to sample host stats: %v", err)
				continue
			}
			if err := m.chSink.WriteSystemSample(sample); err != nil {
				log.Printf("Failed to write system sample: %v", err)
			}
		case <-m.done:
			return
		}
	}
}

// saveCursor persists the engine cursor so polling survives restarts.
func (m *Monitor) saveCursor() error {
	data, err := json.MarshalIndent(m.engine.Cursor(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.cursorPath, data, 0644)
}

// loadCursor restores a previously saved cursor, if any.
func (m *Monitor) loadCursor() error {
	data, err := os.ReadFile(m.cursorPath)
	if err != nil {
		return err
	}
	var cur engine.Cursor
	if err := json.Unmarshal(data, &cur); err != nil {
		return fmt.Errorf("failed to parse cursor file: %w", err)
	}
	m.engine.Restore(cur)
	log.Printf("Restored cursor: log offset %d, %d known clients", cur.LogOffset, len(cur.Clients))
	return nil
}

// Package engine derives connection lifecycle events by correlating the
// status snapshot and the incremental event log each poll cycle. One Engine
// instance owns the session registry, the log cursor and the previous
// snapshot's client set for a single monitored source; there is no ambient
// global state.
package engine

import (
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/logscan"
	"TunnelSpectra/internal/model"
	"TunnelSpectra/internal/registry"
	"TunnelSpectra/internal/snapshot"
)

// Engine is the event-derivation state machine. It is not safe for
// concurrent use: poll cycles must run to completion one at a time.
type Engine struct {
	serverName     string
	serverLocation string
	statusPath     string

	scanner  *logscan.Scanner
	registry *registry.Registry

	prevClients snapshot.KeySet

	// Session keys whose explicit logout already emitted a disconnect. The
	// later snapshot-derived disconnect for the same key is suppressed so a
	// single real-world departure never produces two events.
	suppressed map[string]struct{}

	now func() time.Time
}

// New creates an engine for one monitored server.
func New(server config.ServerConfig, mon config.MonitorConfig) *Engine {
	return &Engine{
		serverName:     server.Name,
		serverLocation: server.Location,
		statusPath:     mon.StatusPath,
		scanner:        logscan.NewScanner(mon.LogPath),
		registry:       registry.New(),
		prevClients:    make(snapshot.KeySet),
		suppressed:     make(map[string]struct{}),
		now:            time.Now,
	}
}

// Registry exposes the engine's session registry for inspection.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Poll runs one complete derivation cycle and returns the ordered,
// deduplicated events it produced: logout-derived disconnects and auth
// failures first, then connects, authenticated heartbeats and finally
// snapshot-derived disconnects. Source failures are logged and recovered
// locally; Poll never fails.
func (e *Engine) Poll() []*model.ConnectionEvent {
	var events []*model.ConnectionEvent

	// 1. Scan the log increment. Login signals only enrich the registry;
	// logouts and auth failures emit immediately.
	signals, err := e.scanner.Scan()
	if err != nil {
		log.Printf("Warning: failed to scan event log: %v", err)
	}
	for _, sig := range signals {
		switch sig.Kind {
		case model.SignalLogin:
			e.registry.SetUsername(sig.Key(), sig.Username)
		case model.SignalLogout:
			events = append(events, e.newEvent(model.EventDisconnect, sig.ClientIP, sig.ClientPort, sig.Username))
			e.suppressed[sig.Key()] = struct{}{}
			e.registry.Remove(sig.Key())
		case model.SignalAuthFailed:
			events = append(events, e.newEvent(model.EventAuthFailed, sig.ClientIP, sig.ClientPort, sig.Username))
		}
	}

	// 2. Read and parse the full status snapshot. A missing or unreadable
	// file contributes nothing this cycle and leaves the previous client
	// set untouched rather than faking a mass disconnect.
	records, err := snapshot.ParseFile(e.statusPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read status file %s: %v", e.statusPath, err)
		} else {
			log.Printf("Warning: status file not found: %s", e.statusPath)
		}
		return events
	}

	cur := make(snapshot.KeySet, len(records))
	byKey := make(map[string]*model.ClientRecord, len(records))
	for _, rec := range records {
		cur[rec.Key()] = struct{}{}
		byKey[rec.Key()] = rec
	}
	joined, left := snapshot.Diff(e.prevClients, cur)

	// 3. Connects: a key already known to the registry (via a login signal
	// or a prior snapshot) was established before this cycle, so only its
	// heartbeat is emitted.
	for _, key := range joined {
		if e.registry.Known(key) {
			continue
		}
		rec := byKey[key]
		ev := e.newEvent(model.EventConnect, rec.ClientIP, rec.ClientPort, rec.Username)
		ev.VirtualIP = rec.VirtualIP
		ev.BytesReceived = counter(rec.BytesReceived)
		ev.BytesSent = counter(rec.BytesSent)
		events = append(events, ev)
	}

	// 4. Heartbeats: every current member, joined or not, refreshes its
	// registry entry and emits one authenticated event carrying the
	// freshest counters and the best-known username.
	for _, rec := range sortedRecords(cur, byKey) {
		entry := e.registry.Activate(rec.Key(), rec.Username, rec.VirtualIP)
		ev := e.newEvent(model.EventAuthenticated, rec.ClientIP, rec.ClientPort, entry.Username)
		ev.VirtualIP = rec.VirtualIP
		ev.BytesReceived = counter(rec.BytesReceived)
		ev.BytesSent = counter(rec.BytesSent)
		events = append(events, ev)
	}

	// 5. Snapshot-derived disconnects, minus the ones an explicit logout
	// already covered.
	for _, key := range left {
		if _, ok := e.suppressed[key]; ok {
			// The explicit logout already finalized this session; a stale
			// snapshot may have recreated its registry entry since.
			e.registry.Remove(key)
			continue
		}
		ip, port := splitKey(key)
		username := ""
		if entry := e.registry.Lookup(key); entry != nil {
			username = entry.Username
		}
		events = append(events, e.newEvent(model.EventDisconnect, ip, port, username))
		e.registry.Remove(key)
	}

	// A suppression mark is spent once the key's disappearance has been
	// observed, and moot if the key never reached the snapshot at all.
	for key := range e.suppressed {
		if _, ok := cur[key]; !ok {
			delete(e.suppressed, key)
		}
	}

	// 6. Commit the cycle: the current set becomes the baseline for the
	// next diff. The log offset was advanced by the scanner.
	e.prevClients = cur

	return events
}

func (e *Engine) newEvent(t model.EventType, ip string, port int, username string) *model.ConnectionEvent {
	return &model.ConnectionEvent{
		Timestamp:      e.now(),
		Type:           t,
		ClientIP:       ip,
		ClientPort:     port,
		Username:       username,
		ServerName:     e.serverName,
		ServerLocation: e.serverLocation,
	}
}

func counter(v uint64) *uint64 {
	return &v
}

// sortedRecords returns the current snapshot's records in session-key order
// so every cycle emits heartbeats deterministically.
func sortedRecords(cur snapshot.KeySet, byKey map[string]*model.ClientRecord) []*model.ClientRecord {
	keys := make([]string, 0, len(cur))
	for k := range cur {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	records := make([]*model.ClientRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, byKey[k])
	}
	return records
}

// splitKey splits a session key back into its ip and port components.
func splitKey(key string) (string, int) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return key, 0
	}
	port, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return key[:idx], 0
	}
	return key[:idx], port
}

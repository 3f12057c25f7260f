package engine

import "sort"

// Cursor is the externally persistable poll state: the byte offset into the
// event log and the session keys of the last snapshot parse. A process that
// wants polling to survive restarts saves it after a cycle and restores it
// before the first one.
type Cursor struct {
	LogOffset int64    `json:"log_offset"`
	Clients   []string `json:"clients"`
}

// Cursor captures the engine's current poll state.
func (e *Engine) Cursor() Cursor {
	clients := make([]string, 0, len(e.prevClients))
	for k := range e.prevClients {
		clients = append(clients, k)
	}
	sort.Strings(clients)
	return Cursor{
		LogOffset: e.scanner.Offset(),
		Clients:   clients,
	}
}

// Restore reinstates a previously captured cursor. Restored clients are
// treated as an already-seen snapshot: their next appearance emits no
// connect, their absence emits a disconnect.
func (e *Engine) Restore(c Cursor) {
	e.scanner.SetOffset(c.LogOffset)
	e.prevClients = make(map[string]struct{}, len(c.Clients))
	for _, key := range c.Clients {
		e.prevClients[key] = struct{}{}
		e.registry.Activate(key, "", "")
	}
}

// Package registry tracks last-known metadata for tunnel sessions keyed by
// the client's real ip:port. It is a pure data structure: the derivation
// engine owns one instance per monitored source and is its only writer.
package registry

// Entry holds the last-known metadata for one session key.
type Entry struct {
	// Active is true once the session has been confirmed by a status
	// snapshot. A login signal alone creates the entry but leaves it false.
	Active    bool
	Username  string
	VirtualIP string
}

// Registry maps session keys to their entries.
type Registry struct {
	sessions map[string]*Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]*Entry)}
}

// Lookup returns the entry for key, or nil if the key is unknown.
func (r *Registry) Lookup(key string) *Entry {
	return r.sessions[key]
}

// Known reports whether any entry exists for key, active or not.
func (r *Registry) Known(key string) bool {
	_, ok := r.sessions[key]
	return ok
}

// SetUsername records the username announced by a login signal, creating the
// entry if needed. The entry stays inactive until a snapshot confirms it.
func (r *Registry) SetUsername(key, username string) {
	e, ok := r.sessions[key]
	if !ok {
		e = &Entry{}
		r.sessions[key] = e
	}
	e.Username = username
}

// Activate marks a session confirmed by the snapshot, creating the entry if
// needed and refreshing its metadata. An already-known username is kept when
// the snapshot record carries none.
func (r *Registry) Activate(key, username, virtualIP string) *Entry {
	e, ok := r.sessions[key]
	if !ok {
		e = &Entry{}
		r.sessions[key] = e
	}
	e.Active = true
	if username != "" {
		e.Username = username
	}
	if virtualIP != "" {
		e.VirtualIP = virtualIP
	}
	return e
}

// Remove finalizes a disconnect, dropping the entry for key.
func (r *Registry) Remove(key string) {
	delete(r.sessions, key)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

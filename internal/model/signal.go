package model

// SignalKind identifies what a scanned log line announced.
type SignalKind int

const (
	// SignalLogin carries the username announced when a peer connection is
	// initiated. It enriches the session registry, it does not itself emit
	// a ConnectionEvent.
	SignalLogin SignalKind = iota

	// SignalLogout is an explicit soft remote-exit termination. It emits a
	// disconnect immediately and suppresses the snapshot-derived one.
	SignalLogout

	// SignalAuthFailed is an authentication rejection sent to the peer.
	SignalAuthFailed
)

// LogSignal is one correlation signal extracted from the append-only event
// log by the incremental scanner.
type LogSignal struct {
	Kind       SignalKind
	ClientIP   string
	ClientPort int
	Username   string
}

// Key returns the session key the signal refers to.
func (s *LogSignal) Key() string {
	return SessionKey(s.ClientIP, s.ClientPort)
}

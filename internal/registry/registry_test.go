package registry

import "testing"

func TestSetUsernameCreatesInactiveEntry(t *testing.T) {
	r := New()

	r.SetUsername("10.0.0.5:5000", "alice")

	e := r.Lookup("10.0.0.5:5000")
	if e == nil {
		t.Fatalf("Expected entry to be created by SetUsername")
	}
	if e.Active {
		t.Errorf("Entry should stay inactive until a snapshot confirms it")
	}
	if e.Username != "alice" {
		t.Errorf("Expected username 'alice', got %q", e.Username)
	}
}

func TestActivateKeepsKnownUsername(t *testing.T) {
	r := New()
	r.SetUsername("10.0.0.5:5000", "alice")

	// Snapshot record without a username must not erase the correlated one.
	e := r.Activate("10.0.0.5:5000", "", "10.8.0.4")

	if !e.Active {
		t.Errorf("Expected entry to be active after snapshot confirmation")
	}
	if e.Username != "alice" {
		t.Errorf("Expected username 'alice' to survive activation, got %q", e.Username)
	}
	if e.VirtualIP != "10.8.0.4" {
		t.Errorf("Expected virtual IP to be recorded, got %q", e.VirtualIP)
	}
}

func TestActivateOverwritesUsernameWhenSupplied(t *testing.T) {
	r := New()
	r.SetUsername("10.0.0.5:5000", "alice")

	e := r.Activate("10.0.0.5:5000", "bob", "")

	if e.Username != "bob" {
		t.Errorf("Expected snapshot username to win when present, got %q", e.Username)
	}
}

func TestRemove(t *testing.T) {
	r := New()
	r.Activate("10.0.0.5:5000", "alice", "10.8.0.4")

	r.Remove("10.0.0.5:5000")

	if r.Known("10.0.0.5:5000") {
		t.Errorf("Expected entry to be gone after Remove")
	}
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d entries", r.Len())
	}
}

package logscan

import (
	"os"
	"path/filepath"
	"testing"

	"TunnelSpectra/internal/model"
)

func TestScanLinesLogin(t *testing.T) {
	content := "Sat Aug 30 12:00:01 2026 10.0.0.5:5000 [alice] Peer Connection Initiated with [AF_INET]10.0.0.5:5000\n"

	signals := ScanLines(content)

	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(signals))
	}
	sig := signals[0]
	if sig.Kind != model.SignalLogin {
		t.Errorf("Expected login signal, got %v", sig.Kind)
	}
	if sig.ClientIP != "10.0.0.5" || sig.ClientPort != 5000 || sig.Username != "alice" {
		t.Errorf("Unexpected signal fields: %+v", sig)
	}
}

func TestScanLinesLogout(t *testing.T) {
	content := "Sat Aug 30 12:05:00 2026 alice/10.0.0.5:5000 SIGTERM[soft,remote-exit] received, client-instance exiting\n"

	signals := ScanLines(content)

	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(signals))
	}
	sig := signals[0]
	if sig.Kind != model.SignalLogout {
		t.Errorf("Expected logout signal, got %v", sig.Kind)
	}
	if sig.Username != "alice" {
		t.Errorf("Expected username 'alice', got %q", sig.Username)
	}
	if sig.Key() != "10.0.0.5:5000" {
		t.Errorf("Expected session key 10.0.0.5:5000, got %q", sig.Key())
	}
}

func TestScanLinesAuthFailed(t *testing.T) {
	content := "Sat Aug 30 12:10:00 2026 10.0.0.9:6000 SENT CONTROL [mallory]: 'AUTH_FAILED' (status=1)\n"

	signals := ScanLines(content)

	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(signals))
	}
	if signals[0].Kind != model.SignalAuthFailed {
		t.Errorf("Expected auth-failed signal, got %v", signals[0].Kind)
	}
	if signals[0].Username != "mallory" {
		t.Errorf("Expected username 'mallory', got %q", signals[0].Username)
	}
}

func TestScanLinesIgnoresUnmatched(t *testing.T) {
	content := `Sat Aug 30 12:00:00 2026 TLS: Initial packet from [AF_INET]10.0.0.5:5000
garbage line that matches nothing
Sat Aug 30 12:00:02 2026 MULTI: multi_create_instance called
`
	if signals := ScanLines(content); len(signals) != 0 {
		t.Errorf("Expected no signals from unmatched lines, got %d", len(signals))
	}
}

func TestScanReadsOnlyAppendedBytes(t *testing.T) {
	// 1. Create a log file with one login line
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "openvpn.log")
	first := "10.0.0.5:5000 [alice] Peer Connection Initiated\n"
	if err := os.WriteFile(path, []byte(first), 0644); err != nil {
		t.Fatalf("Failed to write log file: %v", err)
	}

	s := NewScanner(path)

	// 2. First scan sees the login
	signals, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(signals) != 1 || signals[0].Kind != model.SignalLogin {
		t.Fatalf("Expected 1 login signal on first scan, got %v", signals)
	}

	// 3. A scan with nothing appended sees nothing
	signals, err = s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(signals) != 0 {
		t.Errorf("Expected no signals without new content, got %d", len(signals))
	}

	// 4. Append a logout; only the new line is scanned
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("Failed to open log for append: %v", err)
	}
	if _, err := f.WriteString("alice/10.0.0.5:5000 SIGTERM[soft,remote-exit] received\n"); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	f.Close()

	signals, err = s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(signals) != 1 || signals[0].Kind != model.SignalLogout {
		t.Fatalf("Expected exactly the appended logout signal, got %v", signals)
	}
}

func TestScanResetsOffsetOnTruncation(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "openvpn.log")
	long := "10.0.0.5:5000 [alice] Peer Connection Initiated\nfiller line to make the file longer\n"
	if err := os.WriteFile(path, []byte(long), 0644); err != nil {
		t.Fatalf("Failed to write log file: %v", err)
	}

	s := NewScanner(path)
	if _, err := s.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// Simulate rotation: the file is rewritten shorter than the offset.
	short := "10.0.0.6:7000 [bob] Peer Connection Initiated\n"
	if err := os.WriteFile(path, []byte(short), 0644); err != nil {
		t.Fatalf("Failed to truncate log file: %v", err)
	}

	signals, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(signals) != 1 || signals[0].Username != "bob" {
		t.Fatalf("Expected the rewritten file to be scanned from offset 0, got %v", signals)
	}
	if s.Offset() != int64(len(short)) {
		t.Errorf("Expected offset %d after rescan, got %d", len(short), s.Offset())
	}
}

func TestScanMissingFile(t *testing.T) {
	s := NewScanner(filepath.Join(t.TempDir(), "does-not-exist.log"))

	signals, err := s.Scan()
	if err != nil {
		t.Fatalf("Expected a missing file to be non-fatal, got %v", err)
	}
	if len(signals) != 0 {
		t.Errorf("Expected no signals from a missing file, got %d", len(signals))
	}
}

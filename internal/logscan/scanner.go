// Package logscan incrementally reads the append-only tunnel event log and
// extracts correlation signals from the newly appended bytes.
package logscan

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"TunnelSpectra/internal/model"
)

var (
	// "1.2.3.4:5000 [alice] Peer Connection Initiated ..."
	loginPattern = regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+):(\d+)\s+\[([^\]]+)\]\s+Peer Connection Initiated`)

	// "alice/1.2.3.4:5000 SIGTERM[soft,remote-exit] received ..."
	logoutPattern = regexp.MustCompile(`(\S+)/(\d+\.\d+\.\d+\.\d+):(\d+)\s+SIGTERM\[soft,remote-exit\]`)

	// "1.2.3.4:5000 SENT CONTROL [alice]: 'AUTH_FAILED' ..."
	authFailPattern = regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+):(\d+)\s+SENT CONTROL \[([^\]]+)\]: 'AUTH_FAILED'`)
)

// Scanner tracks a byte offset into the event log and parses only content
// appended since the previous scan.
type Scanner struct {
	path   string
	offset int64
}

// NewScanner creates a scanner for the log file at path. An empty path
// disables scanning entirely.
func NewScanner(path string) *Scanner {
	return &Scanner{path: path}
}

// Offset returns the current byte offset into the log file.
func (s *Scanner) Offset() int64 {
	return s.offset
}

// SetOffset restores a previously saved byte offset. A stale offset past the
// current end of file is handled by the shrink check on the next scan.
func (s *Scanner) SetOffset(off int64) {
	if off < 0 {
		off = 0
	}
	s.offset = off
}

// Scan reads bytes appended since the last scan and returns the signals
// extracted from them. A missing file yields no signals and no error; if the
// file has shrunk (rotation or truncation) the offset resets to zero before
// reading. Malformed lines never fail the scan.
func (s *Scanner) Scan() ([]*model.LogSignal, error) {
	if s.path == "" {
		return nil, nil
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.Size() < s.offset {
		// The file was rotated or truncated underneath us. Rather than seek
		// past end-of-file, start over from the beginning.
		s.offset = 0
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(s.offset, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	s.offset += int64(len(data))

	return ScanLines(string(data)), nil
}

// ScanLines extracts all signals from a chunk of log content. Unmatched
// lines are ignored.
func ScanLines(content string) []*model.LogSignal {
	var signals []*model.LogSignal
	for _, line := range strings.Split(content, "\n") {
		if sig := matchLine(line); sig != nil {
			signals = append(signals, sig)
		}
	}
	return signals
}

func matchLine(line string) *model.LogSignal {
	if m := loginPattern.FindStringSubmatch(line); m != nil {
		return &model.LogSignal{
			Kind:       model.SignalLogin,
			ClientIP:   m[1],
			ClientPort: atoiPort(m[2]),
			Username:   m[3],
		}
	}
	if m := logoutPattern.FindStringSubmatch(line); m != nil {
		return &model.LogSignal{
			Kind:       model.SignalLogout,
			ClientIP:   m[2],
			ClientPort: atoiPort(m[3]),
			Username:   m[1],
		}
	}
	if m := authFailPattern.FindStringSubmatch(line); m != nil {
		return &model.LogSignal{
			Kind:       model.SignalAuthFailed,
			ClientIP:   m[1],
			ClientPort: atoiPort(m[2]),
			Username:   m[3],
		}
	}
	return nil
}

// atoiPort parses a port captured by the patterns, defaulting to 0 on
// overflow rather than dropping the signal.
func atoiPort(s string) int {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return p
}

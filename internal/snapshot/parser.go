// Package snapshot parses the periodically rewritten status file of the
// tunnel service and diffs successive parses into joined/left session keys.
// The status file represents state, not a delta: every read replaces the
// previous one in full.
package snapshot

import (
	"log"
	"os"
	"strconv"
	"strings"

	"TunnelSpectra/internal/model"
)

// recordMarker prefixes every client record in the status file.
const recordMarker = "CLIENT_LIST,"

// minFields is the number of comma-separated fields (marker included) a
// client record must carry to be usable: common name, real address, virtual
// address, virtual IPv6, bytes received, bytes sent, connected since.
const minFields = 8

// usernameField is the fixed index of the optional username column.
const usernameField = 9

// Parse extracts all well-formed client records from full status file
// content. Malformed records are skipped and logged, never fatal.
func Parse(content string) []*model.ClientRecord {
	var records []*model.ClientRecord

	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, recordMarker) {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < minFields {
			log.Printf("Skipping malformed client record (%d fields): %s", len(parts), line)
			continue
		}

		ip, port := splitRealAddress(parts[2])
		rec := &model.ClientRecord{
			CommonName:     parts[1],
			ClientIP:       ip,
			ClientPort:     port,
			VirtualIP:      parts[3],
			BytesReceived:  parseCounter(parts[5]),
			BytesSent:      parseCounter(parts[6]),
			ConnectedSince: parts[7],
		}
		if len(parts) > usernameField {
			rec.Username = parts[usernameField]
		}
		records = append(records, rec)
	}

	return records
}

// ParseFile reads and parses the status file at path.
func ParseFile(path string) ([]*model.ClientRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// splitRealAddress splits "ip:port" on the last colon. A missing port
// defaults to 0; the zero port still participates in the session key.
func splitRealAddress(addr string) (string, int) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return addr, 0
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return addr[:idx], 0
	}
	return addr[:idx], port
}

// parseCounter parses a byte counter, defaulting to 0 on failure rather than
// aborting the record.
func parseCounter(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Package notification delivers best-effort human-readable alerts for
// connection events and system conditions. Delivery failures are logged and
// never affect the poll cycle that produced the event.
package notification

import (
	"fmt"
	"log"
	"strings"
	"time"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/model"
)

// priorityNotifier is implemented by notifiers that support per-message
// priorities.
type priorityNotifier interface {
	SendPriority(subject, body string, priority int) error
}

// Manager fans notifications out to every configured notifier.
type Manager struct {
	notifiers []model.Notifier
}

// NewManager builds a manager from the configured notification channels. A
// channel is enabled by the presence of its credentials.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{}

	if cfg.Pushover.APIToken != "" && cfg.Pushover.UserKey != "" {
		m.notifiers = append(m.notifiers, NewPushoverNotifier(cfg.Pushover))
		log.Println("Pushover notifications enabled")
	}
	if cfg.SMTP.Host != "" {
		m.notifiers = append(m.notifiers, NewEmailNotifier(cfg.SMTP))
		log.Println("Email notifications enabled")
	}
	if len(m.notifiers) == 0 {
		log.Println("No notification channels configured, notifications disabled")
	}

	return m
}

// Enabled reports whether at least one notifier is configured.
func (m *Manager) Enabled() bool {
	return len(m.notifiers) > 0
}

// NotifyConnectionEvent formats and delivers an alert for one lifecycle
// transition. Failures are logged per notifier and never returned.
func (m *Manager) NotifyConnectionEvent(eventType model.EventType, clientIP, username, virtualIP, serverName string, clientPort int) {
	if len(m.notifiers) == 0 {
		return
	}

	title, priority := eventTitle(eventType)

	var parts []string
	if username != "" && username != "UNDEF" {
		parts = append(parts, "User: "+username)
	}
	if clientPort != 0 {
		parts = append(parts, fmt.Sprintf("IP: %s:%d", clientIP, clientPort))
	} else {
		parts = append(parts, "IP: "+clientIP)
	}
	if virtualIP != "" {
		parts = append(parts, "Virtual IP: "+virtualIP)
	}
	if serverName != "" {
		parts = append(parts, "Server: "+serverName)
	}
	parts = append(parts, "Time: "+time.Now().Format("2006-01-02 15:04:05"))

	m.send(title, strings.Join(parts, "\n"), priority)
}

// NotifySystemAlert delivers a high-priority alert for a host condition.
func (m *Manager) NotifySystemAlert(alertType, details, serverName string) {
	title := "System Alert: " + alertType
	body := fmt.Sprintf("%s\nServer: %s\nTime: %s",
		details, serverName, time.Now().Format("2006-01-02 15:04:05"))
	m.send(title, body, 1)
}

func (m *Manager) send(subject, body string, priority int) {
	for _, n := range m.notifiers {
		var err error
		if pn, ok := n.(priorityNotifier); ok {
			err = pn.SendPriority(subject, body, priority)
		} else {
			err = n.Send(subject, body)
		}
		if err != nil {
			log.Printf("Failed to send notification %q: %v", subject, err)
		}
	}
}

// eventTitle maps an event type to its notification title and priority.
func eventTitle(t model.EventType) (string, int) {
	switch t {
	case model.EventConnect:
		return "VPN User Connected", 0
	case model.EventDisconnect:
		return "VPN User Disconnected", 0
	case model.EventAuthFailed:
		return "VPN Auth Failed", 1
	default:
		return fmt.Sprintf("VPN %s", t), 0
	}
}

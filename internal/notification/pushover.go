package notification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"TunnelSpectra/internal/config"
)

// pushoverAPIURL is the Pushover message endpoint.
const pushoverAPIURL = "https://api.pushover.net/1/messages.json"

// PushoverNotifier implements the Notifier interface against the Pushover
// push notification API.
type PushoverNotifier struct {
	cfg    config.PushoverConfig
	client *http.Client
	apiURL string
}

// NewPushoverNotifier creates a new PushoverNotifier.
func NewPushoverNotifier(cfg config.PushoverConfig) *PushoverNotifier {
	return &PushoverNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		apiURL: pushoverAPIURL,
	}
}

// Send delivers a notification with the configured default priority.
func (n *PushoverNotifier) Send(subject, body string) error {
	return n.SendPriority(subject, body, n.cfg.Priority)
}

// SendPriority delivers a notification with an explicit priority (-2 to 2).
func (n *PushoverNotifier) SendPriority(subject, body string, priority int) error {
	form := url.Values{}
	form.Set("token", n.cfg.APIToken)
	form.Set("user", n.cfg.UserKey)
	form.Set("title", subject)
	form.Set("message", body)
	form.Set("priority", strconv.Itoa(priority))
	if n.cfg.Sound != "" {
		form.Set("sound", n.cfg.Sound)
	}
	if n.cfg.Device != "" {
		form.Set("device", n.cfg.Device)
	}

	resp, err := n.client.PostForm(n.apiURL, form)
	if err != nil {
		return fmt.Errorf("failed to post pushover notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover API returned status %d", resp.StatusCode)
	}

	var result struct {
		Status int      `json:"status"`
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode pushover response: %w", err)
	}
	if result.Status != 1 {
		return fmt.Errorf("pushover API error: %v", result.Errors)
	}

	return nil
}

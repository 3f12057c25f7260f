package notification

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"TunnelSpectra/internal/config"
)

func TestPushoverSend(t *testing.T) {
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("Failed to parse form: %v", err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"status":1}`))
	}))
	defer server.Close()

	n := NewPushoverNotifier(config.PushoverConfig{
		APIToken: "token123",
		UserKey:  "user456",
		Sound:    "cosmic",
	})
	n.apiURL = server.URL

	if err := n.SendPriority("VPN User Connected", "User: alice", 1); err != nil {
		t.Fatalf("SendPriority failed: %v", err)
	}

	if gotForm["token"] != "token123" || gotForm["user"] != "user456" {
		t.Errorf("Credentials not sent: %v", gotForm)
	}
	if gotForm["title"] != "VPN User Connected" || gotForm["message"] != "User: alice" {
		t.Errorf("Unexpected payload: %v", gotForm)
	}
	if gotForm["priority"] != "1" || gotForm["sound"] != "cosmic" {
		t.Errorf("Unexpected delivery options: %v", gotForm)
	}
}

func TestPushoverAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"errors":["application token is invalid"]}`))
	}))
	defer server.Close()

	n := NewPushoverNotifier(config.PushoverConfig{APIToken: "bad", UserKey: "u"})
	n.apiURL = server.URL

	if err := n.Send("subject", "body"); err == nil {
		t.Fatalf("Expected an error for a rejected notification")
	}
}

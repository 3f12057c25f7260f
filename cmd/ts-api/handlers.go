package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"TunnelSpectra/internal/query"

	"github.com/gorilla/mux"
)

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
}

// summaryHandler returns per-event-type counts for the reporting window.
func (h *APIHandler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	since := sinceParam(r)

	summary, err := h.querier.Summary(r.Context(), since)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query summary: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

// topClientsHandler returns the most active clients.
func (h *APIHandler) topClientsHandler(w http.ResponseWriter, r *http.Request) {
	since := sinceParam(r)
	limit := intParam(r, "limit", 10)

	clients, err := h.querier.TopClients(r.Context(), since, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query top clients: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, clients)
}

// timelineHandler returns the most recent stored events.
func (h *APIHandler) timelineHandler(w http.ResponseWriter, r *http.Request) {
	since := sinceParam(r)
	limit := intParam(r, "limit", 100)

	events, err := h.querier.Timeline(r.Context(), since, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query timeline: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

// clientEventsHandler returns all stored events for one client IP.
func (h *APIHandler) clientEventsHandler(w http.ResponseWriter, r *http.Request) {
	since := sinceParam(r)
	ip := mux.Vars(r)["ip"]

	events, err := h.querier.ClientEvents(r.Context(), ip, since)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query client events: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

// sinceParam derives the window start from the "hours" query parameter,
// defaulting to the last 24 hours.
func sinceParam(r *http.Request) time.Time {
	hours := intParam(r, "hours", 24)
	return time.Now().Add(-time.Duration(hours) * time.Hour)
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

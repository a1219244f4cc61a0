// Package statushttp exposes read-only HTTP liveness/readiness/metrics
// endpoints over a running engine.
package statushttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"replicore/networking"
)

// ReadinessProvider exposes the minimal engine state required for
// readiness checks.
type ReadinessProvider interface {
	ConnectedPeers() []string
	CurrentTick() uint32
}

// Options configures a HandlerSet.
type Options struct {
	Readiness  ReadinessProvider
	Metrics    *networking.SnapshotMetrics
	TimeSource func() time.Time
}

// HandlerSet bundles the engine's operational HTTP handlers.
type HandlerSet struct {
	readiness ReadinessProvider
	metrics   *networking.SnapshotMetrics
	now       func() time.Time
}

// NewHandlerSet constructs a HandlerSet from opts.
func NewHandlerSet(opts Options) *HandlerSet {
	now := opts.TimeSource
	if now == nil {
		now = time.Now
	}
	return &HandlerSet{readiness: opts.Readiness, metrics: opts.Metrics, now: now}
}

// Register attaches every handler to mux.
func (h *HandlerSet) Register(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("/livez", h.LivenessHandler())
	mux.HandleFunc("/readyz", h.ReadinessHandler())
	mux.HandleFunc("/metrics", h.MetricsHandler())
}

// LivenessHandler reports that the HTTP server is reachable.
func (h *HandlerSet) LivenessHandler() http.HandlerFunc {
	type response struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{Status: "alive", Timestamp: h.now().UTC().Format(time.RFC3339Nano)})
	}
}

// ReadinessHandler reports connected peer count and current tick.
func (h *HandlerSet) ReadinessHandler() http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
		Peers  int    `json:"peers"`
		Tick   uint32 `json:"tick"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := response{Status: "ok"}
		if h.readiness != nil {
			resp.Peers = len(h.readiness.ConnectedPeers())
			resp.Tick = h.readiness.CurrentTick()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// MetricsHandler emits Prometheus-compatible text metrics.
func (h *HandlerSet) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		if h.readiness != nil {
			fmt.Fprintf(w, "# HELP replicore_tick Current simulation tick.\n")
			fmt.Fprintf(w, "# TYPE replicore_tick gauge\n")
			fmt.Fprintf(w, "replicore_tick %d\n", h.readiness.CurrentTick())

			fmt.Fprintf(w, "# HELP replicore_peers Currently connected peers.\n")
			fmt.Fprintf(w, "# TYPE replicore_peers gauge\n")
			fmt.Fprintf(w, "replicore_peers %d\n", len(h.readiness.ConnectedPeers()))
		}
		if h.metrics != nil {
			bytes, dropped := h.metrics.Snapshot()
			fmt.Fprintf(w, "# HELP replicore_bytes_sent_total Replication bytes sent per peer.\n")
			fmt.Fprintf(w, "# TYPE replicore_bytes_sent_total counter\n")
			for peer, n := range bytes {
				fmt.Fprintf(w, "replicore_bytes_sent_total{peer=%q} %d\n", peer, n)
			}
			fmt.Fprintf(w, "# HELP replicore_entities_dropped_total Entities dropped by budget enforcement per peer.\n")
			fmt.Fprintf(w, "# TYPE replicore_entities_dropped_total counter\n")
			for peer, n := range dropped {
				fmt.Fprintf(w, "replicore_entities_dropped_total{peer=%q} %d\n", peer, n)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

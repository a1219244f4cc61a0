package networking

import "sync"

// SnapshotMetrics aggregates per-peer bytes-sent and drop counters across
// ticks, for the admin/statushttp introspection surface.
type SnapshotMetrics struct {
	mu      sync.Mutex
	bytes   map[string]int64
	dropped map[string]int64
}

// NewSnapshotMetrics constructs an empty metrics aggregator.
func NewSnapshotMetrics() *SnapshotMetrics {
	return &SnapshotMetrics{bytes: make(map[string]int64), dropped: make(map[string]int64)}
}

// Observe records one tick's plan outcome for a peer.
func (m *SnapshotMetrics) Observe(peer string, plan Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytes[peer] += int64(plan.BytesUsed)
	for _, n := range plan.Dropped {
		m.dropped[peer] += int64(n)
	}
}

// Snapshot returns a defensive copy of the accumulated counters.
func (m *SnapshotMetrics) Snapshot() (bytes, dropped map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bytes = make(map[string]int64, len(m.bytes))
	for k, v := range m.bytes {
		bytes[k] = v
	}
	dropped = make(map[string]int64, len(m.dropped))
	for k, v := range m.dropped {
		dropped[k] = v
	}
	return bytes, dropped
}

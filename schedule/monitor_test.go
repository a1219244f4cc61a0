package schedule

import (
	"testing"
	"time"
)

func TestTickMonitorAccumulatesStats(t *testing.T) {
	m := NewTickMonitor()
	m.Observe(10 * time.Millisecond)
	m.Observe(30 * time.Millisecond)
	snap := m.Snapshot()
	if snap.Samples != 2 {
		t.Fatalf("expected 2 samples, got %d", snap.Samples)
	}
	if snap.Average != 20*time.Millisecond {
		t.Fatalf("expected average 20ms, got %v", snap.Average)
	}
	if snap.Max != 30*time.Millisecond {
		t.Fatalf("expected max 30ms, got %v", snap.Max)
	}
	if snap.Last != 30*time.Millisecond {
		t.Fatalf("expected last 30ms, got %v", snap.Last)
	}
}

func TestTickMonitorResetClears(t *testing.T) {
	m := NewTickMonitor()
	m.Observe(5 * time.Millisecond)
	m.Reset()
	snap := m.Snapshot()
	if snap.Samples != 0 || snap.Average != 0 {
		t.Fatalf("expected cleared snapshot, got %+v", snap)
	}
}

func TestAverageFPSDerivesFromAverage(t *testing.T) {
	snap := TickMetricsSnapshot{Average: 20 * time.Millisecond}
	if got := snap.AverageFPS(); got != 50 {
		t.Fatalf("expected 50fps, got %v", got)
	}
}

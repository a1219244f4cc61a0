package networking

import (
	"testing"
	"time"
)

func TestBandwidthRegulatorEnforcesCapacity(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	r := NewBandwidthRegulator(100, clock)

	if !r.Allow("peer", 80) {
		t.Fatalf("first send within capacity should be allowed")
	}
	if r.Allow("peer", 80) {
		t.Fatalf("second send exceeding remaining tokens should be denied")
	}
	now = now.Add(time.Second)
	if !r.Allow("peer", 80) {
		t.Fatalf("send after a full refill interval should be allowed again")
	}
}

func TestBandwidthRegulatorForget(t *testing.T) {
	r := NewBandwidthRegulator(10, nil)
	r.Allow("peer", 10)
	r.Forget("peer")
	if !r.Allow("peer", 10) {
		t.Fatalf("forgotten peer should start with a fresh bucket")
	}
}

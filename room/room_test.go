package room

import (
	"testing"
	"time"
)

func TestJoinRejectsEmptyPeerID(t *testing.T) {
	r := New()
	if err := r.Join(""); err != ErrInvalidPeerID {
		t.Fatalf("expected ErrInvalidPeerID, got %v", err)
	}
}

func TestJoinEnforcesCapacity(t *testing.T) {
	r := New(WithCapacity(1))
	if err := r.Join("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Join("b"); err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if err := r.Join("a"); err != nil {
		t.Fatalf("rejoining an existing peer should be idempotent, got %v", err)
	}
}

func TestLeaveFreesCapacity(t *testing.T) {
	r := New(WithCapacity(1))
	if err := r.Join("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Leave("a")
	if r.Has("a") {
		t.Fatalf("expected peer a to be gone after Leave")
	}
	if err := r.Join("b"); err != nil {
		t.Fatalf("expected capacity freed after leave, got %v", err)
	}
}

func TestClockControlsJoinTimestamps(t *testing.T) {
	fixed := time.Unix(1000, 0)
	r := New(WithClock(func() time.Time { return fixed }))
	_ = r.Join("a")
	if r.Len() != 1 {
		t.Fatalf("expected one peer, got %d", r.Len())
	}
	if got := r.peers["a"]; !got.Equal(fixed) {
		t.Fatalf("expected join time %v, got %v", fixed, got)
	}
}

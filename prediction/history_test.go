package prediction

import (
	"testing"

	"replicore/tick"
)

func TestHistorySetAndGet(t *testing.T) {
	h := NewHistory[int](8)
	h.SetPredicted(1, 10)
	h.SetConfirmed(2, 20)
	if slot := h.Get(1); slot.Kind != Predicted || slot.Value != 10 {
		t.Fatalf("Get(1) = %+v", slot)
	}
	if slot := h.Get(2); slot.Kind != Confirmed || slot.Value != 20 {
		t.Fatalf("Get(2) = %+v", slot)
	}
	if slot := h.Get(99); slot.Kind != Absent {
		t.Fatalf("Get(99) should be Absent, got %+v", slot)
	}
}

func TestHistoryEvictsOldestBeyondCapacity(t *testing.T) {
	h := NewHistory[int](4)
	for i := 0; i < 10; i++ {
		h.SetPredicted(tick.Tick(i), i)
	}
	if slot := h.Get(tick.Tick(0)); slot.Kind != Absent {
		t.Fatalf("expected the earliest tick to be evicted, got %+v", slot)
	}
	if slot := h.Get(tick.Tick(9)); slot.Kind != Predicted || slot.Value != 9 {
		t.Fatalf("expected the latest tick to survive, got %+v", slot)
	}
}

package prediction

import (
	"testing"

	"replicore/tick"
)

func TestReconcileSkipsResimulateOnMatch(t *testing.T) {
	h := NewHistory[int](16)
	h.SetPredicted(5, 100)
	eq := func(a, b int) bool { return a == b }
	simCalls := 0
	sim := func(prev int, t tick.Tick) int {
		simCalls++
		return prev + 1
	}
	_, corrected := Reconcile(h, 100, 5, 5, eq, sim)
	if corrected {
		t.Fatalf("matching prediction must not trigger a correction")
	}
	if simCalls != 0 {
		t.Fatalf("expected no resimulation when prediction matched")
	}
}

func TestReconcileResimulatesForwardOnMismatch(t *testing.T) {
	h := NewHistory[int](16)
	h.SetPredicted(5, 999)
	h.SetPredicted(6, 1000)
	h.SetPredicted(7, 1001)
	eq := func(a, b int) bool { return a == b }
	sim := func(prev int, t tick.Tick) int { return prev + 1 }

	value, corrected := Reconcile(h, 100, 5, 7, eq, sim)
	if !corrected {
		t.Fatalf("mismatched prediction must trigger a correction")
	}
	//1.- Confirmed 100 at tick 5, then resimulate ticks 6 and 7: 101, 102.
	if value != 102 {
		t.Fatalf("resimulated value = %d, want 102", value)
	}
	if slot := h.Get(6); slot.Value != 101 {
		t.Fatalf("history at tick 6 = %+v, want 101", slot)
	}
}

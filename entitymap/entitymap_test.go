package entitymap

import "testing"

func TestAllocateIsIdempotentPerLocal(t *testing.T) {
	m := New[int]()
	id1, fresh1 := m.Allocate(7)
	if !fresh1 {
		t.Fatalf("first allocation should be fresh")
	}
	id2, fresh2 := m.Allocate(7)
	if fresh2 {
		t.Fatalf("second allocation of the same local id must not be fresh")
	}
	if id1 != id2 {
		t.Fatalf("allocation must be stable: got %d then %d", id1, id2)
	}
}

func TestBijectionRejectsConflictingBind(t *testing.T) {
	m := New[string]()
	if err := m.Bind(1, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Bind(1, "b"); err == nil {
		t.Fatalf("expected error binding a second local entity to the same network id")
	}
	if err := m.Bind(2, "a"); err == nil {
		t.Fatalf("expected error binding a local entity already bound to a different network id")
	}
}

func TestRemoveClearsBothDirections(t *testing.T) {
	m := New[int]()
	id, _ := m.Allocate(42)
	m.MarkMapped(id)
	m.Remove(id)
	if _, ok := m.Local(id); ok {
		t.Fatalf("expected network id to be unmapped after Remove")
	}
	if _, ok := m.Network(42); ok {
		t.Fatalf("expected local id to be unmapped after Remove")
	}
	if m.IsMapped(id) {
		t.Fatalf("expected mapped flag to be cleared after Remove")
	}
}

func TestLen(t *testing.T) {
	m := New[int]()
	m.Allocate(1)
	m.Allocate(2)
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

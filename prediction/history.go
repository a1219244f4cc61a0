// Package prediction gives a client-predicted, locally-simulated entity a
// per-tick history of both what it predicted and what the server later
// confirmed, so a mismatch can trigger a rollback-and-resimulate correction.
// The history is a tagged union per tick, generic over the component type
// being predicted.
package prediction

import (
	"sync"

	"replicore/tick"
)

// SlotKind tags what a history slot holds for a given tick.
type SlotKind int

const (
	// Absent means nothing has ever been recorded for this tick.
	Absent SlotKind = iota
	// Removed means the entity did not exist at this tick (pre-spawn or post-despawn).
	Removed
	// Predicted means only a local prediction exists for this tick.
	Predicted
	// Confirmed means the server's authoritative value for this tick is known.
	Confirmed
)

// Slot is one tick's worth of prediction history for component type C.
type Slot[C any] struct {
	Kind  SlotKind
	Value C
}

// History is a fixed-capacity ring buffer of Slot[C], indexed by tick.
// Writing a tick far enough ahead of the oldest retained tick silently
// evicts it, bounding memory to `capacity` ticks regardless of session length.
type History[C any] struct {
	mu       sync.Mutex
	capacity int
	base     tick.Tick
	hasBase  bool
	slots    []Slot[C]
}

// NewHistory constructs a ring buffer retaining the most recent capacity ticks.
func NewHistory[C any](capacity int) *History[C] {
	if capacity <= 0 {
		capacity = 64
	}
	return &History[C]{capacity: capacity, slots: make([]Slot[C], capacity)}
}

func (h *History[C]) indexLocked(t tick.Tick) (int, bool) {
	if !h.hasBase {
		h.base = t
		h.hasBase = true
	}
	dist := t.Since(h.base)
	if dist < 0 {
		return 0, false
	}
	if int(dist) >= h.capacity {
		//1.- Advance the window, evicting the oldest entries, so newer ticks always fit.
		shift := int(dist) - h.capacity + 1
		if shift >= h.capacity {
			for i := range h.slots {
				h.slots[i] = Slot[C]{}
			}
		} else {
			copy(h.slots, h.slots[shift:])
			for i := h.capacity - shift; i < h.capacity; i++ {
				h.slots[i] = Slot[C]{}
			}
		}
		h.base = h.base.Add(shift)
		dist -= int32(shift)
	}
	return int(dist), true
}

// SetPredicted records a locally-simulated value for tick t.
func (h *History[C]) SetPredicted(t tick.Tick, v C) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx, ok := h.indexLocked(t); ok {
		h.slots[idx] = Slot[C]{Kind: Predicted, Value: v}
	}
}

// SetConfirmed records the server-authoritative value for tick t, overwriting
// whatever prediction (if any) was previously recorded there.
func (h *History[C]) SetConfirmed(t tick.Tick, v C) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx, ok := h.indexLocked(t); ok {
		h.slots[idx] = Slot[C]{Kind: Confirmed, Value: v}
	}
}

// SetRemoved marks tick t as one where the entity did not exist.
func (h *History[C]) SetRemoved(t tick.Tick) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx, ok := h.indexLocked(t); ok {
		h.slots[idx] = Slot[C]{Kind: Removed}
	}
}

// Get returns the recorded slot for tick t, or Absent if out of window or
// never written.
func (h *History[C]) Get(t tick.Tick) Slot[C] {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.hasBase {
		return Slot[C]{}
	}
	dist := t.Since(h.base)
	if dist < 0 || int(dist) >= h.capacity {
		return Slot[C]{}
	}
	return h.slots[dist]
}

// OldestTick returns the oldest tick still retained in the window.
func (h *History[C]) OldestTick() (tick.Tick, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.base, h.hasBase
}

package prediction

import (
	"hash/fnv"
	"sync"

	"replicore/world"
)

// PrespawnKey identifies a locally pre-spawned predicted entity before the
// server's authoritative spawn arrives, so the two can be matched up via
// hash-based reconciliation instead of the client ending up with a
// duplicate entity.
type PrespawnKey uint64

// NewPrespawnKey derives a key from the owning peer and a locally-assigned
// sequence number (e.g. "this is my 3rd locally-spawned projectile this
// session"), which the client embeds in its input/spawn-intent message and
// the server echoes back on the authoritative spawn.
func NewPrespawnKey(peer string, sequence uint64) PrespawnKey {
	h := fnv.New64a()
	_, _ = h.Write([]byte(peer))
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(sequence >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return PrespawnKey(h.Sum64())
}

// Table tracks locally pre-spawned entities awaiting adoption by the
// server's confirmed spawn.
type Table struct {
	mu      sync.Mutex
	pending map[PrespawnKey]world.EntityID
}

// NewTable constructs an empty pre-spawn table.
func NewTable() *Table {
	return &Table{pending: make(map[PrespawnKey]world.EntityID)}
}

// Register records that a local entity was optimistically spawned under key.
func (t *Table) Register(key PrespawnKey, local world.EntityID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[key] = local
}

// Adopt consumes a pending pre-spawn entry, returning the local entity the
// server's authoritative spawn should be bound to instead of creating a new
// one. The bool reports whether a matching pre-spawn existed.
func (t *Table) Adopt(key PrespawnKey) (world.EntityID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	local, ok := t.pending[key]
	if ok {
		delete(t.pending, key)
	}
	return local, ok
}

// Forget discards a pending pre-spawn entry without adopting it, used when a
// locally-predicted spawn is rejected or times out waiting for the server.
func (t *Table) Forget(key PrespawnKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, key)
}

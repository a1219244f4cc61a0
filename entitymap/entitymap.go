// Package entitymap implements the bijective mapping between local entity
// handles and the NetworkId values carried on the wire. Senders allocate a
// NetworkId the first time an entity crosses the wire and tag subsequent
// packets with packet.FlagMapped once the receiver has confirmed it
// learned the mapping.
package entitymap

import (
	"fmt"
	"sync"
)

// NetworkID is the wire-stable identifier for a replicated entity, distinct
// from whatever handle the local ECS world uses internally.
type NetworkID uint32

// LocalID is the local-world handle an application associates with a
// NetworkID. It is opaque to this package; callers supply comparable values
// (e.g. an ECS entity handle or a generated int).
type LocalID interface {
	comparable
}

// Map is a bijection between NetworkID and a local entity handle, built
// independently per peer since two peers may use different local ids for
// the same replicated entity.
type Map[L LocalID] struct {
	mu        sync.RWMutex
	toLocal   map[NetworkID]L
	toNetwork map[L]NetworkID
	next      NetworkID
	mapped    map[NetworkID]bool
}

// New constructs an empty entity map.
func New[L LocalID]() *Map[L] {
	return &Map[L]{
		toLocal:   make(map[NetworkID]L),
		toNetwork: make(map[L]NetworkID),
		mapped:    make(map[NetworkID]bool),
	}
}

// Allocate assigns a fresh NetworkID to a local entity, or returns the
// existing one if already mapped. The bool reports whether this call
// allocated a new id (true) or returned an existing mapping (false).
func (m *Map[L]) Allocate(local L) (NetworkID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.toNetwork[local]; ok {
		return id, false
	}
	m.next++
	id := m.next
	m.toNetwork[local] = id
	m.toLocal[id] = local
	return id, true
}

// Bind records an explicit NetworkID for a local entity, used on the
// receiving side where the id is dictated by the sender rather than
// generated locally.
func (m *Map[L]) Bind(id NetworkID, local L) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.toLocal[id]; ok && existing != local {
		return fmt.Errorf("entitymap: network id %d already bound to a different local entity", id)
	}
	if existing, ok := m.toNetwork[local]; ok && existing != id {
		return fmt.Errorf("entitymap: local entity already bound to network id %d", existing)
	}
	m.toLocal[id] = local
	m.toNetwork[local] = id
	return nil
}

// MarkMapped flags that the peer has confirmed it knows this NetworkID, so
// future packets may omit the full mapping payload and set packet.FlagMapped
// instead.
func (m *Map[L]) MarkMapped(id NetworkID) {
	m.mu.Lock()
	m.mapped[id] = true
	m.mu.Unlock()
}

// IsMapped reports whether the peer has previously confirmed this NetworkID.
func (m *Map[L]) IsMapped(id NetworkID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mapped[id]
}

// Local resolves a NetworkID to its local entity handle.
func (m *Map[L]) Local(id NetworkID) (L, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.toLocal[id]
	return l, ok
}

// Network resolves a local entity handle to its NetworkID.
func (m *Map[L]) Network(local L) (NetworkID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.toNetwork[local]
	return id, ok
}

// Remove drops the mapping for a NetworkID, used on despawn ( // Despawned terminal state).
func (m *Map[L]) Remove(id NetworkID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if local, ok := m.toLocal[id]; ok {
		delete(m.toNetwork, local)
	}
	delete(m.toLocal, id)
	delete(m.mapped, id)
}

// Len reports how many entities are currently mapped.
func (m *Map[L]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.toLocal)
}

package replication

import (
	"sync"

	"replicore/entitymap"
	"replicore/tick"
	"replicore/world"
)

// componentKey pairs an entity with one of its component indices, the unit
// Group tracks ack/send state for.
type componentKey struct {
	entity    world.EntityID
	component int
}

// Group is the per-observer bookkeeping for one peer connection: which
// NetworkIDs it already knows about and, per component, the tick it last
// received (SinceLastAck) or was sent (SinceLastSend), plus the last raw
// value sent (for Diffable delta encoding) and which components an Insert
// Action has already announced.
type Group struct {
	mu       sync.Mutex
	Peer     string
	Entities *entitymap.Map[world.EntityID]
	Policy   Policy

	lastAcked map[componentKey]tick.Tick
	lastSent  map[componentKey]tick.Tick
	confirmed map[world.EntityID]tick.Tick
	known     map[componentKey]bool
	lastValue map[componentKey]any

	// rttTicks is the latest round-trip estimate, expressed in ticks, fed in
	// by the orchestrator from its timesync.Estimator, driving ResendOnLoss.
	// Zero means "unknown", disabling the reset.
	rttTicks int32
}

// NewGroup constructs the replication bookkeeping for a single observer peer.
func NewGroup(peer string, policy Policy) *Group {
	return &Group{
		Peer:      peer,
		Entities:  entitymap.New[world.EntityID](),
		Policy:    policy,
		lastAcked: make(map[componentKey]tick.Tick),
		lastSent:  make(map[componentKey]tick.Tick),
		confirmed: make(map[world.EntityID]tick.Tick),
		known:     make(map[componentKey]bool),
		lastValue: make(map[componentKey]any),
	}
}

// Reference returns the tick a component's staleness is measured against for
// this group's configured policy.
func (g *Group) Reference(entity world.EntityID, component int) (tick.Tick, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := componentKey{entity, component}
	if g.Policy == SinceLastAck {
		t, ok := g.lastAcked[key]
		return t, ok
	}
	t, ok := g.lastSent[key]
	return t, ok
}

// MarkSent records that a component value as of `at` was just sent.
func (g *Group) MarkSent(entity world.EntityID, component int, at tick.Tick) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSent[componentKey{entity, component}] = at
}

// MarkAcked records that the observer has confirmed receiving state as of `at`
// for an entity; every component sent at or before `at` is now acknowledged.
func (g *Group) MarkAcked(entity world.EntityID, component int, at tick.Tick) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := componentKey{entity, component}
	if prev, ok := g.lastAcked[key]; ok && prev.Since(at) >= 0 {
		return
	}
	g.lastAcked[key] = at
}

// ConfirmTick returns the highest remote tick this observer has confirmed
// applying for the given entity, used by prediction/interpolation to know
// which snapshots are safe to trust.
func (g *Group) ConfirmTick(entity world.EntityID) (tick.Tick, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.confirmed[entity]
	return t, ok
}

// SetConfirmTick records the latest tick an observer has confirmed for an entity.
func (g *Group) SetConfirmTick(entity world.EntityID, at tick.Tick) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.confirmed[entity]; ok && prev.Since(at) >= 0 {
		return
	}
	g.confirmed[entity] = at
}

// KnownComponent reports whether an Insert Action has already announced this
// component to the observer.
func (g *Group) KnownComponent(entity world.EntityID, component int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.known[componentKey{entity, component}]
}

// KnownComponents lists the components currently announced to the observer
// for an entity, the set BuildTick diffs against the entity's live
// components to notice a component that disappeared without a despawn.
func (g *Group) KnownComponents(entity world.EntityID) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []int
	for key := range g.known {
		if key.entity == entity {
			out = append(out, key.component)
		}
	}
	return out
}

// MarkComponentKnown records that an Insert Action for this component has
// been sent.
func (g *Group) MarkComponentKnown(entity world.EntityID, component int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.known[componentKey{entity, component}] = true
}

// ForgetComponent drops the known/value bookkeeping for a single component,
// called once a Remove Action for it has been sent.
func (g *Group) ForgetComponent(entity world.EntityID, component int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := componentKey{entity, component}
	delete(g.known, key)
	delete(g.lastValue, key)
}

// LastValue returns the last raw value sent for a component, the basis a
// Diffable component diffs the next send against.
func (g *Group) LastValue(entity world.EntityID, component int) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.lastValue[componentKey{entity, component}]
	return v, ok
}

// RecordLastValue stores the raw value most recently sent for a component.
func (g *Group) RecordLastValue(entity world.EntityID, component int, value any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastValue[componentKey{entity, component}] = value
}

// SetRTTTicks records the observer's latest round-trip estimate in ticks, fed
// in by the orchestrator's timesync.Estimator, enabling ResendOnLoss.
func (g *Group) SetRTTTicks(rttTicks int32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rttTicks = rttTicks
}

// ResendOnLoss reports whether a component sent at send_tick has gone
// unacknowledged past send_tick + 1.5*RTT, and if so resets send_tick to the
// last acked tick (or clears it if never acked) so SinceLastSend treats the
// value as due for resend again. A zero RTT (never measured)
// disables the check.
func (g *Group) ResendOnLoss(entity world.EntityID, component int, now tick.Tick) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rttTicks <= 0 {
		return false
	}
	key := componentKey{entity, component}
	sent, ok := g.lastSent[key]
	if !ok {
		return false
	}
	threshold := sent.Add(int(g.rttTicks + g.rttTicks/2))
	if now.Since(threshold) < 0 {
		return false
	}
	if acked, ok := g.lastAcked[key]; ok {
		g.lastSent[key] = acked
	} else {
		delete(g.lastSent, key)
	}
	return true
}

// Forget drops all bookkeeping for an entity, called once its despawn
// action has been built for this observer.
func (g *Group) Forget(entity world.EntityID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.lastAcked {
		if key.entity == entity {
			delete(g.lastAcked, key)
		}
	}
	for key := range g.lastSent {
		if key.entity == entity {
			delete(g.lastSent, key)
		}
	}
	for key := range g.known {
		if key.entity == entity {
			delete(g.known, key)
		}
	}
	for key := range g.lastValue {
		if key.entity == entity {
			delete(g.lastValue, key)
		}
	}
	delete(g.confirmed, entity)
}

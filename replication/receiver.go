package replication

import (
	"errors"
	"fmt"

	"replicore/entitymap"
	"replicore/protocol"
	"replicore/tick"
	"replicore/world"
)

// ErrAuthorityViolation is returned (and the offending update dropped) when
// an Update or component-mutating Action arrives from a peer that is not the
// entity's current authority.
var ErrAuthorityViolation = errors.New("replication: update from non-authoritative peer rejected")

// Receiver applies incoming Actions/Updates batches from a remote authority
// into a local mirror world.World, maintaining its own entitymap.Map since
// the NetworkIDs a sender allocates are meaningless local handles until
// bound to a local entity.
type Receiver struct {
	registry  *protocol.Registry
	world     *world.World
	authority *AuthorityTable

	entities  *entitymap.Map[world.EntityID]
	lastValue map[world.EntityID]map[int]any

	// waiting holds Updates that named a NetworkID no Action has resolved to
	// a local entity yet: a pending-spawn waitlist replayed once the
	// matching Spawn arrives.
	waiting map[entitymap.NetworkID][]componentUpdate
}

// NewReceiver constructs a receiver that mirrors updates into w, consulting
// authority to reject updates from a peer that does not own the entity.
func NewReceiver(registry *protocol.Registry, w *world.World, authority *AuthorityTable) *Receiver {
	return &Receiver{
		registry:  registry,
		world:     w,
		authority: authority,
		entities:  entitymap.New[world.EntityID](),
		lastValue: make(map[world.EntityID]map[int]any),
		waiting:   make(map[entitymap.NetworkID][]componentUpdate),
	}
}

// authorized reports whether fromPeer may mutate local: true if no authority
// is recorded yet (first sight of the entity) or fromPeer is the recorded
// owner.
func (r *Receiver) authorized(local world.EntityID, fromPeer string) bool {
	owner, hasOwner := r.authority.AuthorityOf(local)
	return !hasOwner || owner == fromPeer
}

// Apply decodes and applies one tick's worth of Actions and Updates received
// from fromPeer on the replication channel. It returns the entities newly
// spawned this call (for EventEntitySpawned) and every entity whose
// component state changed (for the interpolation/prediction layers to
// consume).
func (r *Receiver) Apply(buf []byte, at tick.Tick, fromPeer string) (spawned, touched []world.EntityID, err error) {
	actions, updates, err := decodeTick(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("replication: decoding tick: %w", err)
	}

	for _, a := range actions {
		switch a.Op {
		case actionSpawn:
			if _, ok := r.entities.Local(a.Entity); ok {
				continue
			}
			local := r.world.Spawn(at)
			if err := r.entities.Bind(a.Entity, local); err != nil {
				continue
			}
			if _, hasOwner := r.authority.AuthorityOf(local); !hasOwner {
				r.authority.SetAuthority(local, fromPeer)
			}
			r.lastValue[local] = make(map[int]any)
			spawned = append(spawned, local)
			r.flushWaiting(a.Entity, fromPeer, at, &touched)

		case actionDespawn:
			local, ok := r.entities.Local(a.Entity)
			if !ok {
				continue
			}
			if !r.authorized(local, fromPeer) {
				continue
			}
			r.world.Despawn(local)
			r.entities.Remove(a.Entity)
			r.authority.Clear(local)
			delete(r.lastValue, local)
			delete(r.waiting, a.Entity)

		case actionInsert:
			// Presence is implied by the Update that follows; nothing to
			// apply to world state until a value arrives.

		case actionRemove:
			local, ok := r.entities.Local(a.Entity)
			if !ok {
				continue
			}
			if !r.authorized(local, fromPeer) {
				continue
			}
			r.world.RemoveComponent(local, a.Component, at)
			delete(r.lastValue[local], a.Component)
		}
	}

	for _, u := range updates {
		local, ok := r.entities.Local(u.Entity)
		if !ok {
			// No Action has resolved this NetworkID to a local entity yet:
			// park the update until its Spawn arrives, rather than
			// auto-spawning from an Update.
			r.waiting[u.Entity] = append(r.waiting[u.Entity], u)
			continue
		}
		if err := r.applyUpdate(local, u, fromPeer, at); err == nil {
			touched = append(touched, local)
		}
	}
	return spawned, touched, nil
}

// flushWaiting replays any Updates parked under netID now that its Spawn has
// resolved it to a local entity.
func (r *Receiver) flushWaiting(netID entitymap.NetworkID, fromPeer string, at tick.Tick, touched *[]world.EntityID) {
	queued, ok := r.waiting[netID]
	if !ok {
		return
	}
	delete(r.waiting, netID)
	local, ok := r.entities.Local(netID)
	if !ok {
		return
	}
	for _, u := range queued {
		if err := r.applyUpdate(local, u, fromPeer, at); err == nil {
			*touched = append(*touched, local)
		}
	}
}

// applyUpdate decodes and stores one componentUpdate's payload, rejecting it
// with ErrAuthorityViolation if fromPeer does not own local, and resolving a
// Diffable delta against the last-applied value when u.Delta is set
//.
func (r *Receiver) applyUpdate(local world.EntityID, u componentUpdate, fromPeer string, at tick.Tick) error {
	if !r.authorized(local, fromPeer) {
		return ErrAuthorityViolation
	}
	descriptor, ok := r.registry.Component(u.Component)
	if !ok || descriptor.Deserialize == nil {
		return fmt.Errorf("replication: unknown component %d", u.Component)
	}
	decoded, err := descriptor.Deserialize(u.Payload)
	if err != nil {
		return err
	}

	value := decoded
	if u.Delta {
		if diffable, ok := decoded.(Diffable); ok {
			base := r.lastValue[local][u.Component]
			if next, ok := diffable.ApplyDiff(base); ok {
				value = next
			}
		}
	}

	r.world.SetComponent(local, u.Component, value, at)
	if r.lastValue[local] == nil {
		r.lastValue[local] = make(map[int]any)
	}
	r.lastValue[local][u.Component] = value
	return nil
}

// NetworkID exposes the receiver's local entitymap for callers (e.g. the
// prediction layer) that need to resolve a sender's NetworkID to the local
// mirror entity.
func (r *Receiver) NetworkID(local world.EntityID) (entitymap.NetworkID, bool) {
	return r.entities.Network(local)
}

// LocalEntity resolves a sender's NetworkID to the local mirror entity.
func (r *Receiver) LocalEntity(id entitymap.NetworkID) (world.EntityID, bool) {
	return r.entities.Local(id)
}

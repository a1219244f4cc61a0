package replication

import (
	"sync"

	"replicore/protocol"
	"replicore/tick"
	"replicore/world"
)

// Sender walks world.World each tick on behalf of one local peer (typically
// the server) and produces, per observer, the encoded Actions/Updates that
// observer's replication.Policy says it still needs.
type Sender struct {
	registry  *protocol.Registry
	world     *world.World
	authority *AuthorityTable

	mu         sync.Mutex
	groups     map[string]*Group
	replicates map[world.EntityID]protocol.Replicate
}

// NewSender constructs a sender over a registry, world, and authority table
// shared across every observer.
func NewSender(registry *protocol.Registry, w *world.World, authority *AuthorityTable) *Sender {
	return &Sender{
		registry:   registry,
		world:      w,
		authority:  authority,
		groups:     make(map[string]*Group),
		replicates: make(map[world.EntityID]protocol.Replicate),
	}
}

// SetReplicate records the replication policy for an entity, set by the host
// application at spawn time.
func (s *Sender) SetReplicate(entity world.EntityID, r protocol.Replicate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replicates[entity] = r
}

// Group returns (creating if necessary) the bookkeeping for an observer peer.
func (s *Sender) Group(peer string, policy Policy) *Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[peer]
	if !ok {
		g = NewGroup(peer, policy)
		s.groups[peer] = g
	}
	return g
}

// RemoveObserver drops all bookkeeping for a disconnected peer.
func (s *Sender) RemoveObserver(peer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, peer)
}

// ApplyAck records that an observer has confirmed applying entity state as
// of `at`, advancing SinceLastAck's resend reference for every component
// currently on the entity so confirmed values stop being resent.
func (s *Sender) ApplyAck(peer string, entity world.EntityID, at tick.Tick) {
	group := s.Group(peer, SinceLastAck)
	group.SetConfirmTick(entity, at)
	for _, idx := range s.world.Components(entity) {
		group.MarkAcked(entity, idx, at)
	}
}

// SetPeerRTTTicks feeds the orchestrator's latest round-trip estimate for a
// peer into its group, enabling ResendOnLoss.
func (s *Sender) SetPeerRTTTicks(peer string, policy Policy, rttTicks int32) {
	s.Group(peer, policy).SetRTTTicks(rttTicks)
}

func (s *Sender) replicateFor(entity world.EntityID) protocol.Replicate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.replicates[entity]; ok {
		return r
	}
	return protocol.DefaultReplicate()
}

// ReplicateFor exposes an entity's configured replication policy to callers
// outside this package, e.g. the orchestrator deciding which components of a
// locally-owned entity to feed into prediction rollback.
func (s *Sender) ReplicateFor(entity world.EntityID) protocol.Replicate {
	return s.replicateFor(entity)
}

// visibleTo reports whether an entity should be sent to the given observer
// at all, per its Replicate.Target and the authority table.
func (s *Sender) visibleTo(entity world.EntityID, r protocol.Replicate, observer string) bool {
	owner, hasOwner := s.authority.AuthorityOf(entity)
	switch r.Target {
	case protocol.TargetAuthorityOnly:
		return hasOwner && owner == observer
	case protocol.TargetExcludeAuthority:
		return !hasOwner || owner != observer
	default:
		return true
	}
}

func componentsFor(r protocol.Replicate, present []int) []int {
	if r.Components == nil {
		return present
	}
	allowed := make(map[int]bool, len(r.Components))
	for _, idx := range r.Components {
		allowed[idx] = true
	}
	out := present[:0:0]
	for _, idx := range present {
		if allowed[idx] {
			out = append(out, idx)
		}
	}
	return out
}

// encodeValue serializes a component's current value, attempting a Diffable
// delta against the observer's last-sent value when the entity's Replicate
// opts the component into delta compression. It reports
// whether the returned payload is a delta.
func (s *Sender) encodeValue(group *Group, entity world.EntityID, idx int, r protocol.Replicate, value any, descriptor protocol.ComponentDescriptor) ([]byte, bool, error) {
	if r.WantsDelta(idx) {
		if diffable, ok := value.(Diffable); ok {
			prev, hasPrev := group.LastValue(entity, idx)
			var base any
			if hasPrev {
				base = prev
			}
			if delta, ok := diffable.Diff(base); ok {
				payload, err := descriptor.Serialize(delta)
				if err == nil {
					return payload, true, nil
				}
			}
		}
	}
	payload, err := descriptor.Serialize(value)
	return payload, false, err
}

// BuildTick produces the encoded Actions/Updates an observer's group still
// needs as of tick `at`. visible (nil means every entity) filters entities
// before Replicate.Target and the resend policy apply. The bool is false
// when there is nothing to send.
func (s *Sender) BuildTick(peer string, policy Policy, at tick.Tick, visible func(world.EntityID) bool) ([]byte, bool) {
	group := s.Group(peer, policy)
	var actions []actionRecord
	var updates []componentUpdate

	for _, entity := range s.world.Entities() {
		if visible != nil && !visible(entity) {
			continue
		}
		r := s.replicateFor(entity)
		if !s.visibleTo(entity, r, peer) {
			continue
		}

		netID, isNew := group.Entities.Allocate(entity)
		mapped := group.Entities.IsMapped(netID)
		if isNew {
			actions = append(actions, actionRecord{Entity: netID, Op: actionSpawn, GroupID: r.GroupID, Tick: uint16(at)})
		}

		present := componentsFor(r, s.world.Components(entity))
		presentSet := make(map[int]bool, len(present))
		for _, idx := range present {
			presentSet[idx] = true
			if !group.KnownComponent(entity, idx) {
				actions = append(actions, actionRecord{
					Entity: netID, Op: actionInsert, Component: idx,
					GroupID: r.GroupID, Tick: uint16(at), Mapped: mapped,
				})
				group.MarkComponentKnown(entity, idx)
			}
		}
		for _, idx := range group.KnownComponents(entity) {
			if presentSet[idx] {
				continue
			}
			actions = append(actions, actionRecord{
				Entity: netID, Op: actionRemove, Component: idx,
				GroupID: r.GroupID, Tick: uint16(at), Mapped: mapped,
			})
			group.ForgetComponent(entity, idx)
		}

		for _, idx := range present {
			group.ResendOnLoss(entity, idx, at)

			changedAt, changed := s.world.LastChanged(entity, idx)
			if !changed {
				continue
			}
			ref, hasRef := group.Reference(entity, idx)
			if !ShouldSend(policy, changedAt, ref, hasRef) {
				continue
			}
			value, ok := s.world.Component(entity, idx)
			if !ok {
				continue
			}
			descriptor, ok := s.registry.Component(idx)
			if !ok || descriptor.Serialize == nil {
				continue
			}
			payload, isDelta, err := s.encodeValue(group, entity, idx, r, value, descriptor)
			if err != nil {
				continue
			}
			updates = append(updates, componentUpdate{
				Entity: netID, Component: idx, GroupID: r.GroupID, Tick: uint16(at),
				Mapped: mapped, Delta: isDelta, Payload: payload,
			})
			group.MarkSent(entity, idx, at)
			group.RecordLastValue(entity, idx, value)
		}

		if !mapped {
			group.Entities.MarkMapped(netID)
		}
	}

	for _, entity := range s.world.ConsumeRemovals() {
		netID, known := group.Entities.Network(entity)
		if !known {
			continue
		}
		r := s.replicateFor(entity)
		actions = append(actions, actionRecord{Entity: netID, Op: actionDespawn, GroupID: r.GroupID, Tick: uint16(at)})
		group.Entities.Remove(netID)
		group.Forget(entity)
		s.authority.Clear(entity)
	}

	if len(actions) == 0 && len(updates) == 0 {
		return nil, false
	}
	return encodeTick(actions, updates), true
}

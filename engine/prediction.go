package engine

import (
	"replicore/prediction"
	"replicore/tick"
	"replicore/world"
)

// predKey identifies one component slot to track across peer, entity, and
// component index, the same triple both the prediction and interpolation
// wiring key their per-slot histories on.
type predKey struct {
	peer      PeerID
	entity    world.EntityID
	component int
}

// RegisterPrediction opts a component index into client-side prediction:
// whenever a confirmed value for that component arrives for an entity this
// peer is locally predicting, Reconcile compares it against the predicted
// history and resimulates forward on mismatch. sim and eq are
// supplied once per component type and reused across every predicted entity,
// following protocol.ComponentDescriptor's PredictionMode tag.
func (c *Core) RegisterPrediction(component int, sim prediction.Simulate[any], eq prediction.Equal[any]) {
	c.predictionSims[component] = sim
	c.predictionEq[component] = eq
}

// SetPredicted records a locally-simulated value for an entity's component at
// tick t, called by the host application's local input simulation each tick
// for every component it predicts ahead of server confirmation.
func (c *Core) SetPredicted(peer PeerID, entity world.EntityID, component int, at tick.Tick, value any) {
	c.predictionHistory(peer, entity, component).SetPredicted(at, value)
}

// PredictedValue returns the value recorded at tick at for an entity's
// predicted component; ok is false when no history exists for it yet or the
// slot at that tick is Absent.
func (c *Core) PredictedValue(peer PeerID, entity world.EntityID, component int, at tick.Tick) (any, bool) {
	key := predKey{peer: peer, entity: entity, component: component}
	h, ok := c.predictionHistories[key]
	if !ok {
		return nil, false
	}
	slot := h.Get(at)
	return slot.Value, slot.Kind != prediction.Absent
}

func (c *Core) predictionHistory(peer PeerID, entity world.EntityID, component int) *prediction.History[any] {
	key := predKey{peer: peer, entity: entity, component: component}
	h, ok := c.predictionHistories[key]
	if !ok {
		h = prediction.NewHistory[any](c.maxRollbackTicks)
		c.predictionHistories[key] = h
	}
	return h
}

// reconcileComponent runs Reconcile for one predicted slot against its
// just-confirmed value, emitting EventRollback whenever Reconcile reports a
// correction: the slot at the confirmed tick held a different prediction or
// no prediction at all.
func (c *Core) reconcileComponent(peer PeerID, entity world.EntityID, component int, confirmed any, confirmedTick, current tick.Tick) {
	sim, hasSim := c.predictionSims[component]
	eq, hasEq := c.predictionEq[component]
	if !hasSim || !hasEq {
		return
	}
	h := c.predictionHistory(peer, entity, component)
	_, rolledBack := prediction.Reconcile(h, confirmed, confirmedTick, current, eq, sim)
	c.predictionReconciledAt[predKey{peer: peer, entity: entity, component: component}] = current
	if rolledBack {
		depth := int(current.Since(confirmedTick))
		c.sink.HandleEvent(Event{Kind: EventRollback, Peer: peer, Entity: entity, Component: component, RollbackDepth: depth})
	}
}

// reconcilePredictedComponents walks every component this peer's confirmed
// world touched this tick and, for the ones opted into prediction, reconciles
// the corresponding history.
func (c *Core) reconcilePredictedComponents(peer PeerID, touched []world.EntityID, at tick.Tick) {
	if len(c.predictionSims) == 0 {
		return
	}
	for _, entity := range touched {
		for component := range c.predictionSims {
			value, ok := c.world.Component(entity, component)
			if !ok {
				continue
			}
			c.reconcileComponent(peer, entity, component, value, at, at)
		}
	}
}

// reconcileStableComponents re-confirms predicted components that were not
// touched this tick but whose confirmed value can be trusted as unchanged
// because the peer's Update watermark has been stable for
// config.MutateStabilityK consecutive ticks: absence of an Update means the
// authority's value did not change, once the stream has proven itself
// gap-free for long enough.
func (c *Core) reconcileStableComponents(peer PeerID, at tick.Tick) {
	tracker, ok := c.mutateTrackers[peer]
	if !ok || !tracker.Stable() {
		return
	}
	for key := range c.predictionHistories {
		if key.peer != peer {
			continue
		}
		if last, ok := c.predictionReconciledAt[key]; ok && last == at {
			continue
		}
		value, ok := c.world.Component(key.entity, key.component)
		if !ok {
			continue
		}
		c.reconcileComponent(peer, key.entity, key.component, value, at, at)
	}
}

package engine

import (
	"replicore/interpolation"
	"replicore/tick"
	"replicore/world"
)

// RegisterInterpolation opts a component index into render-side smoothing:
// every confirmed value received for that component on a touched entity
// (predicted entities are not excluded) is pushed into a per-entity
// interpolation.History, and
// SampleInterpolated blends between the two samples bracketing a peer's
// current render tick, following protocol.ComponentDescriptor's
// InterpolationMode tag.
func (c *Core) RegisterInterpolation(component int, blend interpolation.Blend[any]) {
	c.interpolationBlends[component] = blend
}

func (c *Core) interpolationHistory(peer PeerID, entity world.EntityID, component int) *interpolation.History[any] {
	key := predKey{peer: peer, entity: entity, component: component}
	h, ok := c.interpolationHistories[key]
	if !ok {
		h = interpolation.NewHistory[any](32)
		c.interpolationHistories[key] = h
	}
	return h
}

// pushInterpolationSamples records the just-confirmed value of every
// interpolation-registered component a touched entity carries, for later
// blending by SampleInterpolated.
func (c *Core) pushInterpolationSamples(peer PeerID, touched []world.EntityID, at tick.Tick) {
	if len(c.interpolationBlends) == 0 {
		return
	}
	for _, entity := range touched {
		for component := range c.interpolationBlends {
			value, ok := c.world.Component(entity, component)
			if !ok {
				continue
			}
			c.interpolationHistory(peer, entity, component).Push(at, value)
		}
	}
}

// interpolationTimeline returns (creating if necessary) the render timeline
// tracking a peer's estimated live tick, delayed by the configured render lag.
func (c *Core) interpolationTimeline(peer PeerID) *interpolation.Timeline {
	if t, ok := c.interpolationTimelines[peer]; ok {
		return t
	}
	p := c.ensurePeer(peer)
	t := interpolation.NewTimeline(p.remote, c.interpolationDelayTicks)
	c.interpolationTimelines[peer] = t
	return t
}

// SampleInterpolated blends an observed entity's component at the given
// peer's current render tick, using the registered Blend for that component.
// ok is false if the component was never registered for interpolation or no
// sample has been received yet.
func (c *Core) SampleInterpolated(peer PeerID, entity world.EntityID, component int) (any, bool) {
	blend, ok := c.interpolationBlends[component]
	if !ok {
		return nil, false
	}
	renderTick, _, ok := c.interpolationTimeline(peer).RenderTick()
	if !ok {
		return nil, false
	}
	h := c.interpolationHistory(peer, entity, component)
	return interpolation.Sample(h, renderTick, blend)
}

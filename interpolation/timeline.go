package interpolation

import "replicore/tick"

// Timeline computes the render tick an observer should sample confirmed
// snapshot history at: the remote peer's estimated live tick minus a fixed
// interpolation delay, so there are (almost) always two real samples on
// either side of it to blend between.
type Timeline struct {
	remote    *tick.RemoteTimeline
	delay     int
	overstep  float32
}

// NewTimeline builds an interpolation timeline tracking the given remote
// tick estimator, rendering delayTicks behind its live estimate.
func NewTimeline(remote *tick.RemoteTimeline, delayTicks int) *Timeline {
	if delayTicks < 0 {
		delayTicks = 0
	}
	return &Timeline{remote: remote, delay: delayTicks}
}

// SetDelay adjusts the render delay, e.g. in response to observed jitter.
func (t *Timeline) SetDelay(delayTicks int) {
	if delayTicks < 0 {
		delayTicks = 0
	}
	t.delay = delayTicks
}

// Delay returns the current render delay in ticks.
func (t *Timeline) Delay() int {
	return t.delay
}

// RenderTick returns the tick to sample confirmed history at, combined with
// the fine-grained overstep within that tick for sub-tick smoothness.
func (t *Timeline) RenderTick() (tick.Tick, float64, bool) {
	estimate, ok := t.remote.Estimate()
	if !ok {
		return 0, 0, false
	}
	return estimate.Add(-t.delay), t.remote.Overstep(), true
}

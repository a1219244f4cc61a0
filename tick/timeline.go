package tick

import "sync"

// LocalTimeline tracks the peer's own simulation tick and the fractional
// overstep accumulated between fixed updates.
type LocalTimeline struct {
	mu       sync.RWMutex
	current  Tick
	overstep float64
}

// NewLocalTimeline starts the timeline at the supplied tick.
func NewLocalTimeline(start Tick) *LocalTimeline {
	return &LocalTimeline{current: start}
}

// Tick returns the current local tick.
func (l *LocalTimeline) Tick() Tick {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Overstep returns the fraction of a tick elapsed since the last fixed update.
func (l *LocalTimeline) Overstep() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.overstep
}

// Advance moves the timeline forward by one fixed update, resetting overstep.
func (l *LocalTimeline) Advance() Tick {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = l.current.Add(1)
	l.overstep = 0
	return l.current
}

// SetOverstep records the fractional progress toward the next fixed update.
func (l *LocalTimeline) SetOverstep(frac float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	l.overstep = frac
}

// Rebase snaps the timeline directly to a new tick, used on a SyncEvent hard
// snap rather than a smooth nudge.
func (l *LocalTimeline) Rebase(newTick Tick) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = newTick
	l.overstep = 0
}

// RemoteTimeline is the client's estimate of the peer's tick, updated from
// PONG samples.
type RemoteTimeline struct {
	mu       sync.RWMutex
	estimate Tick
	overstep float64
	known    bool
}

// NewRemoteTimeline constructs an unseeded remote timeline.
func NewRemoteTimeline() *RemoteTimeline {
	return &RemoteTimeline{}
}

// Observe records a fresh remote tick/overstep sample.
func (r *RemoteTimeline) Observe(t Tick, overstep float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.estimate = t
	r.overstep = overstep
	r.known = true
}

// Estimate returns the last observed remote tick and whether any sample has
// ever arrived.
func (r *RemoteTimeline) Estimate() (Tick, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.estimate, r.known
}

// Overstep returns the fractional overstep carried by the last sample.
func (r *RemoteTimeline) Overstep() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overstep
}

// InputTimeline is the client's LocalTimeline offset forward by a configured
// input-delay so that inputs produced "now" land ahead of the tick they will
// be consumed at.
type InputTimeline struct {
	local      *LocalTimeline
	delayTicks int
}

// NewInputTimeline binds an input timeline to the given local timeline and delay.
func NewInputTimeline(local *LocalTimeline, delayTicks int) *InputTimeline {
	if delayTicks < 0 {
		delayTicks = 0
	}
	return &InputTimeline{local: local, delayTicks: delayTicks}
}

// Tick returns the tick at which an input produced right now should be consumed.
func (i *InputTimeline) Tick() Tick {
	if i == nil || i.local == nil {
		return 0
	}
	return i.local.Tick().Add(i.delayTicks)
}

// DelayTicks reports the configured input delay.
func (i *InputTimeline) DelayTicks() int {
	if i == nil {
		return 0
	}
	return i.delayTicks
}

// SetDelayTicks updates the input delay, e.g. in response to RTT changes.
func (i *InputTimeline) SetDelayTicks(delay int) {
	if i == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	i.delayTicks = delay
}

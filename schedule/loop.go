// Package schedule drives the fixed-timestep PreUpdate/FixedUpdate/
// Update/PostUpdate phase loop using an accumulator so the simulation
// advances at a constant rate regardless of frame jitter.
package schedule

import (
	"context"
	"time"

	"replicore/tick"
)

// Phases groups the four callbacks invoked once per fixed step, in order.
// Any of them may be nil.
type Phases struct {
	// PreUpdate runs before the fixed-step simulation advances: input
	// ingestion, ack application, received-packet draining.
	PreUpdate func(t tick.Tick, step time.Duration)
	// FixedUpdate advances authoritative simulation state by one tick.
	FixedUpdate func(t tick.Tick, step time.Duration)
	// Update runs once per fixed step after simulation: prediction
	// reconciliation, interpolation sampling.
	Update func(t tick.Tick, step time.Duration)
	// PostUpdate runs last: replication snapshot building, packet flush.
	PostUpdate func(t tick.Tick, step time.Duration)
}

func (p Phases) run(t tick.Tick, step time.Duration) {
	if p.PreUpdate != nil {
		p.PreUpdate(t, step)
	}
	if p.FixedUpdate != nil {
		p.FixedUpdate(t, step)
	}
	if p.Update != nil {
		p.Update(t, step)
	}
	if p.PostUpdate != nil {
		p.PostUpdate(t, step)
	}
}

// Loop drives the phase callbacks at a fixed target frequency, advancing
// a tick.LocalTimeline once per step and catching up via an accumulator
// when real time runs ahead of the simulation.
type Loop struct {
	step      time.Duration
	phases    Phases
	timeline  *tick.LocalTimeline
	monitor   *TickMonitor
	ticker    *time.Ticker
	done      chan struct{}
	timeScale float64
}

// NewLoop configures a loop targeting targetHz fixed steps per second,
// advancing the given timeline and recording step durations into monitor.
// A non-positive targetHz defaults to 60Hz.
func NewLoop(targetHz float64, timeline *tick.LocalTimeline, monitor *TickMonitor, phases Phases) *Loop {
	if targetHz <= 0 {
		targetHz = 60
	}
	if timeline == nil {
		timeline = tick.NewLocalTimeline(0)
	}
	if monitor == nil {
		monitor = NewTickMonitor()
	}
	interval := time.Duration(float64(time.Second) / targetHz)
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{step: interval, phases: phases, timeline: timeline, monitor: monitor, timeScale: 1.0}
}

// SetTimeScale adjusts the rate the loop converts accumulated wall-clock
// time into fixed steps, letting timesync.Nudger smoothly close a clock
// drift gap by briefly running faster or slower than 1.0.
// A non-positive scale is ignored.
func (l *Loop) SetTimeScale(scale float64) {
	if l == nil || scale <= 0 {
		return
	}
	l.timeScale = scale
}

// effectiveStep is the wall-clock duration that must accumulate before the
// next fixed step runs, shrinking below step when timeScale > 1 (run ahead)
// and growing above it when timeScale < 1 (run behind).
func (l *Loop) effectiveStep() time.Duration {
	if l.timeScale <= 0 {
		return l.step
	}
	return time.Duration(float64(l.step) / l.timeScale)
}

// Start begins ticking in a background goroutine until ctx is cancelled
// or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	if l == nil {
		return
	}
	l.ticker = time.NewTicker(l.step)
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		defer l.ticker.Stop()
		last := time.Now()
		accumulator := time.Duration(0)
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-l.ticker.C:
				//1.- Accumulate elapsed wall-clock time since the previous wakeup.
				accumulator += now.Sub(last)
				last = now
				//2.- Run as many fixed steps as have accumulated, timing each.
				for needed := l.effectiveStep(); accumulator >= needed; needed = l.effectiveStep() {
					started := time.Now()
					current := l.timeline.Advance()
					l.phases.run(current, l.step)
					l.monitor.Observe(time.Since(started))
					accumulator -= needed
				}
			}
		}
	}()
}

// Stop halts the loop and waits for its goroutine to exit.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.done != nil {
		<-l.done
		l.done = nil
	}
}

// Step runs exactly one fixed step synchronously, bypassing the ticker.
// Intended for deterministic tests and offline tools.
func (l *Loop) Step() tick.Tick {
	started := time.Now()
	current := l.timeline.Advance()
	l.phases.run(current, l.step)
	l.monitor.Observe(time.Since(started))
	return current
}

// StepDuration exposes the configured fixed timestep.
func (l *Loop) StepDuration() time.Duration {
	if l == nil {
		return 0
	}
	return l.step
}

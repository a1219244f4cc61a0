// Package input validates and buffers the client input stream the
// replication layer's authority peer consumes each tick, applying a
// per-client freshness/rate-limit gate.
package input

import (
	"sync"
	"time"
)

// Clock exposes the current time for rate limiting decisions.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config controls the freshness and throughput gates applied to inputs.
type Config struct {
	MaxAge      time.Duration
	MinInterval time.Duration
}

// DropReason enumerates why a frame was rejected by the gate.
type DropReason string

const (
	DropReasonNone        DropReason = ""
	DropReasonSequence    DropReason = "sequence"
	DropReasonStale       DropReason = "stale"
	DropReasonRateLimited DropReason = "rate_limit"
)

// Decision summarizes whether a frame passed validation.
type Decision struct {
	Accepted bool
	Reason   DropReason
}

// Frame captures the metadata required to validate one input submission.
type Frame struct {
	PeerID     string
	SequenceID uint64
	SentAt     time.Time
}

type peerState struct {
	lastSequence uint64
	hasSequence  bool
	lastAccepted time.Time
	hasAccepted  bool
}

// Gate enforces per-peer monotonic sequencing, max staleness, and a minimum
// interval between accepted inputs.
type Gate struct {
	mu     sync.Mutex
	cfg    Config
	clock  Clock
	states map[string]*peerState
}

// NewGate constructs a gate with the given configuration, defaulting to the
// system clock.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg, clock: systemClock{}, states: make(map[string]*peerState)}
}

// WithClock overrides the clock, primarily for deterministic tests.
func (g *Gate) WithClock(c Clock) *Gate {
	g.clock = c
	return g
}

// Evaluate validates a frame against sequencing, staleness, and rate limit
// rules, updating per-peer bookkeeping on acceptance.
func (g *Gate) Evaluate(f Frame) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.states[f.PeerID]
	if !ok {
		state = &peerState{}
		g.states[f.PeerID] = state
	}

	if state.hasSequence && f.SequenceID <= state.lastSequence {
		return Decision{Reason: DropReasonSequence}
	}

	if g.cfg.MaxAge > 0 {
		age := g.clock.Now().Sub(f.SentAt)
		if age > g.cfg.MaxAge {
			return Decision{Reason: DropReasonStale}
		}
	}

	if g.cfg.MinInterval > 0 && state.hasAccepted {
		if g.clock.Now().Sub(state.lastAccepted) < g.cfg.MinInterval {
			return Decision{Reason: DropReasonRateLimited}
		}
	}

	state.lastSequence = f.SequenceID
	state.hasSequence = true
	state.lastAccepted = g.clock.Now()
	state.hasAccepted = true
	return Decision{Accepted: true}
}

// Forget drops bookkeeping for a disconnected peer.
func (g *Gate) Forget(peerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.states, peerID)
}
